package secret

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name   string
	values map[string]string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := s.values[ref]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("stub", func(map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", nil)
	if err != nil || p.Name() != "stub" {
		t.Fatalf("Create() = %v, %v", p, err)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()
	factory := func(map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }
	_ = reg.Register("stub", factory)

	if err := reg.Register("stub", factory); !errors.Is(err, ErrDuplicateProvider) {
		t.Errorf("duplicate error = %v", err)
	}
	if err := reg.Register(" ", factory); err == nil {
		t.Error("blank name accepted")
	}
	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("unknown provider error = %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	names := DefaultRegistry.List()
	if len(names) != 2 || names[0] != "env" || names[1] != "file" {
		t.Fatalf("List() = %v, want [env file]", names)
	}

	p, err := DefaultRegistry.Create("file", map[string]any{"dir": "/run/secrets"})
	if err != nil {
		t.Fatal(err)
	}
	if fp, ok := p.(*FileProvider); !ok || fp.Dir != "/run/secrets" {
		t.Errorf("file provider = %#v", p)
	}
}
