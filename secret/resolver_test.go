package secret

import (
	"context"
	"errors"
	"testing"
)

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{"secretref:env:JWT_SECRET", "env", "JWT_SECRET", true},
		{"secretref:file:/run/secrets/a:b", "file", "/run/secrets/a:b", true},
		{"secretref:env:", "", "", false},
		{"secretref::ref", "", "", false},
		{"secretref:env", "", "", false},
		{"plain-value", "", "", false},
	}
	for _, tt := range tests {
		p, ref, ok := ParseSecretRef(tt.in)
		if p != tt.wantProvider || ref != tt.wantRef || ok != tt.wantOK {
			t.Errorf("ParseSecretRef(%q) = %q, %q, %v", tt.in, p, ref, ok)
		}
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	t.Setenv("KEY_NAME", "signing")
	stub := &stubProvider{name: "vault", values: map[string]string{"signing": "from-vault", "blank": ""}}

	tests := []struct {
		name    string
		strict  bool
		in      string
		want    string
		wantErr error
	}{
		{"literal", true, "raw-secret", "raw-secret", nil},
		{"env expanded", true, "${KEY_NAME}", "signing", nil},
		{"provider", true, "secretref:vault:signing", "from-vault", nil},
		{"expanded ref", true, "secretref:vault:${KEY_NAME}", "from-vault", nil},
		{"unknown provider", true, "secretref:aws:signing", "", ErrProviderNotFound},
		{"malformed ref", true, "secretref:vault", "", ErrInvalidRef},
		{"missing value", true, "secretref:vault:other", "", ErrSecretNotFound},
		{"strict empty", true, "secretref:vault:blank", "", ErrEmptySecret},
		{"lenient empty", false, "secretref:vault:blank", "", nil},
		{"strict empty literal", true, "", "", ErrEmptySecret},
		{"missing env", true, "${NOT_SET_ANYWHERE}", "", ErrMissingEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.strict, stub)
			got, err := r.ResolveValue(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveValue() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry_Resolver(t *testing.T) {
	t.Setenv("GATEKEEPER_RESOLVER_KEY", "via-env")
	r, err := DefaultRegistry.Resolver(true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ResolveValue(context.Background(), "secretref:env:GATEKEEPER_RESOLVER_KEY")
	if err != nil || got != "via-env" {
		t.Errorf("ResolveValue() = %q, %v", got, err)
	}
}
