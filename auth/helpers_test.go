package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "bitvelocity"
	testAudience = "bitvelocity-api"
)

var (
	testKey  = []byte("0123456789abcdef0123456789abcdef")
	otherKey = []byte("fedcba9876543210fedcba9876543210")
	testNow  = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return testNow }

// baseClaims returns a valid claim set; tests override or delete entries.
func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "alice",
		"roles": []string{"ADMIN"},
		"iss":   testIssuer,
		"aud":   testAudience,
		"iat":   testNow.Add(-time.Minute).Unix(),
		"exp":   testNow.Add(time.Hour).Unix(),
		"jti":   "token-1",
	}
}

func signToken(t testing.TB, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	return signTokenWith(t, jwt.SigningMethodHS256, key, claims)
}

func signTokenWith(t testing.TB, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func withClaims(overrides map[string]any, drop ...string) jwt.MapClaims {
	c := baseClaims()
	for k, v := range overrides {
		c[k] = v
	}
	for _, k := range drop {
		delete(c, k)
	}
	return c
}

func newTestValidator(t testing.TB, opts ...ValidatorOption) *Validator {
	t.Helper()
	keys, err := NewStaticKeyProvider(testKey)
	if err != nil {
		t.Fatalf("NewStaticKeyProvider: %v", err)
	}
	opts = append([]ValidatorOption{WithClock(fixedClock)}, opts...)
	v, err := NewValidator(ValidatorConfig{Issuer: testIssuer, Audience: testAudience}, keys, opts...)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func newTestGate(t testing.TB, opts ...Option) *Gate {
	t.Helper()
	g, err := NewGate(newTestValidator(t), opts...)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func bearer(token string) string { return "Bearer " + token }

// recordingMetrics captures auth metric calls.
type recordingMetrics struct {
	failures  []string
	decisions []string
}

func (m *recordingMetrics) RecordTokenFailure(_ context.Context, failure string) {
	m.failures = append(m.failures, failure)
}

func (m *recordingMetrics) RecordAuthorization(_ context.Context, outcome, reason string) {
	m.decisions = append(m.decisions, outcome+":"+reason)
}

// failingKeys is a KeyProvider that never finds a key.
type failingKeys struct{}

func (failingKeys) GetKey(context.Context, string) ([]byte, error) {
	return nil, ErrKeyNotFound
}
