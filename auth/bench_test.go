package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func BenchmarkValidator_Validate(b *testing.B) {
	v := newTestValidator(b)
	token := signToken(b, testKey, baseClaims())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = v.Validate(ctx, token)
	}
}

func BenchmarkValidator_Validate_BadSignature(b *testing.B) {
	v := newTestValidator(b)
	token := signToken(b, otherKey, baseClaims())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = v.Validate(ctx, token)
	}
}

func BenchmarkPolicy_Authorize(b *testing.B) {
	policy := MustPolicy(ProductRules("/api"))
	p := principal("vera", "VENDOR")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = policy.Authorize(p, http.MethodPatch, "/api/products/42/stock")
	}
}

func BenchmarkPolicy_Authorize_Fallback(b *testing.B) {
	policy := MustPolicy(ProductRules("/api"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = policy.Authorize(nil, http.MethodGet, "/api/orders/7/items")
	}
}

func BenchmarkGate_Middleware(b *testing.B) {
	g, err := NewGate(newTestValidator(b))
	if err != nil {
		b.Fatal(err)
	}
	h := g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	header := bearer(signToken(b, testKey, baseClaims()))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.Header.Set("Authorization", header)
			h.ServeHTTP(httptest.NewRecorder(), req)
		}
	})
}
