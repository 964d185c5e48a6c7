package auth

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/cors"
)

// CORSPolicy is a declarative cross-origin policy.
type CORSPolicy struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// "*" allows any origin. A single "*" inside an entry is a wildcard,
	// as in https://*.example.com.
	AllowedOrigins []string

	// AllowedMethods lists methods allowed in pre-flight responses.
	AllowedMethods []string

	// AllowedHeaders lists request headers allowed in pre-flight responses.
	// "*" allows any header.
	AllowedHeaders []string

	// ExposedHeaders lists response headers readable by the browser.
	ExposedHeaders []string

	// AllowCredentials allows cookies and Authorization on cross-origin requests.
	AllowCredentials bool

	// MaxAge is how long, in seconds, browsers may cache pre-flight results.
	MaxAge int
}

// DefaultCORSPolicy returns the policy for the local web front-ends.
func DefaultCORSPolicy() *CORSPolicy {
	return &CORSPolicy{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           3600,
	}
}

// Options converts the policy to go-chi/cors options.
func (p *CORSPolicy) Options() cors.Options {
	return cors.Options{
		AllowedOrigins:   slices.Clone(p.AllowedOrigins),
		AllowedMethods:   slices.Clone(p.AllowedMethods),
		AllowedHeaders:   slices.Clone(p.AllowedHeaders),
		ExposedHeaders:   slices.Clone(p.ExposedHeaders),
		AllowCredentials: p.AllowCredentials,
		MaxAge:           p.MaxAge,
	}
}

// OriginAllowed reports whether origin is in the allow list.
func (p *CORSPolicy) OriginAllowed(origin string) bool {
	origin = strings.ToLower(origin)
	for _, allowed := range p.AllowedOrigins {
		allowed = strings.ToLower(allowed)
		if allowed == "*" || allowed == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(allowed, "*"); ok {
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// Handler applies the policy in front of next.
//
// Pre-flight requests are answered here and never reach next. Actual
// requests whose Origin is neither allowed nor the server's own origin are
// rejected with 403. Requests without an Origin header pass unchanged.
func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	inner := cors.New(p.Options()).Handler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || isPreflight(r) || sameOrigin(r, origin) || p.OriginAllowed(origin) {
			inner.ServeHTTP(w, r)
			return
		}
		WriteErrorResponse(w, r, http.StatusForbidden, "Invalid CORS request")
	})
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// sameOrigin reports whether origin names the host the request was sent to.
func sameOrigin(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
