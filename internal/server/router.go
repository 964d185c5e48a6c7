package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bitvelocity/gatekeeper/auth"
	"github.com/bitvelocity/gatekeeper/health"
	"github.com/bitvelocity/gatekeeper/observe"
	"github.com/bitvelocity/gatekeeper/product"
)

// RouterOptions controls the construction of the gatekeeper HTTP router.
// Gate, Policy and Products are required.
type RouterOptions struct {
	BasePath string
	Gate     *auth.Gate
	Policy   *auth.Policy
	Products *product.Service

	// Health is mounted at the root when set.
	Health *health.Aggregator

	// Telemetry wraps every request when set.
	Telemetry *observe.Middleware

	// MetricsHandler is served on /metrics when set.
	MetricsHandler http.Handler

	Logger      observe.Logger
	AuthOptions []auth.Option
}

// NewRouter assembles the chi router. Requests pass through request IDs,
// telemetry, panic recovery, the authentication gate (with CORS) and policy
// enforcement before reaching a handler.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Telemetry != nil {
		r.Use(opts.Telemetry.WithRouteFunc(routePattern).Handler)
	}
	r.Use(middleware.Recoverer)
	r.Use(opts.Gate.Middleware)
	r.Use(auth.Enforce(opts.Policy, opts.AuthOptions...))

	if opts.Health != nil {
		health.Mount(r, opts.Health)
	}
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	base := trimBase(opts.BasePath)
	r.Route(base, func(r chi.Router) {
		r.Get("/auth/whoami", handleWhoAmI)
		r.Route("/products", newProductHandler(opts.Products, logger).routes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteErrorResponse(w, r, http.StatusNotFound, "No handler found for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteErrorResponse(w, r, http.StatusMethodNotAllowed, "Request method '"+r.Method+"' is not supported")
	})
	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func trimBase(base string) string {
	for len(base) > 1 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if base == "" {
		return "/"
	}
	return base
}
