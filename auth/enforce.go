package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bitvelocity/gatekeeper/observe"
)

// ErrorResponse is the JSON body written for rejected requests.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// WriteErrorResponse writes an ErrorResponse with the given status.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// Enforce returns middleware that applies policy to every request using the
// principal the Gate attached. Denied requests never reach next:
// unauthenticated callers get 401 with a Bearer challenge, authenticated
// callers without a matching role get 403. Paths the router would see
// differently from the policy are rejected with 400 before either runs.
func Enforce(policy *Policy, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !normalizedRequestPath(r) {
				o.metrics.RecordAuthorization(ctx, "deny", "rejected_path")
				WriteErrorResponse(w, r, http.StatusBadRequest, "The request was rejected because the URL was not normalized")
				return
			}

			principal := PrincipalFromContext(ctx)
			d := policy.Authorize(principal, r.Method, r.URL.Path)

			o.metrics.RecordAuthorization(ctx, d.Outcome(), d.Reason.String())
			o.logger.Debug(ctx, "authorization decision",
				observe.F("outcome", d.Outcome()),
				observe.F("reason", d.Reason.String()),
				observe.F("rule", d.RuleIndex),
				observe.F("method", d.Method),
				observe.F("path", d.Path),
				observe.F("subject", d.Subject),
			)

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			switch d.Reason {
			case DenyUnauthenticated:
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteErrorResponse(w, r, http.StatusUnauthorized, "Full authentication is required to access this resource")
			default:
				WriteErrorResponse(w, r, http.StatusForbidden, "Access is denied")
			}
		})
	}
}

// normalizedRequestPath rejects dot segments, repeated slashes and encoded
// slashes, which make the routed path differ from the authorized one.
func normalizedRequestPath(r *http.Request) bool {
	if !CanonicalPath(r.URL.Path) {
		return false
	}
	return !strings.Contains(strings.ToLower(r.URL.RawPath), "%2f")
}
