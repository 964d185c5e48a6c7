package server

import (
	"net/http"

	"github.com/bitvelocity/gatekeeper/auth"
)

// WhoAmIResponse describes the caller.
type WhoAmIResponse struct {
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
	TokenID     string   `json:"tokenId,omitempty"`
}

func handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if !p.IsAuthenticated() {
		auth.WriteErrorResponse(w, r, http.StatusUnauthorized, "Full authentication is required to access this resource")
		return
	}
	writeJSON(w, http.StatusOK, WhoAmIResponse{
		Username:    p.Username(),
		Roles:       p.Roles(),
		Authorities: p.Authorities(),
		TokenID:     p.TokenID(),
	})
}
