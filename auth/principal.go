package auth

import (
	"slices"
	"strings"
)

// RolePrefix is prepended to role names to form authorities.
const RolePrefix = "ROLE_"

// Principal is the authenticated identity of one request.
//
// A Principal is created once per request by a PrincipalBuilder and never
// changed afterwards. A nil *Principal means the request is anonymous.
type Principal struct {
	username      string
	roles         []string
	authenticated bool
	tokenID       string
}

// Username returns the principal name (the token subject).
func (p *Principal) Username() string {
	if p == nil {
		return ""
	}
	return p.username
}

// Roles returns a copy of the normalized role set.
func (p *Principal) Roles() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.roles)
}

// HasRole checks if the principal holds role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.Contains(p.roles, role)
}

// HasAnyRole checks if the principal holds at least one of roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(p.roles, r) {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether the principal was established from a
// verified token. False for nil and anonymous principals.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.authenticated
}

// TokenID returns the jti of the token the principal came from.
func (p *Principal) TokenID() string {
	if p == nil {
		return ""
	}
	return p.tokenID
}

// Authorities returns the principal's roles in authority form.
func (p *Principal) Authorities() []string {
	if p == nil {
		return nil
	}
	return Authorities(p.roles)
}

// Anonymous returns an unauthenticated principal.
func Anonymous() *Principal {
	return &Principal{username: "anonymous"}
}

// NewPrincipal creates an authenticated principal without a token, for
// callers that established the identity some other way. Roles are
// uppercased. An empty username yields nil.
func NewPrincipal(username string, roles ...string) *Principal {
	if strings.TrimSpace(username) == "" {
		return nil
	}
	return &Principal{
		username:      username,
		roles:         NormalizeRoles(roles, RoleCaseUpper),
		authenticated: true,
	}
}

// RoleCase selects how role names are normalized.
type RoleCase int

const (
	// RoleCaseUpper uppercases role names (ADMIN, VENDOR, CUSTOMER).
	RoleCaseUpper RoleCase = iota
	// RoleCaseLower lowercases role names.
	RoleCaseLower
	// RoleCasePreserve keeps role names as issued.
	RoleCasePreserve
)

// PrincipalBuilder maps verified claims to a Principal.
type PrincipalBuilder struct {
	// RoleCase selects role name normalization.
	// Default: RoleCaseUpper
	RoleCase RoleCase
}

// Build creates a principal from claims. It returns false when claims is
// nil or has an empty subject, even though the token itself was valid.
func (b PrincipalBuilder) Build(claims *Claims) (*Principal, bool) {
	if claims == nil || strings.TrimSpace(claims.subject) == "" {
		return nil, false
	}
	return &Principal{
		username:      claims.subject,
		roles:         NormalizeRoles(claims.roles, b.RoleCase),
		authenticated: true,
		tokenID:       claims.jwtID,
	}, true
}

// NormalizeRoles applies the case convention, trims whitespace and removes
// empty and duplicate names. Order of first occurrence is kept.
func NormalizeRoles(roles []string, rc RoleCase) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		switch rc {
		case RoleCaseUpper:
			r = strings.ToUpper(r)
		case RoleCaseLower:
			r = strings.ToLower(r)
		}
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Authorities maps role names to authority names: ADMIN becomes ROLE_ADMIN.
// Names that already carry the prefix are left as they are.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		if strings.HasPrefix(r, RolePrefix) {
			out = append(out, r)
			continue
		}
		out = append(out, RolePrefix+r)
	}
	return out
}
