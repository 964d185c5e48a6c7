package auth

import (
	"slices"
	"time"
)

// Claims is the verified content of a bearer token.
//
// Claims are only produced by a Validator after the signature, expiry,
// issuer and audience checks have all passed. Fields are unexported so a
// Claims value cannot be changed once it exists.
type Claims struct {
	subject   string
	roles     []string
	issuedAt  time.Time
	expiresAt time.Time
	issuer    string
	audience  string
	jwtID     string
}

// Subject returns the principal identifier (sub claim).
func (c *Claims) Subject() string {
	return c.subject
}

// Roles returns a copy of the role names carried by the token.
func (c *Claims) Roles() []string {
	return slices.Clone(c.roles)
}

// HasRole checks if the token carries the given role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.roles, role)
}

// IssuedAt returns the iat claim. Zero if the token did not carry one.
func (c *Claims) IssuedAt() time.Time {
	return c.issuedAt
}

// ExpiresAt returns the exp claim.
func (c *Claims) ExpiresAt() time.Time {
	return c.expiresAt
}

// Issuer returns the iss claim.
func (c *Claims) Issuer() string {
	return c.issuer
}

// Audience returns the audience value the token was accepted for.
func (c *Claims) Audience() string {
	return c.audience
}

// JWTID returns the jti claim. It is used for log correlation only.
func (c *Claims) JWTID() string {
	return c.jwtID
}
