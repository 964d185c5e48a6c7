package auth

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// MethodAny matches every HTTP method.
const MethodAny = "*"

// validMethods are the methods a rule may name.
var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
	MethodAny:         true,
}

// Access is the requirement a rule places on the principal.
type Access int

const (
	// AccessPublic allows every request, with or without a principal.
	AccessPublic Access = iota
	// AccessAuthenticated requires an authenticated principal with any roles.
	AccessAuthenticated
	// AccessRoles requires an authenticated principal holding one of Rule.Roles.
	AccessRoles
	// AccessDenyAll denies every request.
	AccessDenyAll
)

// String returns the keyword used in the rule text form.
func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "permit"
	case AccessAuthenticated:
		return "authenticated"
	case AccessRoles:
		return "roles"
	case AccessDenyAll:
		return "deny"
	default:
		return "unknown"
	}
}

// Rule maps a method and path pattern to an access requirement.
type Rule struct {
	// Method is an HTTP method or MethodAny.
	Method string

	// Pattern is a segment pattern such as /api/products/** or /api/products/{id}.
	Pattern string

	// Access is the requirement for matching requests.
	Access Access

	// Roles lists the accepted roles when Access is AccessRoles.
	Roles []string
}

// String formats the rule in the form accepted by ParseRule.
func (r Rule) String() string {
	switch r.Access {
	case AccessRoles:
		return fmt.Sprintf("%s %s roles=%s", r.Method, r.Pattern, strings.Join(r.Roles, ","))
	default:
		return fmt.Sprintf("%s %s %s", r.Method, r.Pattern, r.Access)
	}
}

// PermitAll creates a public rule.
func PermitAll(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessPublic}
}

// RequireAuthenticated creates a rule requiring any authenticated principal.
func RequireAuthenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessAuthenticated}
}

// RequireAnyRole creates a rule requiring one of roles.
func RequireAnyRole(method, pattern string, roles ...string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessRoles, Roles: roles}
}

// DenyAll creates a rule that denies every request.
func DenyAll(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessDenyAll}
}

type compiledRule struct {
	rule    Rule
	pattern pathPattern
}

func (c compiledRule) matches(method string, segs []string) bool {
	if c.rule.Method != MethodAny && c.rule.Method != method {
		return false
	}
	return c.pattern.match(segs)
}

// PolicyOption configures a Policy.
type PolicyOption func(*policyOptions)

type policyOptions struct {
	roleCase RoleCase
}

// WithRoleCase selects how required role names are normalized. It should
// match the PrincipalBuilder's setting. Default: RoleCaseUpper
func WithRoleCase(rc RoleCase) PolicyOption {
	return func(o *policyOptions) {
		o.roleCase = rc
	}
}

// Policy is an ordered, read-only authorization rule table.
//
// Rules are evaluated top to bottom and the first match decides. A request
// that matches no rule is denied; put RequireAuthenticated(MethodAny, "/**")
// last to get the usual "everything else needs a login" behavior.
//
// A Policy is immutable after NewPolicy and safe for concurrent use.
type Policy struct {
	rules []compiledRule
}

// NewPolicy validates and compiles rules, preserving their order.
func NewPolicy(rules []Rule, opts ...PolicyOption) (*Policy, error) {
	o := policyOptions{roleCase: RoleCaseUpper}
	for _, opt := range opts {
		opt(&o)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if !validMethods[r.Method] {
			return nil, fmt.Errorf("%w: rule %d: unsupported method %q", ErrInvalidRule, i, r.Method)
		}

		pattern, err := compilePattern(strings.TrimSpace(r.Pattern))
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		r.Pattern = pattern.raw

		switch r.Access {
		case AccessRoles:
			r.Roles = NormalizeRoles(r.Roles, o.roleCase)
			if len(r.Roles) == 0 {
				return nil, fmt.Errorf("%w: rule %d: role rule needs at least one role", ErrInvalidRule, i)
			}
		case AccessPublic, AccessAuthenticated, AccessDenyAll:
			r.Roles = nil
		default:
			return nil, fmt.Errorf("%w: rule %d: unknown access %d", ErrInvalidRule, i, r.Access)
		}

		compiled = append(compiled, compiledRule{rule: r, pattern: pattern})
	}

	return &Policy{rules: compiled}, nil
}

// MustPolicy is like NewPolicy but panics on error. For static tables only.
func MustPolicy(rules []Rule, opts ...PolicyOption) *Policy {
	p, err := NewPolicy(rules, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Rules returns a copy of the normalized rule table.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, c := range p.rules {
		out[i] = c.rule
		out[i].Roles = slices.Clone(c.rule.Roles)
	}
	return out
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	// Allowed is true if the request may be dispatched.
	Allowed bool

	// Reason explains a denial. DenyNone when Allowed.
	Reason DenyReason

	// RuleIndex is the index of the deciding rule, or -1 when no rule matched.
	RuleIndex int

	// Subject is the principal name, empty for anonymous requests.
	Subject string

	// Method and Path identify the evaluated request.
	Method string
	Path   string
}

// Outcome returns "allow" or "deny".
func (d Decision) Outcome() string {
	if d.Allowed {
		return "allow"
	}
	return "deny"
}

// Err returns nil for allowed decisions and an *AuthzError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &AuthzError{
		Subject: d.Subject,
		Method:  d.Method,
		Path:    d.Path,
		Reason:  d.Reason,
	}
}

// Authorize evaluates the rule table for a request. principal may be nil.
func (p *Policy) Authorize(principal *Principal, method, reqPath string) Decision {
	method = strings.ToUpper(method)
	d := Decision{
		RuleIndex: -1,
		Subject:   principal.Username(),
		Method:    method,
		Path:      reqPath,
	}
	if !principal.IsAuthenticated() {
		d.Subject = ""
	}

	segs := splitPath(reqPath)
	for i, c := range p.rules {
		if !c.matches(method, segs) {
			continue
		}
		d.RuleIndex = i
		return decide(d, c.rule, principal)
	}

	// No rule matched: default deny.
	return deny(d, principal)
}

func decide(d Decision, r Rule, principal *Principal) Decision {
	switch r.Access {
	case AccessPublic:
		d.Allowed = true
		return d
	case AccessAuthenticated:
		if principal.IsAuthenticated() {
			d.Allowed = true
			return d
		}
		d.Reason = DenyUnauthenticated
		return d
	case AccessRoles:
		if !principal.IsAuthenticated() {
			d.Reason = DenyUnauthenticated
			return d
		}
		if principal.HasAnyRole(r.Roles...) {
			d.Allowed = true
			return d
		}
		d.Reason = DenyForbidden
		return d
	default:
		return deny(d, principal)
	}
}

// deny rejects the request: anonymous callers are asked to authenticate,
// authenticated callers are forbidden.
func deny(d Decision, principal *Principal) Decision {
	d.Allowed = false
	if principal.IsAuthenticated() {
		d.Reason = DenyForbidden
	} else {
		d.Reason = DenyUnauthenticated
	}
	return d
}
