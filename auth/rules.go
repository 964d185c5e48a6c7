package auth

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
)

// ParseRule parses one rule in text form:
//
//	METHOD PATTERN ACCESS
//
// ACCESS is one of permit, authenticated, deny or roles=A,B. METHOD may be *.
func ParseRule(line string) (Rule, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Rule{}, fmt.Errorf("%w: %q: want METHOD PATTERN ACCESS", ErrInvalidRule, line)
	}
	method, pattern, access := strings.ToUpper(fields[0]), fields[1], fields[2]

	switch {
	case access == "permit":
		return PermitAll(method, pattern), nil
	case access == "authenticated":
		return RequireAuthenticated(method, pattern), nil
	case access == "deny":
		return DenyAll(method, pattern), nil
	case strings.HasPrefix(access, "roles="):
		roles := strings.Split(strings.TrimPrefix(access, "roles="), ",")
		return RequireAnyRole(method, pattern, roles...), nil
	default:
		return Rule{}, fmt.Errorf("%w: %q: unknown access %q", ErrInvalidRule, line, access)
	}
}

// ParseRules parses a rule table, one rule per line. Blank lines and lines
// starting with # are skipped. Semicolons also separate rules so a table
// fits in a single environment variable.
func ParseRules(text string) ([]Rule, error) {
	var rules []Rule
	sc := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(text, ";", "\n")))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, err := ParseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rules = append(rules, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return rules, nil
}

// FormatRules renders rules in the form read by ParseRules.
func FormatRules(rules []Rule) string {
	var b strings.Builder
	for _, r := range rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ProductRules returns the product catalog rule table rooted at basePath
// (for example "/api"). Catalog reads are public, writes need
// ADMIN or VENDOR, deletes need ADMIN, and everything else requires an
// authenticated principal.
func ProductRules(basePath string) []Rule {
	b := strings.TrimRight(basePath, "/")
	return []Rule{
		PermitAll(http.MethodGet, b+"/products/**"),
		PermitAll(http.MethodGet, b+"/products/search/**"),
		PermitAll(http.MethodGet, b+"/products/category/**"),

		RequireAnyRole(http.MethodPost, b+"/products", "ADMIN", "VENDOR"),
		RequireAnyRole(http.MethodPut, b+"/products/**", "ADMIN", "VENDOR"),
		RequireAnyRole(http.MethodPatch, b+"/products/**", "ADMIN", "VENDOR"),
		RequireAnyRole(http.MethodDelete, b+"/products/**", "ADMIN"),

		RequireAuthenticated(MethodAny, "/**"),
	}
}
