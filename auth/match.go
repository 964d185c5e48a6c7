package auth

import (
	"fmt"
	"path"
	"strings"
)

// pathPattern is a compiled, segment-based path pattern.
//
// Segment forms:
//   - literal:  products
//   - variable: {id}      (exactly one non-empty segment)
//   - glob:     *.html    (one segment, shell glob within the segment)
//   - any:      **        (zero or more segments)
type pathPattern struct {
	raw      string
	segments []string
}

func compilePattern(raw string) (pathPattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return pathPattern{}, fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRule, raw)
	}

	segs := splitPath(raw)
	for _, seg := range segs {
		switch {
		case seg == "**":
		case strings.Contains(seg, "**"):
			return pathPattern{}, fmt.Errorf("%w: pattern %q: ** must be a whole segment", ErrInvalidRule, raw)
		case strings.HasPrefix(seg, "{") || strings.HasSuffix(seg, "}"):
			if !isVariable(seg) {
				return pathPattern{}, fmt.Errorf("%w: pattern %q: malformed variable %q", ErrInvalidRule, raw, seg)
			}
		case isGlob(seg):
			if _, err := path.Match(seg, ""); err != nil {
				return pathPattern{}, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRule, raw, err)
			}
		}
	}
	return pathPattern{raw: raw, segments: segs}, nil
}

// match reports whether the request path segments satisfy the pattern.
func (p pathPattern) match(segs []string) bool {
	return matchSegments(p.segments, segs)
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || !matchSegment(pat[0], segs[0]) {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

func matchSegment(pat, seg string) bool {
	switch {
	case isVariable(pat):
		return seg != ""
	case isGlob(pat):
		ok, _ := path.Match(pat, seg)
		return ok
	default:
		return pat == seg
	}
}

func isVariable(seg string) bool {
	return len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' &&
		!strings.ContainsAny(seg[1:len(seg)-1], "{}/")
}

func isGlob(seg string) bool {
	return strings.ContainsAny(seg, "*?[")
}

// CanonicalPath reports whether p is already in the form the policy matches
// against: rooted, free of dot segments and repeated slashes. A single
// trailing slash is allowed.
func CanonicalPath(p string) bool {
	if p == "" || p == "/" {
		return true
	}
	if !strings.HasPrefix(p, "/") {
		return false
	}
	return path.Clean(p) == strings.TrimSuffix(p, "/")
}

// splitPath cleans p and splits it into segments. "/" has no segments and
// a trailing slash is dropped, so "/products/" and "/products" are equal.
func splitPath(p string) []string {
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}
