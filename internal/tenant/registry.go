// Package tenant holds the authoritative set of tenant codes allowed to use
// the API. A tenant code is an opaque, case-insensitive identifier; its
// canonical (storage) form is upper-case.
package tenant

import "strings"

// Registry answers membership queries against a fixed allow-list of codes.
type Registry struct {
	set   map[string]struct{}
	codes []string
}

// NewRegistry builds a registry from raw codes. Codes are canonicalized and
// duplicates (after canonicalization) collapse into one entry.
func NewRegistry(codes []string) *Registry {
	r := &Registry{set: make(map[string]struct{}, len(codes))}
	for _, raw := range codes {
		code := Canonical(raw)
		if code == "" {
			continue
		}
		if _, dup := r.set[code]; dup {
			continue
		}
		r.set[code] = struct{}{}
		r.codes = append(r.codes, code)
	}
	return r
}

// Contains reports whether code is allow-listed, ignoring case.
func (r *Registry) Contains(code string) bool {
	_, ok := r.set[Canonical(code)]
	return ok
}

// Codes returns the canonical codes in registration order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// Canonical normalizes a tenant code to its storage form.
func Canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
