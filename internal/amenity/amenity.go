// Package amenity detects gym and pool presence in free-text amenity
// lists. Matching is case-insensitive substring matching; non-string
// entries are ignored without error.
package amenity

import "strings"

var gymTerms = []string{
	"gym",
	"fitness center",
	"fitness centre",
	"fitness room",
	"health club",
	"fitness",
	"workout room",
	"wellness center",
	"wellness centre",
}

// HasGym reports whether any entry matches a gym synonym.
func HasGym(list []string) bool {
	for _, a := range list {
		s := strings.ToLower(a)
		for _, g := range gymTerms {
			if strings.Contains(s, g) {
				return true
			}
		}
	}
	return false
}

// HasPool reports whether any entry mentions a pool.
func HasPool(list []string) bool {
	for _, a := range list {
		if strings.Contains(strings.ToLower(a), "pool") {
			return true
		}
	}
	return false
}

// HasIndoorPool is the stricter variant: the literal phrase, or both
// "indoor" and "pool" tokens within the same entry.
func HasIndoorPool(list []string) bool {
	for _, a := range list {
		s := strings.ToLower(a)
		if strings.Contains(s, "indoor pool") {
			return true
		}
		if strings.Contains(s, "indoor") && strings.Contains(s, "pool") {
			return true
		}
	}
	return false
}

// Coerce accepts the shapes providers actually send for an amenity list:
// []string, []any, a single bare string, or nil.
func Coerce(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Dedupe removes duplicates case-insensitively, preserving first-seen
// order and original casing.
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, a := range list {
		k := strings.ToLower(strings.TrimSpace(a))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
