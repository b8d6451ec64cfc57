package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters suite files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters suite files by name pattern using wildcard matching.
// The pattern is tried against both the file name and the name without its
// suite suffix, so "users", "*user*" and "users.suite.yaml" all select
// users.suite.yaml.
func (f *Filter) FilterByName(suites []string, pattern string) []string {
	if pattern == "" {
		return suites
	}

	var filtered []string
	for _, suite := range suites {
		base := filepath.Base(suite)
		if f.Matches(base, pattern) || f.Matches(stem(base), pattern) {
			filtered = append(filtered, suite)
		}
	}
	return filtered
}

// Matches reports whether name matches pattern. Patterns with wildcards
// use filepath.Match, falling back to requiring every literal part in
// order; patterns without wildcards match as a case-insensitive substring.
func (f *Filter) Matches(name, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// Flexible match for patterns like "*Payment*": every non-empty part
	// must appear, in order
	rest := name
	hasPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" || strings.Contains(part, "?") {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		hasPart = true
	}
	return hasPart
}

func stem(name string) string {
	for _, suffix := range SuiteSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
