package domain

import (
	"path"
	"strings"
)

// MethodFilter selects methods by a conjunction of conditions. A filter with
// no conditions matches every method.
type MethodFilter struct {
	conditions []func(*Method) bool
}

// NewMethodFilter returns an empty filter.
func NewMethodFilter() *MethodFilter {
	return &MethodFilter{}
}

// Where adds a condition.
func (f *MethodFilter) Where(condition func(*Method) bool) *MethodFilter {
	f.conditions = append(f.conditions, condition)
	return f
}

func (f *MethodFilter) NameStartsWith(prefixes ...string) *MethodFilter {
	return f.Where(func(m *Method) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(m.Name, p) {
				return true
			}
		}
		return false
	})
}

func (f *MethodFilter) NameEndsWith(suffixes ...string) *MethodFilter {
	return f.Where(func(m *Method) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(m.Name, s) {
				return true
			}
		}
		return false
	})
}

// NameMatches keeps methods whose name matches any of the wildcard patterns
// (* and ? as in path.Match).
func (f *MethodFilter) NameMatches(patterns ...string) *MethodFilter {
	return f.Where(func(m *Method) bool {
		for _, p := range patterns {
			if ok, err := path.Match(p, m.Name); err == nil && ok {
				return true
			}
		}
		return false
	})
}

func (f *MethodFilter) ZeroParameters() *MethodFilter {
	return f.Where(func(m *Method) bool {
		return len(m.ParamTypes) == 0
	})
}

// Matches reports whether m satisfies every condition.
func (f *MethodFilter) Matches(m *Method) bool {
	for _, condition := range f.conditions {
		if !condition(m) {
			return false
		}
	}
	return true
}

// Filter returns the matching methods, keeping their order.
func (f *MethodFilter) Filter(methods []*Method) []*Method {
	var matched []*Method
	for _, m := range methods {
		if f.Matches(m) {
			matched = append(matched, m)
		}
	}
	return matched
}
