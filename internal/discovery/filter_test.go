package discovery

import (
	"testing"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	suites := []string{
		"suites/users.suite.yaml",
		"suites/payments.suite.yaml",
		"suites/orders.suite.yml",
		"suites/payment_refunds.suite.yaml",
	}

	tests := []struct {
		name     string
		suites   []string
		pattern  string
		expected int // Expected number of matches
	}{
		{name: "empty pattern returns all", suites: suites, pattern: "", expected: 4},
		{name: "exact file name", suites: suites, pattern: "users.suite.yaml", expected: 1},
		{name: "wildcard pattern matches stem", suites: suites, pattern: "order*", expected: 1},
		{name: "wildcard pattern matches substring", suites: suites, pattern: "*payment*", expected: 2},
		{name: "simple contains match is case insensitive", suites: suites, pattern: "USERS", expected: 1},
		{name: "no matches", suites: suites, pattern: "*nonexistent*", expected: 0},
		{name: "parts must appear in order", suites: suites, pattern: "*refunds*payment*", expected: 0},
		{name: "full path with wildcard", suites: []string{"/path/to/users.suite.yaml", "/path/to/x.suite.yaml"}, pattern: "*users", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.suites, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d: %v", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty suite list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "*.suite.yaml")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("pattern with multiple wildcards", func(t *testing.T) {
		suites := []string{"user_service.suite.yaml", "user_controller.suite.yaml", "payment.suite.yaml"}
		result := filter.FilterByName(suites, "*user*suite*")
		if len(result) != 2 {
			t.Errorf("expected 2 matches, got %d", len(result))
		}
	})
}
