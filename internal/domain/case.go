package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Case is a single call to a test method, together with the mutable state
// collected while it runs.
type Case struct {
	Name       string
	Class      *Class
	Method     *Method
	Parameters []any // nil for zero-argument methods

	// ReturnValue holds whatever the method invocation returned.
	ReturnValue any
	Duration    time.Duration
	Output      string

	exceptions ExceptionList
}

// NewCase creates a case for the given method. An empty parameter list is
// treated as a no-parameter case.
func NewCase(class *Class, method *Method, parameters ...any) *Case {
	if len(parameters) == 0 {
		parameters = nil
	}
	return &Case{
		Name:       CaseName(class, method, parameters),
		Class:      class,
		Method:     method,
		Parameters: parameters,
	}
}

// Exceptions returns every failure that contributed to this case failing.
// The first entry is the primary cause, later entries are secondary. The
// returned list is a copy.
func (c *Case) Exceptions() ExceptionList {
	return slices.Clone(c.exceptions)
}

// Passed reports whether the case has no recorded failures.
func (c *Case) Passed() bool {
	return len(c.exceptions) == 0
}

// Fail records err against the case. A preserved error is unwrapped to the
// error it carries so the list only ever holds the original causes.
func (c *Case) Fail(err error) {
	if err == nil {
		return
	}
	if preserved, ok := err.(*PreservedError); ok {
		err = preserved.Original
	}
	c.exceptions = append(c.exceptions, err)
}

// ClearExceptions resets the case to a passing state.
func (c *Case) ClearExceptions() {
	c.exceptions = nil
}

// CaseName builds the display name for a case: Class.Method, followed by
// the formatted parameters when there are any.
func CaseName(class *Class, method *Method, parameters []any) string {
	var b strings.Builder
	if class != nil {
		b.WriteString(class.Name)
		b.WriteString(".")
	}
	if method != nil {
		b.WriteString(method.Name)
	}
	if len(parameters) == 0 {
		return b.String()
	}

	formatted := make([]string, len(parameters))
	for i, p := range parameters {
		formatted[i] = formatParameter(p)
	}
	b.WriteString("(")
	b.WriteString(strings.Join(formatted, ", "))
	b.WriteString(")")
	return b.String()
}

func formatParameter(p any) string {
	switch v := p.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
