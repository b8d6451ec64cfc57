package domain

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// ExceptionList is an ordered list of failure causes. The first entry is the
// primary cause; later entries are secondary failures.
type ExceptionList []error

// Add appends err, ignoring nil.
func (l *ExceptionList) Add(err error) {
	if err == nil {
		return
	}
	*l = append(*l, err)
}

// AddRange appends every error in other.
func (l *ExceptionList) AddRange(other ExceptionList) {
	for _, err := range other {
		l.Add(err)
	}
}

// Any reports whether the list holds at least one failure.
func (l ExceptionList) Any() bool {
	return len(l) > 0
}

// Primary returns the root cause, or nil for an empty list.
func (l ExceptionList) Primary() error {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// Secondary returns every failure recorded after the primary one.
func (l ExceptionList) Secondary() []error {
	if len(l) < 2 {
		return nil
	}
	return l[1:]
}

// Messages returns the message of every failure, in order.
func (l ExceptionList) Messages() []string {
	messages := make([]string, len(l))
	for i, err := range l {
		messages[i] = err.Error()
	}
	return messages
}

// Summary renders the composite failure message: the primary message
// followed by one indented line per secondary failure.
func (l ExceptionList) Summary() string {
	if len(l) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(l[0].Error())
	for _, err := range l[1:] {
		b.WriteString("\n    Secondary Failure: ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Outcome is the result of running one step: either a value or the causes
// that made the step fail.
type Outcome struct {
	Value  any
	Causes ExceptionList
}

// Ok is a successful outcome carrying value.
func Ok(value any) Outcome {
	return Outcome{Value: value}
}

// Failed is a failed outcome carrying the given causes.
func Failed(causes ...error) Outcome {
	var list ExceptionList
	for _, c := range causes {
		list.Add(c)
	}
	return Outcome{Causes: list}
}

// Failed reports whether the outcome carries any causes.
func (o Outcome) Failed() bool {
	return o.Causes.Any()
}

// PreservedError marks an error that was already captured and is only being
// re-raised to unwind through intermediate code.
type PreservedError struct {
	Original error
}

func (e *PreservedError) Error() string {
	return e.Original.Error()
}

func (e *PreservedError) Unwrap() error {
	return e.Original
}

// Preserve wraps err in a PreservedError. Preserving an already preserved
// error returns it unchanged.
func Preserve(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*PreservedError); ok {
		return err
	}
	return &PreservedError{Original: err}
}

// Abort stops the running test method by panicking with err. The case ends
// up failed with err itself as the recorded cause.
func Abort(err error) {
	panic(Preserve(err))
}

// PanicError is recorded when user code panics with a value that is not an
// error, or with a runtime error such as a nil dereference.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Catch runs fn and converts a panic into an error. Panics carrying an error
// return that error unchanged, except runtime errors which keep their stack.
func Catch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return fn()
}

func recovered(r any) error {
	if _, ok := r.(runtime.Error); ok {
		return &PanicError{Value: r, Stack: debug.Stack()}
	}
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r, Stack: debug.Stack()}
}
