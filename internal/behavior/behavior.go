// Package behavior composes units of execution out of wrapping middleware.
//
// A Behavior executes over a Context: either a whole fixture, responsible for
// iterating its cases, or a single case. A Builder starts from a base
// behavior and layers middleware around it, the most recently added layer
// being the outermost one.
package behavior

import "caserun/internal/domain"

// Context is the unit of work a behavior runs over.
type Context interface {
	// Fail attributes err to every case in scope.
	Fail(err error)
	// Class is the test class the context belongs to.
	Class() *domain.Class
	// Instance is the live test class instance.
	Instance() any
}

// Behavior executes over a context. Failures are recorded on the context,
// never returned.
type Behavior[C Context] interface {
	Execute(ctx C)
}

// Func adapts a function to Behavior.
type Func[C Context] func(ctx C)

func (f Func[C]) Execute(ctx C) {
	f(ctx)
}

// Middleware wraps an inner behavior. It decides whether, when and how many
// times next runs. Returning an error, or panicking, is a catastrophic
// failure attributed to every case in the context's scope.
type Middleware[C Context] func(ctx C, next func()) error

// Step is one setup or teardown action. A returned error or a panic counts
// as a failure of the step.
type Step[C Context] func(ctx C) error

type wrapped[C Context] struct {
	outer Middleware[C]
	inner Behavior[C]
}

func (w *wrapped[C]) Execute(ctx C) {
	err := domain.Catch(func() error {
		return w.outer(ctx, func() { w.inner.Execute(ctx) })
	})
	if err != nil {
		ctx.Fail(err)
	}
}
