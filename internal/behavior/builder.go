package behavior

import "caserun/internal/domain"

// Builder accumulates middleware around a base behavior.
type Builder[C Context] struct {
	behavior Behavior[C]
}

// NewBuilder starts a chain whose innermost behavior is base.
func NewBuilder[C Context](base Behavior[C]) *Builder[C] {
	return &Builder[C]{behavior: base}
}

// Behavior returns the composed behavior. Composing never executes anything.
func (b *Builder[C]) Behavior() Behavior[C] {
	return b.behavior
}

// Wrap makes mw the new outermost layer.
func (b *Builder[C]) Wrap(mw Middleware[C]) *Builder[C] {
	b.behavior = &wrapped[C]{outer: mw, inner: b.behavior}
	return b
}

// SetUpTearDown wraps the chain in a setup/teardown pair. When setup fails,
// neither the inner behavior nor teardown run and the setup failures become
// the failures of every case in scope. Otherwise teardown always runs after
// the inner behavior and its failures are appended.
func (b *Builder[C]) SetUpTearDown(setup, teardown Step[C]) *Builder[C] {
	return b.setUpTearDown(single(setup), single(teardown))
}

// SetUpTearDownMethods is SetUpTearDown where each step invokes every method
// of the context's class matched by the filter, in discovered order. All
// matched methods run; their combined failures form the step's failures.
func (b *Builder[C]) SetUpTearDownMethods(setup, teardown *domain.MethodFilter) *Builder[C] {
	return b.setUpTearDown(methods[C](setup), methods[C](teardown))
}

func (b *Builder[C]) setUpTearDown(setup, teardown func(C) domain.ExceptionList) *Builder[C] {
	return b.Wrap(func(ctx C, next func()) error {
		if failures := setup(ctx); failures.Any() {
			for _, err := range failures {
				ctx.Fail(err)
			}
			return nil
		}

		next()

		for _, err := range teardown(ctx) {
			ctx.Fail(err)
		}
		return nil
	})
}

func single[C Context](step Step[C]) func(C) domain.ExceptionList {
	return func(ctx C) domain.ExceptionList {
		if step == nil {
			return nil
		}
		var failures domain.ExceptionList
		failures.Add(domain.Catch(func() error { return step(ctx) }))
		return failures
	}
}

func methods[C Context](filter *domain.MethodFilter) func(C) domain.ExceptionList {
	return func(ctx C) domain.ExceptionList {
		class := ctx.Class()
		if filter == nil || class == nil {
			return nil
		}
		var failures domain.ExceptionList
		for _, m := range filter.Filter(class.Methods) {
			failures.AddRange(m.Call(ctx.Instance(), nil).Causes)
		}
		return failures
	}
}
