package lifecycle

import (
	"time"

	"caserun/internal/behavior"
	"caserun/internal/domain"
)

// Fixture is one live test class instance bound to its cases. The instance
// is only valid until the orchestrator disposes it.
type Fixture struct {
	class        *domain.Class
	instance     any
	caseBehavior behavior.Behavior[*CaseContext]
	cases        []*domain.Case
	capture      Capture

	lastExecuted *domain.Case
}

// NewFixture binds instance and cases. A nil caseBehavior invokes each
// case's method directly.
func NewFixture(class *domain.Class, instance any, caseBehavior behavior.Behavior[*CaseContext], cases []*domain.Case) *Fixture {
	if caseBehavior == nil {
		caseBehavior = InvokeMethod
	}
	return &Fixture{
		class:        class,
		instance:     instance,
		caseBehavior: caseBehavior,
		cases:        cases,
	}
}

func (f *Fixture) Class() *domain.Class {
	return f.class
}

func (f *Fixture) Instance() any {
	return f.instance
}

// Cases returns the fixture's cases in execution order.
func (f *Fixture) Cases() []*domain.Case {
	return f.cases
}

// Fail attributes err to every case of the fixture.
func (f *Fixture) Fail(err error) {
	for _, c := range f.cases {
		c.Fail(err)
	}
}

// LastExecuted returns the case whose case-level chain started most
// recently, or nil when none ran.
func (f *Fixture) LastExecuted() *domain.Case {
	return f.lastExecuted
}

// RunCase runs the case-level chain for c against the fixture's instance,
// recording its duration and captured output.
func (f *Fixture) RunCase(c *domain.Case) {
	f.lastExecuted = c
	ctx := &CaseContext{Case: c, instance: f.instance}

	if f.capture != nil {
		f.capture.Start()
	}
	start := time.Now()

	err := domain.Catch(func() error {
		f.caseBehavior.Execute(ctx)
		return nil
	})
	if err != nil {
		c.Fail(err)
	}

	c.Duration += time.Since(start)
	if f.capture != nil {
		c.Output += f.capture.Stop()
	}
}

// CaseContext is the context of the case-level chain: one case and the live
// instance it runs against.
type CaseContext struct {
	Case     *domain.Case
	instance any
}

// NewCaseContext binds c to instance.
func NewCaseContext(c *domain.Case, instance any) *CaseContext {
	return &CaseContext{Case: c, instance: instance}
}

func (c *CaseContext) Class() *domain.Class {
	return c.Case.Class
}

func (c *CaseContext) Instance() any {
	return c.instance
}

// Fail attributes err to the case.
func (c *CaseContext) Fail(err error) {
	c.Case.Fail(err)
}

// ExecuteCases is the default fixture-level behavior: run every case's
// case-level chain in order.
var ExecuteCases behavior.Behavior[*Fixture] = behavior.Func[*Fixture](func(f *Fixture) {
	for _, c := range f.cases {
		f.RunCase(c)
	}
})

// InvokeMethod is the default case-level behavior: call the case's method
// with its parameters. A failure is recorded on the case, never re-raised.
var InvokeMethod behavior.Behavior[*CaseContext] = behavior.Func[*CaseContext](func(ctx *CaseContext) {
	c := ctx.Case
	outcome := c.Method.Call(ctx.instance, c.Parameters)
	if outcome.Failed() {
		for _, err := range outcome.Causes {
			c.Fail(err)
		}
		return
	}
	c.ReturnValue = outcome.Value
})
