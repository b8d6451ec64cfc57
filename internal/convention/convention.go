// Package convention holds the user policy driving a run: which methods are
// cases, how instances are created and how fixtures and cases are wrapped.
package convention

import (
	"caserun/internal/behavior"
	"caserun/internal/domain"
	"caserun/internal/lifecycle"
)

// Convention is the policy object handed to the engine.
type Convention struct {
	// Cases selects which methods of a class are test cases.
	Cases *domain.MethodFilter
	// Parameters supplies the parameter sets for a method. A method with no
	// parameter sets produces a single no-parameter case.
	Parameters func(m *domain.Method) [][]any

	ClassExecution *ClassExecution
	CaseExecution  *CaseExecution

	Options Options
}

// New returns a convention that treats every method as a case, creates an
// instance per case and applies no wrapping.
func New() *Convention {
	return &Convention{
		Cases:          domain.NewMethodFilter(),
		ClassExecution: newClassExecution(),
		CaseExecution:  newCaseExecution(),
		Options:        Options{},
	}
}

// Execution returns the composed behaviors and instance policy.
func (c *Convention) Execution() lifecycle.Execution {
	return lifecycle.Execution{
		Policy:  c.ClassExecution.Policy(),
		Fixture: c.ClassExecution.Behavior(),
		Case:    c.CaseExecution.Behavior(),
	}
}

// CasesOf builds the cases of class in method order.
func (c *Convention) CasesOf(class *domain.Class) []*domain.Case {
	var cases []*domain.Case
	for _, m := range c.Cases.Filter(class.Methods) {
		var sets [][]any
		if c.Parameters != nil {
			sets = c.Parameters(m)
		}
		if len(sets) == 0 {
			cases = append(cases, domain.NewCase(class, m))
			continue
		}
		for _, params := range sets {
			cases = append(cases, domain.NewCase(class, m, params...))
		}
	}
	return cases
}

// ClassExecution configures the fixture-level chain and instance policy.
type ClassExecution struct {
	policy  lifecycle.Policy
	builder *behavior.Builder[*lifecycle.Fixture]
}

func newClassExecution() *ClassExecution {
	return &ClassExecution{
		policy:  lifecycle.PerCase,
		builder: behavior.NewBuilder(lifecycle.ExecuteCases),
	}
}

func (e *ClassExecution) CreateInstancePerCase() *ClassExecution {
	e.policy = lifecycle.PerCase
	return e
}

func (e *ClassExecution) CreateInstancePerClass() *ClassExecution {
	e.policy = lifecycle.PerClass
	return e
}

// UsePolicy sets the instance policy directly.
func (e *ClassExecution) UsePolicy(p lifecycle.Policy) *ClassExecution {
	e.policy = p
	return e
}

func (e *ClassExecution) Wrap(mw behavior.Middleware[*lifecycle.Fixture]) *ClassExecution {
	e.builder.Wrap(mw)
	return e
}

func (e *ClassExecution) SetUpTearDown(setup, teardown behavior.Step[*lifecycle.Fixture]) *ClassExecution {
	e.builder.SetUpTearDown(setup, teardown)
	return e
}

func (e *ClassExecution) SetUpTearDownMethods(setup, teardown *domain.MethodFilter) *ClassExecution {
	e.builder.SetUpTearDownMethods(setup, teardown)
	return e
}

func (e *ClassExecution) Policy() lifecycle.Policy {
	return e.policy
}

func (e *ClassExecution) Behavior() behavior.Behavior[*lifecycle.Fixture] {
	return e.builder.Behavior()
}

// CaseExecution configures the case-level chain.
type CaseExecution struct {
	builder *behavior.Builder[*lifecycle.CaseContext]
}

func newCaseExecution() *CaseExecution {
	return &CaseExecution{builder: behavior.NewBuilder(lifecycle.InvokeMethod)}
}

func (e *CaseExecution) Wrap(mw behavior.Middleware[*lifecycle.CaseContext]) *CaseExecution {
	e.builder.Wrap(mw)
	return e
}

func (e *CaseExecution) SetUpTearDown(setup, teardown behavior.Step[*lifecycle.CaseContext]) *CaseExecution {
	e.builder.SetUpTearDown(setup, teardown)
	return e
}

func (e *CaseExecution) SetUpTearDownMethods(setup, teardown *domain.MethodFilter) *CaseExecution {
	e.builder.SetUpTearDownMethods(setup, teardown)
	return e
}

func (e *CaseExecution) Behavior() behavior.Behavior[*lifecycle.CaseContext] {
	return e.builder.Behavior()
}
