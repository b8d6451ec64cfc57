package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"caserun/internal/behavior"
	"caserun/internal/domain"
	"caserun/internal/logging"
)

// Policy decides how many instances of a test class are created.
type Policy int

const (
	// PerCase constructs and disposes a fresh instance around every case.
	PerCase Policy = iota
	// PerClass shares one instance across all cases of the class.
	PerClass
)

func (p Policy) String() string {
	switch p {
	case PerCase:
		return "per-case"
	case PerClass:
		return "per-class"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "per-case" or "per-class". An empty name is PerCase.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "per-case", "percase":
		return PerCase, nil
	case "per-class", "perclass":
		return PerClass, nil
	default:
		return PerCase, fmt.Errorf("unknown instance policy %q", name)
	}
}

// State is the lifecycle state of a class run.
type State int

const (
	NotStarted State = iota
	Constructing
	Executing
	Disposing
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Constructing:
		return "Constructing"
	case Executing:
		return "Executing"
	case Disposing:
		return "Disposing"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Execution is what a convention hands to the orchestrator.
type Execution struct {
	Policy  Policy
	Fixture behavior.Behavior[*Fixture]
	Case    behavior.Behavior[*CaseContext]
}

// ClassResult is the outcome of running one class.
type ClassResult struct {
	Class *domain.Class
	Cases []*domain.Case
	// Failures holds failures that could not be attributed to any case.
	Failures domain.ExceptionList
	Duration time.Duration
}

// Passed counts the passing cases.
func (r ClassResult) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Passed() {
			n++
		}
	}
	return n
}

// Failed counts the failing cases.
func (r ClassResult) Failed() int {
	return len(r.Cases) - r.Passed()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCapture makes every case collect output through c.
func WithCapture(c Capture) Option {
	return func(o *Orchestrator) {
		o.capture = c
	}
}

// WithObserver reports every state transition to fn.
func WithObserver(fn func(class *domain.Class, state State)) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// Orchestrator drives construction, execution and disposal of test classes.
// It is synchronous and never returns an incomplete result.
type Orchestrator struct {
	capture  Capture
	observer func(class *domain.Class, state State)
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every case of class under exec. Every case in cases is
// complete when Run returns.
func (o *Orchestrator) Run(class *domain.Class, cases []*domain.Case, exec Execution) ClassResult {
	if exec.Fixture == nil {
		exec.Fixture = ExecuteCases
	}
	if exec.Case == nil {
		exec.Case = InvokeMethod
	}

	result := ClassResult{Class: class, Cases: cases}
	start := time.Now()
	o.transition(class, NotStarted)

	switch exec.Policy {
	case PerClass:
		o.runPerClass(class, cases, exec, &result)
	default:
		o.runPerCase(class, cases, exec)
	}

	o.transition(class, Done)
	result.Duration = time.Since(start)
	return result
}

func (o *Orchestrator) runPerCase(class *domain.Class, cases []*domain.Case, exec Execution) {
	for _, c := range cases {
		o.transition(class, Constructing)
		instance, err := class.Construct()
		if err != nil {
			logging.Warn("Lifecycle", err, "constructing %s for %s failed", class.Name, c.Name)
			c.Fail(err)
			if instance != nil {
				o.transition(class, Disposing)
				c.Fail(class.Release(instance))
			}
			continue
		}

		o.transition(class, Executing)
		fixture := o.fixture(class, instance, exec, []*domain.Case{c})
		o.execute(exec.Fixture, fixture)

		o.transition(class, Disposing)
		if err := class.Release(instance); err != nil {
			logging.Warn("Lifecycle", err, "disposing %s after %s failed", class.Name, c.Name)
			c.Fail(err)
		}
	}
}

func (o *Orchestrator) runPerClass(class *domain.Class, cases []*domain.Case, exec Execution, result *ClassResult) {
	o.transition(class, Constructing)
	instance, err := class.Construct()
	if err != nil {
		logging.Warn("Lifecycle", err, "constructing %s failed", class.Name)
		for _, c := range cases {
			c.Fail(err)
		}
		if len(cases) == 0 {
			result.Failures.Add(err)
		}
		if instance != nil {
			o.transition(class, Disposing)
			if err := class.Release(instance); err != nil {
				for _, c := range cases {
					c.Fail(err)
				}
			}
		}
		return
	}

	o.transition(class, Executing)
	fixture := o.fixture(class, instance, exec, cases)
	o.execute(exec.Fixture, fixture)

	o.transition(class, Disposing)
	err = class.Release(instance)
	if err == nil {
		return
	}
	logging.Warn("Lifecycle", err, "disposing %s failed", class.Name)

	switch last := fixture.LastExecuted(); {
	case last != nil:
		last.Fail(err)
	case len(cases) > 0:
		fixture.Fail(err)
	default:
		result.Failures.Add(err)
	}
}

func (o *Orchestrator) fixture(class *domain.Class, instance any, exec Execution, cases []*domain.Case) *Fixture {
	fixture := NewFixture(class, instance, exec.Case, cases)
	fixture.capture = o.capture
	return fixture
}

// execute runs the fixture-level chain. Anything escaping it fails every
// case of the fixture.
func (o *Orchestrator) execute(b behavior.Behavior[*Fixture], fixture *Fixture) {
	err := domain.Catch(func() error {
		b.Execute(fixture)
		return nil
	})
	if err != nil {
		fixture.Fail(err)
	}
}

func (o *Orchestrator) transition(class *domain.Class, state State) {
	logging.Debug("Lifecycle", "%s: %s", class.Name, state)
	if o.observer != nil {
		o.observer(class, state)
	}
}
