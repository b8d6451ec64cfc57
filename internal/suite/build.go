package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"caserun/internal/convention"
	"caserun/internal/domain"
	"caserun/internal/execution"
)

// Provisioner creates and drops scratch databases.
type Provisioner interface {
	Recreate(ctx context.Context, name string) error
	Drop(ctx context.Context, name string) error
}

// Environment is everything a built class needs to run its commands.
type Environment struct {
	Context context.Context
	Runner  *execution.Runner
	// BaseEnv is the starting environment of every command, usually
	// os.Environ() after the project's .env was loaded.
	BaseEnv []string
	Options convention.Options
	// OptionPrefix prefixes option names exported to commands.
	OptionPrefix string
	// Output receives everything commands print.
	Output io.Writer

	Database     Provisioner
	DatabaseName string
}

// Instance is a live suite instance. Every command of the instance runs
// with Env.
type Instance struct {
	ID       int
	Env      []string
	Database string
}

// Built is a suite ready to hand to the orchestrator.
type Built struct {
	File       *File
	Class      *domain.Class
	Convention *convention.Convention
	Cases      []*domain.Case
}

// Build turns the suite into a class, its convention and its cases. Build
// itself runs no commands.
func (f *File) Build(env Environment) (*Built, error) {
	if env.Context == nil {
		env.Context = context.Background()
	}
	if env.Runner == nil {
		env.Runner = execution.NewRunner("", nil)
	}
	if f.Database && env.Database == nil {
		return nil, fmt.Errorf("suite %s needs a database but no database is configured", f.Class)
	}

	b := &builder{file: f, env: env}
	class := &domain.Class{
		Name:    f.Class,
		New:     b.construct,
		Dispose: b.dispose,
	}
	for _, spec := range f.Methods {
		class.Methods = append(class.Methods, b.method(spec))
	}

	conv := convention.New()
	conv.Options = env.Options
	conv.Cases = domain.NewMethodFilter().NameMatches(f.CasePatterns()...)
	conv.Parameters = b.parameters
	conv.ClassExecution.UsePolicy(f.Policy())
	if fc := f.Convention; len(fc.FixtureSetUp)+len(fc.FixtureTearDown) > 0 {
		conv.ClassExecution.SetUpTearDownMethods(patternFilter(fc.FixtureSetUp), patternFilter(fc.FixtureTearDown))
	}
	if fc := f.Convention; len(fc.SetUp)+len(fc.TearDown) > 0 {
		conv.CaseExecution.SetUpTearDownMethods(patternFilter(fc.SetUp), patternFilter(fc.TearDown))
	}

	return &Built{
		File:       f,
		Class:      class,
		Convention: conv,
		Cases:      conv.CasesOf(class),
	}, nil
}

func patternFilter(patterns []string) *domain.MethodFilter {
	if len(patterns) == 0 {
		return nil
	}
	return domain.NewMethodFilter().NameMatches(patterns...)
}

type builder struct {
	file      *File
	env       Environment
	instances atomic.Int64
}

func (b *builder) parameters(m *domain.Method) [][]any {
	for _, spec := range b.file.Methods {
		if spec.Name == m.Name {
			return spec.Parameters
		}
	}
	return nil
}

func (b *builder) method(spec MethodSpec) *domain.Method {
	m := &domain.Method{Name: spec.Name}
	if len(spec.Parameters) > 0 {
		for _, p := range spec.Parameters[0] {
			m.ParamTypes = append(m.ParamTypes, fmt.Sprintf("%T", p))
		}
	}
	m.Invoke = func(instance any, args []any) (any, error) {
		inst, ok := instance.(*Instance)
		if !ok {
			return nil, fmt.Errorf("%s.%s: unexpected instance %T", b.file.Class, spec.Name, instance)
		}
		result := b.run(spec.Run, inst.Env, commandArgs(args))
		if result.Err != nil {
			return nil, result.Err
		}
		return strings.TrimSpace(result.Output), nil
	}
	return m
}

func (b *builder) construct() (any, error) {
	inst := &Instance{ID: int(b.instances.Add(1))}

	if b.file.Database {
		if err := b.env.Database.Recreate(b.env.Context, b.env.DatabaseName); err != nil {
			return nil, fmt.Errorf("prepare database: %w", err)
		}
		inst.Database = b.env.DatabaseName
	}
	inst.Env = b.environ(inst)

	if b.file.Construct == "" {
		return inst, nil
	}
	if result := b.run(b.file.Construct, inst.Env, nil); result.Err != nil {
		err := fmt.Errorf("construct: %w", result.Err)
		if inst.Database != "" {
			err = errors.Join(err, b.env.Database.Drop(b.env.Context, inst.Database))
		}
		return nil, err
	}
	return inst, nil
}

func (b *builder) dispose(instance any) error {
	inst, ok := instance.(*Instance)
	if !ok {
		return fmt.Errorf("%s: unexpected instance %T", b.file.Class, instance)
	}

	var errs []error
	if b.file.Dispose != "" {
		if result := b.run(b.file.Dispose, inst.Env, nil); result.Err != nil {
			errs = append(errs, fmt.Errorf("dispose: %w", result.Err))
		}
	}
	if inst.Database != "" {
		if err := b.env.Database.Drop(b.env.Context, inst.Database); err != nil {
			errs = append(errs, fmt.Errorf("drop database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (b *builder) run(script string, env []string, args []string) execution.Result {
	return b.env.Runner.Run(b.env.Context, execution.Command{
		Script: script,
		Args:   args,
		Dir:    b.file.Dir(),
		Env:    env,
		Output: b.env.Output,
	})
}

// environ assembles the command environment. Later entries override
// earlier ones.
func (b *builder) environ(inst *Instance) []string {
	env := append([]string(nil), b.env.BaseEnv...)

	keys := make([]string, 0, len(b.file.Env))
	for k := range b.file.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+b.file.Env[k])
	}

	env = append(env, b.env.Options.Env(b.env.OptionPrefix)...)
	env = append(env,
		"CASERUN_CLASS="+b.file.Class,
		"CASERUN_INSTANCE="+strconv.Itoa(inst.ID),
	)
	if inst.Database != "" {
		env = append(env, "DB_DATABASE="+inst.Database)
	}
	return env
}

func commandArgs(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			continue
		}
		out[i] = fmt.Sprint(a)
	}
	return out
}
