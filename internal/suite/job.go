package suite

import (
	"context"

	"caserun/internal/convention"
	"caserun/internal/domain"
	"caserun/internal/execution"
	"caserun/internal/lifecycle"
	"caserun/internal/logging"
)

// JobSettings are shared by every suite job of a run.
type JobSettings struct {
	Runner       *execution.Runner
	BaseEnv      []string
	Options      convention.Options
	OptionPrefix string
	Database     Provisioner
	// DatabaseName names the scratch database used by a worker.
	DatabaseName func(workerID int) string
	Observer     func(class *domain.Class, state lifecycle.State)
	// Select keeps the cases whose name it accepts. Nil keeps every case.
	Select func(caseName string) bool
}

// Job runs one suite file on a worker.
type Job struct {
	file     *File
	settings JobSettings
}

// NewJob creates a Job for a loaded suite file.
func NewJob(file *File, settings JobSettings) *Job {
	return &Job{file: file, settings: settings}
}

func (j *Job) Name() string {
	return j.file.Class
}

// Run builds the suite for workerID and drives it through the
// orchestrator. Each run gets its own output capture.
func (j *Job) Run(ctx context.Context, workerID int) execution.JobResult {
	result := execution.JobResult{Name: j.file.Class, SuiteFile: j.file.Path}

	capture := lifecycle.NewBufferCapture()
	env := Environment{
		Context:      ctx,
		Runner:       j.settings.Runner,
		BaseEnv:      j.settings.BaseEnv,
		Options:      j.settings.Options,
		OptionPrefix: j.settings.OptionPrefix,
		Output:       capture,
		Database:     j.settings.Database,
	}
	if j.settings.DatabaseName != nil {
		env.DatabaseName = j.settings.DatabaseName(workerID)
	}

	built, err := j.file.Build(env)
	if err != nil {
		logging.Error("Suite", err, "building %s failed", j.file.Path)
		result.Err = err
		return result
	}

	opts := []lifecycle.Option{lifecycle.WithCapture(capture)}
	if j.settings.Observer != nil {
		opts = append(opts, lifecycle.WithObserver(j.settings.Observer))
	}
	cases := selectCases(built.Cases, j.settings.Select)
	result.Class = lifecycle.NewOrchestrator(opts...).Run(built.Class, cases, built.Convention.Execution())
	logging.Info("Suite", "%s: %d passed, %d failed", built.Class.Name, result.Class.Passed(), result.Class.Failed())
	return result
}

// CaseNames lists the names of the cases the suite would run.
func (f *File) CaseNames() ([]string, error) {
	built, err := f.Build(Environment{Database: noDatabase{}})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(built.Cases))
	for i, c := range built.Cases {
		names[i] = c.Name
	}
	return names, nil
}

func selectCases(cases []*domain.Case, accept func(string) bool) []*domain.Case {
	if accept == nil {
		return cases
	}
	var selected []*domain.Case
	for _, c := range cases {
		if accept(c.Name) {
			selected = append(selected, c)
		}
	}
	return selected
}

// noDatabase satisfies Provisioner for builds that never construct.
type noDatabase struct{}

func (noDatabase) Recreate(context.Context, string) error { return nil }
func (noDatabase) Drop(context.Context, string) error     { return nil }

// brokenJob reports a suite file that could not be loaded.
type brokenJob struct {
	path string
	err  error
}

// NewBrokenJob returns a Job that fails immediately with err, so a bad
// suite file is reported alongside the others instead of aborting the run.
func NewBrokenJob(path string, err error) execution.Job {
	return brokenJob{path: path, err: err}
}

func (j brokenJob) Name() string {
	return j.path
}

func (j brokenJob) Run(ctx context.Context, workerID int) execution.JobResult {
	return execution.JobResult{Name: j.path, SuiteFile: j.path, Err: j.err}
}
