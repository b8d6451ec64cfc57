package execution

import (
	"context"
	"time"

	"caserun/internal/domain"
	"caserun/internal/lifecycle"
)

// Job is one class run scheduled on a worker
type Job interface {
	Name() string
	Run(ctx context.Context, workerID int) JobResult
}

// JobResult is the outcome of a Job
type JobResult struct {
	Name      string
	SuiteFile string
	Class     lifecycle.ClassResult
	// Err is set when the job could not run its class at all
	Err error
	// NotRun is set when the job was never started, e.g. after fail-fast
	NotRun bool
}

// Failed reports whether anything in the job failed
func (r JobResult) Failed() bool {
	return r.Err != nil || r.Class.Failed() > 0 || r.Class.Failures.Any()
}

// Executor executes jobs and returns their results in job order
type Executor interface {
	Execute(ctx context.Context, jobs []Job) ([]JobResult, time.Duration)
}

// Summarize turns job results into the stored run output.
func Summarize(runID string, results []JobResult, duration time.Duration, workers int) domain.RunOutput {
	meta := domain.RunMeta{
		RunID:           runID,
		TotalClasses:    len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	var details []domain.CaseFailure
	unattributed := false
	for _, r := range results {
		if r.NotRun {
			meta.NotRunClasses = append(meta.NotRunClasses, r.Name)
			continue
		}
		for _, c := range r.Class.Cases {
			meta.TotalCases++
			if c.Passed() {
				meta.PassedCases++
				continue
			}
			meta.FailedCases++
			details = append(details, caseFailure(r, c))
		}

		var classErrs domain.ExceptionList
		classErrs.Add(r.Err)
		classErrs.AddRange(r.Class.Failures)
		if classErrs.Any() {
			unattributed = true
			details = append(details, domain.CaseFailure{
				CaseName:  r.Name,
				ClassName: r.Name,
				SuiteFile: r.SuiteFile,
				Message:   classErrs.Primary().Error(),
				Secondary: classErrs.Messages()[1:],
				Duration:  r.Class.Duration.Seconds(),
			})
		}
	}

	meta.State = domain.StateOf(meta.TotalCases, meta.FailedCases)
	if unattributed {
		meta.State = domain.StateFailure
	}

	return domain.RunOutput{Meta: meta, Details: details}
}

func caseFailure(r JobResult, c *domain.Case) domain.CaseFailure {
	exceptions := c.Exceptions()
	return domain.CaseFailure{
		CaseName:  c.Name,
		ClassName: r.Name,
		SuiteFile: r.SuiteFile,
		Message:   exceptions.Primary().Error(),
		Secondary: exceptions.Messages()[1:],
		Output:    c.Output,
		Duration:  c.Duration.Seconds(),
	}
}
