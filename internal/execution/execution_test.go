package execution

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"caserun/internal/domain"
	"caserun/internal/lifecycle"
	"caserun/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinScheduler_Schedule(t *testing.T) {
	s := NewRoundRobinScheduler()

	assert.Equal(t, [][]int{{0, 3, 6}, {1, 4}, {2, 5}}, s.Schedule(7, 3))
	assert.Equal(t, [][]int{{0, 1}}, s.Schedule(2, 0))
	assert.Equal(t, [][]int{{}, {}}, s.Schedule(0, 2))
}

// fakeJob produces a class result with the given case outcomes.
type fakeJob struct {
	name    string
	outcome []bool
	mu      *sync.Mutex
	ran     *[]string
}

func (j fakeJob) Name() string { return j.name }

func (j fakeJob) Run(ctx context.Context, workerID int) JobResult {
	j.mu.Lock()
	*j.ran = append(*j.ran, j.name)
	j.mu.Unlock()

	class := &domain.Class{Name: j.name}
	var cases []*domain.Case
	for i, passed := range j.outcome {
		c := domain.NewCase(class, &domain.Method{Name: "Case"}, i)
		if !passed {
			c.Fail(errors.New("failed"))
		}
		cases = append(cases, c)
	}
	return JobResult{Name: j.name, Class: lifecycle.ClassResult{Class: class, Cases: cases}}
}

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	passed   int
	failed   int
	finished bool
}

func (p *recordingProgress) Update(passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.passed, p.failed = passed, failed
}

func (p *recordingProgress) Finish() { p.finished = true }

func jobs(ran *[]string, outcomes map[string][]bool, names ...string) []Job {
	mu := &sync.Mutex{}
	var out []Job
	for _, n := range names {
		out = append(out, fakeJob{name: n, outcome: outcomes[n], mu: mu, ran: ran})
	}
	return out
}

func TestWorkerPool_ExecuteKeepsJobOrder(t *testing.T) {
	var ran []string
	outcomes := map[string][]bool{
		"A": {true, true},
		"B": {false},
		"C": {true},
		"D": {true, false, true},
	}

	pool := NewWorkerPool(3, nil)
	progress := &recordingProgress{}
	pool.SetProgress(progress)

	results, _ := pool.Execute(context.Background(), jobs(&ran, outcomes, "A", "B", "C", "D"))

	require.Len(t, results, 4)
	for i, name := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, name, results[i].Name)
	}
	assert.Len(t, ran, 4)
	assert.Equal(t, 4, progress.updates)
	assert.Equal(t, 5, progress.passed)
	assert.Equal(t, 2, progress.failed)
	assert.True(t, progress.finished)
}

func TestWorkerPool_FailFastStopsScheduling(t *testing.T) {
	var ran []string
	outcomes := map[string][]bool{
		"A": {true},
		"B": {false},
		"C": {true},
		"D": {true},
	}

	pool := NewWorkerPool(1, nil)
	results, _ := pool.ExecuteWithOptions(context.Background(), jobs(&ran, outcomes, "A", "B", "C", "D"), true)

	assert.Equal(t, []string{"A", "B"}, ran)
	require.Len(t, results, 4)
	assert.True(t, results[1].Failed())
	for i, name := range []string{"C", "D"} {
		assert.Equal(t, name, results[i+2].Name)
		assert.True(t, results[i+2].NotRun)
		assert.False(t, results[i+2].Failed())
	}

	output := Summarize("run", results, time.Second, 1)
	assert.Equal(t, []string{"C", "D"}, output.Meta.NotRunClasses)
	assert.Equal(t, 2, output.Meta.TotalCases)
	assert.Equal(t, domain.StateFailure, output.Meta.State)
}

func TestWorkerPool_NoJobs(t *testing.T) {
	results, duration := NewWorkerPool(2, nil).Execute(context.Background(), nil)
	assert.Nil(t, results)
	assert.Zero(t, duration)
}

func TestSummarize(t *testing.T) {
	class := &domain.Class{Name: "Api"}
	method := &domain.Method{Name: "TestCreate"}

	passed := domain.NewCase(class, method, "alice")
	failed := domain.NewCase(class, method, "bob")
	failed.Fail(errors.New("status 500"))
	failed.Fail(errors.New("teardown broke"))
	failed.Output = "log line\n"
	failed.Duration = 1500 * time.Millisecond

	results := []JobResult{
		{
			Name:      "Api",
			SuiteFile: "suites/api.suite.yaml",
			Class:     lifecycle.ClassResult{Class: class, Cases: []*domain.Case{passed, failed}},
		},
		{Name: "Broken", SuiteFile: "suites/broken.suite.yaml", Err: errors.New("no such class")},
	}

	out := Summarize("run-1", results, 2*time.Second, 4)

	assert.Equal(t, "run-1", out.Meta.RunID)
	assert.Equal(t, domain.StateFailure, out.Meta.State)
	assert.Equal(t, 2, out.Meta.TotalClasses)
	assert.Equal(t, 2, out.Meta.TotalCases)
	assert.Equal(t, 1, out.Meta.PassedCases)
	assert.Equal(t, 1, out.Meta.FailedCases)
	assert.Equal(t, 4, out.Meta.Workers)
	assert.Equal(t, 2.0, out.Meta.DurationSeconds)

	require.Len(t, out.Details, 2)
	assert.Equal(t, `Api.TestCreate("bob")`, out.Details[0].CaseName)
	assert.Equal(t, "status 500", out.Details[0].Message)
	assert.Equal(t, []string{"teardown broke"}, out.Details[0].Secondary)
	assert.Equal(t, "log line\n", out.Details[0].Output)
	assert.Equal(t, 1.5, out.Details[0].Duration)
	assert.Equal(t, "Broken", out.Details[1].ClassName)
	assert.Equal(t, "no such class", out.Details[1].Message)
}

func TestSummarize_States(t *testing.T) {
	assert.Equal(t, domain.StateNoTests, Summarize("", nil, 0, 1).Meta.State)

	class := &domain.Class{Name: "Ok"}
	c := domain.NewCase(class, &domain.Method{Name: "Test"})
	ok := []JobResult{{Name: "Ok", Class: lifecycle.ClassResult{Class: class, Cases: []*domain.Case{c}}}}
	assert.Equal(t, domain.StateSuccess, Summarize("", ok, 0, 1).Meta.State)

	var classFailures domain.ExceptionList
	classFailures.Add(errors.New("dispose failed"))
	empty := []JobResult{{Name: "Empty", Class: lifecycle.ClassResult{Class: class, Failures: classFailures}}}
	assert.Equal(t, domain.StateFailure, Summarize("", empty, 0, 1).Meta.State)
}

func TestRunner_Run(t *testing.T) {
	r := NewRunner("sh", parser.NewOutputParser())

	t.Run("success passes arguments and environment", func(t *testing.T) {
		var out bytes.Buffer
		result := r.Run(context.Background(), Command{
			Script: `echo "$1-$GREETING"`,
			Args:   []string{"alice"},
			Env:    []string{"GREETING=hi"},
			Output: &out,
		})
		require.NoError(t, result.Err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "alice-hi\n", result.Output)
		assert.Equal(t, "alice-hi\n", out.String())
	})

	t.Run("non-zero exit is parsed", func(t *testing.T) {
		result := r.Run(context.Background(), Command{Script: `echo "FAIL: wrong answer" >&2; exit 3`})
		require.Error(t, result.Err)
		assert.Equal(t, 3, result.ExitCode)
		assert.EqualError(t, result.Err, "wrong answer")

		var failure parser.Failure
		assert.ErrorAs(t, result.Err, &failure)
	})

	t.Run("missing shell", func(t *testing.T) {
		result := NewRunner("/definitely/not/a/shell", nil).Run(context.Background(), Command{Script: "true"})
		assert.Error(t, result.Err)
		assert.Equal(t, -1, result.ExitCode)
	})
}
