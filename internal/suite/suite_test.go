package suite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"caserun/internal/convention"
	"caserun/internal/domain"
	"caserun/internal/execution"
	"caserun/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, content string) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	f, err := Load(path)
	require.NoError(t, err)
	return f
}

type fakeDatabase struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (d *fakeDatabase) Recreate(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "recreate "+name)
	return d.fail["recreate"]
}

func (d *fakeDatabase) Drop(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "drop "+name)
	return d.fail["drop"]
}

func settings() JobSettings {
	return JobSettings{
		Runner:       execution.NewRunner("sh", nil),
		BaseEnv:      os.Environ(),
		OptionPrefix: "CASERUN_OPT_",
	}
}

func summaries(cases []*domain.Case) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		if c.Passed() {
			out[i] = c.Name + " passed."
		} else {
			out[i] = c.Name + " failed: " + c.Exceptions().Summary()
		}
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "valid",
			content: "class: Api\nlifecycle: per-class\nmethods:\n  - name: TestPing\n    run: echo pong\n",
		},
		{name: "empty document", content: "", wantErr: "class name is required"},
		{name: "unknown key", content: "class: Api\nlifecylce: per-class\n", wantErr: "lifecylce"},
		{name: "bad lifecycle", content: "class: Api\nlifecycle: shared\n", wantErr: "unknown instance policy"},
		{
			name:    "duplicate method",
			content: "class: Api\nmethods:\n  - {name: TestA, run: 'true'}\n  - {name: TestA, run: 'true'}\n",
			wantErr: "declared twice",
		},
		{
			name:    "missing run",
			content: "class: Api\nmethods:\n  - {name: TestA}\n",
			wantErr: "no run command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.content), "suites/api.suite.yaml")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Api", f.Class)
			assert.Equal(t, lifecycle.PerClass, f.Policy())
			assert.Equal(t, "suites", f.Dir())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.suite.yaml"))
	assert.Error(t, err)
}

func TestCaseNames(t *testing.T) {
	f := writeSuite(t, `
class: Math
database: true
methods:
  - name: SetUp
    run: 'true'
  - name: TestAdd
    run: test $(($1 + $2)) -eq $3
    parameters: [[1, 2, 3], [2, 2, 4]]
  - name: TestGreeting
    run: test "$1" = hello
    parameters: [["hello"]]
  - name: TestZero
    run: 'true'
`)

	names, err := f.CaseNames()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Math.TestAdd(1, 2, 3)",
		"Math.TestAdd(2, 2, 4)",
		`Math.TestGreeting("hello")`,
		"Math.TestZero",
	}, names)
}

func TestJob_RunWithSetUpTearDown(t *testing.T) {
	f := writeSuite(t, `
class: Api
lifecycle: per-class
methods:
  - name: SetUp
    run: echo setup
  - name: TestPass
    run: echo "pass $1"
    parameters: [["a"], ["b"]]
  - name: TestFail
    run: 'echo "FAIL: nope"; exit 1'
  - name: TearDown
    run: echo teardown
convention:
  cases: ["Test*"]
  setup: ["SetUp"]
  teardown: ["TearDown"]
`)

	result := NewJob(f, settings()).Run(context.Background(), 1)

	require.NoError(t, result.Err)
	assert.Equal(t, "Api", result.Name)
	assert.Equal(t, f.Path, result.SuiteFile)
	assert.Equal(t, []string{
		`Api.TestPass("a") passed.`,
		`Api.TestPass("b") passed.`,
		"Api.TestFail failed: nope",
	}, summaries(result.Class.Cases))

	first := result.Class.Cases[0]
	assert.Equal(t, "setup\npass a\nteardown\n", first.Output)
	assert.Equal(t, "pass a", first.ReturnValue)
	assert.Equal(t, "setup\nFAIL: nope\nteardown\n", result.Class.Cases[2].Output)
}

func TestJob_FixtureSetUpRunsOncePerInstance(t *testing.T) {
	f := writeSuite(t, `
class: Counter
lifecycle: per-class
methods:
  - name: Prepare
    run: echo prepared >> "$CASERUN_TRACE"
  - name: TestOne
    run: echo one >> "$CASERUN_TRACE"
  - name: TestTwo
    run: echo two >> "$CASERUN_TRACE"
  - name: Cleanup
    run: echo cleaned >> "$CASERUN_TRACE"
convention:
  fixture_setup: ["Prepare"]
  fixture_teardown: ["Cleanup"]
`)
	trace := filepath.Join(t.TempDir(), "trace")
	s := settings()
	s.BaseEnv = append(s.BaseEnv, "CASERUN_TRACE="+trace)

	result := NewJob(f, s).Run(context.Background(), 1)
	require.Equal(t, 2, result.Class.Passed())

	data, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Equal(t, "prepared\none\ntwo\ncleaned\n", string(data))
}

func TestJob_EnvironmentAndOptions(t *testing.T) {
	f := writeSuite(t, `
class: Env
env:
  GREETING: hi
methods:
  - name: TestEnv
    run: echo "$GREETING $CASERUN_OPT_TARGET $CASERUN_CLASS $CASERUN_INSTANCE"
`)
	s := settings()
	s.Options = convention.Options{"target": {"staging"}}

	result := NewJob(f, s).Run(context.Background(), 1)

	require.Len(t, result.Class.Cases, 1)
	assert.Equal(t, "hi staging Env 1", result.Class.Cases[0].ReturnValue)
}

func TestJob_DatabasePerInstance(t *testing.T) {
	f := writeSuite(t, `
class: Orders
database: true
methods:
  - name: TestA
    run: echo "$DB_DATABASE"
  - name: TestB
    run: echo "$DB_DATABASE"
`)
	db := &fakeDatabase{}
	s := settings()
	s.Database = db
	s.DatabaseName = func(workerID int) string { return "scratch_" + string(rune('0'+workerID)) }

	result := NewJob(f, s).Run(context.Background(), 7)

	require.Equal(t, 2, result.Class.Passed())
	assert.Equal(t, "scratch_7", result.Class.Cases[0].ReturnValue)
	assert.Equal(t, []string{
		"recreate scratch_7", "drop scratch_7",
		"recreate scratch_7", "drop scratch_7",
	}, db.calls)
}

func TestJob_DatabaseRequiredButMissing(t *testing.T) {
	f := writeSuite(t, "class: Orders\ndatabase: true\nmethods:\n  - {name: TestA, run: 'true'}\n")

	result := NewJob(f, settings()).Run(context.Background(), 1)

	assert.ErrorContains(t, result.Err, "needs a database")
	assert.True(t, result.Failed())
}

func TestJob_ConstructFails(t *testing.T) {
	f := writeSuite(t, `
class: Broken
lifecycle: per-class
database: true
construct: 'echo "Error: cannot start"; exit 2'
dispose: touch disposed
methods:
  - {name: TestA, run: 'true'}
  - {name: TestB, run: 'true'}
`)
	db := &fakeDatabase{}
	s := settings()
	s.Database = db
	s.DatabaseName = func(int) string { return "scratch" }

	result := NewJob(f, s).Run(context.Background(), 1)

	assert.Equal(t, []string{
		"Broken.TestA failed: construct: cannot start",
		"Broken.TestB failed: construct: cannot start",
	}, summaries(result.Class.Cases))
	assert.NoFileExists(t, filepath.Join(f.Dir(), "disposed"))
	assert.Equal(t, []string{"recreate scratch", "drop scratch"}, db.calls)
}

func TestJob_DisposeFailsPerClass(t *testing.T) {
	f := writeSuite(t, `
class: Leaky
lifecycle: per-class
dispose: 'echo "error: port still bound"; exit 1'
methods:
  - {name: TestA, run: 'true'}
  - {name: TestB, run: 'true'}
`)

	result := NewJob(f, settings()).Run(context.Background(), 1)

	assert.Equal(t, []string{
		"Leaky.TestA passed.",
		"Leaky.TestB failed: dispose: port still bound",
	}, summaries(result.Class.Cases))
}

func TestJob_ObserverSeesStates(t *testing.T) {
	f := writeSuite(t, "class: Quiet\nlifecycle: per-class\nmethods:\n  - {name: TestA, run: 'true'}\n")

	var states []lifecycle.State
	s := settings()
	s.Observer = func(class *domain.Class, state lifecycle.State) {
		states = append(states, state)
	}
	NewJob(f, s).Run(context.Background(), 1)

	assert.Equal(t, []lifecycle.State{
		lifecycle.NotStarted, lifecycle.Constructing, lifecycle.Executing, lifecycle.Disposing, lifecycle.Done,
	}, states)
}
