package domain

// RunState summarizes a whole run
type RunState string

const (
	StateNoTests RunState = "no-tests"
	StateFailure RunState = "failure"
	StateSuccess RunState = "success"
)

// StateOf derives the run state from case counts.
func StateOf(total, failed int) RunState {
	if total == 0 {
		return StateNoTests
	}
	if failed > 0 {
		return StateFailure
	}
	return StateSuccess
}

// RunMeta contains metadata about a run
type RunMeta struct {
	RunID           string   `json:"run_id"`
	State           RunState `json:"state"`
	TotalClasses    int      `json:"total_classes"`
	TotalCases      int      `json:"total_cases"`
	PassedCases     int      `json:"passed_cases"`
	FailedCases     int      `json:"failed_cases"`
	NotRunClasses   []string `json:"not_run_classes,omitempty"`
	Duration        string   `json:"duration"`
	DurationSeconds float64  `json:"duration_seconds"`
	Workers         int      `json:"workers"`
	Timestamp       string   `json:"timestamp"`
}

// RunOutput is the complete stored output of a run
type RunOutput struct {
	Meta    RunMeta       `json:"meta"`
	Details []CaseFailure `json:"details"`
}

// ExitCode is the process exit status for a run in this state
func (s RunState) ExitCode() int {
	switch s {
	case StateSuccess:
		return 0
	case StateNoTests:
		return 2
	default:
		return 1
	}
}
