package domain

// CaseFailure is the stored record of a failed case
type CaseFailure struct {
	CaseName  string   `json:"case_name"`
	ClassName string   `json:"class_name"`
	SuiteFile string   `json:"suite_file"`
	Message   string   `json:"message"`
	Secondary []string `json:"secondary,omitempty"`
	Output    string   `json:"output,omitempty"`
	Duration  float64  `json:"duration_seconds"`
	Resolved  bool     `json:"resolved,omitempty"` // Track if the case is marked as resolved
}
