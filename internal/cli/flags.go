package cli

import "caserun/internal/config"

// Flags holds command-line flags
type Flags struct {
	Processors int
	NameFilter string
	CaseFilter string
	SuitePath  string
	FailFast   bool
	Options    []string
	Verbose    bool
	NoProgress bool
	ShowCases  bool
	OpenViewer bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors: f.Processors,
		NameFilter: f.NameFilter,
		CaseFilter: f.CaseFilter,
		SuitePath:  f.SuitePath,
		FailFast:   f.FailFast,
		Options:    append([]string(nil), f.Options...),
		Verbose:    f.Verbose,
		NoProgress: f.NoProgress,
		ShowCases:  f.ShowCases,
		OpenViewer: f.OpenViewer,
	}
}
