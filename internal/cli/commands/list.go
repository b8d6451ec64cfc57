package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"caserun/internal/config"
	"caserun/internal/storage"
	"caserun/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	finder    *suiteFinder
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	finder *suiteFinder,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		finder:    finder,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := lc.finder.Find()
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		color.Yellow("No suites found")
		return nil
	}

	entries := make([]ui.SuiteEntry, len(suites))
	for i, s := range suites {
		entries[i] = ui.SuiteEntry{Path: s.path, Err: s.err}
		if s.err != nil {
			continue
		}
		entries[i].Class = s.file.Class
		if lc.config.Flags.ShowCases {
			entries[i].Cases, entries[i].Err = s.file.CaseNames()
		}
	}

	lc.formatter.PrintSuiteList(entries, lc.config.Flags.ShowCases, lc.failedClasses())
	return nil
}

// failedClasses returns the classes with unresolved failures in the last
// run, if one was stored.
func (lc *ListCommand) failedClasses() map[string]struct{} {
	last, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, d := range last.Details {
		if !d.Resolved {
			failed[d.ClassName] = struct{}{}
		}
	}
	return failed
}
