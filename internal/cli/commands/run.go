package commands

import (
	"fmt"
	"os"

	"caserun/internal/config"
	"caserun/internal/convention"
	"caserun/internal/database"
	"caserun/internal/discovery"
	"caserun/internal/domain"
	"caserun/internal/execution"
	"caserun/internal/logging"
	"caserun/internal/parser"
	"caserun/internal/storage"
	"caserun/internal/suite"
	"caserun/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	finder    *suiteFinder
	parser    parser.Parser
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer

	state domain.RunState
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	finder *suiteFinder,
	p parser.Parser,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		finder:    finder,
		parser:    p,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
		state:     domain.StateNoTests,
	}
}

// State is the state of the last executed run
func (rc *RunCommand) State() domain.RunState {
	return rc.state
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	options, err := rc.options()
	if err != nil {
		return err
	}

	// Discover suites
	suites, err := rc.finder.Find()
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		color.Yellow("No suites to execute")
		rc.state = domain.StateNoTests
		return nil
	}

	settings := suite.JobSettings{
		Runner:       execution.NewRunner(rc.config.Shell, rc.parser),
		BaseEnv:      os.Environ(),
		Options:      options,
		OptionPrefix: config.OptionEnvPrefix,
		DatabaseName: rc.config.GetDatabaseName,
		Select:       rc.caseSelector(),
	}

	for _, s := range suites {
		if s.err == nil && s.file.Database {
			db := database.NewManager(database.SettingsFromEnv())
			defer db.Close()
			settings.Database = db
			break
		}
	}

	jobs := make([]execution.Job, 0, len(suites))
	totalCases := 0
	for _, s := range suites {
		if s.err != nil {
			jobs = append(jobs, suite.NewBrokenJob(s.path, s.err))
			continue
		}
		if names, err := s.file.CaseNames(); err == nil {
			selected := selectedCount(names, settings.Select)
			if selected == 0 && settings.Select != nil {
				logging.Debug("Run", "no case of %s matches %q", s.file.Class, rc.config.Flags.CaseFilter)
				continue
			}
			totalCases += selected
		}
		jobs = append(jobs, suite.NewJob(s.file, settings))
	}
	if len(jobs) == 0 {
		color.Yellow("No cases match %q", rc.config.Flags.CaseFilter)
		rc.state = domain.StateNoTests
		return nil
	}

	pool := execution.NewWorkerPool(rc.config.Processors, execution.NewRoundRobinScheduler())
	if !rc.config.Flags.NoProgress && totalCases > 0 {
		pool.SetProgress(ui.NewProgressBar(totalCases))
	}

	// Execute classes
	results, duration := pool.ExecuteWithOptions(cmd.Context(), jobs, rc.config.Flags.FailFast)
	for _, r := range results {
		if r.NotRun {
			logging.Info("Run", "fail-fast skipped %s", r.Name)
		}
	}

	rc.formatter.PrintCaseResults(results)

	output := execution.Summarize(storage.NewRunID(), results, duration, pool.Workers())
	rc.state = output.Meta.State

	// Save results
	if err := rc.storage.Save(&output); err != nil {
		return fmt.Errorf("failed to save run results: %w", err)
	}

	rc.formatter.PrintMetaStats(&output)

	if rc.config.Flags.OpenViewer && len(output.Details) > 0 {
		return rc.viewer.View(&output)
	}
	return nil
}

// caseSelector matches case names against --case, or returns nil when no
// case filter is set.
func (rc *RunCommand) caseSelector() func(string) bool {
	pattern := rc.config.Flags.CaseFilter
	if pattern == "" {
		return nil
	}
	filter := discovery.NewFilter()
	return func(name string) bool {
		return filter.Matches(name, pattern)
	}
}

func selectedCount(names []string, accept func(string) bool) int {
	if accept == nil {
		return len(names)
	}
	n := 0
	for _, name := range names {
		if accept(name) {
			n++
		}
	}
	return n
}

// options merges project options with --option flags. Flag values for a key
// replace the project's values for that key.
func (rc *RunCommand) options() (convention.Options, error) {
	fromFlags, err := convention.ParseOptions(rc.config.Flags.Options)
	if err != nil {
		return nil, err
	}
	merged := convention.Options{}
	for k, values := range rc.config.Options {
		if _, overridden := fromFlags[k]; overridden {
			continue
		}
		for _, v := range values {
			merged.Add(k, v)
		}
	}
	for k, values := range fromFlags {
		for _, v := range values {
			merged.Add(k, v)
		}
	}
	return merged, nil
}
