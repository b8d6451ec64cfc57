package commands

import (
	"fmt"
	"os"

	"caserun/internal/cli"
	"caserun/internal/config"
	"caserun/internal/discovery"
	"caserun/internal/logging"
	"caserun/internal/parser"
	"caserun/internal/storage"
	"caserun/internal/suite"
	"caserun/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	finder := &suiteFinder{config: cfg, filter: discovery.NewFilter()}
	outputParser := parser.NewOutputParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, finder, outputParser, jsonStorage, formatter, errorViewer),
		List:     NewListCommand(cfg, finder, formatter, jsonStorage),
		Failures: NewFailuresCommand(jsonStorage, errorViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	loadConfig := func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		// Dependencies hold cfg, so update it in place
		*cfg = *loaded

		logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)
		return nil
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log lifecycle and command details to stderr")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run suites in parallel",
		Long:    "Discover suite files and execute their cases, distributing classes across parallel workers",
		RunE:    c.Run.Execute,
		PreRunE: loadConfig,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, fmt.Sprintf("Number of workers to use (default %d)", config.DefaultProcessors))
	runCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "s", "", "Path to the folder (or single suite file) where discovery should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by file name pattern (supports wildcards, e.g. '*user*')")
	runCmd.Flags().StringVar(&flags.CaseFilter, "case", "", "Run only cases whose name matches the pattern (supports wildcards, e.g. '*TestCreate*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop starting new classes after the first failure")
	runCmd.Flags().StringArrayVarP(&flags.Options, "option", "o", nil, "Custom option passed to suites as key=value (repeatable)")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Do not draw the progress bar")
	runCmd.Flags().BoolVar(&flags.OpenViewer, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered suites",
		Long:    "Scan and list all suite files without executing them",
		RunE:    c.List.Execute,
		PreRunE: loadConfig,
	}
	listCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "s", "", "Path to the folder (or single suite file) where discovery should start")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by file name pattern (supports wildcards, e.g. '*user*')")
	listCmd.Flags().BoolVarP(&flags.ShowCases, "cases", "c", false, "List the cases of every suite")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failures interactively",
		Long:    "Display the failures of the last run in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: loadConfig,
	}
	rootCmd.AddCommand(failuresCmd)
}

// loadedSuite is a discovered suite file and the result of loading it
type loadedSuite struct {
	path string
	file *suite.File
	err  error
}

// suiteFinder discovers and loads suite files according to the config
type suiteFinder struct {
	config *config.Config
	filter *discovery.Filter
}

func (f *suiteFinder) Find() ([]loadedSuite, error) {
	scanner := discovery.NewScanner(f.config.PathsToIgnore)
	paths, err := scanner.Scan(f.config.GetSuitePath())
	if err != nil {
		return nil, err
	}
	paths = f.filter.FilterByName(paths, f.config.Flags.NameFilter)

	suites := make([]loadedSuite, len(paths))
	for i, path := range paths {
		file, err := suite.Load(path)
		if err != nil {
			logging.Warn("Discovery", err, "skipping %s", path)
		}
		suites[i] = loadedSuite{path: path, file: file, err: err}
	}
	return suites, nil
}
