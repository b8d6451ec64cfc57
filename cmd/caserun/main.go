package main

import (
	"fmt"
	"os"

	"caserun/internal/cli"
	"caserun/internal/cli/commands"
	"caserun/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "caserun",
		Short: "Convention-driven parallel case runner",
		Long: `Runs suites of command-based test cases. Each suite file declares a class whose
methods are shell commands; a convention decides which methods are cases, how
instances are created and what wraps each case.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	executed, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if executed.Name() == "run" {
		os.Exit(cmds.Run.State().ExitCode())
	}
}
