package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"caserun/internal/logging"
	"caserun/internal/parser"
)

// Command is a shell script invocation
type Command struct {
	Script string
	// Args become the positional parameters $1, $2, ... of the script
	Args []string
	Dir  string
	Env  []string
	// Output additionally receives everything the command prints
	Output io.Writer
}

// Result is the outcome of running a Command
type Result struct {
	Output   string
	ExitCode int
	// Err is nil on success. A non-zero exit yields a parser.Failure.
	Err error
}

// Runner executes suite commands through a shell
type Runner struct {
	shell  string
	parser parser.Parser
}

// NewRunner creates a new Runner
func NewRunner(shell string, p parser.Parser) *Runner {
	if shell == "" {
		shell = "sh"
	}
	if p == nil {
		p = parser.NewOutputParser()
	}
	return &Runner{shell: shell, parser: p}
}

// Run executes the command and waits for it to finish
func (r *Runner) Run(ctx context.Context, c Command) Result {
	args := append([]string{"-c", c.Script, "caserun"}, c.Args...)
	cmd := exec.CommandContext(ctx, r.shell, args...)
	cmd.Env = c.Env
	cmd.Dir = c.Dir

	var buf bytes.Buffer
	var out io.Writer = &buf
	if c.Output != nil {
		out = io.MultiWriter(&buf, c.Output)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	logging.Debug("Runner", "running %q in %s", c.Script, c.Dir)
	err := cmd.Run()
	result := Result{Output: buf.String()}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = r.parser.ParseFailure(result.Output, result.ExitCode)
		return result
	}
	result.ExitCode = -1
	result.Err = fmt.Errorf("run %q: %w", c.Script, err)
	return result
}
