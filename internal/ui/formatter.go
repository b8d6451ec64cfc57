package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"caserun/internal/config"
	"caserun/internal/domain"
	"caserun/internal/execution"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return NewFormatterTo(cfg, os.Stdout)
}

// NewFormatterTo creates a new Formatter writing to w
func NewFormatterTo(cfg *config.Config, w io.Writer) *Formatter {
	return &Formatter{config: cfg, out: w}
}

// CaseLine renders the console line for a completed case
func CaseLine(c *domain.Case) string {
	if c.Passed() {
		return c.Name + " passed."
	}
	return c.Name + " failed: " + c.Exceptions().Summary()
}

// PrintCaseResults prints one line per case, in execution order
func (f *Formatter) PrintCaseResults(results []execution.JobResult) {
	for _, r := range results {
		if r.NotRun {
			yellow.Fprintf(f.out, "%s was not run.\n", r.Name)
			continue
		}
		if r.Err != nil {
			red.Fprintf(f.out, "%s could not run: %v\n", r.Name, r.Err)
			continue
		}
		for _, c := range r.Class.Cases {
			if c.Passed() {
				green.Fprintln(f.out, CaseLine(c))
			} else {
				red.Fprintln(f.out, CaseLine(c))
			}
		}
		for _, err := range r.Class.Failures {
			red.Fprintf(f.out, "%s failed: %v\n", r.Name, err)
		}
	}
}

// PrintMetaStats displays the statistics of a run and a tree of its failures
func (f *Formatter) PrintMetaStats(output *domain.RunOutput) {
	meta := output.Meta
	w := f.out

	// Print header
	fmt.Fprint(w, "\n")
	cyan.Fprintln(w, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(w, "║                       Run Statistics                          ║")
	cyan.Fprintln(w, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Classes", fmt.Sprint(meta.TotalClasses), white},
		{"Total Cases", fmt.Sprint(meta.TotalCases), white},
		{"Passed Cases", fmt.Sprint(meta.PassedCases), green},
		{"Failed Cases", fmt.Sprint(meta.FailedCases), red},
		{"Classes Not Run", fmt.Sprint(len(meta.NotRunClasses)), yellow},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Run", meta.RunID, white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(w, "┌─────────────────────────────────┬─────────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(w, "│ %-31s │ ", row.label)
		row.c.Fprintf(w, "%-39s", row.value)
		fmt.Fprintln(w, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(w, "├─────────────────────────────────┼─────────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(w, "└─────────────────────────────────┴─────────────────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(w)
	switch meta.State {
	case domain.StateNoTests:
		yellow.Fprintln(w, "No cases were run")
	case domain.StateSuccess:
		green.Fprintln(w, "✓ All cases passed!")
	default:
		red.Fprintf(w, "✗ %d failure(s)\n", len(output.Details))
		fmt.Fprintln(w)
		f.printFailureTree(output.Details)
	}
}

// printFailureTree prints failures grouped by suite file
func (f *Formatter) printFailureTree(failures []domain.CaseFailure) {
	bySuite := make(map[string][]domain.CaseFailure)
	for _, failure := range failures {
		bySuite[failure.SuiteFile] = append(bySuite[failure.SuiteFile], failure)
	}

	var suites []string
	for suite := range bySuite {
		suites = append(suites, suite)
	}
	sort.Strings(suites)

	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		branch, indent := "├── ", "│   "
		if lastSuite {
			branch, indent = "└── ", "    "
		}
		yellow.Fprintf(f.out, "%s%s\n", branch, f.relative(suite))

		cases := bySuite[suite]
		for j, failure := range cases {
			caseBranch := "├── "
			if j == len(cases)-1 {
				caseBranch = "└── "
			}
			fmt.Fprint(f.out, indent+caseBranch)
			red.Fprintf(f.out, "%s: %s\n", failure.CaseName, firstLine(failure.Message))
		}
	}
}

// SuiteEntry is one suite as shown by the list command
type SuiteEntry struct {
	Path  string
	Class string
	Cases []string
	Err   error
}

// PrintSuiteList prints discovered suites, optionally with their cases.
// Suites whose class failed in the last run are marked with [F].
func (f *Formatter) PrintSuiteList(entries []SuiteEntry, showCases bool, failedClasses map[string]struct{}) {
	unit := "suite(s)"
	if showCases {
		unit = "suite(s) with cases"
	}
	green.Fprintf(f.out, "Found %d %s:\n\n", len(entries), unit)

	for i, entry := range entries {
		lastEntry := i == len(entries)-1
		branch, indent := "├── ", "│   "
		if lastEntry {
			branch, indent = "└── ", "    "
		}

		marker := ""
		if _, ok := failedClasses[entry.Class]; ok && entry.Class != "" {
			marker = " " + color.RedString("[F]")
		}
		label := f.relative(entry.Path)
		if entry.Class != "" {
			label = fmt.Sprintf("%s (%s)", label, entry.Class)
		}
		cyan.Fprintf(f.out, "%s%s", branch, label)
		fmt.Fprintln(f.out, marker)

		if entry.Err != nil {
			fmt.Fprint(f.out, indent+"└── ")
			red.Fprintf(f.out, "%v\n", entry.Err)
			continue
		}
		if !showCases {
			continue
		}
		if len(entry.Cases) == 0 {
			fmt.Fprint(f.out, indent+"└── ")
			red.Fprintln(f.out, "(no cases found)")
			continue
		}
		for j, name := range entry.Cases {
			caseBranch := "├── "
			if j == len(entry.Cases)-1 {
				caseBranch = "└── "
			}
			fmt.Fprint(f.out, indent+caseBranch)
			yellow.Fprintln(f.out, name)
		}
	}
}

// relative returns path relative to the project for cleaner display
func (f *Formatter) relative(path string) string {
	if f.config == nil || path == "" {
		return path
	}
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
