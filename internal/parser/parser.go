// Package parser extracts failure messages from the output of suite
// commands.
package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Parser turns a failed command's output into a failure message
type Parser interface {
	ParseFailure(output string, exitCode int) Failure
}

// Failure is what could be recovered from a failed command
type Failure struct {
	Message string
	// Details holds a JSON block printed after the message, if any
	Details string
	// Location is the first file:line reference found in the output
	Location string
}

func (f Failure) Error() string {
	return f.Message
}

var (
	markerPattern   = regexp.MustCompile(`(?i)^\s*(?:fail(?:ed|ure)?|error|fatal|panic|assert(?:ion)?(?:\s+failed)?)\b\s*[:!]`)
	locationPattern = regexp.MustCompile(`[\w./-]+\.\w+:\d+`)
)

// OutputParser recognizes marker lines such as "FAIL: ..." or
// "Error: ...", falling back to the last non-empty line of output.
type OutputParser struct{}

// NewOutputParser creates a new OutputParser
func NewOutputParser() *OutputParser {
	return &OutputParser{}
}

// ParseFailure parses a failure from command output
func (p *OutputParser) ParseFailure(output string, exitCode int) Failure {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	failure := Failure{}
	if loc := locationPattern.FindString(output); loc != "" {
		failure.Location = loc
	}

	for i, line := range lines {
		if !markerPattern.MatchString(line) {
			continue
		}
		failure.Message, failure.Details = p.parseBlock(lines[i:])
		return failure
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			failure.Message = trimmed
			return failure
		}
	}

	failure.Message = fmt.Sprintf("exit status %d", exitCode)
	return failure
}

// parseBlock collects the marker line and its continuation lines up to the
// first blank line. A JSON object following the message becomes Details.
func (p *OutputParser) parseBlock(lines []string) (message, details string) {
	var messageLines []string
	var jsonLines []string
	inJSON := false
	braces := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "{" && !inJSON {
			inJSON = true
			braces = 1
			jsonLines = append(jsonLines, line)
			continue
		}
		if inJSON {
			jsonLines = append(jsonLines, line)
			braces += strings.Count(line, "{") - strings.Count(line, "}")
			if braces == 0 {
				details = strings.Join(jsonLines, "\n")
				break
			}
			continue
		}

		if trimmed == "" {
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "{" {
				continue
			}
			break
		}
		messageLines = append(messageLines, strings.TrimRight(line, " \t"))
	}

	message = strings.TrimSpace(markerPattern.ReplaceAllString(messageLines[0], ""))
	if message == "" {
		message = strings.TrimSpace(messageLines[0])
	}
	if len(messageLines) > 1 {
		message = message + "\n" + strings.Join(messageLines[1:], "\n")
	}
	return message, details
}
