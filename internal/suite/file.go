// Package suite loads YAML suite files and turns them into test classes
// whose methods are shell commands.
package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"caserun/internal/lifecycle"
)

// File is a parsed suite file.
type File struct {
	Path string `yaml:"-"`

	Class      string            `yaml:"class"`
	Lifecycle  string            `yaml:"lifecycle"`
	Database   bool              `yaml:"database"`
	Env        map[string]string `yaml:"env"`
	Construct  string            `yaml:"construct"`
	Dispose    string            `yaml:"dispose"`
	Methods    []MethodSpec      `yaml:"methods"`
	Convention ConventionSpec    `yaml:"convention"`
}

// MethodSpec is one command method. Each entry of Parameters produces a
// separate case.
type MethodSpec struct {
	Name       string  `yaml:"name"`
	Run        string  `yaml:"run"`
	Parameters [][]any `yaml:"parameters"`
}

// ConventionSpec holds the method name patterns that decide what is a case
// and what wraps it.
type ConventionSpec struct {
	Cases           []string `yaml:"cases"`
	SetUp           []string `yaml:"setup"`
	TearDown        []string `yaml:"teardown"`
	FixtureSetUp    []string `yaml:"fixture_setup"`
	FixtureTearDown []string `yaml:"fixture_teardown"`
}

// DefaultCasePatterns select cases when a suite names none.
var DefaultCasePatterns = []string{"Test*"}

// Load reads and validates the suite file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading suite %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a suite document. Unknown keys are rejected.
func Parse(data []byte, path string) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	f.Path = path
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the suite for structural problems.
func (f *File) Validate() error {
	if f.Class == "" {
		return errors.New("class name is required")
	}
	if _, err := lifecycle.ParsePolicy(f.Lifecycle); err != nil {
		return err
	}

	seen := make(map[string]bool, len(f.Methods))
	for i, m := range f.Methods {
		if m.Name == "" {
			return fmt.Errorf("method %d has no name", i+1)
		}
		if seen[m.Name] {
			return fmt.Errorf("method %s is declared twice", m.Name)
		}
		seen[m.Name] = true
		if m.Run == "" {
			return fmt.Errorf("method %s has no run command", m.Name)
		}
	}
	return nil
}

// Dir is the directory commands run in.
func (f *File) Dir() string {
	if f.Path == "" {
		return "."
	}
	return filepath.Dir(f.Path)
}

// Policy returns the instance policy. Validate guarantees it parses.
func (f *File) Policy() lifecycle.Policy {
	p, _ := lifecycle.ParsePolicy(f.Lifecycle)
	return p
}

// CasePatterns returns the configured case patterns or the defaults.
func (f *File) CasePatterns() []string {
	if len(f.Convention.Cases) == 0 {
		return DefaultCasePatterns
	}
	return f.Convention.Cases
}
