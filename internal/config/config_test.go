package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_GetSuitePath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				SuitePath:   ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "configured suite path",
			config: &Config{
				ProjectPath: "/project",
				SuitePath:   "suites",
			},
			expected: "/project/suites",
		},
		{
			name: "with suite path flag",
			config: &Config{
				ProjectPath: "/project",
				SuitePath:   ".",
				Flags: Flags{
					SuitePath: "tests",
				},
			},
			expected: "/project/tests",
		},
		{
			name: "absolute suite path",
			config: &Config{
				ProjectPath: "/project",
				SuitePath:   ".",
				Flags: Flags{
					SuitePath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetSuitePath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	cfg := New()

	t.Run("default database name", func(t *testing.T) {
		t.Setenv("DB_DATABASE_PREFIX", "")
		name := cfg.GetDatabaseName(1)
		expected := "caserun_1"
		if name != expected {
			t.Errorf("expected %s, got %s", expected, name)
		}
	})

	t.Run("prefix from environment", func(t *testing.T) {
		t.Setenv("DB_DATABASE_PREFIX", "ci")
		if name := cfg.GetDatabaseName(3); name != "ci_3" {
			t.Errorf("expected ci_3, got %s", name)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Processors: 8, Verbose: true})

	if cfg.Processors != 8 {
		t.Errorf("expected 8 processors, got %d", cfg.Processors)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}

	cfg.ApplyFlags(Flags{})
	if cfg.Processors != 8 {
		t.Errorf("zero processors flag should keep %d, got %d", 8, cfg.Processors)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `
suite_path: suites
processors: 2
database_prefix: it
ignore: [fixtures]
options:
  env: [ci]
`
	if err := os.WriteFile(filepath.Join(dir, projectFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}

	original := osGetwd
	defer func() { osGetwd = original }()
	osGetwd = func() (string, error) { return dir, nil }

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SuitePath != "suites" {
		t.Errorf("expected suite path suites, got %s", cfg.SuitePath)
	}
	if cfg.Processors != 2 {
		t.Errorf("expected 2 processors, got %d", cfg.Processors)
	}
	if cfg.DatabasePrefix != "it" {
		t.Errorf("expected database prefix it, got %s", cfg.DatabasePrefix)
	}
	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore)+1 {
		t.Errorf("expected ignore list to be extended, got %v", cfg.PathsToIgnore)
	}
	if got := cfg.Options["env"]; len(got) != 1 || got[0] != "ci" {
		t.Errorf("expected option env=ci, got %v", got)
	}
	if cfg.OutputJSONFile != DefaultOutputJSONFile {
		t.Errorf("unset fields should keep defaults, got %s", cfg.OutputJSONFile)
	}
}

func TestLoad_InvalidProjectFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, projectFileName), []byte("processors: [oops"), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}

	original := osGetwd
	defer func() { osGetwd = original }()
	osGetwd = func() (string, error) { return dir, nil }

	if _, err := Load(Flags{}); err == nil {
		t.Error("expected error for malformed project file")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CASERUN_TEST_FROM_DOTENV=yes\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("CASERUN_TEST_FROM_DOTENV", "")
	os.Unsetenv("CASERUN_TEST_FROM_DOTENV")

	cfg := New()
	cfg.ProjectPath = dir
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("CASERUN_TEST_FROM_DOTENV"); got != "yes" {
		t.Errorf("expected variable from .env, got %q", got)
	}

	cfg.ProjectPath = t.TempDir()
	if err := cfg.LoadEnv(); err != nil {
		t.Errorf("missing .env should not fail: %v", err)
	}
}
