package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osGetwd = os.Getwd

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	SuitePath   string `yaml:"suite_path"`

	// Output settings
	OutputJSONFile string `yaml:"output_file"`
	OutputJSONDir  string `yaml:"output_dir"`

	// Execution settings
	Processors     int    `yaml:"processors"`
	Shell          string `yaml:"shell"`
	DatabasePrefix string `yaml:"database_prefix"`
	LogLevel       string `yaml:"log_level"`

	// Options are custom key=value pairs handed to every suite
	Options map[string][]string `yaml:"options"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"ignore"`

	// Command flags
	Flags Flags `yaml:"-"`
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SuitePath:      DefaultSuitePath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		Shell:          DefaultShell,
		DatabasePrefix: DefaultDatabasePrefix,
		LogLevel:       DefaultLogLevel,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the project file and the .env file,
// then applies flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()

	wd, err := osGetwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	projectFile := filepath.Join(wd, projectFileName)
	if _, err := os.Stat(projectFile); err == nil {
		overlay, err := loadConfigFromFile(projectFile)
		if err != nil {
			return nil, fmt.Errorf("error loading project config from %s: %w", projectFile, err)
		}
		cfg = mergeConfigs(cfg, overlay)
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	cfg.ApplyFlags(flags)
	return cfg, nil
}

// ApplyFlags overlays command-line flags onto the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}
}

// LoadEnv loads the project's .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func (c *Config) LoadEnv() error {
	envPath := filepath.Join(c.ProjectPath, envFileName)
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}

// loadConfigFromFile loads a Config overlay from a YAML file.
func loadConfigFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}
	return &overlay, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay *Config) *Config {
	merged := *base

	if overlay.ProjectPath != "" {
		merged.ProjectPath = overlay.ProjectPath
	}
	if overlay.SuitePath != "" {
		merged.SuitePath = overlay.SuitePath
	}
	if overlay.OutputJSONFile != "" {
		merged.OutputJSONFile = overlay.OutputJSONFile
	}
	if overlay.OutputJSONDir != "" {
		merged.OutputJSONDir = overlay.OutputJSONDir
	}
	if overlay.Processors > 0 {
		merged.Processors = overlay.Processors
	}
	if overlay.Shell != "" {
		merged.Shell = overlay.Shell
	}
	if overlay.DatabasePrefix != "" {
		merged.DatabasePrefix = overlay.DatabasePrefix
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	if len(overlay.PathsToIgnore) > 0 {
		merged.PathsToIgnore = append(append([]string{}, base.PathsToIgnore...), overlay.PathsToIgnore...)
	}
	if len(overlay.Options) > 0 {
		merged.Options = make(map[string][]string, len(base.Options)+len(overlay.Options))
		for k, v := range base.Options {
			merged.Options[k] = v
		}
		// Overlay replaces a key's values rather than appending to them
		for k, v := range overlay.Options {
			merged.Options[k] = v
		}
	}

	return &merged
}

// GetSuitePath returns the suite path, using flag if provided
func (c *Config) GetSuitePath() string {
	if c.Flags.SuitePath != "" {
		// If SuitePath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.SuitePath) {
			return c.Flags.SuitePath
		}
		return filepath.Join(c.ProjectPath, c.Flags.SuitePath)
	}

	if filepath.IsAbs(c.SuitePath) {
		return c.SuitePath
	}
	return filepath.Join(c.ProjectPath, c.SuitePath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseName returns the scratch database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	prefix := os.Getenv("DB_DATABASE_PREFIX")
	if prefix == "" {
		prefix = c.DatabasePrefix
	}
	if prefix == "" {
		prefix = DefaultDatabasePrefix
	}
	return fmt.Sprintf("%s_%d", prefix, workerID)
}
