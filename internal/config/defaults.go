package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSuitePath is the default directory scanned for suite files
	DefaultSuitePath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultDatabasePrefix prefixes scratch database names
	DefaultDatabasePrefix = "caserun"
	// DefaultShell runs suite commands
	DefaultShell = "sh"
	// DefaultLogLevel is used unless --verbose or the project file says otherwise
	DefaultLogLevel = "warn"
	// OptionEnvPrefix prefixes custom options exported to suite commands
	OptionEnvPrefix = "CASERUN_OPT_"

	projectFileName = ".caserun.yaml"
	envFileName     = ".env"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for suites
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
