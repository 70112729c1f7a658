package eol

// Defaults used when setting up configuration loading.
const (
	// DefaultConcurrency is the default worker count. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultDetectBinary enables the binary-content guard by default.
	DefaultDetectBinary = true
	// DefaultTuiEnabled is the default state for the terminal UI.
	DefaultTuiEnabled = true
	// DefaultOutputFormat is the default format for the final run report.
	DefaultOutputFormat = OutputFormatText
	// DefaultVerbose is the default state for debug logging.
	DefaultVerbose = false
)

// ReportSchemaVersion identifies the JSON/YAML report structure. Increment
// on incompatible changes to the Report shape.
const ReportSchemaVersion = "1.0"
