package eol

// Status defines the processing states a file moves through during a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusRewriting Status = "rewriting"
	StatusStripping Status = "stripping"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// OutputFormat defines the format of the final run report printed to
// standard output when the TUI is disabled.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ScanConfig controls what a single-file analysis inspects.
//
// When CheckBOM is false the resulting FileAnalysis carries no BOM field at
// all, which is distinct from "checked and absent"; orchestration relies on
// that distinction to decide whether BOM status is reported.
type ScanConfig struct {
	CheckBOM     bool
	DetectBinary bool
}
