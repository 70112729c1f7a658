package eol

import (
	"log/slog"
	"time"

	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

// Hooks defines callbacks for status updates during a run.
// Implementations must be safe for concurrent use; workers call these from
// multiple goroutines.
type Hooks interface {
	OnFileDiscovered(path string) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks is a default, do-nothing implementation of Hooks.
type NoOpHooks struct{}

func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Options holds all configuration for an Engine run.
type Options struct {
	// Patterns are the glob patterns or literal paths naming the files to
	// process. Required.
	Patterns []string `mapstructure:"-"`

	// Folder, when set, is prefixed to every pattern before expansion.
	Folder string `mapstructure:"folder"`
	// Recursive injects a **/ component into patterns that lack one, so
	// they match in subdirectories too.
	Recursive bool `mapstructure:"recursive"`
	// CaseSensitive switches pattern matching from the default
	// case-insensitive mode to exact-case.
	CaseSensitive bool `mapstructure:"caseSensitive"`

	// CheckBOM enables byte-order-mark detection during analysis. Implied
	// by StripBOM.
	CheckBOM bool `mapstructure:"bom"`
	// StripBOM removes detected BOMs after analysis.
	StripBOM bool `mapstructure:"stripBom"`
	// Target, when non-nil, rewrites files to the given line-ending kind
	// after analysis. Nil means analysis only.
	Target *rewrite.LineEnding `mapstructure:"-"`
	// DeleteBackups removes .bak siblings of analyzed files at the end of
	// the run.
	DeleteBackups bool `mapstructure:"deleteBackups"`
	// DetectBinary guards analysis with a binary-content sniff; binary
	// files are skipped with a marker instead of scanned.
	DetectBinary bool `mapstructure:"detectBinary"`

	// Concurrency is the worker pool size. 0 auto-detects CPU cores.
	Concurrency int `mapstructure:"concurrency"`
	// OutputFormat selects the final report rendering ("text", "json", "yaml").
	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	// Verbose enables debug logging (and disables the TUI in the CLI).
	Verbose bool `mapstructure:"verbose"`
	// TuiEnabled hints the CLI to use the live terminal UI.
	TuiEnabled bool `mapstructure:"tui"`

	// AppVersion is reported in logs; populated by the caller.
	AppVersion string `mapstructure:"-"`
	// ConfigFilePath is the loaded config file, for reporting.
	ConfigFilePath string `mapstructure:"-"`

	// EventHooks receives per-file status callbacks. Optional; NoOpHooks is
	// substituted when nil.
	EventHooks Hooks `mapstructure:"-"`
	// Logger is the logging backend. Required by NewEngine.
	Logger slog.Handler `mapstructure:"-"`
}

// ScanConfig derives the per-file analysis configuration from the options.
func (o *Options) ScanConfig() ScanConfig {
	return ScanConfig{
		CheckBOM:     o.CheckBOM || o.StripBOM,
		DetectBinary: o.DetectBinary,
	}
}

// HasRewrite reports whether a line-ending rewrite target is configured.
func (o *Options) HasRewrite() bool {
	return o.Target != nil
}
