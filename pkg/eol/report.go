package eol

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Report summarizes the result of a single Engine run.
type Report struct {
	Summary         ReportSummary    `json:"summary" yaml:"summary"`
	Files           []FileAnalysis   `json:"files" yaml:"files"`
	Rewrites        []RewriteOutcome `json:"rewrites,omitempty" yaml:"rewrites,omitempty"`
	Strips          []StripOutcome   `json:"strips,omitempty" yaml:"strips,omitempty"`
	BackupDeletions []BackupOutcome  `json:"backupDeletions,omitempty" yaml:"backupDeletions,omitempty"`
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	Patterns           []string  `json:"patterns" yaml:"patterns"`
	FilesScanned       int       `json:"filesScanned" yaml:"filesScanned"`
	MixedCount         int       `json:"mixedCount" yaml:"mixedCount"`
	LFOnlyCount        int       `json:"lfOnlyCount" yaml:"lfOnlyCount"`
	CRLFOnlyCount      int       `json:"crlfOnlyCount" yaml:"crlfOnlyCount"`
	WithBOMCount       int       `json:"withBomCount" yaml:"withBomCount"`
	BinarySkippedCount int       `json:"binarySkippedCount" yaml:"binarySkippedCount"`
	ErrorCount         int       `json:"errorCount" yaml:"errorCount"`
	RewrittenCount     int       `json:"rewrittenCount" yaml:"rewrittenCount"`
	RewriteSkipped     int       `json:"rewriteSkippedCount" yaml:"rewriteSkippedCount"`
	BOMStrippedCount   int       `json:"bomStrippedCount" yaml:"bomStrippedCount"`
	BackupsDeleted     int       `json:"backupsDeleted" yaml:"backupsDeleted"`
	BackupsNotFound    int       `json:"backupsNotFound" yaml:"backupsNotFound"`
	FatalErrorOccurred bool      `json:"fatalError" yaml:"fatalError"`
	Concurrency        int       `json:"concurrency" yaml:"concurrency"`
	DurationSeconds    float64   `json:"durationSeconds" yaml:"durationSeconds"`
	Timestamp          time.Time `json:"timestamp" yaml:"timestamp"`
	SchemaVersion      string    `json:"schemaVersion" yaml:"schemaVersion"`
}

// EncodeJSON writes the report to w as indented JSON.
func (r Report) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// EncodeYAML writes the report to w as YAML.
func (r Report) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}
