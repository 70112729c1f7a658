package eol

import (
	"fmt"

	"github.com/stackvity/eol-converter/pkg/eol/bom"
	"github.com/stackvity/eol-converter/pkg/eol/scan"
)

// FileAnalysis records the line-ending classification of a single file.
// It is produced once per file per run, immutable after creation, and
// consumed by orchestration to decide rewrite and strip actions.
//
// BOM is nil when detection was not requested for the run; a non-nil
// pointer to bom.None means detection ran and found nothing. Collapsing
// these two cases has historically confused "no BOM" with "not checked",
// so the distinction is kept explicit.
type FileAnalysis struct {
	Path      string    `json:"path" yaml:"path"`
	LFCount   int       `json:"lfCount" yaml:"lfCount"`
	CRLFCount int       `json:"crlfCount" yaml:"crlfCount"`
	BOM       *bom.Kind `json:"bom,omitempty" yaml:"bom,omitempty"`
	Binary    bool      `json:"binary,omitempty" yaml:"binary,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasMixedLineEndings reports whether the file contains both conventions.
func (a *FileAnalysis) HasMixedLineEndings() bool {
	return a.LFCount > 0 && a.CRLFCount > 0
}

// IsLFOnly reports whether every line ending in the file is a bare LF.
func (a *FileAnalysis) IsLFOnly() bool {
	return a.LFCount > 0 && a.CRLFCount == 0
}

// IsCRLFOnly reports whether every line ending in the file is a CRLF.
func (a *FileAnalysis) IsCRLFOnly() bool {
	return a.LFCount == 0 && a.CRLFCount > 0
}

// HasBOM reports whether BOM detection ran and found a mark.
func (a *FileAnalysis) HasBOM() bool {
	return a.BOM != nil && *a.BOM != bom.None
}

// Mutable reports whether rewrite or strip operations may touch this file.
// Binary skips and analysis errors both disqualify it.
func (a *FileAnalysis) Mutable() bool {
	return a.Error == "" && !a.Binary
}

// Classification returns a short human-readable label for the file's
// line-ending convention.
func (a *FileAnalysis) Classification() string {
	switch {
	case a.Binary:
		return "binary"
	case a.Error != "":
		return "error"
	case a.HasMixedLineEndings():
		return "mixed"
	case a.IsLFOnly():
		return "LF only"
	case a.IsCRLFOnly():
		return "CRLF only"
	default:
		return "no line endings"
	}
}

// Analyze inspects the file at path and returns its analysis record.
//
// It never returns an error: every failure mode is encoded in the record,
// either as the Binary skip marker or as the Error field, so a batch of
// analyses always yields one record per input path.
func Analyze(path string, cfg ScanConfig) FileAnalysis {
	result := FileAnalysis{Path: path}

	if cfg.DetectBinary {
		binary, err := scan.IsBinaryFile(path)
		if err != nil {
			result.Error = fmt.Sprintf("failed to check file type: %v", err)
			return result
		}
		if binary {
			result.Binary = true
			return result
		}
	}

	if cfg.CheckBOM {
		kind, err := bom.Detect(path)
		if err != nil {
			result.Error = fmt.Sprintf("failed to detect BOM: %v", err)
			return result
		}
		result.BOM = &kind
	}

	counts, err := scan.CountFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.LFCount = counts.LF
	result.CRLFCount = counts.CRLF
	return result
}
