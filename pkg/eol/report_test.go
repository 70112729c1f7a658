package eol_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/stackvity/eol-converter/pkg/eol"
	"github.com/stackvity/eol-converter/pkg/eol/bom"
)

const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "files"],
  "properties": {
    "summary": {
      "type": "object",
      "required": [
        "patterns", "filesScanned", "mixedCount", "lfOnlyCount",
        "crlfOnlyCount", "withBomCount", "binarySkippedCount", "errorCount",
        "fatalError", "concurrency", "durationSeconds", "timestamp",
        "schemaVersion"
      ],
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "filesScanned": {"type": "integer", "minimum": 0},
        "errorCount": {"type": "integer", "minimum": 0},
        "fatalError": {"type": "boolean"},
        "schemaVersion": {"type": "string"}
      }
    },
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "lfCount", "crlfCount"],
        "properties": {
          "path": {"type": "string"},
          "lfCount": {"type": "integer", "minimum": 0},
          "crlfCount": {"type": "integer", "minimum": 0},
          "bom": {"type": "string"},
          "binary": {"type": "boolean"},
          "error": {"type": "string"}
        }
      }
    }
  }
}`

func sampleReport() eol.Report {
	kind := bom.UTF8
	report := eol.Report{
		Files: []eol.FileAnalysis{
			{Path: "a.txt", LFCount: 3, CRLFCount: 1, BOM: &kind},
			{Path: "b.txt", LFCount: 2},
			{Path: "c.dat", Binary: true},
		},
		Rewrites: []eol.RewriteOutcome{
			{Path: "a.txt", Rewritten: true},
			{Path: "b.txt"},
		},
	}
	report.Summary = eol.ReportSummary{
		Patterns:        []string{"*.txt"},
		FilesScanned:    3,
		MixedCount:      1,
		LFOnlyCount:     1,
		WithBOMCount:    1,
		RewrittenCount:  1,
		RewriteSkipped:  1,
		Concurrency:     4,
		DurationSeconds: 0.2,
		Timestamp:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SchemaVersion:   eol.ReportSchemaVersion,
	}
	return report
}

func TestReport_EncodeJSONMatchesSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().EncodeJSON(&buf))

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewBytesLoader(buf.Bytes()),
	)
	require.NoError(t, err)
	assert.True(t, result.Valid(), "schema violations: %v", result.Errors())
}

func TestReport_EncodeJSONFieldContents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().EncodeJSON(&buf))
	out := buf.String()

	assert.Contains(t, out, `"bom": "UTF-8"`)
	assert.Contains(t, out, `"schemaVersion": "1.0"`)
	// Empty optional fields are omitted, not emitted as zero values.
	assert.NotContains(t, out, `"error"`)
	assert.NotContains(t, out, `"strips"`)
}

func TestReport_EncodeYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().EncodeYAML(&buf))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, summary["filesScanned"])
	assert.Equal(t, "1.0", summary["schemaVersion"])

	files, ok := decoded["files"].([]any)
	require.True(t, ok)
	assert.Len(t, files, 3)
}
