package eol

import "errors"

// Sentinel errors returned by the batch entry points and the engine.
// Callers can test against these with errors.Is.
var (
	// ErrConfigValidation indicates the provided Options failed validation
	// before any file was touched. Batch-level: no mutation has happened.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrNoRewriteTarget indicates Rewrite was invoked without a target
	// line-ending kind. Detected before any disk access.
	ErrNoRewriteTarget = errors.New("no line ending rewrite target set")

	// ErrBOMNotChecked indicates StripBOM was invoked for a batch that was
	// analyzed without BOM detection enabled.
	ErrBOMNotChecked = errors.New("BOM detection must be enabled to strip BOMs")

	// ErrRewriteFailed indicates at least one file in a rewrite batch failed.
	// The per-file outcomes still cover the whole batch; files mutated before
	// the failure stay mutated, with their backups as the recovery mechanism.
	ErrRewriteFailed = errors.New("failed to rewrite file")

	// ErrStripFailed is the BOM-strip counterpart of ErrRewriteFailed.
	ErrStripFailed = errors.New("failed to strip BOM")

	// ErrBackupDelete indicates a backup file existed but could not be removed.
	ErrBackupDelete = errors.New("failed to delete backup")

	// ErrExpandFailed indicates glob expansion of the input patterns failed.
	ErrExpandFailed = errors.New("failed to expand path patterns")
)
