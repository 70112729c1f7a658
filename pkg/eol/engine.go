package eol

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

// Engine orchestrates a full run: pattern expansion, parallel analysis, and
// the optional rewrite, strip, and backup-deletion phases.
//
// Operations on different files are independent and run on a fixed-size
// worker pool; operations on the same file are sequenced by construction,
// because each phase completes over the whole batch before the next starts
// and every phase reads the analysis produced in the first. Results are
// collected in submission order, so reporting is deterministic.
type Engine struct {
	opts        *Options
	logger      *slog.Logger
	hooks       Hooks
	concurrency int
}

// NewEngine validates the options and prepares an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("%w: at least one path pattern is required", ErrConfigValidation)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency cannot be negative", ErrConfigValidation)
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
		logger.Debug("Concurrency auto-detected", slog.Int("count", concurrency))
	}

	return &Engine{
		opts:        &opts,
		logger:      logger,
		hooks:       opts.EventHooks,
		concurrency: concurrency,
	}, nil
}

// Run executes the configured phases and returns the aggregated report.
//
// Configuration and expansion failures are fatal and abort before any file
// is mutated. Per-file failures during analysis are carried in the records;
// a per-file failure during rewrite or strip finishes its batch, then
// aborts the run with the first failure as the returned error. Cancellation
// via ctx stops dispatching new files; the file each worker is on runs to
// completion.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	startTime := time.Now()
	scanCfg := e.opts.ScanConfig()
	e.logger.Info("Starting run",
		slog.Int("patterns", len(e.opts.Patterns)),
		slog.Int("concurrency", e.concurrency),
		slog.Bool("checkBom", scanCfg.CheckBOM),
		slog.Bool("rewrite", e.opts.HasRewrite()),
	)

	report := Report{}
	report.Summary.Patterns = e.opts.Patterns
	report.Summary.Concurrency = e.concurrency
	report.Summary.SchemaVersion = ReportSchemaVersion

	finish := func(fatal bool, err error) (Report, error) {
		report.Summary.FatalErrorOccurred = fatal
		report.Summary.DurationSeconds = time.Since(startTime).Seconds()
		report.Summary.Timestamp = time.Now().UTC()
		e.summarize(&report)
		if hookErr := e.hooks.OnRunComplete(report); hookErr != nil {
			e.logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
		}
		e.logger.Info("Run finished",
			slog.Duration("duration", time.Since(startTime)),
			slog.Int("scanned", report.Summary.FilesScanned),
			slog.Int("errors", report.Summary.ErrorCount),
			slog.Bool("fatal", fatal),
		)
		return report, err
	}

	paths, err := ExpandPaths(e.opts)
	if err != nil {
		e.logger.Error("Pattern expansion failed", slog.String("error", err.Error()))
		return finish(true, err)
	}
	if len(paths) == 0 {
		err := fmt.Errorf("%w: no input files matched the given patterns", ErrExpandFailed)
		e.logger.Error(err.Error())
		return finish(true, err)
	}
	e.logger.Debug("Patterns expanded", slog.Int("files", len(paths)))

	for _, p := range paths {
		if rewrite.TempExists(p) {
			e.logger.Warn("Orphaned temp sibling from an interrupted rewrite; it will be overwritten if this file is rebuilt", slog.String("path", p))
		}
		if hookErr := e.hooks.OnFileDiscovered(p); hookErr != nil {
			e.logger.Warn("OnFileDiscovered hook failed", slog.String("path", p), slog.String("error", hookErr.Error()))
		}
	}

	report.Files = e.analyzePhase(ctx, paths, scanCfg)
	if ctx.Err() != nil {
		return finish(true, ctx.Err())
	}

	if e.opts.HasRewrite() {
		outcomes, rewriteErr := e.rewritePhase(ctx, report.Files)
		report.Rewrites = outcomes
		if rewriteErr != nil {
			e.logger.Error("Rewrite phase failed", slog.String("error", rewriteErr.Error()))
			return finish(true, rewriteErr)
		}
		if ctx.Err() != nil {
			return finish(true, ctx.Err())
		}
	}

	if e.opts.StripBOM {
		outcomes, stripErr := e.stripPhase(ctx, report.Files)
		report.Strips = outcomes
		if stripErr != nil {
			e.logger.Error("Strip phase failed", slog.String("error", stripErr.Error()))
			return finish(true, stripErr)
		}
		if ctx.Err() != nil {
			return finish(true, ctx.Err())
		}
	}

	if e.opts.DeleteBackups {
		outcomes, delErr := DeleteBackups(report.Files)
		report.BackupDeletions = outcomes
		if delErr != nil {
			e.logger.Error("Backup deletion failed", slog.String("error", delErr.Error()))
			return finish(true, delErr)
		}
	}

	return finish(false, nil)
}

// analyzePhase classifies every path on the worker pool, preserving input
// order in the returned slice.
func (e *Engine) analyzePhase(ctx context.Context, paths []string, cfg ScanConfig) []FileAnalysis {
	results := make([]FileAnalysis, len(paths))
	forEachIndexed(e.concurrency, len(paths), func(i int) {
		path := paths[i]
		if ctx.Err() != nil {
			results[i] = FileAnalysis{Path: path, Error: "run cancelled before analysis"}
			return
		}
		e.updateStatus(path, StatusAnalyzing, "", 0)
		start := time.Now()
		results[i] = Analyze(path, cfg)

		a := &results[i]
		switch {
		case a.Binary:
			e.updateStatus(path, StatusSkipped, "binary file detected, skipping", time.Since(start))
		case a.Error != "":
			e.updateStatus(path, StatusFailed, a.Error, time.Since(start))
		default:
			e.updateStatus(path, StatusSuccess, a.Classification(), time.Since(start))
		}
	})
	return results
}

// rewritePhase applies the configured target to every mutable analysis.
func (e *Engine) rewritePhase(ctx context.Context, results []FileAnalysis) ([]RewriteOutcome, error) {
	target := e.opts.Target
	if target == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, ErrNoRewriteTarget)
	}
	e.logger.Info("Rewriting line endings", slog.String("target", target.String()))

	outcomes := make([]RewriteOutcome, len(results))
	forEachIndexed(e.concurrency, len(results), func(i int) {
		a := &results[i]
		if ctx.Err() != nil {
			outcomes[i] = RewriteOutcome{Path: a.Path, Error: "run cancelled before rewrite"}
			return
		}
		e.updateStatus(a.Path, StatusRewriting, "", 0)
		start := time.Now()
		outcomes[i] = rewriteOne(a, *target)

		o := &outcomes[i]
		switch {
		case o.Error != "":
			e.updateStatus(a.Path, StatusFailed, o.Error, time.Since(start))
		case o.Rewritten:
			e.updateStatus(a.Path, StatusSuccess, "rewritten", time.Since(start))
		default:
			e.updateStatus(a.Path, StatusSkipped, "rewrite skipped", time.Since(start))
		}
	})

	for _, o := range outcomes {
		if o.Error != "" && ctx.Err() == nil {
			return outcomes, fmt.Errorf("%w %s: %s", ErrRewriteFailed, o.Path, o.Error)
		}
	}
	return outcomes, nil
}

// stripPhase removes detected BOMs from every mutable analysis.
func (e *Engine) stripPhase(ctx context.Context, results []FileAnalysis) ([]StripOutcome, error) {
	if !e.opts.ScanConfig().CheckBOM {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, ErrBOMNotChecked)
	}
	e.logger.Info("Stripping byte-order marks")

	outcomes := make([]StripOutcome, len(results))
	forEachIndexed(e.concurrency, len(results), func(i int) {
		a := &results[i]
		if ctx.Err() != nil {
			outcomes[i] = StripOutcome{Path: a.Path, Error: "run cancelled before BOM strip"}
			return
		}
		e.updateStatus(a.Path, StatusStripping, "", 0)
		start := time.Now()
		outcomes[i] = stripOne(a)

		o := &outcomes[i]
		switch {
		case o.Error != "":
			e.updateStatus(a.Path, StatusFailed, o.Error, time.Since(start))
		case o.Removed:
			e.updateStatus(a.Path, StatusSuccess, fmt.Sprintf("BOM removed: %s", o.BOM), time.Since(start))
		default:
			e.updateStatus(a.Path, StatusSkipped, "no BOM to remove", time.Since(start))
		}
	})

	for _, o := range outcomes {
		if o.Error != "" && ctx.Err() == nil {
			return outcomes, fmt.Errorf("%w from %s: %s", ErrStripFailed, o.Path, o.Error)
		}
	}
	return outcomes, nil
}

// updateStatus forwards a per-file status change to the hooks.
func (e *Engine) updateStatus(path string, status Status, message string, duration time.Duration) {
	if err := e.hooks.OnFileStatusUpdate(path, status, message, duration); err != nil {
		e.logger.Warn("OnFileStatusUpdate hook failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// summarize fills the report's aggregate counters from its detail slices.
func (e *Engine) summarize(report *Report) {
	s := &report.Summary
	s.FilesScanned = len(report.Files)
	for i := range report.Files {
		a := &report.Files[i]
		switch {
		case a.Binary:
			s.BinarySkippedCount++
		case a.Error != "":
			s.ErrorCount++
		case a.HasMixedLineEndings():
			s.MixedCount++
		case a.IsLFOnly():
			s.LFOnlyCount++
		case a.IsCRLFOnly():
			s.CRLFOnlyCount++
		}
		if a.HasBOM() {
			s.WithBOMCount++
		}
	}
	for _, o := range report.Rewrites {
		if o.Error != "" {
			s.ErrorCount++
		} else if o.Rewritten {
			s.RewrittenCount++
		} else {
			s.RewriteSkipped++
		}
	}
	for _, o := range report.Strips {
		if o.Error != "" {
			s.ErrorCount++
		} else if o.Removed {
			s.BOMStrippedCount++
		}
	}
	for _, o := range report.BackupDeletions {
		switch {
		case o.Error != "":
			s.ErrorCount++
		case o.Deleted:
			s.BackupsDeleted++
		default:
			s.BackupsNotFound++
		}
	}
}
