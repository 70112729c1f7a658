package eol

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/stackvity/eol-converter/pkg/eol/bom"
	"github.com/stackvity/eol-converter/pkg/eol/rewrite"
)

// RewriteOutcome records the result of one file's line-ending rewrite.
type RewriteOutcome struct {
	Path      string `json:"path" yaml:"path"`
	Rewritten bool   `json:"rewritten" yaml:"rewritten"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// StripOutcome records the result of one file's BOM removal.
type StripOutcome struct {
	Path    string    `json:"path" yaml:"path"`
	Removed bool      `json:"removed" yaml:"removed"`
	BOM     *bom.Kind `json:"bom,omitempty" yaml:"bom,omitempty"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// BackupOutcome records the result of one file's backup deletion.
type BackupOutcome struct {
	Path    string `json:"path" yaml:"path"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// needsRebuild applies the rewrite decision policy: rebuild when endings are
// mixed, or when the file is exclusively the other kind. A file already
// exclusively in the target kind is skipped, as is a file with no line
// endings at all.
func needsRebuild(a *FileAnalysis, target rewrite.LineEnding) bool {
	if a.HasMixedLineEndings() {
		return true
	}
	if target == rewrite.LF && a.IsCRLFOnly() {
		return true
	}
	if target == rewrite.CRLF && a.IsLFOnly() {
		return true
	}
	return false
}

// rewriteOne executes the rewrite decision for a single analyzed file.
func rewriteOne(a *FileAnalysis, target rewrite.LineEnding) RewriteOutcome {
	outcome := RewriteOutcome{Path: a.Path}
	if !a.Mutable() || !needsRebuild(a, target) {
		return outcome
	}
	if err := rewrite.LineEndings(a.Path, target); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Rewritten = true
	return outcome
}

// stripOne removes the BOM from a single analyzed file, if it has one.
// Files with errors, binary skips, or no detected mark are skipped without
// being counted as failures.
func stripOne(a *FileAnalysis) StripOutcome {
	outcome := StripOutcome{Path: a.Path}
	if !a.Mutable() || !a.HasBOM() {
		return outcome
	}
	kind := *a.BOM
	outcome.BOM = &kind
	if err := rewrite.StripBOM(a.Path, kind); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Removed = true
	return outcome
}

// deleteOne removes the backup sibling of a single analyzed file.
func deleteOne(a *FileAnalysis) BackupOutcome {
	outcome := BackupOutcome{Path: a.Path}
	if a.Error != "" {
		return outcome
	}
	deleted, err := rewrite.DeleteBackup(a.Path)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Deleted = deleted
	return outcome
}

// forEachIndexed runs fn(i) for i in [0, n) on a fixed-size worker pool,
// used for the fan-out/fan-in over per-file operations. Callers write
// results into slot i of a preallocated slice, so output order always
// matches input order regardless of worker interleaving.
func forEachIndexed(workers, n int, fn func(i int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// AnalyzeAll analyzes every path with the given configuration on a worker
// pool, returning one record per path in input order.
func AnalyzeAll(paths []string, cfg ScanConfig, concurrency int) []FileAnalysis {
	results := make([]FileAnalysis, len(paths))
	forEachIndexed(concurrency, len(paths), func(i int) {
		results[i] = Analyze(paths[i], cfg)
	})
	return results
}

// Rewrite rewrites every analyzed file to the target line-ending kind.
//
// A nil target is a configuration error detected before any file is
// touched. Per-file failures are recorded in their outcomes; after the
// whole batch has been processed, the first failure is also returned as a
// hard error. Files rewritten before a failure stay rewritten; their .bak
// backups are the recovery mechanism, not a transaction log.
func Rewrite(results []FileAnalysis, target *rewrite.LineEnding) ([]RewriteOutcome, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, ErrNoRewriteTarget)
	}

	outcomes := make([]RewriteOutcome, len(results))
	forEachIndexed(0, len(results), func(i int) {
		outcomes[i] = rewriteOne(&results[i], *target)
	})

	for _, o := range outcomes {
		if o.Error != "" {
			return outcomes, fmt.Errorf("%w %s: %s", ErrRewriteFailed, o.Path, o.Error)
		}
	}
	return outcomes, nil
}

// StripBOM removes detected byte-order marks from every analyzed file.
//
// bomChecked must reflect whether the batch was analyzed with BOM detection
// enabled; invoking strip on an unchecked batch is a configuration error.
// Per-file behavior matches Rewrite.
func StripBOM(results []FileAnalysis, bomChecked bool) ([]StripOutcome, error) {
	if !bomChecked {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, ErrBOMNotChecked)
	}

	outcomes := make([]StripOutcome, len(results))
	forEachIndexed(0, len(results), func(i int) {
		outcomes[i] = stripOne(&results[i])
	})

	for _, o := range outcomes {
		if o.Error != "" {
			return outcomes, fmt.Errorf("%w from %s: %s", ErrStripFailed, o.Path, o.Error)
		}
	}
	return outcomes, nil
}

// DeleteBackups removes the .bak siblings of every analyzed file that has
// one. Files whose analysis failed are left alone, since their backups may
// be the only good copy.
func DeleteBackups(results []FileAnalysis) ([]BackupOutcome, error) {
	outcomes := make([]BackupOutcome, len(results))
	for i := range results {
		outcomes[i] = deleteOne(&results[i])
	}

	for _, o := range outcomes {
		if o.Error != "" {
			return outcomes, fmt.Errorf("%w for %s: %s", ErrBackupDelete, o.Path, o.Error)
		}
	}
	return outcomes, nil
}
