package eol

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPaths expands the options' glob patterns into concrete file paths.
//
// Patterns are expanded in the order given; within one pattern, matches are
// sorted case-insensitively. Matching is case-insensitive unless
// Options.CaseSensitive is set. Folder, when configured, prefixes every
// pattern, and Recursive injects a **/ component so plain patterns reach
// into subdirectories. A pattern that matches nothing but literally names
// an existing file is taken as-is, so exact paths work without glob
// escaping. Only regular files are returned; directories and symlinks are
// never matched.
func ExpandPaths(opts *Options) ([]string, error) {
	result := make([]string, 0, len(opts.Patterns))
	for _, pattern := range opts.Patterns {
		full := buildPattern(pattern, opts.Folder, opts.Recursive)

		matches, err := globFiles(full, opts.CaseSensitive)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", ErrExpandFailed, pattern, err)
		}

		if len(matches) == 0 {
			if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
				result = append(result, filepath.FromSlash(full))
			}
			continue
		}

		sort.Slice(matches, func(i, j int) bool {
			return strings.ToLower(matches[i]) < strings.ToLower(matches[j])
		})
		result = append(result, matches...)
	}
	return result, nil
}

// buildPattern applies the folder prefix and recursive component to a user
// pattern, using slash separators throughout (doublestar matches on slash).
func buildPattern(pattern, folder string, recursive bool) string {
	pattern = filepath.ToSlash(pattern)
	folder = strings.TrimSuffix(filepath.ToSlash(folder), "/")
	if folder == "." {
		folder = ""
	}

	if recursive && !strings.Contains(pattern, "**/") {
		pattern = "**/" + pattern
	}
	if folder != "" {
		pattern = folder + "/" + pattern
	}
	return pattern
}

// globFiles walks the pattern's fixed base directory and collects regular
// files whose relative path matches the glob part. The walk is bounded: for
// patterns without **, directories deeper than the pattern can reach are
// pruned instead of traversed.
func globFiles(pattern string, caseSensitive bool) ([]string, error) {
	base, glob := doublestar.SplitPattern(pattern)

	if !caseSensitive {
		glob = strings.ToLower(glob)
	}

	// Depth bound in path separators; -1 means unbounded (** present).
	maxDepth := -1
	if !strings.Contains(glob, "**") {
		maxDepth = strings.Count(glob, "/")
	}

	var matches []string
	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == base && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			// Unreadable subtrees are skipped, not fatal; per-file errors
			// surface later when analysis opens the file.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(base, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if maxDepth >= 0 && strings.Count(rel, "/")+1 > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		candidate := rel
		if !caseSensitive {
			candidate = strings.ToLower(candidate)
		}
		ok, matchErr := doublestar.Match(glob, candidate)
		if matchErr != nil {
			return fmt.Errorf("bad pattern %q: %w", glob, matchErr)
		}
		if ok {
			if base == "." {
				matches = append(matches, filepath.FromSlash(rel))
			} else {
				matches = append(matches, filepath.Join(base, filepath.FromSlash(rel)))
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return matches, nil
}
