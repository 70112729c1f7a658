// Package rewrite mutates files in place using a backup-then-replace
// protocol: the original is copied to a lazily created .bak sibling, the new
// content is streamed to a temporary sibling prefixed with "_", and the
// temporary file is renamed over the original only after a successful flush.
// A crash before the rename leaves the original untouched (the temp sibling
// is orphaned for manual cleanup); the rename itself is atomic at the
// filesystem level, so a reader never observes a half-written file under
// the original name.
package rewrite

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stackvity/eol-converter/pkg/eol/bom"
)

// chunkSize is the copy buffer size for byte-for-byte rebuilds.
const chunkSize = 4096

// LineEnding is a rewrite target. It is never a scan result: scans produce
// counts, and a file may well contain both endings at once.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

// String returns "LF" or "CRLF".
func (e LineEnding) String() string {
	if e == CRLF {
		return "CRLF"
	}
	return "LF"
}

// Bytes returns the terminator byte sequence for the target.
func (e LineEnding) Bytes() []byte {
	if e == CRLF {
		return []byte("\r\n")
	}
	return []byte("\n")
}

// BackupPath returns the sibling backup path for the given file:
// "notes.txt" becomes "notes.txt.bak", "Makefile" becomes "Makefile.bak".
func BackupPath(path string) string {
	return path + ".bak"
}

// tempPath returns the transient sibling used during a rebuild, named by
// prefixing the original filename with an underscore.
func tempPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, "_"+name)
}

// TempExists reports whether an orphaned temp sibling from an earlier
// interrupted rebuild is present for path.
func TempExists(path string) bool {
	_, err := os.Stat(tempPath(path))
	return err == nil
}

// EnsureBackup copies path to its .bak sibling unless one already exists.
// The first mutation of a path wins: later mutations, in this run or any
// other, never overwrite an existing backup, so the backup always holds the
// original pre-mutation bytes. The existence check is a filesystem probe
// rather than in-process state, which makes it idempotent across runs but
// not safe against a concurrent external writer.
func EnsureBackup(path string) error {
	backupPath := BackupPath(path)
	if _, err := os.Stat(backupPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat backup %s: %w", backupPath, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for backup: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create backup %s: %w", backupPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to backup %s: %w", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close backup %s: %w", backupPath, err)
	}
	return nil
}

// DeleteBackup removes the .bak sibling for path if one exists. It reports
// whether a backup was actually deleted.
func DeleteBackup(path string) (bool, error) {
	backupPath := BackupPath(path)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("stat backup %s: %w", backupPath, err)
	}
	if err := os.Remove(backupPath); err != nil {
		return false, fmt.Errorf("delete backup %s: %w", backupPath, err)
	}
	return true, nil
}

// hasTrailingNewline inspects only the final byte of the file via a
// positioned read. An empty file has no trailing newline.
func hasTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// LineEndings rebuilds the file at path so every line terminator is the
// target sequence, preserving content and the exact trailing-newline state
// of the original. The caller decides whether a rebuild is warranted; this
// function always rebuilds.
//
// The original is streamed line by line (a line ends at any LF, with or
// without a preceding CR), so memory use is bounded by the longest line,
// not the file size.
//
// The rewrite assumes single-byte text content. A file in a NUL-interleaved
// encoding such as UTF-16 still contains raw LF bytes, and rewriting it
// corrupts the surrounding code units; callers must screen such files out
// first, which is what the binary guard in the analysis phase does.
func LineEndings(path string, target LineEnding) error {
	trailing, err := hasTrailingNewline(path)
	if err != nil {
		return fmt.Errorf("check trailing newline of %s: %w", path, err)
	}

	if err := EnsureBackup(path); err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	outPath := tempPath(path)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create temp file %s: %w", outPath, err)
	}

	if err := writeWithEndings(bufio.NewReaderSize(in, chunkSize), out, target, trailing); err != nil {
		out.Close()
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", outPath, err)
	}

	if err := os.Rename(outPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// writeWithEndings streams lines from r to w, emitting the target ending
// after every line except conditionally the last. The terminator after the
// final line is written only when the original ended with a newline; this
// is the trailing-newline preservation invariant.
func writeWithEndings(r *bufio.Reader, w io.Writer, target LineEnding, trailing bool) error {
	bw := bufio.NewWriterSize(w, chunkSize)
	ending := target.Bytes()
	first := true

	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			content := trimEnding(line)
			if !first {
				if _, werr := bw.Write(ending); werr != nil {
					return werr
				}
			}
			if _, werr := bw.Write(content); werr != nil {
				return werr
			}
			first = false
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	if trailing && !first {
		if _, err := bw.Write(ending); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// trimEnding strips one trailing LF or CRLF from a line returned by
// ReadBytes. A CR not followed by LF is line content and survives.
func trimEnding(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}

// StripBOM rebuilds the file at path with its leading byte-order mark
// removed, copying every remaining byte verbatim. Line endings are left
// alone: stripping is independent of line-ending rewriting. The kind must
// be the mark actually present; its Size determines how many bytes are
// skipped.
func StripBOM(path string, kind bom.Kind) error {
	size := kind.Size()
	if size == 0 {
		return nil
	}

	if err := EnsureBackup(path); err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	skip := make([]byte, size)
	if _, err := io.ReadFull(in, skip); err != nil {
		return fmt.Errorf("skip BOM of %s: %w", path, err)
	}

	outPath := tempPath(path)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create temp file %s: %w", outPath, err)
	}

	if _, err := io.CopyBuffer(out, in, make([]byte, chunkSize)); err != nil {
		out.Close()
		return fmt.Errorf("copy content of %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", outPath, err)
	}

	if err := os.Rename(outPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
