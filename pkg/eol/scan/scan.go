// Package scan counts line-ending conventions in a byte stream.
//
// The scanner attributes every LF byte to exactly one of two counters: CRLF
// when the immediately preceding byte was CR, LF otherwise. A CR with no
// following LF (old-Mac line endings) is invisible to this model. The scan
// is a single pass over fixed-size chunks, so memory use is constant
// regardless of file size or line length.
package scan

import (
	"bytes"
	"io"
	"os"
)

const (
	// ChunkSize is the read buffer size for scanning. Large enough to
	// amortize read syscalls, small enough to bound memory on huge files.
	ChunkSize = 4096

	// BinarySampleSize is how many leading bytes the binary guard inspects.
	BinarySampleSize = 8192

	// binaryThresholdPct is the percentage of non-text bytes in the sample
	// above which a file is treated as binary.
	binaryThresholdPct = 30
)

// Counts holds the line-ending tally for one stream.
type Counts struct {
	LF   int
	CRLF int
}

// Total returns the number of LF bytes observed, which equals LF + CRLF by
// construction.
func (c Counts) Total() int {
	return c.LF + c.CRLF
}

// Count scans r to completion and tallies LF and CRLF occurrences.
//
// State is a single bit ("previous byte was CR") carried across chunk
// boundaries, so a CRLF pair split between reads is still counted as one
// CRLF. A trailing lone CR at end of stream is discarded uncounted. An
// empty stream yields zero counts and no error.
func Count(r io.Reader) (Counts, error) {
	var counts Counts
	buf := make([]byte, ChunkSize)
	prevWasCR := false

	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case '\r':
				prevWasCR = true
			case '\n':
				if prevWasCR {
					counts.CRLF++
				} else {
					counts.LF++
				}
				prevWasCR = false
			default:
				prevWasCR = false
			}
		}
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return counts, err
		}
	}
}

// CountFile opens the file at path and scans it with Count. Count reads in
// ChunkSize chunks already, so no extra buffering layer is needed.
func CountFile(path string) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, err
	}
	defer f.Close()
	return Count(f)
}

// IsBinaryFile samples the first BinarySampleSize bytes of the file at path
// and reports whether it looks like binary content: any null byte, or more
// than 30% of sampled bytes outside the text-byte set. An empty file is not
// binary.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, BinarySampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return IsBinary(buf[:n]), nil
}

// IsBinary applies the binary heuristic to an already-read sample.
func IsBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0x00) >= 0 {
		return true
	}
	nonText := 0
	for _, b := range sample {
		if !isTextByte(b) {
			nonText++
		}
	}
	return nonText*100 > len(sample)*binaryThresholdPct
}

// isTextByte reports whether b is printable ASCII, common whitespace, or a
// high byte (possible UTF-8 continuation).
func isTextByte(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' || b >= 128
}
