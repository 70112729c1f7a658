// Package bom detects byte-order marks at the start of files.
//
// Detection matches raw signature bytes against the five well-known Unicode
// BOMs. Signature order matters: the UTF-32 LE mark begins with the same two
// bytes as the UTF-16 LE mark, so the 4-byte signatures are always tested
// before the shorter ones.
package bom

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// MaxSize is the longest BOM signature in bytes (UTF-32).
const MaxSize = 4

// Kind identifies the byte-order mark found at the start of a file, or None.
type Kind int

const (
	None Kind = iota
	UTF8
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

var signatures = map[Kind][]byte{
	UTF8:    {0xEF, 0xBB, 0xBF},
	UTF16LE: {0xFF, 0xFE},
	UTF16BE: {0xFE, 0xFF},
	UTF32LE: {0xFF, 0xFE, 0x00, 0x00},
	UTF32BE: {0x00, 0x00, 0xFE, 0xFF},
}

// detectOrder lists kinds longest-signature-first. UTF-32 LE must precede
// UTF-16 LE or its mark would be claimed by the shared 2-byte prefix.
var detectOrder = []Kind{UTF32LE, UTF32BE, UTF8, UTF16LE, UTF16BE}

// String returns the human-readable encoding name for the kind.
func (k Kind) String() string {
	switch k {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16 LE"
	case UTF16BE:
		return "UTF-16 BE"
	case UTF32LE:
		return "UTF-32 LE"
	case UTF32BE:
		return "UTF-32 BE"
	default:
		return "none"
	}
}

// MarshalText renders the kind by its String form in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalYAML renders the kind by its String form; yaml.v3 does not consult
// encoding.TextMarshaler.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Size returns the signature length in bytes: 3 for UTF-8, 2 for the UTF-16
// variants, 4 for the UTF-32 variants, and 0 for None.
func (k Kind) Size() int {
	return len(signatures[k])
}

// Signature returns a copy of the kind's marker bytes, or nil for None.
func (k Kind) Signature() []byte {
	sig, ok := signatures[k]
	if !ok {
		return nil
	}
	return append([]byte(nil), sig...)
}

// Encoding returns the x/text encoding corresponding to the detected mark,
// so callers that want to decode the file's content can build a reader for
// it. None has no associated encoding and returns nil.
func (k Kind) Encoding() encoding.Encoding {
	switch k {
	case UTF8:
		return unicode.UTF8BOM
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM)
	default:
		return nil
	}
}

// Sniff matches the given prefix bytes against the known signatures,
// longest first. A prefix shorter than every signature yields None.
func Sniff(prefix []byte) Kind {
	for _, k := range detectOrder {
		if bytes.HasPrefix(prefix, signatures[k]) {
			return k
		}
	}
	return None
}

// Detect reads up to the first four bytes of the file at path and returns
// the matching Kind. The file is opened read-only and never modified, and
// detection shares no state with line-ending scans of the same file. A file
// shorter than the smallest signature yields None without error.
func Detect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return None, err
	}
	defer f.Close()

	buf := make([]byte, MaxSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return None, err
	}
	return Sniff(buf[:n]), nil
}
