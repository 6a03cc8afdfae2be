// Package encoding converts bank exports in legacy Spanish code pages to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// peekLen is how much input is inspected before choosing a decoder.
const peekLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decoders maps chardet charset names to the decoder used for them.
var decoders = map[string]xencoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// Detect names the charset of buf: "UTF-8" when it is valid UTF-8 (with or without BOM),
// the chardet guess otherwise, and "windows-1252" when nothing better is known.
func Detect(buf []byte) string {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return "UTF-8"
	case bytes.HasPrefix(buf, bomUTF16LE):
		return "UTF-16LE"
	case bytes.HasPrefix(buf, bomUTF16BE):
		return "UTF-16BE"
	case utf8.Valid(buf):
		return "UTF-8"
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		if _, known := decoders[result.Charset]; known || result.Charset == "UTF-8" {
			return result.Charset
		}
	}

	return "windows-1252"
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8, with any byte order mark
// removed, and the charset it detected.
func NewUTF8Reader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, peekLen)

	buf, err := br.Peek(peekLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(buf)

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
	case bytes.HasPrefix(buf, bomUTF16LE), bytes.HasPrefix(buf, bomUTF16BE):
		_, _ = br.Discard(2)
	}

	dec, ok := decoders[charset]
	if !ok {
		return br, charset, nil
	}

	return transform.NewReader(br, dec.NewDecoder()), charset, nil
}
