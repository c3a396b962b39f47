// Package encoding normalizes uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// Charset names reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
)

var boms = []struct {
	prefix  []byte
	charset string
	decoder encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8, nil},
	{[]byte{0xFF, 0xFE}, UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// heuristics maps chardet results to decoders. UTF-8 needs no decoding.
var heuristics = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// Detect returns a UTF-8 reader over r and the charset it was decoded from.
// A byte order mark wins; valid UTF-8 passes through; otherwise chardet
// guesses and Windows-1252 is the fallback.
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		if bom.decoder == nil {
			_, _ = br.Discard(len(bom.prefix))
			return br, bom.charset, nil
		}

		return transform.NewReader(br, bom.decoder.NewDecoder()), bom.charset, nil
	}

	if utf8.Valid(buf) {
		return br, UTF8, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		if result.Charset == UTF8 {
			return br, UTF8, nil
		}

		if enc, ok := heuristics[result.Charset]; ok {
			charset := Windows1252
			if enc == charmap.ISO8859_9 {
				charset = ISO88599
			}

			return transform.NewReader(br, enc.NewDecoder()), charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// NewUTF8Reader is Detect without the charset name.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}
