package textenc

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Document is a decoded input file.
type Document struct {
	Path string
	// Charset is the encoding the bytes were decoded from (e.g. "UTF-8", "windows-1252").
	Charset string
	Text    string
}

var utf8BOM = []byte("\xef\xbb\xbf")

// The corpus was exported from word processors; page breaks and no-break spaces show up mid-question.
var reControl = regexp.MustCompile(`[\f\v\x{00A0}\x{200B}]`)

// ReadFile reads path and decodes it to normalized UTF-8 text.
func ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	text, charset, err := Decode(raw)
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Document{Path: path, Charset: charset, Text: text}, nil
}

// Decode converts raw file content to UTF-8. Valid UTF-8 is used as is; anything
// else goes through charset detection, falling back to Windows-1252 which is a
// superset of Latin-1 for the printable range.
// The result has Unix line endings and is NFC-normalized so "á" compares equal
// whether it was stored precomposed or as "a" + combining accent.
func Decode(raw []byte) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	charset := "UTF-8"
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		enc, name := detect(raw)
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", name, err
		}
		charset = name
		text = string(decoded)
	}

	return Normalize(text), charset, nil
}

// Normalize applies NFC, unifies line endings and replaces layout control characters with spaces.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = reControl.ReplaceAllString(s, " ")
	return norm.NFC.String(s)
}

func detect(raw []byte) (encoding.Encoding, string) {
	res, err := chardet.NewTextDetector().DetectBest(raw)
	if err == nil && res != nil {
		switch strings.ToLower(res.Charset) {
		case "iso-8859-1":
			return charmap.ISO8859_1, res.Charset
		case "iso-8859-15":
			return charmap.ISO8859_15, res.Charset
		}
	}
	return charmap.Windows1252, "windows-1252"
}
