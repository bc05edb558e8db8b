package textenc

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestDecodeUTF8(t *testing.T) {
	in := []byte("\xef\xbb\xbf1.- ¿Qué dice el artículo?\r\na) Sí\r\n")
	got, charset, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if charset != "UTF-8" {
		t.Errorf("charset = %q, want UTF-8", charset)
	}
	want := "1.- ¿Qué dice el artículo?\na) Sí\n"
	if got != want {
		t.Errorf("Decode = %q, want %q", got, want)
	}
}

func TestDecodeLatin1(t *testing.T) {
	src := "1.- ¿Cuál es la capital de España? a) Madrid b) Sevilla c) León d) Cádiz\n"
	raw, err := charmap.Windows1252.NewEncoder().String(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, charset, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if charset == "UTF-8" {
		t.Fatalf("expected a legacy charset to be detected")
	}
	if got != src {
		t.Errorf("Decode = %q, want %q", got, src)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"cla\u0301usula", "cl\u00e1usula"},
		{"pa\fgina dos", "pa gina dos"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.out {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
