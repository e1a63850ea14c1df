package imp

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/normalize"
)

const sampleDump = `$$$ Gen 1:1
In the beginning God created the heaven and the earth.
$$$ Gen 1:2
And the earth was without form, and void;
and darkness was upon the face of the deep.
$$$ Exo 1:1
Now these are the names
`

func readAll(t *testing.T, r *Reader) []normalize.VerseUnit {
	t.Helper()
	var units []normalize.VerseUnit
	for {
		u, err := r.Next()
		if errors.Is(err, io.EOF) {
			return units
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		units = append(units, u)
	}
}

func TestReaderParsesVerses(t *testing.T) {
	units := readAll(t, NewReader(strings.NewReader(sampleDump)))
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	want := normalize.VerseUnit{
		Book: "Gen", Chapter: "1", Verse: "1",
		Text: "In the beginning God created the heaven and the earth.",
	}
	if units[0] != want {
		t.Errorf("unit 0 = %+v", units[0])
	}
	if units[1].Text != "And the earth was without form, and void;\nand darkness was upon the face of the deep." {
		t.Errorf("multi-line body = %q", units[1].Text)
	}
	if units[2].Book != "Exo" {
		t.Errorf("unit 2 = %+v", units[2])
	}
}

func TestReaderSkipsPreamble(t *testing.T) {
	units := readAll(t, NewReader(strings.NewReader("exported by tooling\n\n$$$ Ps 23:1\nThe LORD is my shepherd\n")))
	if len(units) != 1 || units[0].Book != "Ps" || units[0].Chapter != "23" {
		t.Errorf("units = %+v", units)
	}
}

func TestReaderMultiWordBookHeader(t *testing.T) {
	units := readAll(t, NewReader(strings.NewReader("$$$ Song of Solomon 1:1\nThe song of songs, which is Solomon's.\n")))
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	want := normalize.VerseUnit{
		Book: "Song of Solomon", Chapter: "1", Verse: "1",
		Text: "The song of songs, which is Solomon's.",
	}
	if units[0] != want {
		t.Errorf("unit = %+v", units[0])
	}
}

func TestReaderBadHeader(t *testing.T) {
	r := NewReader(strings.NewReader("$$$ not::a::ref\ntext\n"))
	_, err := r.Next()
	if err == nil {
		t.Fatal("want parse error")
	}
	var pe *rerr.ParseError
	if !errors.As(err, &pe) || pe.Format != "IMP" {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.imp")
	if err := os.WriteFile(path, []byte(sampleDump), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	units := readAll(t, f.Reader)
	if len(units) != 3 {
		t.Errorf("got %d units, want 3", len(units))
	}
}

func TestOpenRejectsCorruptXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.imp.xz")
	if err := os.WriteFile(path, []byte("not xz data"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("want decompression error")
	}
	var ioErr *rerr.IOError
	if !errors.As(err, &ioErr) || ioErr.Operation != "decompress" {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.imp"))
	if err == nil {
		t.Fatal("want open error")
	}
}
