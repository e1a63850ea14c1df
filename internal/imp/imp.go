// Package imp reads verse dumps in the textual IMP form: a `$$$ Book C:V`
// header line introduces each verse, followed by that verse's text lines
// until the next header. Dumps may be xz-compressed (.imp.xz).
package imp

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/normalize"
	"github.com/FocuswithJustin/RowanText/internal/ref"
)

const headerPrefix = "$$$"

// Reader yields verse units from one IMP stream in document order.
// It satisfies normalize.VerseSource.
type Reader struct {
	scanner *bufio.Scanner
	pending string // buffered header line, already read but not consumed
	path    string // for error context; empty for plain readers
}

// NewReader returns a reader over an uncompressed IMP stream.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{scanner: sc}
}

// File is an opened IMP dump file.
type File struct {
	*Reader
	f *os.File
}

// Open opens an IMP dump, transparently decompressing a .xz file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rerr.NewIO("open", path, err)
	}
	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, rerr.NewIO("decompress", path, err)
		}
		r = xr
	}
	reader := NewReader(r)
	reader.path = path
	return &File{Reader: reader, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// Next returns the next verse unit, or io.EOF after the last one.
// A verse's body lines are joined with newlines; the GBF filter turns those
// into line breaks downstream.
func (r *Reader) Next() (normalize.VerseUnit, error) {
	header, err := r.nextHeader()
	if err != nil {
		return normalize.VerseUnit{}, err
	}

	parsed, err := ref.Parse(strings.TrimSpace(strings.TrimPrefix(header, headerPrefix)))
	if err != nil {
		return normalize.VerseUnit{}, &rerr.ParseError{
			Format: "IMP", Path: r.path,
			Message: "bad verse header " + strconv.Quote(header), Err: err,
		}
	}

	var body []string
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.HasPrefix(line, headerPrefix) {
			r.pending = line
			break
		}
		body = append(body, line)
	}
	if err := r.scanner.Err(); err != nil {
		return normalize.VerseUnit{}, rerr.NewIO("read", r.path, err)
	}

	return normalize.VerseUnit{
		Book:    parsed.Book,
		Chapter: strconv.Itoa(parsed.Chapter),
		Verse:   strconv.Itoa(parsed.Verse),
		Text:    strings.Join(body, "\n"),
	}, nil
}

// nextHeader returns the next `$$$` line, skipping preamble lines before the
// first verse.
func (r *Reader) nextHeader() (string, error) {
	if r.pending != "" {
		h := r.pending
		r.pending = ""
		return h, nil
	}
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.HasPrefix(line, headerPrefix) {
			return line, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return "", rerr.NewIO("read", r.path, err)
	}
	return "", io.EOF
}
