// Package canonical defines the dialect-agnostic line representation and the
// assembler that folds filtered verse text into a book's line sequence.
package canonical

import "strings"

// LineBreak is the internal sentinel a dialect filter embeds in canonical
// text wherever the verse must split into separate lines. It is chosen so it
// can never collide with legitimate verse text.
const LineBreak = "\\NL**"

// Line is one ordered (marker, text) record in a book's line sequence.
type Line struct {
	Marker string `json:"marker"`
	Text   string `json:"text"`
}

// Book owns the append-only line sequence for one book. Lines are created by
// the Assembler and live for the rest of the program.
type Book struct {
	ID    string // Book code (e.g., "Gen")
	Lines []Line
}

// NewBook returns an empty book for the given book code.
func NewBook(id string) *Book {
	return &Book{ID: id}
}

// AddLine appends a new line under marker.
func (b *Book) AddLine(marker, text string) {
	b.Lines = append(b.Lines, Line{Marker: marker, Text: text})
}

// appendToOpen appends text to the currently-open (last) line, inserting a
// space boundary when both sides need one. With no open line the text starts
// a verse-text line.
func (b *Book) appendToOpen(text string) {
	if len(b.Lines) == 0 {
		b.AddLine("v~", text)
		return
	}
	last := &b.Lines[len(b.Lines)-1]
	if last.Text != "" && !strings.HasSuffix(last.Text, " ") && !strings.HasPrefix(text, " ") {
		last.Text += " " + text
	} else {
		last.Text += text
	}
}
