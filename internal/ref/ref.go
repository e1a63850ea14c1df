// Package ref parses scripture references in both the dotted machine form
// ("Gen.1.1") and the human form ("Gen 1:1", "1John 3:16-18").
package ref

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// Ref is one parsed scripture reference.
type Ref struct {
	// Book is the book code (e.g., "Gen", "1John").
	Book string `json:"book"`

	// Chapter is the chapter number (0 for whole-book references).
	Chapter int `json:"chapter,omitempty"`

	// Verse is the verse number (0 for whole-chapter references).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the ending verse for ranges (optional).
	VerseEnd int `json:"verse_end,omitempty"`
}

// refGrammar accepts "Gen", "Gen.1", "Gen.1.1", "Gen 1:1", "Gen 1:1-3",
// "1John.3.16". Book names may span several words ("Song of Solomon 1:1");
// the words are rejoined with single spaces.
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `parser:"@Int?"`
	BookWords  []string     `parser:"@Ident+"`
	ChapterRef *chapterPart `parser:"( '.'? @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `parser:"@Int"`
	VerseRef *versePart `parser:"( ( '.' | ':' ) @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `parser:"@Int"`
	Range *int `parser:"( '-' @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[.:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string in either supported form.
func Parse(s string) (*Ref, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, rerr.NewReference(s, "empty reference")
	}

	parsed, err := refParser.ParseString("", trimmed)
	if err != nil {
		return nil, &rerr.ReferenceError{Input: s, Message: "invalid reference format", Err: err}
	}

	ref := &Ref{Book: parsed.BookPrefix + strings.Join(parsed.BookWords, " ")}
	if parsed.ChapterRef != nil {
		ref.Chapter = parsed.ChapterRef.Chapter
		if parsed.ChapterRef.VerseRef != nil {
			ref.Verse = parsed.ChapterRef.VerseRef.Verse
			if r := parsed.ChapterRef.VerseRef.Range; r != nil {
				if *r < ref.Verse {
					return nil, rerr.NewReference(s, "range end before range start")
				}
				ref.VerseEnd = *r
			}
		}
	}
	return ref, nil
}

// String returns the dotted machine form.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))
			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}
	return sb.String()
}

// IsRange reports whether the reference spans multiple verses.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > r.Verse && r.VerseEnd > 0
}

// Location converts the reference to a verse location for the given module.
// Chapter and verse identities are carried as text throughout the pipeline
// ("0" marks front matter).
func (r *Ref) Location(module string) rerr.Location {
	return rerr.Location{
		Module:  module,
		Book:    r.Book,
		Chapter: strconv.Itoa(r.Chapter),
		Verse:   strconv.Itoa(r.Verse),
	}
}

// Contains reports whether other falls inside this reference. A book-only
// reference contains its whole book; a chapter-only reference its whole
// chapter.
func (r *Ref) Contains(other *Ref) bool {
	if r.Book != other.Book {
		return false
	}
	if r.Chapter == 0 {
		return true
	}
	if r.Chapter != other.Chapter {
		return false
	}
	if r.Verse == 0 {
		return true
	}
	if r.IsRange() {
		return other.Verse >= r.Verse && other.Verse <= r.VerseEnd
	}
	return r.Verse == other.Verse
}
