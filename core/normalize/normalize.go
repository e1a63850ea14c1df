// Package normalize drives the verse conversion pipeline: raw dialect text
// in, canonical book line sequences out.
//
// Verses must arrive in strictly increasing (chapter, verse) document order
// within a book: pair repairs reach across verse boundaries, so out-of-order
// processing corrupts the repair. A verse-fatal filter error skips only that
// verse's output; the book continues.
package normalize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/FocuswithJustin/RowanText/core/canonical"
	"github.com/FocuswithJustin/RowanText/core/dialect"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// VerseUnit is one raw verse: dialect text tagged with its identity.
// Transient; consumed once and not retained.
type VerseUnit struct {
	Book    string
	Chapter string // "0" is front matter
	Verse   string // "0" is the chapter intro
	Text    string
}

// VerseSource yields verse units in document order. Next returns io.EOF
// after the last unit.
type VerseSource interface {
	Next() (VerseUnit, error)
}

// Recorder receives per-verse fatal diagnostics. Satisfied by
// *report.Collector.
type Recorder interface {
	RecordVerseError(d dialect.Dialect, loc rerr.Location, err error)
}

// FailedVerse identifies one verse whose conversion was aborted.
type FailedVerse struct {
	Loc rerr.Location
	Err error
}

// Pipeline converts one module's verses with a fixed dialect filter.
type Pipeline struct {
	module  string
	filter  dialect.Filter
	asm     *canonical.Assembler
	rec     Recorder
	log     *slog.Logger
	lastKey [2]int
	haveKey bool
}

// NewPipeline returns a pipeline for one module. rec may be nil.
func NewPipeline(module string, filter dialect.Filter, markers canonical.MarkerService, rec Recorder, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		module: module,
		filter: filter,
		asm:    canonical.NewAssembler(markers, log),
		rec:    rec,
		log:    log,
	}
}

// FilterFor returns the dialect filter for d with its default pair table.
func FilterFor(d dialect.Dialect, log *slog.Logger) (dialect.Filter, error) {
	switch d {
	case dialect.OSIS:
		return dialect.NewOSISFilter(dialect.DefaultOSISPairs(), log), nil
	case dialect.GBF:
		return dialect.NewGBFFilter(dialect.DefaultGBFPairs(), log), nil
	case dialect.ThML:
		return dialect.NewThMLFilter(dialect.DefaultThMLPairs(), log), nil
	}
	return nil, rerr.Wrapf(rerr.ErrUnsupported, "dialect %q", d)
}

// NormalizeVerse converts one verse and folds it into book. A returned error
// is fatal for this verse only; book is left exactly as it was.
func (p *Pipeline) NormalizeVerse(book *canonical.Book, u VerseUnit) error {
	loc := rerr.Location{Module: p.module, Book: u.Book, Chapter: u.Chapter, Verse: u.Verse}

	canon, err := p.filter.Filter(u.Text, loc)
	if err != nil {
		p.log.Error("verse conversion aborted",
			slog.String("dialect", string(p.filter.Dialect())),
			slog.String("location", loc.String()),
			slog.String("error", err.Error()))
		if p.rec != nil {
			p.rec.RecordVerseError(p.filter.Dialect(), loc, err)
		}
		return err
	}

	if u.Verse != "0" {
		book.AddLine("v", u.Verse)
	}
	p.asm.Assemble(book, canon, loc)
	return nil
}

// NormalizeBook converts an ordered verse slice into one book. Verse-fatal
// errors are collected, not returned: one bad verse cannot abort the book.
// An ordering violation is a hard error.
func (p *Pipeline) NormalizeBook(bookID string, verses []VerseUnit) (*canonical.Book, []FailedVerse, error) {
	book := canonical.NewBook(bookID)
	var failed []FailedVerse
	p.haveKey = false

	for _, u := range verses {
		if err := p.checkOrder(u); err != nil {
			return nil, nil, err
		}
		if err := p.NormalizeVerse(book, u); err != nil {
			failed = append(failed, FailedVerse{
				Loc: rerr.Location{Module: p.module, Book: u.Book, Chapter: u.Chapter, Verse: u.Verse},
				Err: err,
			})
		}
	}
	return book, failed, nil
}

// Run consumes src until io.EOF, starting a new book whenever the book code
// changes, and returns the completed books in source order.
func (p *Pipeline) Run(ctx context.Context, src VerseSource) ([]*canonical.Book, []FailedVerse, error) {
	var (
		books   []*canonical.Book
		failed  []FailedVerse
		current *canonical.Book
	)
	p.haveKey = false

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		u, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if current == nil || current.ID != u.Book {
			current = canonical.NewBook(u.Book)
			books = append(books, current)
			p.haveKey = false
		}
		if err := p.checkOrder(u); err != nil {
			return nil, nil, err
		}
		if err := p.NormalizeVerse(current, u); err != nil {
			failed = append(failed, FailedVerse{
				Loc: rerr.Location{Module: p.module, Book: u.Book, Chapter: u.Chapter, Verse: u.Verse},
				Err: err,
			})
		}
	}
	return books, failed, nil
}

// checkOrder enforces strictly increasing (chapter, verse) order within the
// current book. Non-numeric identities are not comparable and skip the check.
func (p *Pipeline) checkOrder(u VerseUnit) error {
	c, errC := strconv.Atoi(u.Chapter)
	v, errV := strconv.Atoi(u.Verse)
	if errC != nil || errV != nil {
		return nil
	}
	key := [2]int{c, v}
	if p.haveKey {
		if key[0] < p.lastKey[0] || (key[0] == p.lastKey[0] && key[1] <= p.lastKey[1]) {
			return rerr.Wrapf(rerr.ErrInvalidInput,
				"verse out of order: %s %s:%s after %d:%d", u.Book, u.Chapter, u.Verse, p.lastKey[0], p.lastKey[1])
		}
	}
	p.lastKey, p.haveKey = key, true
	return nil
}
