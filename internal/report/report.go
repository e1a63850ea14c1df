// Package report collects per-verse diagnostics during a conversion run and
// writes them out as a JSON report.
package report

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/RowanText/core/dialect"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// Diagnostic is one verse-scoped record.
type Diagnostic struct {
	Kind     string `json:"kind"`
	Dialect  string `json:"dialect"`
	Module   string `json:"module"`
	Book     string `json:"book"`
	Chapter  string `json:"chapter"`
	Verse    string `json:"verse"`
	Fragment string `json:"fragment,omitempty"`
	Message  string `json:"message"`
}

// Report is the full output of one conversion run.
type Report struct {
	RunID       string       `json:"run_id"`
	Module      string       `json:"module"`
	Dialect     string       `json:"dialect"`
	Started     time.Time    `json:"started"`
	Finished    time.Time    `json:"finished"`
	Books       int          `json:"books"`
	Verses      int          `json:"verses"`
	Failed      int          `json:"failed"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Collector accumulates diagnostics for one run. It satisfies
// normalize.Recorder.
type Collector struct {
	mu     sync.Mutex
	report Report
}

// NewCollector starts a new run report for the given module and dialect.
func NewCollector(module string, d dialect.Dialect) *Collector {
	return &Collector{report: Report{
		RunID:   uuid.NewString(),
		Module:  module,
		Dialect: string(d),
		Started: time.Now().UTC(),
	}}
}

// RecordVerseError records one verse-fatal conversion error.
func (c *Collector) RecordVerseError(d dialect.Dialect, loc rerr.Location, err error) {
	diag := Diagnostic{
		Kind:    classify(err),
		Dialect: string(d),
		Module:  loc.Module,
		Book:    loc.Book,
		Chapter: loc.Chapter,
		Verse:   loc.Verse,
		Message: err.Error(),
	}
	var uc *rerr.UnknownConstructError
	var rm *rerr.ResidualMarkupError
	switch {
	case errors.As(err, &uc):
		diag.Fragment = uc.Fragment
	case errors.As(err, &rm):
		diag.Fragment = rm.Fragment
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Failed++
	c.report.Diagnostics = append(c.report.Diagnostics, diag)
}

// CountVerses adds to the processed-verse total.
func (c *Collector) CountVerses(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Verses += n
}

// CountBooks adds to the completed-book total.
func (c *Collector) CountBooks(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Books += n
}

// Finish stamps the end time and returns the finished report.
func (c *Collector) Finish() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Finished = time.Now().UTC()
	r := c.report
	return &r
}

// WriteJSON finishes the report and writes it to w as indented JSON.
func (c *Collector) WriteJSON(w io.Writer) error {
	r := c.Finish()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func classify(err error) string {
	var ar *rerr.AttributeResidueError
	switch {
	case errors.As(err, &ar):
		return "attribute-residue"
	case errors.Is(err, rerr.ErrResidualMarkup):
		return "residual-markup"
	case errors.Is(err, rerr.ErrUnknownConstruct):
		return "unknown-construct"
	default:
		return "verse-error"
	}
}
