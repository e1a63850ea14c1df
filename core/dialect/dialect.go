// Package dialect converts raw verse text in one of the supported source
// markup dialects into the canonical backslash-marker representation.
//
// Each filter consumes one verse at a time and has no cross-verse state of
// its own; tag pairs that straddle verse boundaries are repaired by the
// pair reconciler. A filter never guesses: markup it does not recognize is
// a verse-fatal error, so a grammar gap surfaces as a diagnostic instead of
// silently corrupted output.
package dialect

import (
	"strings"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// Dialect names one of the supported source grammars.
type Dialect string

const (
	// OSIS is the richest supported grammar (XML-based).
	OSIS Dialect = "OSIS"
	// GBF is the General Bible Format grammar with numbered footnote callers.
	GBF Dialect = "GBF"
	// ThML is the Theological Markup Language grammar (HTML-like).
	ThML Dialect = "ThML"
)

// Filter converts one verse's raw dialect text into canonical text.
//
// A returned error is fatal for that verse only: the caller must skip the
// verse's canonical output and continue with the next verse in order.
type Filter interface {
	Dialect() Dialect
	Filter(verseText string, loc rerr.Location) (string, error)
}

// checkResidual returns a verse-fatal error when any angle bracket survived
// all filter passes. Canonical text leaving a filter must contain none.
func checkResidual(d Dialect, text string, loc rerr.Location) error {
	if strings.ContainsAny(text, "<>") {
		return rerr.NewResidualMarkup(string(d), text, loc)
	}
	return nil
}
