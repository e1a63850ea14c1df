package dialect

import (
	"log/slog"
	"regexp"
	"strings"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/pair"
)

// ThMLFilter converts verse text in the Theological Markup Language grammar
// to canonical text. ThML is the simplest of the supported grammars: HTML-ish
// inline tags, a couple of class-keyed heading divs, and scripture cross
// references whose target lives in attributes.
type ThMLFilter struct {
	pairs []pair.Pair
	log   *slog.Logger
}

// NewThMLFilter returns a ThML filter using the given pair table.
// Use DefaultThMLPairs for the standard table.
func NewThMLFilter(pairs []pair.Pair, log *slog.Logger) *ThMLFilter {
	if log == nil {
		log = slog.Default()
	}
	return &ThMLFilter{pairs: pairs, log: log}
}

// Dialect implements Filter.
func (f *ThMLFilter) Dialect() Dialect { return ThML }

// DefaultThMLPairs is the standard ordered pair table. Red-letter text is
// marked up as a font color; superscript has no exact canonical equivalent
// and uses the closest available marker.
func DefaultThMLPairs() []pair.Pair {
	return []pair.Pair{
		{Open: `<font color="#ff0000">`, CanonOpen: "\\wj ", Close: "</font>", CanonClose: "\\wj*"},
		{Open: "<small>", CanonOpen: "\\sc ", Close: "</small>", CanonClose: "\\sc*"},
		{Open: "<note>", CanonOpen: "\\f ", Close: "</note>", CanonClose: "\\f*"},
		{Open: "<scripRef>", CanonOpen: "\\x ", Close: "</scripRef>", CanonClose: "\\x*"},
		{Open: "<i>", CanonOpen: "\\it ", Close: "</i>", CanonClose: "\\it*"},
		{Open: "<sup>", CanonOpen: "\\ord ", Close: "</sup>", CanonClose: "\\ord*"},
	}
}

var (
	thmlTitleRE    = regexp.MustCompile(`<div class="title">(.+?)</div>`)
	thmlSecheadRE  = regexp.MustCompile(`<div class="sechead">(.+?)</div>`)
	thmlScripRefRE = regexp.MustCompile(`<scripRef([^/>]+?)>(.+?)</scripRef>`)
	thmlPassageRE  = regexp.MustCompile(`passage="(.+?)"`)
	thmlVersionRE  = regexp.MustCompile(`version="(.+?)"`)
	thmlWTRE       = regexp.MustCompile(`<WT(.+?)>`)
)

// Filter implements Filter for the ThML grammar.
func (f *ThMLFilter) Filter(verseText string, loc rerr.Location) (string, error) {
	line := verseText

	var err error
	line, err = rewriteAll(line, thmlTitleRE, func(g []string) (string, error) {
		return "\\mt " + g[1], nil
	})
	if err != nil {
		return "", err
	}
	line, err = rewriteAll(line, thmlSecheadRE, func(g []string) (string, error) {
		return "\\s " + g[1], nil
	})
	if err != nil {
		return "", err
	}

	// Attributed cross references: the visible text becomes the origin and
	// the version/passage attributes become the target.
	line, err = rewriteAll(line, thmlScripRefRE, func(g []string) (string, error) {
		attrs, contents := g[1], g[2]
		passage := ""
		if m := thmlPassageRE.FindStringSubmatch(attrs); m != nil {
			passage = m[1]
		}
		version := ""
		if m := thmlVersionRE.FindStringSubmatch(attrs); m != nil {
			version = m[1]
		}
		return "\\x - \\xo " + contents + " \\xt " + version + " " + passage + " \\x*", nil
	})
	if err != nil {
		return "", err
	}

	line = deleteAll(line, thmlWTRE)

	line = strings.ReplaceAll(line, "<br />", "\\NL**")
	line = strings.ReplaceAll(line, "<br/>", "\\NL**")

	var repairs []pair.Repair
	line, repairs = pair.Reconcile(line, f.pairs)
	for _, r := range repairs {
		f.log.Warn("pair repair", slog.String("repair", r.String()), slog.String("location", loc.String()))
	}

	if err := checkResidual(ThML, line, loc); err != nil {
		return "", err
	}
	return line, nil
}
