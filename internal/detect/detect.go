// Package detect sniffs which markup dialect a module's verse text is
// written in. Verse fragments are frequently not well-formed XML (pairs
// straddle verse boundaries), so XML probing is best-effort with a token
// scan fallback.
package detect

import (
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/RowanText/core/dialect"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

var (
	osisQuery = xpath.MustCompile("//w | //divineName | //milestone | //transChange | //seg | //verse | //lg | //l | //catchWord | //q[@who]")
	thmlQuery = xpath.MustCompile("//scripRef | //div[@class='title'] | //div[@class='sechead'] | //small | //sup | //font | //note | //br")

	gbfTokenRE  = regexp.MustCompile(`<(RF|Rf|FI|Fi|FO|Fo|CM|PP|Pp|WT[^>]|WH0?\d|WG\d)>?`)
	osisTokenRE = regexp.MustCompile(`<(w |/w>|divineName|milestone |transChange|seg[ >]|verse |lg |l |q )`)
	thmlTokenRE = regexp.MustCompile(`<(scripRef|div class=|small>|sup>|font |note>|br ?/>)`)
)

// Detect sniffs the dialect of one verse sample.
func Detect(sample string) (dialect.Dialect, error) {
	return DetectVerses([]string{sample})
}

// DetectVerses sniffs the dialect across several verse samples and returns
// the best-scoring one. It fails when no sample carries any recognizable
// markup: plain text is valid in every dialect and cannot be classified.
func DetectVerses(samples []string) (dialect.Dialect, error) {
	var osis, gbf, thml int
	for _, s := range samples {
		o, g, th := score(s)
		osis += o
		gbf += g
		thml += th
	}

	switch {
	case gbf > osis && gbf > thml:
		return dialect.GBF, nil
	// An OSIS/ThML tie resolves to OSIS: its grammar is a superset of the
	// constructs ThML shares with it.
	case osis >= thml && osis > 0:
		return dialect.OSIS, nil
	case thml > 0:
		return dialect.ThML, nil
	}
	return "", rerr.Wrap(rerr.ErrUnsupported, "no recognizable markup in sample")
}

func score(sample string) (osis, gbf, thml int) {
	gbf = len(gbfTokenRE.FindAllString(sample, -1))

	// Try real XML probing on the fragment first.
	doc, err := xmlquery.Parse(strings.NewReader("<root>" + sample + "</root>"))
	if err == nil {
		osis = len(xmlquery.QuerySelectorAll(doc, osisQuery))
		thml = len(xmlquery.QuerySelectorAll(doc, thmlQuery))
		if osis > 0 || thml > 0 {
			return osis, gbf, thml
		}
	}

	// Fragment is not parseable as XML; fall back to raw token counts.
	osis = len(osisTokenRE.FindAllString(sample, -1))
	thml = len(thmlTokenRE.FindAllString(sample, -1))
	return osis, gbf, thml
}
