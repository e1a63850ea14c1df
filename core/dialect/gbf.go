package dialect

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/pair"
)

// GBFFilter converts verse text in the General Bible Format grammar to
// canonical text.
//
// GBF's one genuinely hard feature is its footnote system: a numeric caller
// token sits at the reference point in the verse text, and the note bodies
// arrive later in the same verse as numbered segments that may be packed
// together inside a single field. The correlator pairs callers with bodies,
// remembering bodies already seen so a repeated caller can reuse its note.
type GBFFilter struct {
	pairs []pair.Pair
	log   *slog.Logger
}

// NewGBFFilter returns a GBF filter using the given pair table.
// Use DefaultGBFPairs for the standard table.
func NewGBFFilter(pairs []pair.Pair, log *slog.Logger) *GBFFilter {
	if log == nil {
		log = slog.Default()
	}
	return &GBFFilter{pairs: pairs, log: log}
}

// Dialect implements Filter.
func (f *GBFFilter) Dialect() Dialect { return GBF }

// DefaultGBFPairs is the standard ordered pair table. The doubled FO field
// is a descriptive title and must precede the single FO rule so the longer
// token wins.
func DefaultGBFPairs() []pair.Pair {
	return []pair.Pair{
		{Open: "<FI>", CanonOpen: "\\it ", Close: "<Fi>", CanonClose: "\\it*"},
		{Open: "<FO><FO>", CanonOpen: "\\NL**\\d ", Close: "<Fo><Fo>", CanonClose: "\\NL**"},
		{Open: "<FO>", CanonOpen: "\\em ", Close: "<Fo>", CanonClose: "\\em*"},
	}
}

var (
	gbfCallerRE     = regexp.MustCompile(`<RF>(\d{1,2}?)<Rf>`)
	gbfCalleeRE     = regexp.MustCompile(`<RF>(\d{1,2}?)\)? (.+?)<Rf>`)
	gbfUnnumberedRE = regexp.MustCompile(`<RF>([^\d].+?)<Rf>`)
	gbfTwoPartRE    = regexp.MustCompile(`(\d{1,2})\) (.*?)(\d{1,2})\) `)
	gbfOnePartRE    = regexp.MustCompile(`(\d{1,2})\) `)
	gbfLooseNoteRE  = regexp.MustCompile(`<RF>(.+?)<Rf>`)
	gbfWTRE         = regexp.MustCompile(`<WT(.+?)>`)
	gbfStrongsHRE   = regexp.MustCompile(`<WH0(\d{1,4})>`)
	gbfStrongsGRE   = regexp.MustCompile(`<WG(\d{1,4})>`)
)

// Filter implements Filter for the GBF grammar.
func (f *GBFFilter) Filter(verseText string, loc rerr.Location) (string, error) {
	line := verseText

	if loc.Module == "ASV" {
		// The published ASV module numbers this one caller wrong.
		line = strings.Replace(line, "pit of the<RF>1<Rf> shearing", "pit of the<RF>2<Rf> shearing", 1)
	}

	line, err := f.correlateFootnotes(line, loc)
	if err != nil {
		return "", err
	}

	// Footnotes outside the numbered caller system carry their body inline.
	line, err = rewriteAll(line, gbfLooseNoteRE, func(g []string) (string, error) {
		return "\\f + \\ft " + g[1] + "\\f*", nil
	})
	if err != nil {
		return "", err
	}

	// Word transliteration fields carry nothing the canonical form keeps.
	line = deleteAll(line, gbfWTRE)

	// Inline Strong's numbers.
	line, err = rewriteAll(line, gbfStrongsHRE, func(g []string) (string, error) {
		return "\\str H" + g[1] + " \\str*", nil
	})
	if err != nil {
		return "", err
	}
	line, err = rewriteAll(line, gbfStrongsGRE, func(g []string) (string, error) {
		return "\\str G" + g[1] + " \\str*", nil
	})
	if err != nil {
		return "", err
	}

	// Fixed open/close fields.
	var repairs []pair.Repair
	line, repairs = pair.Reconcile(line, f.pairs)
	for _, r := range repairs {
		f.log.Warn("pair repair", slog.String("repair", r.String()), slog.String("location", loc.String()))
	}

	// Straight substitutions, including left-over single close fields.
	line = strings.ReplaceAll(line, "<CM>", "\\NL**\\p\\NL**")
	line = strings.ReplaceAll(line, "<Fo>", "\\NL**")
	line = strings.ReplaceAll(line, "\n", "\\NL**")

	if err := checkResidual(GBF, line, loc); err != nil {
		return "", err
	}
	return line, nil
}

// correlateFootnotes pairs numeric footnote callers with their note bodies.
//
// Each iteration resolves the leftmost caller: a caller whose number was
// already seen reuses the remembered body; otherwise the body comes from the
// next numbered note field, which may pack several numbered segments that
// are split greedily and all remembered; a body without a leading number is
// accepted only for caller 1. A caller that cannot be resolved at all is a
// verse-fatal error.
func (f *GBFFilter) correlateFootnotes(line string, loc rerr.Location) (string, error) {
	notes := make(map[string]string)

	for {
		m1 := gbfCallerRE.FindStringSubmatchIndex(line)
		if m1 == nil {
			return line, nil
		}
		caller := line[m1[2]:m1[3]]

		if body, ok := notes[caller]; ok {
			line = line[:m1[0]] + "\\f + \\ft " + body + "\\f*" + line[m1[1]:]
			continue
		}

		if m2 := gbfCalleeRE.FindStringSubmatchIndex(line); m2 != nil {
			if m2[0] <= m1[1] {
				return "", rerr.NewUnknownConstruct(string(GBF), "footnote order", caller, line[m1[0]:m2[1]], loc)
			}
			callee := line[m2[2]:m2[3]]
			contents := strings.TrimRight(line[m2[4]:m2[5]], " \t")
			leftover, split := splitNoteSegments(callee+") "+contents, notes)
			if split == 0 {
				notes[callee] = contents
				leftover = ""
			}
			body, ok := notes[caller]
			if !ok {
				return "", rerr.NewUnknownConstruct(string(GBF), "footnote caller", caller, line[m1[0]:m1[1]], loc)
			}
			line = line[:m1[0]] + "\\f + \\ft " + body + "\\f*" +
				line[m1[1]:m2[0]] + leftover + line[m2[1]:]
			continue
		}

		m3 := gbfUnnumberedRE.FindStringSubmatchIndex(line)
		if m3 == nil {
			return "", rerr.NewUnknownConstruct(string(GBF), "footnote caller", caller, line[m1[0]:m1[1]], loc)
		}
		// An unnumbered body can only belong to the first caller; anything
		// else means the numbering scheme broke down.
		if caller != "1" {
			return "", rerr.NewUnknownConstruct(string(GBF), "unnumbered footnote", caller, line[m3[0]:m3[1]], loc)
		}
		if m3[0] <= m1[1] {
			return "", rerr.NewUnknownConstruct(string(GBF), "footnote order", caller, line[m1[0]:m3[1]], loc)
		}
		contents := strings.TrimRight(line[m3[2]:m3[3]], " \t")
		n, _ := strconv.Atoi(caller)
		if strings.Contains(contents, " "+strconv.Itoa(n+1)+") ") {
			return "", rerr.NewUnknownConstruct(string(GBF), "unnumbered footnote", contents, line[m3[0]:m3[1]], loc)
		}
		notes[caller] = contents
		line = line[:m1[0]] + "\\f + \\ft " + contents + "\\f*" +
			line[m1[1]:m3[0]] + line[m3[1]:]
	}
}

// splitNoteSegments splits a packed "1) first 2) second 3) third" body into
// its numbered segments, remembering each in notes. It returns any trailing
// text that was not consumed, plus the number of segments stored. The final
// segment keeps everything after its number.
func splitNoteSegments(packed string, notes map[string]string) (string, int) {
	split := 0
	for packed != "" {
		m9 := gbfOnePartRE.FindStringSubmatchIndex(packed)
		if m9 == nil {
			break
		}
		callee := packed[m9[2]:m9[3]]
		if m8 := gbfTwoPartRE.FindStringSubmatchIndex(packed); m8 != nil {
			notes[callee] = packed[m8[4]:m8[5]]
			nextCallee := packed[m8[6]:m8[7]]
			packed = packed[m8[1]-2-len(nextCallee):]
			split++
			continue
		}
		notes[callee] = packed[len(callee)+2:]
		split++
		packed = ""
	}
	return packed, split
}
