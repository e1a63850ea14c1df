package canonical

import (
	"log/slog"
	"strings"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// MarkerService classifies markers from the external marker catalog.
// Satisfied by *usfm.Registry.
type MarkerService interface {
	IsParagraphMarker(marker string) bool
	IsCharacterMarker(marker string) bool
	IsNewlineMarker(marker string) bool
	IsInternalMarker(marker string) bool
	IsKnownMarker(marker string) bool
}

// Assembler folds canonical verse text into a book's line sequence.
// It owns no book state itself; one assembler can serve many books as long
// as each book's verses arrive in document order.
type Assembler struct {
	markers MarkerService
	log     *slog.Logger
}

// NewAssembler returns an assembler using the given marker service.
func NewAssembler(markers MarkerService, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{markers: markers, log: log}
}

// Assemble splits canonical text on the line-break sentinel and appends the
// fragments to book. The first fragment continues the currently-open line;
// each later fragment starts a new line when it begins with a marker token,
// otherwise it is continuation text for the preceding line.
//
// An unknown or non-newline marker is a recoverable error: it is logged with
// the verse location and the line is stored anyway, since downstream checking
// tooling flags it as well.
func (a *Assembler) Assemble(book *Book, canonicalText string, loc rerr.Location) {
	segments := strings.Split(canonicalText, LineBreak)

	for i, seg := range segments {
		if i == 0 {
			if seg != "" {
				book.appendToOpen(seg)
			}
			continue
		}
		seg = strings.TrimLeft(seg, " ")
		if seg == "" {
			continue
		}
		if !strings.HasPrefix(seg, "\\") {
			book.appendToOpen(seg)
			continue
		}
		marker, rest := splitMarker(seg)
		if !a.markers.IsKnownMarker(marker) {
			a.log.Warn("unknown marker in canonical text",
				slog.String("marker", marker), slog.String("location", loc.String()))
		} else if !a.markers.IsNewlineMarker(marker) {
			a.log.Warn("marker does not start a new line",
				slog.String("marker", marker), slog.String("location", loc.String()))
		}
		book.AddLine(marker, rest)
	}
}

// splitMarker splits "\\s1 Heading text" into ("s1", "Heading text").
// A fragment with no space after the marker has empty text.
func splitMarker(seg string) (marker, text string) {
	body := strings.TrimPrefix(seg, "\\")
	if ix := strings.IndexByte(body, ' '); ix != -1 {
		return body[:ix], body[ix+1:]
	}
	return body, ""
}
