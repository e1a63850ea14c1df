// Package pair implements open/close markup token-pair reconciliation.
//
// Verse text arrives one verse at a time, so a tag pair can straddle a verse
// boundary: the opening token may have been in the previous verse, or the
// closing token may be in the next one. Reconcile rewrites every declared
// pair to its canonical markers and repairs the straddling cases, reporting
// each repair so the caller can log it against the verse location.
package pair

import "strings"

// Pair is one ordered pair definition: a dialect open/close token and the
// canonical markers that replace them.
type Pair struct {
	Open       string // Dialect opening token (e.g., "<divineName>")
	CanonOpen  string // Canonical opening marker (e.g., "\\nd ")
	Close      string // Dialect closing token (e.g., "</divineName>")
	CanonClose string // Canonical closing marker (e.g., "\\nd*")
}

// RepairKind classifies a pair repair.
type RepairKind int

const (
	// RepairMissingClose means an open token had no close in this verse;
	// the canonical close marker was appended to the end of the text.
	RepairMissingClose RepairKind = iota
	// RepairOrphanClose means a close token had no preceding open in this
	// verse; the canonical open marker was inserted near the start.
	RepairOrphanClose
)

// Repair records one recoverable mismatch fixed during reconciliation.
type Repair struct {
	Kind RepairKind
	Pair Pair
}

func (r Repair) String() string {
	if r.Kind == RepairMissingClose {
		return "missing " + r.Pair.Close + " close code to match " + r.Pair.Open
	}
	return "unexpected " + r.Pair.Close + " close code without any previous " + r.Pair.Open
}

// Reconcile rewrites every pair in table, strictly in table order, and
// returns the new text plus any repairs made. Within one pair the leftmost
// open token always wins, and each open consumes exactly one close token
// searched forward from the open's position.
func Reconcile(text string, table []Pair) (string, []Repair) {
	var repairs []Repair

	for _, p := range table {
		ix := strings.Index(text, p.Open)
		for ix != -1 {
			text = strings.Replace(text, p.Open, p.CanonOpen, 1)
			ixEnd := indexFrom(text, p.Close, ix)
			if ixEnd == -1 {
				// Closing boundary lies in a later verse.
				repairs = append(repairs, Repair{Kind: RepairMissingClose, Pair: p})
				text += p.CanonClose
			} else {
				text = text[:ixEnd] + p.CanonClose + text[ixEnd+len(p.Close):]
			}
			ix = indexFrom(text, p.Open, ix)
		}
		if strings.Contains(text, p.Close) {
			// The matching open was in an earlier verse.
			repairs = append(repairs, Repair{Kind: RepairOrphanClose, Pair: p})
			text = strings.Replace(text, p.Close, p.CanonClose, 1)
			text = insertAfterLeadingMarker(text, p.CanonOpen)
		}
	}

	return text, repairs
}

// insertAfterLeadingMarker inserts the canonical open marker at the start of
// text, skipping past a leading backslash-marker token so that an
// already-emitted paragraph marker stays first. The insertion point is the
// first space boundary after the marker token, or position zero when the
// text does not start with a marker.
func insertAfterLeadingMarker(text, canonOpen string) string {
	insert := 0
	for insert < len(text) && text[insert] == '\\' {
		insert++
		for insert < len(text)-1 {
			if text[insert] == ' ' {
				break
			}
			insert++
		}
	}
	return text[:insert] + " " + canonOpen + text[insert:]
}

// indexFrom is strings.Index starting the search at from.
func indexFrom(s, substr string, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return -1
	}
	ix := strings.Index(s[from:], substr)
	if ix == -1 {
		return -1
	}
	return from + ix
}
