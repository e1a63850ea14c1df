package dialect

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

func gbfLoc() rerr.Location {
	return rerr.Location{Module: "RWebster", Book: "Gen", Chapter: "1", Verse: "1"}
}

func newTestGBFFilter() (*GBFFilter, *bytes.Buffer) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	return NewGBFFilter(DefaultGBFPairs(), log), &buf
}

func TestGBFPlainTextPassesThrough(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("In the beginning God created the heaven and the earth.", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "In the beginning God created the heaven and the earth." {
		t.Errorf("got %q", got)
	}
}

func TestGBFNumberedFootnote(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("Sarai<RF>1<Rf> his wife<RF>1) Or, princess<Rf>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Sarai\\f + \\ft Or, princess\\f* his wife" {
		t.Errorf("got %q", got)
	}
}

func TestGBFPackedFootnotes(t *testing.T) {
	// Two callers, note bodies packed into one trailing field.
	f, _ := newTestGBFFilter()
	got, err := f.Filter("alpha<RF>1<Rf> beta<RF>2<Rf> gamma<RF>1) first 2) second<Rf>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alpha\\f + \\ft first \\f* beta\\f + \\ft second\\f* gamma" {
		t.Errorf("got %q", got)
	}
}

func TestGBFRepeatedCallerReusesNote(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("alpha<RF>1<Rf> beta<RF>1<Rf> gamma<RF>1) shared<Rf>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alpha\\f + \\ft shared\\f* beta\\f + \\ft shared\\f* gamma" {
		t.Errorf("got %q", got)
	}
}

func TestGBFUnnumberedFootnoteBody(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("word<RF>1<Rf> rest<RF>Or, another reading<Rf>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "word\\f + \\ft Or, another reading\\f* rest" {
		t.Errorf("got %q", got)
	}
}

func TestGBFCallerWithoutBodyFatal(t *testing.T) {
	f, _ := newTestGBFFilter()
	_, err := f.Filter("word<RF>3<Rf> rest", gbfLoc())
	if !errors.Is(err, rerr.ErrUnknownConstruct) {
		t.Fatalf("want unknown construct error, got %v", err)
	}
}

func TestGBFLooseFootnote(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("word<RF>see the margin<Rf> rest", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "word\\f + \\ft see the margin\\f* rest" {
		t.Errorf("got %q", got)
	}
}

func TestGBFStrongsNumbers(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("God<WH0430> created<WG2316>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "God\\str H430 \\str* created\\str G2316 \\str*" {
		t.Errorf("got %q", got)
	}
}

func TestGBFItalicPair(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("he <FI>is<Fi> good", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "he \\it is\\it* good" {
		t.Errorf("got %q", got)
	}
}

func TestGBFDescriptiveTitle(t *testing.T) {
	// The doubled FO field outranks the single FO rule.
	f, _ := newTestGBFFilter()
	got, err := f.Filter("<FO><FO>A Psalm of David.<Fo><Fo>Blessed is the man", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\d A Psalm of David.\\NL**Blessed is the man" {
		t.Errorf("got %q", got)
	}
}

func TestGBFParagraphBreak(t *testing.T) {
	f, _ := newTestGBFFilter()
	got, err := f.Filter("the earth.<CM>", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the earth.\\NL**\\p\\NL**" {
		t.Errorf("got %q", got)
	}
}

func TestGBFMissingItalicCloseRepaired(t *testing.T) {
	f, buf := newTestGBFFilter()
	got, err := f.Filter("he <FI>is good", gbfLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "he \\it is good\\it*" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(buf.String(), "pair repair") {
		t.Errorf("repair should be logged: %q", buf.String())
	}
}

func TestGBFASVModuleFix(t *testing.T) {
	f, _ := newTestGBFFilter()
	loc := gbfLoc()
	loc.Module = "ASV"
	got, err := f.Filter("pit of the<RF>1<Rf> shearing<RF>2) house of binding<Rf>", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "pit of the\\f + \\ft house of binding\\f* shearing" {
		t.Errorf("got %q", got)
	}
}

func TestGBFIdempotentOnOwnOutput(t *testing.T) {
	f, _ := newTestGBFFilter()
	inputs := []string{
		"Sarai<RF>1<Rf> his wife<RF>1) Or, princess<Rf>",
		"he <FI>is<Fi> good<CM>",
		"God<WH0430> created<WG2316>",
		"<FO><FO>A Psalm of David.<Fo><Fo>Blessed is the man",
	}
	for _, in := range inputs {
		first, err := f.Filter(in, gbfLoc())
		if err != nil {
			t.Fatalf("first pass of %q: %v", in, err)
		}
		second, err := f.Filter(first, gbfLoc())
		if err != nil {
			t.Fatalf("second pass of %q: %v", first, err)
		}
		if second != first {
			t.Errorf("not idempotent:\nfirst  %q\nsecond %q", first, second)
		}
	}
}

func TestGBFResidualMarkupFatal(t *testing.T) {
	f, _ := newTestGBFFilter()
	_, err := f.Filter("text <XX> more", gbfLoc())
	if !errors.Is(err, rerr.ErrResidualMarkup) {
		t.Fatalf("want residual markup error, got %v", err)
	}
}
