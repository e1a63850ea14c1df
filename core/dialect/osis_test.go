package dialect

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

func osisLoc() rerr.Location {
	return rerr.Location{Module: "KJV", Book: "Gen", Chapter: "1", Verse: "1"}
}

func newTestOSISFilter() (*OSISFilter, *bytes.Buffer) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	return NewOSISFilter(DefaultOSISPairs(), log), &buf
}

func TestOSISPlainTextPassesThrough(t *testing.T) {
	f, buf := newTestOSISFilter()
	got, err := f.Filter("In the beginning God created the heaven and the earth.", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "In the beginning God created the heaven and the earth." {
		t.Errorf("got %q", got)
	}
	if buf.Len() != 0 {
		t.Errorf("plain text should log nothing: %q", buf.String())
	}
}

func TestOSISWordLemma(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<w lemma="strong:G2316">God</w> created`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "God\\str G2316\\str* created" {
		t.Errorf("got %q", got)
	}
}

func TestOSISWordLemmaAndMorph(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<w lemma="strong:H0430" morph="strongMorph:TH8804">God</w>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "God\\str H0430\\str*\\morph TH8804\\morph*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISWordUnknownAttributeFatal(t *testing.T) {
	f, _ := newTestOSISFilter()
	_, err := f.Filter(`<w gloss="deity">God</w>`, osisLoc())
	if !errors.Is(err, rerr.ErrUnknownConstruct) {
		t.Fatalf("want attribute residue error, got %v", err)
	}
}

func TestOSISDivineNamePaired(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter("the <divineName>Lord</divineName> spoke", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the \\nd Lord\\nd* spoke" {
		t.Errorf("got %q", got)
	}
}

func TestOSISDivineNameMissingClose(t *testing.T) {
	f, buf := newTestOSISFilter()
	got, err := f.Filter("the <divineName>Lord", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the \\nd Lord\\nd*" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(buf.String(), "pair repair") {
		t.Errorf("repair should be logged: %q", buf.String())
	}
}

func TestOSISDivineNameOrphanClose(t *testing.T) {
	f, buf := newTestOSISFilter()
	got, err := f.Filter("Lord</divineName> spoke", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != " \\nd Lord\\nd* spoke" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(buf.String(), "pair repair") {
		t.Errorf("repair should be logged: %q", buf.String())
	}
}

func TestOSISParagraphMilestone(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<milestone marker="¶" type="x-p"/>And God said`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\p\\NL**And God said" {
		t.Errorf("got %q", got)
	}
}

func TestOSISPlainTitle(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter("<title>The Creation</title>In the beginning", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\s1 The Creation\\NL**In the beginning" {
		t.Errorf("got %q", got)
	}
}

func TestOSISSectionDivWithTitle(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<div type="section"/><title>The Fall</title>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\s1 The Fall\\NL**" {
		t.Errorf("got %q", got)
	}
}

func TestOSISUnknownDivTypeFatal(t *testing.T) {
	f, _ := newTestOSISFilter()
	_, err := f.Filter(`<div type="x-mystery"/>text`, osisLoc())
	if !errors.Is(err, rerr.ErrUnknownConstruct) {
		t.Fatalf("want unknown construct error, got %v", err)
	}
	var uc *rerr.UnknownConstructError
	if !errors.As(err, &uc) {
		t.Fatalf("want *UnknownConstructError, got %T", err)
	}
	if uc.Value != "x-mystery" {
		t.Errorf("Value = %q", uc.Value)
	}
}

func TestOSISTransChangeAdded(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`he <transChange type="added">is</transChange> good`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "he \\add is\\add* good" {
		t.Errorf("got %q", got)
	}
}

func TestOSISNote(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`day<note n="a">Heb. between the two evenings</note>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "day\\f + \\ft Heb. between the two evenings\\f*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISHighlight(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<hi type="italic">Selah</hi>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\it Selah\\it*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISWordsOfJesus(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<q who="Jesus">Follow me</q>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\wj Follow me\\wj*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISQuoteMilestones(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<q level="2" marker="“" sID="x.1"/>Let there be light<q marker="”" eID="x.1"/>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\q2 “Let there be light”\\NL**" {
		t.Errorf("got %q", got)
	}
}

func TestOSISPoetryLineMilestones(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<l level="1" sID="a"/>The heavens declare<l eID="a"/>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\NL**\\q1 The heavens declare\\NL**" {
		t.Errorf("got %q", got)
	}
}

func TestOSISCrossReference(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter("<reference>Ps 33:6</reference>", osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\x Ps 33:6\\x*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISOutlineReferenceInFrontMatter(t *testing.T) {
	f, _ := newTestOSISFilter()
	loc := osisLoc()
	loc.Verse = "0"
	got, err := f.Filter("<reference>Gen 1-11</reference>", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\\ior Gen 1-11\\ior*" {
		t.Errorf("got %q", got)
	}
}

func TestOSISResidualMarkupFatal(t *testing.T) {
	f, _ := newTestOSISFilter()
	_, err := f.Filter("text <surprise/> more", osisLoc())
	if !errors.Is(err, rerr.ErrResidualMarkup) {
		t.Fatalf("want residual markup error, got %v", err)
	}
}

func TestOSISDeterministic(t *testing.T) {
	f, _ := newTestOSISFilter()
	in := `<w lemma="strong:H0430">God</w> <divineName>Lord</divineName><note n="a">note</note>`
	first, err := f.Filter(in, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := f.Filter(in, osisLoc())
		if err != nil || got != first {
			t.Fatalf("run %d: got %q, %v; want %q", i, got, err, first)
		}
	}
}

func TestOSISIdempotentOnOwnOutput(t *testing.T) {
	// Canonical output carries backslash markers and line-break sentinels;
	// a second pass must leave all of them untouched.
	f, _ := newTestOSISFilter()
	inputs := []string{
		`<w lemma="strong:H0430" morph="strongMorph:TH8804">God</w> created`,
		"the <divineName>Lord</divineName> spoke",
		`<milestone marker="¶" type="x-p"/>And God said`,
		`<q who="Jesus">Follow me</q>`,
		`day<note n="a">Heb. between the two evenings</note>`,
		"<title>The Creation</title>In the beginning",
	}
	for _, in := range inputs {
		first, err := f.Filter(in, osisLoc())
		if err != nil {
			t.Fatalf("first pass of %q: %v", in, err)
		}
		second, err := f.Filter(first, osisLoc())
		if err != nil {
			t.Fatalf("second pass of %q: %v", first, err)
		}
		if second != first {
			t.Errorf("not idempotent:\nfirst  %q\nsecond %q", first, second)
		}
	}
}

func TestOSISVerseMarkersStripped(t *testing.T) {
	f, _ := newTestOSISFilter()
	got, err := f.Filter(`<verse osisID="Gen.1.1">In the beginning</verse>`, osisLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "In the beginning" {
		t.Errorf("got %q", got)
	}
}
