package detect

import (
	"errors"
	"testing"

	"github.com/FocuswithJustin/RowanText/core/dialect"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

func TestDetectOSIS(t *testing.T) {
	got, err := Detect(`<w lemma="strong:H0430">God</w> <divineName>Lord</divineName>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.OSIS {
		t.Errorf("got %q, want OSIS", got)
	}
}

func TestDetectOSISUnbalancedFragment(t *testing.T) {
	// A pair straddling the verse boundary breaks well-formedness; the token
	// scan must still classify it.
	got, err := Detect(`<transChange type="added">is good`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.OSIS {
		t.Errorf("got %q, want OSIS", got)
	}
}

func TestDetectGBF(t *testing.T) {
	got, err := Detect("Sarai<RF>1<Rf> his wife<RF>1) Or, princess<Rf><CM>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.GBF {
		t.Errorf("got %q, want GBF", got)
	}
}

func TestDetectThML(t *testing.T) {
	got, err := Detect(`<scripRef passage="Isa 61:1">Isa. lxi. 1</scripRef> blessed<br />`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.ThML {
		t.Errorf("got %q, want ThML", got)
	}
}

func TestDetectTieBreaksToOSIS(t *testing.T) {
	// One OSIS-only construct and one ThML-only construct score 1-1.
	got, err := Detect(`<milestone marker="¶" type="x-p"/>the <small>Lord</small>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.OSIS {
		t.Errorf("got %q, want OSIS", got)
	}
}

func TestDetectPlainTextFails(t *testing.T) {
	_, err := Detect("In the beginning God created the heaven and the earth.")
	if !errors.Is(err, rerr.ErrUnsupported) {
		t.Fatalf("want unsupported error, got %v", err)
	}
}

func TestDetectVersesAggregates(t *testing.T) {
	got, err := DetectVerses([]string{
		"plain verse one",
		`<milestone marker="¶" type="x-p"/>And God said`,
		`<w lemma="strong:G2316">God</w>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dialect.OSIS {
		t.Errorf("got %q, want OSIS", got)
	}
}
