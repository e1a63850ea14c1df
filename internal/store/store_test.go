package store

import (
	"context"
	"errors"
	"testing"

	"github.com/FocuswithJustin/RowanText/core/canonical"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/hash"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBook() *canonical.Book {
	b := canonical.NewBook("Gen")
	b.AddLine("v", "1 In the beginning")
	b.AddLine("p", "")
	b.AddLine("v", "2 And the earth")
	return b
}

func TestSaveAndLoadBook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := sampleBook()

	if err := s.SaveBook(ctx, "KJV", want); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	got, err := s.LoadBook(ctx, "KJV", "Gen")
	if err != nil {
		t.Fatalf("LoadBook: %v", err)
	}
	if got.ID != want.ID || len(got.Lines) != len(want.Lines) {
		t.Fatalf("got %+v", got)
	}
	for i := range want.Lines {
		if got.Lines[i] != want.Lines[i] {
			t.Errorf("line %d = %+v, want %+v", i, got.Lines[i], want.Lines[i])
		}
	}
	if hash.BookSum(got) != hash.BookSum(want) {
		t.Error("round-tripped book hash differs")
	}
}

func TestLoadMissingBook(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadBook(context.Background(), "KJV", "Rev")
	if !errors.Is(err, rerr.ErrNotFound) {
		t.Fatalf("want not-found error, got %v", err)
	}
}

func TestSaveBookReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveBook(ctx, "KJV", sampleBook()); err != nil {
		t.Fatal(err)
	}
	revised := canonical.NewBook("Gen")
	revised.AddLine("v", "1 revised text")
	if err := s.SaveBook(ctx, "KJV", revised); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadBook(ctx, "KJV", "Gen")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lines) != 1 || got.Lines[0].Text != "1 revised text" {
		t.Errorf("got %+v", got.Lines)
	}
}

func TestBooksListing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveBook(ctx, "KJV", sampleBook()); err != nil {
		t.Fatal(err)
	}
	exo := canonical.NewBook("Exo")
	exo.AddLine("v", "1 Now these are the names")
	if err := s.SaveBook(ctx, "KJV", exo); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBook(ctx, "ASV", sampleBook()); err != nil {
		t.Fatal(err)
	}

	infos, err := s.Books(ctx, "KJV")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Book != "Gen" || infos[1].Book != "Exo" {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].Lines != 3 || infos[1].Lines != 1 {
		t.Errorf("line counts = %+v", infos)
	}
}
