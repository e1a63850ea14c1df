// Package hash computes content hashes of canonical lines and books.
// Used by the store for integrity checks and by tests to assert that two
// conversion runs produced byte-identical output.
package hash

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/RowanText/core/canonical"
)

// Sum computes the BLAKE3 hash of data.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// LineSum computes the hash of one canonical line. The marker and text are
// length-framed so ("q1", "a b") and ("q", "1 a b") cannot collide.
func LineSum(l canonical.Line) string {
	h := blake3.New()
	writeFramed(h, l.Marker)
	writeFramed(h, l.Text)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// BookSum computes the hash of a book's full ordered line sequence.
func BookSum(b *canonical.Book) string {
	h := blake3.New()
	writeFramed(h, b.ID)
	for _, l := range b.Lines {
		writeFramed(h, l.Marker)
		writeFramed(h, l.Text)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func writeFramed(h *blake3.Hasher, s string) {
	var frame [4]byte
	n := len(s)
	frame[0] = byte(n >> 24)
	frame[1] = byte(n >> 16)
	frame[2] = byte(n >> 8)
	frame[3] = byte(n)
	h.Write(frame[:])
	h.Write([]byte(s))
}
