// Package store persists converted book line sequences to SQLite.
//
// Two driver implementations are supported: pure Go (modernc.org/sqlite,
// the default) and CGO (mattn/go-sqlite3, behind the cgo_sqlite build tag).
// Line content is hashed so a downstream consumer can verify integrity
// without re-running the conversion.
package store

import (
	"context"
	"database/sql"

	"github.com/FocuswithJustin/RowanText/core/canonical"
	rerr "github.com/FocuswithJustin/RowanText/core/errors"
	"github.com/FocuswithJustin/RowanText/core/hash"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	module TEXT NOT NULL,
	book   TEXT NOT NULL,
	hash   TEXT NOT NULL,
	UNIQUE (module, book)
);
CREATE TABLE IF NOT EXISTS lines (
	book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	marker  TEXT NOT NULL,
	text    TEXT NOT NULL,
	hash    TEXT NOT NULL,
	PRIMARY KEY (book_id, seq)
);
`

// Store is one open SQLite line-sequence database.
type Store struct {
	db *sql.DB
}

// DriverType identifies the compiled-in SQLite implementation, "purego" or
// "cgo".
func DriverType() string { return driverType }

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, rerr.NewIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, rerr.Wrap(err, "initialize schema")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveBook stores a book's full line sequence under (module, book),
// replacing any previous conversion of the same book.
func (s *Store) SaveBook(ctx context.Context, module string, book *canonical.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rerr.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lines WHERE book_id IN (SELECT id FROM books WHERE module = ? AND book = ?)`,
		module, book.ID); err != nil {
		return rerr.Wrap(err, "clear lines")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM books WHERE module = ? AND book = ?`, module, book.ID); err != nil {
		return rerr.Wrap(err, "clear book")
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO books (module, book, hash) VALUES (?, ?, ?)`,
		module, book.ID, hash.BookSum(book))
	if err != nil {
		return rerr.Wrap(err, "insert book")
	}
	bookID, err := res.LastInsertId()
	if err != nil {
		return rerr.Wrap(err, "book id")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lines (book_id, seq, marker, text, hash) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return rerr.Wrap(err, "prepare line insert")
	}
	defer stmt.Close()

	for i, l := range book.Lines {
		if _, err := stmt.ExecContext(ctx, bookID, i, l.Marker, l.Text, hash.LineSum(l)); err != nil {
			return rerr.Wrapf(err, "insert line %d", i)
		}
	}
	return tx.Commit()
}

// LoadBook reads back a stored book's ordered line sequence.
func (s *Store) LoadBook(ctx context.Context, module, bookID string) (*canonical.Book, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM books WHERE module = ? AND book = ?`, module, bookID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, rerr.Wrapf(rerr.ErrNotFound, "book %s/%s", module, bookID)
	}
	if err != nil {
		return nil, rerr.Wrap(err, "query book")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT marker, text FROM lines WHERE book_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, rerr.Wrap(err, "query lines")
	}
	defer rows.Close()

	book := canonical.NewBook(bookID)
	for rows.Next() {
		var marker, text string
		if err := rows.Scan(&marker, &text); err != nil {
			return nil, rerr.Wrap(err, "scan line")
		}
		book.AddLine(marker, text)
	}
	if err := rows.Err(); err != nil {
		return nil, rerr.Wrap(err, "iterate lines")
	}
	return book, nil
}

// BookInfo summarizes one stored book.
type BookInfo struct {
	Module string
	Book   string
	Hash   string
	Lines  int
}

// Books lists the stored books for a module in insertion order.
func (s *Store) Books(ctx context.Context, module string) ([]BookInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.module, b.book, b.hash, COUNT(l.seq)
		FROM books b LEFT JOIN lines l ON l.book_id = b.id
		WHERE b.module = ?
		GROUP BY b.id ORDER BY b.id`, module)
	if err != nil {
		return nil, rerr.Wrap(err, "query books")
	}
	defer rows.Close()

	var infos []BookInfo
	for rows.Next() {
		var info BookInfo
		if err := rows.Scan(&info.Module, &info.Book, &info.Hash, &info.Lines); err != nil {
			return nil, rerr.Wrap(err, "scan book")
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
