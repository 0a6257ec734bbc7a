package adlibrary

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested ad id has no row in the library.
var ErrNotFound = errors.New("adlibrary: ad not found")

// ErrDuplicateName names the duplicate-id insert case. Library.Insert does
// not return it: a duplicate id surfaces as the wrapped database error.
var ErrDuplicateName = errors.New("adlibrary: ad already exists")

// Item is one row of the advertisements table.
type Item struct {
	ID   AdId
	Name string
}

// Library persists house-ad clips (name plus raw encoded bytes) in a SQLite
// database, grounded on the teacher pack's modernc.org/sqlite wrapper.
type Library struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at path and ensures the
// advertisements schema exists. Pass ":memory:" for an ephemeral library.
func Open(path string) (*Library, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "adlibrary: open database")
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "adlibrary: configure database")
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS advertisements (
			id      TEXT NOT NULL UNIQUE COLLATE BINARY,
			name    TEXT NOT NULL COLLATE NOCASE,
			content BLOB NOT NULL COLLATE BINARY,
			PRIMARY KEY(id)
		)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "adlibrary: create schema")
	}

	return &Library{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Library) Close() error {
	return l.db.Close()
}

// Insert stores a new ad clip under a fresh id and returns it.
func (l *Library) Insert(name string, content []byte) (AdId, error) {
	id := NewAdId()
	_, err := l.db.Exec(
		`INSERT INTO advertisements (id, name, content) VALUES (?, ?, ?)`,
		id.String(), name, content,
	)
	if err != nil {
		return AdId{}, errors.Wrapf(err, "adlibrary: insert ad %s", name)
	}
	return id, nil
}

// List returns every stored ad's id and name, ordered by name.
func (l *Library) List() ([]Item, error) {
	rows, err := l.db.Query(`SELECT id, name FROM advertisements ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "adlibrary: list ads")
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, errors.Wrap(err, "adlibrary: scan ad row")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Content fetches the raw encoded bytes for id.
func (l *Library) Content(id AdId) ([]byte, error) {
	var content []byte
	err := l.db.QueryRow(`SELECT content FROM advertisements WHERE id = ?`, id.String()).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "adlibrary: fetch content %s", id)
	}
	return content, nil
}

// Delete removes an ad row. It is not an error to delete a missing id.
func (l *Library) Delete(id AdId) error {
	_, err := l.db.Exec(`DELETE FROM advertisements WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrapf(err, "adlibrary: delete ad %s", id)
	}
	return nil
}
