// Package cache is the persistent specialization cache: a small
// sqlite database recording which (function, argument-type-tuple)
// instances past compilations emitted, so repeated builds of the same
// project can be inspected (`funxyc -cache-stats`) the way Go's own
// build cache is. It is additive, observational persistence only: the
// in-process memo internal/semant keeps is the recursion guard the
// compiler actually depends on, and compilation never reads this
// database to make decisions.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS specializations (
	id         TEXT PRIMARY KEY,
	func       TEXT NOT NULL,
	arg_types  TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	source     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE(source, func, arg_types)
);`

// Cache wraps the on-disk database.
type Cache struct {
	db   *sql.DB
	path string
}

// Entry is one recorded specialization.
type Entry struct {
	ID       string
	Func     string
	ArgTypes string
	Symbol   string
	Source   string
}

// Open creates (or opens) the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Record upserts one specialization row for source. Existing rows for
// the same (source, func, arg_types) key keep their id.
func (c *Cache) Record(source, fn, argTypes, symbol string) error {
	_, err := c.db.Exec(`
		INSERT INTO specializations (id, func, arg_types, symbol, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, func, arg_types) DO UPDATE SET symbol = excluded.symbol`,
		uuid.NewString(), fn, argTypes, symbol, source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: record %s(%s): %w", fn, argTypes, err)
	}
	return nil
}

// Lookup returns the recorded entry for (source, func, argTypes), or
// false if none exists.
func (c *Cache) Lookup(source, fn, argTypes string) (Entry, bool, error) {
	row := c.db.QueryRow(`
		SELECT id, func, arg_types, symbol, source FROM specializations
		WHERE source = ? AND func = ? AND arg_types = ?`, source, fn, argTypes)
	var e Entry
	switch err := row.Scan(&e.ID, &e.Func, &e.ArgTypes, &e.Symbol, &e.Source); err {
	case nil:
		return e, true, nil
	case sql.ErrNoRows:
		return Entry{}, false, nil
	default:
		return Entry{}, false, fmt.Errorf("cache: lookup: %w", err)
	}
}

// Entries returns every row for source, symbol-ordered.
func (c *Cache) Entries(source string) ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT id, func, arg_types, symbol, source FROM specializations
		WHERE source = ? ORDER BY symbol`, source)
	if err != nil {
		return nil, fmt.Errorf("cache: entries: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Func, &e.ArgTypes, &e.Symbol, &e.Source); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats reports the row count and the database file's size in bytes.
func (c *Cache) Stats() (rows int64, bytes int64, err error) {
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM specializations`).Scan(&rows); err != nil {
		return 0, 0, fmt.Errorf("cache: stats: %w", err)
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return rows, 0, nil // size is best-effort
	}
	return rows, info.Size(), nil
}
