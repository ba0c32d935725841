package storage

import (
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", openSQLite)
}

// sqliteStore keeps pairs in a single kv table, ordered by key. The pool
// is capped at one connection; the repl is single-session and SQLite
// write transactions would contend otherwise.
type sqliteStore struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

func openSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key BLOB PRIMARY KEY,
		value BLOB NOT NULL
	) WITHOUT ROWID`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put ignores sync: the driver runs with synchronous=FULL, so every
// committed write is already durable.
func (s *sqliteStore) Put(key, value []byte, sync bool) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *sqliteStore) Iter() Iterator {
	rows, err := s.db.Query(`SELECT key, value FROM kv ORDER BY key`)
	return &sqliteIterator{rows: rows, err: err}
}

func (s *sqliteStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

type sqliteIterator struct {
	rows  *sql.Rows
	err   error
	key   []byte
	value []byte
}

func (it *sqliteIterator) Next() bool {
	if it.err != nil || it.rows == nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}
	if err := it.rows.Scan(&it.key, &it.value); err != nil {
		it.err = err
		return false
	}
	return true
}

func (it *sqliteIterator) Key() []byte   { return it.key }
func (it *sqliteIterator) Value() []byte { return it.value }
func (it *sqliteIterator) Err() error    { return it.err }

func (it *sqliteIterator) Release() {
	if it.rows != nil {
		it.rows.Close()
	}
}
