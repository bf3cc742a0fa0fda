// Package sqlitestore implements service.Service on a local SQLite file, for
// offline use and as a stand-in for the remote store.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"notifier/internal/service"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Store persists entries of one namespace in SQLite.
type Store struct {
	db        *sql.DB
	path      string
	namespace string
}

// Open opens (creating if needed) the database at path and prepares the
// entries table.
func Open(path, namespace string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage path is required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, errors.New("namespace required")
	}

	dsn := path
	if path != MemoryPath {
		dsn = "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path, namespace: namespace}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Namespace returns the namespace the store reads and writes.
func (s *Store) Namespace() string {
	return s.namespace
}

// Endpoint returns the database path.
func (s *Store) Endpoint() string {
	return s.path
}

// ListEntries returns every entry in the namespace in insertion order.
func (s *Store) ListEntries(ctx context.Context) ([]service.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM entries WHERE namespace = ? ORDER BY rowid`,
		s.namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	result := []service.Entry{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		item, err := decode(key, value)
		if err != nil {
			return nil, err
		}
		result = append(result, service.Entry{Key: key, Value: item})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return result, nil
}

// ListNamespaces returns every namespace holding at least one entry.
func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT namespace FROM entries ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan namespace: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return names, nil
}

// GetEntry fetches a single entry value.
func (s *Store) GetEntry(ctx context.Context, key string) (service.Entry, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Entry{}, fmt.Errorf("entry %s: %w", key, service.ErrNotFound)
	}
	if err != nil {
		return service.Entry{}, fmt.Errorf("get entry %s: %w", key, err)
	}
	item, err := decode(key, value)
	if err != nil {
		return service.Entry{}, err
	}
	return service.Entry{Key: key, Value: item}, nil
}

// CreateEntry stores a new entry. An existing key yields service.ErrConflict.
func (s *Store) CreateEntry(ctx context.Context, key string, item service.Item) error {
	value, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", key, err)
	}
	now := toMillis(time.Now())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (namespace, key, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		s.namespace, key, string(value), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("entry %s: %w", key, service.ErrConflict)
		}
		return fmt.Errorf("create entry %s: %w", key, err)
	}
	return nil
}

// UpdateEntry replaces an entry value.
func (s *Store) UpdateEntry(ctx context.Context, key string, item service.Item) error {
	value, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", key, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET value = ?, updated_at = ? WHERE namespace = ? AND key = ?`,
		string(value), toMillis(time.Now()), s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", key, err)
	}
	return requireOne(res, key)
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", key, err)
	}
	return requireOne(res, key)
}

func requireOne(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", key, service.ErrNotFound)
	}
	return nil
}

func decode(key, value string) (service.Item, error) {
	var item service.Item
	if err := json.Unmarshal([]byte(value), &item); err != nil {
		return service.Item{}, fmt.Errorf("decode entry %s: %w", key, err)
	}
	return item, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
