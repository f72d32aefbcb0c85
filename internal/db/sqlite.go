// Package db provides the SQLite implementation of store.Store.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/shcadule/internal/store"
)

// SQLite implements store.Store on a single documents table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLite)(nil)

// New opens the database at path and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// One writer keeps read-merge-write transactions from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Get returns the document at path, or store.ErrNotFound.
func (s *SQLite) Get(ctx context.Context, path store.Path) ([]byte, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return getDocument(ctx, s.db, path)
}

// Set inserts or replaces the document at path.
func (s *SQLite) Set(ctx context.Context, path store.Path, doc []byte) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if err := store.ValidateDocument(doc); err != nil {
		return err
	}
	return s.putDocument(ctx, s.db, path, doc)
}

// Update merges fields into the existing document at path inside a transaction.
func (s *SQLite) Update(ctx context.Context, path store.Path, fields map[string]any) error {
	if err := path.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := getDocument(ctx, tx, path)
	if err != nil {
		return err
	}

	merged, err := store.Merge(doc, fields)
	if err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}

	if err := s.putDocument(ctx, tx, path, merged); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Delete removes the document at path, or returns store.ErrNotFound.
func (s *SQLite) Delete(ctx context.Context, path store.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, string(path))
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", path, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns documents directly under collection that match every filter.
// Filters are evaluated in Go over the collection's rows.
func (s *SQLite) List(ctx context.Context, collection store.Path, filters ...store.Filter) ([]store.Document, error) {
	if err := collection.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT path, data FROM documents WHERE parent = ? ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query, string(collection))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []store.Document
	for rows.Next() {
		var (
			path string
			data string
		)
		if err := rows.Scan(&path, &data); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc := store.Document{Path: store.Path(path), Data: []byte(data)}
		if !store.MatchesAll(doc.Data, filters) {
			continue
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDocument(ctx context.Context, q querier, path store.Path) ([]byte, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, string(path)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", path, err)
	}
	return []byte(data), nil
}

func (s *SQLite) putDocument(ctx context.Context, q querier, path store.Path, doc []byte) error {
	query := `
		INSERT INTO documents (path, parent, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	_, err := q.ExecContext(ctx, query,
		string(path),
		string(path.Parent()),
		string(doc),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}
