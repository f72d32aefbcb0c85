// Package store defines the document-store contract used by the board and
// subscription packages, plus an in-memory implementation.
//
// Documents are JSON objects addressed by slash-separated paths such as
// users/{userID}/weeklyBoard/{weekID}.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store errors.
var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidPath     = errors.New("invalid document path")
	ErrInvalidDocument = errors.New("document must be a JSON object")
)

// Store is a document database addressed by path.
type Store interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path Path) ([]byte, error)

	// Set overwrites the document at path.
	Set(ctx context.Context, path Path, doc []byte) error

	// Update merges fields into the existing document at path. Keys may be
	// dotted ("profile.plan") to reach nested fields. Returns ErrNotFound if
	// the document does not exist.
	Update(ctx context.Context, path Path, fields map[string]any) error

	// Delete removes the document at path. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, path Path) error

	// List returns the documents directly under collection that match every filter,
	// ordered by path.
	List(ctx context.Context, collection Path, filters ...Filter) ([]Document, error)

	// Close releases any resources held by the store.
	Close() error
}

// Document is a stored JSON document and its path.
type Document struct {
	Path Path
	Data []byte
}

// Path is a slash-separated document or collection path.
type Path string

// Join builds a path from segments.
func Join(segments ...string) Path {
	return Path(strings.Join(segments, "/"))
}

// BoardPath is the path of a user's weekly board document.
func BoardPath(userID, weekID string) Path {
	return Join("users", userID, "weeklyBoard", weekID)
}

// DailyPath is the path of a user's task list for one day ("2006-01-02").
func DailyPath(userID, date string) Path {
	return Join("users", userID, "daily", date)
}

// GoalsPath is the collection holding a user's goals.
func GoalsPath(userID string) Path {
	return Join("users", userID, "goals")
}

// UserPath is the path of a user's account document.
func UserPath(userID string) Path {
	return Join("users", userID)
}

// Parent returns the collection containing p, "" for a top-level path.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// ID returns the last segment of p.
func (p Path) ID() string {
	s := string(p)
	return s[strings.LastIndexByte(s, '/')+1:]
}

// Validate checks that p has no empty segments.
func (p Path) Validate() error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, seg := range strings.Split(string(p), "/") {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, p)
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return string(p)
}
