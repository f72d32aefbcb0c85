package store

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	docs map[Path][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Path][]byte)}
}

// Get returns a copy of the document at path.
func (m *Memory) Get(ctx context.Context, path Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(doc), nil
}

// Set stores a copy of doc at path.
func (m *Memory) Set(ctx context.Context, path Path, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := path.Validate(); err != nil {
		return err
	}
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[path] = slices.Clone(doc)
	return nil
}

// Update merges fields into the document at path.
func (m *Memory) Update(ctx context.Context, path Path, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := path.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[path]
	if !ok {
		return ErrNotFound
	}
	merged, err := Merge(doc, fields)
	if err != nil {
		return err
	}
	m.docs[path] = merged
	return nil
}

// Delete removes the document at path.
func (m *Memory) Delete(ctx context.Context, path Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := path.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[path]; !ok {
		return ErrNotFound
	}
	delete(m.docs, path)
	return nil
}

// List returns the matching documents directly under collection.
func (m *Memory) List(ctx context.Context, collection Path, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := collection.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Document
	for p, doc := range m.docs {
		if p.Parent() != collection || !MatchesAll(doc, filters) {
			continue
		}
		result = append(result, Document{Path: p, Data: slices.Clone(doc)})
	}
	slices.SortFunc(result, func(a, b Document) int {
		return strings.Compare(string(a.Path), string(b.Path))
	})
	return result, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
