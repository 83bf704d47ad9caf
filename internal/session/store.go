// Package session maps opaque session ids to a current table and the
// original table it was loaded from.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// ErrNotFound is returned when a session has no table loaded.
var ErrNotFound = errors.New("session not found")

// Store holds one current and one original table per session. Tables are
// copied in and out; callers never share a table with the store.
type Store interface {
	// Load starts a session from a fresh upload: original and current become t.
	Load(ctx context.Context, id string, t *table.Table) error
	// Get returns the current table.
	Get(ctx context.Context, id string) (*table.Table, error)
	// Set replaces the current table. An unknown id starts a session with t as original.
	Set(ctx context.Context, id string, t *table.Table) error
	// Reset restores the current table to the original.
	Reset(ctx context.Context, id string) error
	// Delete forgets the session.
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a new random session id.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id looks like an id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Open returns the store for a configured backend ("memory" or "sqlite").
func Open(backend, dsn string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown session backend %q (want memory or sqlite)", backend)
	}
}

type entry struct {
	current, original *table.Table
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]entry)}
}

func (m *MemoryStore) Load(_ context.Context, id string, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = entry{current: t.Clone(), original: t.Clone()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.current.Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, id string, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		e.original = t.Clone()
	}
	e.current = t.Clone()
	m.sessions[id] = e
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e.current = e.original.Clone()
	m.sessions[id] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
