package auth

import (
	"context"
	"sync"
)

// SessionStore is a pluggable persistence layer for the current session.
// The in-memory default is fine for short-lived processes; swap in the
// store package's File for sessions that survive restarts.
type SessionStore interface {
	// Load returns the stored session, or (nil, nil) when nothing is stored.
	Load(ctx context.Context) (*Session, error)
	// Save replaces the stored session.
	Save(ctx context.Context, session *Session) error
	// Clear removes the stored session, if any.
	Clear(ctx context.Context) error
}

type memoryStore struct {
	mu      sync.RWMutex
	session *Session
}

func (m *memoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	session := *m.session
	return &session, nil
}

func (m *memoryStore) Save(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session == nil {
		m.session = nil
		return nil
	}
	snapshot := *session
	m.session = &snapshot
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// NewMemoryStore creates an in-memory SessionStore.
func NewMemoryStore() SessionStore {
	return &memoryStore{}
}
