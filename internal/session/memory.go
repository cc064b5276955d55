package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/avykov/multiauth/internal/auth"
)

// MemoryStore is the in-process session [Manager]. Used when no redis URL
// is configured, and throughout the test suites.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

// NewMemoryStore constructs an empty in-memory session manager.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string][]byte),
	}
}

// Session opens a handle onto the session identified by id. An empty id
// starts a fresh session; onIDChange is called immediately with the new
// identifier.
func (s *MemoryStore) Session(id string, onIDChange func(newID string)) auth.SessionStore {
	if onIDChange == nil {
		onIDChange = func(string) {}
	}

	if id == "" {
		id = uuid.NewString()
		onIDChange(id)
	}

	return &memorySession{store: s, id: id, onIDChange: onIDChange}
}

type memorySession struct {
	store      *MemoryStore
	id         string
	onIDChange func(newID string)
}

func (s *memorySession) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	entries, ok := s.store.sessions[s.id]
	if !ok {
		return nil, false, nil
	}

	value, ok := entries[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *memorySession) Set(_ context.Context, key string, value []byte) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	entries, ok := s.store.sessions[s.id]
	if !ok {
		entries = make(map[string][]byte)
		s.store.sessions[s.id] = entries
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	entries[key] = stored
	return nil
}

func (s *memorySession) Delete(_ context.Context, key string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if entries, ok := s.store.sessions[s.id]; ok {
		delete(entries, key)
	}

	return nil
}

func (s *memorySession) Destroy(_ context.Context) error {
	s.store.mu.Lock()
	delete(s.store.sessions, s.id)
	s.store.mu.Unlock()

	s.onIDChange("")
	return nil
}

func (s *memorySession) RegenerateID(_ context.Context) error {
	newID := uuid.NewString()

	s.store.mu.Lock()
	if entries, ok := s.store.sessions[s.id]; ok {
		delete(s.store.sessions, s.id)
		s.store.sessions[newID] = entries
	}
	s.store.mu.Unlock()

	s.id = newID
	s.onIDChange(newID)
	return nil
}
