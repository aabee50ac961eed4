package session

import (
	"context"
	"sync"
	"time"

	"csvpilot/domain/core"
	"csvpilot/ports"
)

// MemoryStore is the in-process SessionStore. Entries live for the
// configured TTL from their last write; expired entries are dropped lazily
// on access and by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[core.SessionID]entry
}

type entry struct {
	ctx       ports.SessionContext
	expiresAt time.Time
}

// NewMemoryStore creates a session store with the given entry lifetime
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[core.SessionID]entry),
	}
}

// Get returns the live context for a session, if any
func (s *MemoryStore) Get(_ context.Context, id core.SessionID) (*ports.SessionContext, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, false
	}
	sc := e.ctx
	return &sc, true
}

// Put stores or refreshes a session context
func (s *MemoryStore) Put(_ context.Context, sc ports.SessionContext) error {
	sc.UpdatedAt = core.Now()
	s.mu.Lock()
	s.entries[sc.SessionID] = entry{ctx: sc, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes a session context
func (s *MemoryStore) Delete(_ context.Context, id core.SessionID) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and reports how many were removed
func (s *MemoryStore) Sweep() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
