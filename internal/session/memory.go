package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is an in-memory Store. Sessions do not survive a process
// restart, which is acceptable at this system's scale.
type MemoryStore struct {
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	stop     chan struct{}
}

// NewMemoryStore creates an in-memory session store. Expired sessions are
// swept periodically; Get also refuses them immediately on lookup.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		stop:     make(chan struct{}),
	}

	go s.sweep()

	return s
}

// Get returns the session for id, or ErrNotFound if missing or expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return Session{}, ErrNotFound
	}
	return entry.sess, nil
}

// Put creates or replaces the session for id.
func (s *MemoryStore) Put(ctx context.Context, id string, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{sess: sess, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Delete removes the session for id. Deleting a missing session is not an
// error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
	close(s.stop)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, entry := range s.sessions {
				if now.After(entry.expiresAt) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
