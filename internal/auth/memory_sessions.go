package auth

import (
	"context"
	"sync"
	"time"
)

const sessionCleanupInterval = 10 * time.Minute

// MemorySessionStore keeps sessions in process memory. Expired sessions are
// swept periodically until Stop is called.
type MemorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]Session
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemorySessionStore creates a store and starts its cleanup loop.
func NewMemorySessionStore() *MemorySessionStore {
	m := &MemorySessionStore{
		sessions:    make(map[string]Session),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *MemorySessionStore) cleanupLoop() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *MemorySessionStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}

// Stop ends the cleanup loop.
func (m *MemorySessionStore) Stop() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
}

// Save stores a session.
func (m *MemorySessionStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

// Get returns a live session.
func (m *MemorySessionStore) Get(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || !m.now().Before(s.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

// Delete removes a session.
func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
