package submission

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data []Submission
}

// NewMemoryStore creates a new in-memory submission store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: []Submission{},
	}
}

// Insert stores the submission in memory.
func (m *MemoryStore) Insert(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data, s)
	return nil
}

// List returns all submissions, newest first. Submissions created at the
// same instant are returned in reverse insertion order.
func (m *MemoryStore) List(_ context.Context) ([]Submission, error) {
	m.mu.RLock()
	out := make([]Submission, 0, len(m.data))
	for i := len(m.data) - 1; i >= 0; i-- {
		out = append(out, m.data[i])
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns the submission with the given ID.
func (m *MemoryStore) Get(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.data {
		if s.ID == id {
			return s, nil
		}
	}
	return Submission{}, ErrNotFound
}

// Delete removes the submission with the given ID.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.data {
		if s.ID == id {
			m.data = append(m.data[:i], m.data[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
