package store

import "sync/atomic"

// MemoryStore is a lock-free in-process ResultStore.
// Readers always observe a complete value, either the previous or the new one.
type MemoryStore struct {
	last atomic.Pointer[string]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() string {
	if p := s.last.Load(); p != nil {
		return *p
	}
	return NoBuildYet
}

func (s *MemoryStore) Set(text string) {
	s.last.Store(&text)
}
