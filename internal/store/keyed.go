// Package store provides the keyed per-personality state store shared by
// the variance engines. Each engine owns one store instance; entries are
// created by explicit registration and removed by explicit reset, so no
// engine ever falls back to a silent default for an unknown personality.
package store

import "sync"

// Keyed is a mutex-guarded map keyed by personality id. Mutations to a
// stored value must go through Update so the single-writer discipline of
// the bounded history buffers holds under concurrent signals.
type Keyed[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

// NewKeyed creates an empty store.
func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{m: make(map[string]T)}
}

// Put creates or replaces the entry for id.
func (s *Keyed[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
}

// Get returns the entry for id and whether it exists.
func (s *Keyed[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok
}

// Update runs fn against the entry for id while holding the write lock.
// It returns false without calling fn when id is not registered.
func (s *Keyed[T]) Update(id string, fn func(v T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[id]
	if !ok {
		return false
	}
	s.m[id] = fn(v)
	return true
}

// Delete removes the entry for id.
func (s *Keyed[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// Has reports whether id is registered.
func (s *Keyed[T]) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[id]
	return ok
}

// Keys returns a snapshot of all registered ids.
func (s *Keyed[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of registered entries.
func (s *Keyed[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
