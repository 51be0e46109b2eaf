package store

import "sync"

// Shared guards a store for use from several goroutines: any number of
// concurrent View calls, or one Update at a time. Iterators obtained inside
// a callback must not be used after it returns.
type Shared[S any] struct {
	mu    sync.RWMutex
	store S
}

// NewShared wraps s. The caller must not use s directly afterwards.
func NewShared[S any](s S) *Shared[S] {
	return &Shared[S]{store: s}
}

// View runs fn under the read lock. fn must not mutate the store.
func (s *Shared[S]) View(fn func(S) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.store)
}

// Update runs fn with exclusive access to the store.
func (s *Shared[S]) Update(fn func(S) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Swap replaces the wrapped store and returns the previous one.
func (s *Shared[S]) Swap(next S) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.store
	s.store = next
	return prev
}
