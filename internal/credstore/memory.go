package credstore

import "sync"

// MemStore is an in-memory Store. It backs tests and one-shot CLI runs
// where persisting tokens to disk is unwanted.
type MemStore struct {
	mu   sync.Mutex
	pair Pair
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Get() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

func (s *MemStore) Set(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}
