package cart

import "sync"

// Store maps a dialog session id to its in-progress cart. It is owned by
// the service instance, not a package global. A session entry exists only
// while its cart holds at least one line; draining or finalizing a cart
// drops the session.
//
// All operations for one session must run under that session's lock
// (LockSession), including the persistence commit of a finalization, so
// two webhook calls racing on the same session cannot lose updates.
type Store struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{
		locks: make(map[string]*sync.Mutex),
		carts: make(map[string]*Cart),
	}
}

// LockSession serializes all work for one session and returns the release
// function. Session locks are retained for the life of the process.
func (s *Store) LockSession(id string) (release func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Cart returns the session's cart, or false if the session has none.
func (s *Store) Cart(id string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	return c, ok
}

// GetOrCreate returns the session's cart, creating an empty one if absent.
// Callers that end up adding nothing must Drop it to keep the no-empty-cart
// invariant.
func (s *Store) GetOrCreate(id string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		c = &Cart{}
		s.carts[id] = c
	}
	return c
}

// Drop removes the session's cart entry.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

// Sessions reports how many sessions currently hold a cart.
func (s *Store) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
