// Package store is the object store each peer owns a slice of.
//
// Big idea:
//
// Every peer in the ring is responsible for one arc of the key space. This
// package holds the entries written to this peer while it owned their keys;
// after a join moves part of the arc to a new peer, those entries stay here.
// It does not know about neighbors, routing, or who else is in the ring; the
// router decides when to call in here, and only calls in once it has
// already decided this peer is the owner.
//
// Unlike a durable key-value engine, there is no write-ahead log and no
// snapshot here: entries live only as long as the peer process does, by
// design (the ring protocol never migrates data on join or leave, so there
// would be nothing to recover into anyway).
package store

import "sync"

// Store is a mapping from hashed key to opaque value bytes.
//
// Safe for concurrent use: many readers may run at once, writers are
// serialized.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Put inserts or overwrites the value for a hashed key. Always succeeds;
// the caller is responsible for having already established ownership.
func (s *Store) Put(hashedKey string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hashedKey] = cp
}

// Get returns the value stored for a hashed key, or ok=false if absent.
func (s *Store) Get(hashedKey string) (value []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[hashedKey]
	return v, ok
}

// Len reports how many entries this peer currently holds. Used only for
// introspection/debugging — the ring protocol never inspects store size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
