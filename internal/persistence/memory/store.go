// Package memory provides a process-local RecordStore used by tests and by
// the BOOKING_STORE=memory development mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/study-scheduler/internal/persistence"
)

type key struct {
	collection string
	owner      string
}

// Store keeps collections in a map guarded by a RWMutex. Records are cloned
// on the way in and out so callers never share state with the store.
type Store struct {
	mu     sync.RWMutex
	data   map[key]persistence.RecordSet
	saves  int
	closed bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[key]persistence.RecordSet)}
}

// Close marks the store closed; later calls fail with persistence.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Load implements persistence.RecordStore.
func (s *Store) Load(ctx context.Context, collection, ownerKey string) (persistence.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := persistence.ValidateCollection(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}
	records, ok := s.data[key{collection: collection, owner: ownerKey}]
	if !ok {
		return persistence.RecordSet{}, nil
	}
	return records.Clone(), nil
}

// Save implements persistence.RecordStore.
func (s *Store) Save(ctx context.Context, collection, ownerKey string, records persistence.RecordSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := persistence.ValidateCollection(collection); err != nil {
		return err
	}

	cloned := records.Clone()
	if cloned == nil {
		cloned = persistence.RecordSet{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrStoreClosed
	}
	s.data[key{collection: collection, owner: ownerKey}] = cloned
	s.saves++
	return nil
}

// Owners implements persistence.OwnerIndex. Keys are sorted.
func (s *Store) Owners(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistence.ErrStoreClosed
	}
	var owners []string
	for k := range s.data {
		if k.collection == collection {
			owners = append(owners, k.owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// SaveCount reports how many successful Save calls the store has served.
func (s *Store) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
