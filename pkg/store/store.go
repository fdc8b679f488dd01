// Package store provides a generic, thread-safe, in-memory collection for
// API records. It keeps insertion order for listing and mints identifiers
// that stay unique for the lifetime of the process.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDStrategy selects how NextID mints identifiers.
type IDStrategy string

const (
	// IDSequential mints decimal identifiers: "1", "2", "3", ...
	IDSequential IDStrategy = "sequential"
	// IDUUID mints random version 4 UUIDs.
	IDUUID IDStrategy = "uuid"
)

// ParseIDStrategy validates a strategy name. An empty name means IDSequential.
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(s) {
	case "", IDSequential:
		return IDSequential, nil
	case IDUUID:
		return IDUUID, nil
	default:
		return "", fmt.Errorf("unknown id strategy %q", s)
	}
}

// Store is a generic, thread-safe, in-memory collection of objects of type T.
// T must be a struct that can be marshaled/unmarshaled to JSON.
type Store[T any] struct {
	mu       sync.RWMutex
	items    map[string]T
	order    []string // insertion order for deterministic listing
	strategy IDStrategy
	counter  atomic.Uint64
}

// New creates an empty Store using the given ID strategy.
func New[T any](strategy IDStrategy) *Store[T] {
	if strategy == "" {
		strategy = IDSequential
	}
	return &Store[T]{
		items:    make(map[string]T),
		order:    make([]string, 0),
		strategy: strategy,
	}
}

// MaxObservedID is the largest numeric identifier that advances the
// sequential counter. Larger numeric ids are stored like any other string id,
// so a loaded id can never push the counter towards wrap-around.
const MaxObservedID = 1<<53 - 1

// NextID mints a fresh identifier. Sequential identifiers are never reused,
// even after Delete or Clear, and never collide with a stored id.
func (s *Store[T]) NextID() string {
	if s.strategy == IDUUID {
		return uuid.NewString()
	}
	for {
		id := strconv.FormatUint(s.counter.Add(1), 10)
		s.mu.RLock()
		_, taken := s.items[id]
		s.mu.RUnlock()
		if !taken {
			return id
		}
	}
}

// observe advances the sequential counter past id when id is numeric, so
// records loaded from outside never collide with minted ones.
func (s *Store[T]) observe(id string) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n > MaxObservedID {
		return
	}
	for {
		cur := s.counter.Load()
		if n <= cur || s.counter.CompareAndSwap(cur, n) {
			return
		}
	}
}

// Set stores an item with the given ID. If the ID already exists, it is overwritten
// but its position in the insertion order is preserved.
func (s *Store[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
	s.observe(id)
}

// Replace overwrites the item stored under id. It reports false, and stores
// nothing, when id is unknown.
func (s *Store[T]) Replace(id string, item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	s.items[id] = item
	return true
}

// Get retrieves an item by ID. Returns the item and true if found, zero value and false otherwise.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Delete removes an item by ID. Returns true if the item existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every item. The ID counter keeps counting.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = make([]string, 0)
}

// List returns all items in insertion order. The result is never nil.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.items[id])
	}
	return result
}

// ListIDs returns all IDs in insertion order.
func (s *Store[T]) ListIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of items in the store.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Filter returns items that match the given predicate, in insertion order.
// The result is never nil.
func (s *Store[T]) Filter(predicate func(id string, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0)
	for _, id := range s.order {
		if predicate(id, s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

// Snapshot returns all items as a JSON-serializable map.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]T, len(s.items))
	for k, v := range s.items {
		snapshot[k] = v
	}
	return snapshot
}

// LoadSnapshot replaces all items from a map. Numeric IDs are ordered
// numerically and precede any other IDs, which are ordered lexically.
func (s *Store[T]) LoadSnapshot(snapshot map[string]T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(snapshot))
	s.order = make([]string, 0, len(snapshot))
	for k, v := range snapshot {
		s.items[k] = v
		s.order = append(s.order, k)
		s.observe(k)
	}
	sort.Slice(s.order, func(i, j int) bool {
		return lessID(s.order[i], s.order[j])
	})
}

func lessID(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// MarshalJSON serializes the store to JSON (the items map).
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON deserializes JSON into the store, replacing existing items.
func (s *Store[T]) UnmarshalJSON(data []byte) error {
	var snapshot map[string]T
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	s.LoadSnapshot(snapshot)
	return nil
}
