// Package memstore is an in-memory vm.Store, useful for tests and for
// short-lived hosts that don't need persistence across process restarts.
package memstore

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/vm"
)

// Store is a map-backed vm.Store guarded by a mutex so it is safe to
// share across independently-driven Engine invocations (§5 of the engine
// this store backs allows the host to run concurrent instances over
// independent stores; a shared memstore is one way a host may choose to
// let them communicate).
type Store struct {
	mu      sync.Mutex
	labels  map[vm.Label]vm.Labels
	vectors map[vm.Label]vm.Vector
	scalars map[vm.Label]amount.Amount
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		labels:  make(map[vm.Label]vm.Labels),
		vectors: make(map[vm.Label]vm.Vector),
		scalars: make(map[vm.Label]amount.Amount),
	}
}

// LoadLabels implements vm.Store.
func (s *Store) LoadLabels(key vm.Label) (vm.Labels, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[key]
	if !ok {
		return vm.Labels{}, errors.Wrapf(vm.ErrNotFound, "labels %x%x", key.Hi, key.Lo)
	}
	return l.Clone(), nil
}

// LoadVector implements vm.Store.
func (s *Store) LoadVector(key vm.Label) (vm.Vector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vectors[key]
	if !ok {
		return vm.Vector{}, errors.Wrapf(vm.ErrNotFound, "vector %x%x", key.Hi, key.Lo)
	}
	return v.Clone(), nil
}

// LoadScalar implements vm.Store. An unset key yields zero, per §6.1.
func (s *Store) LoadScalar(key vm.Label) (amount.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scalars[key], nil
}

// StoreLabels implements vm.Store.
func (s *Store) StoreLabels(key vm.Label, v vm.Labels) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[key] = v.Clone()
	return nil
}

// StoreVector implements vm.Store.
func (s *Store) StoreVector(key vm.Label, v vm.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[key] = v.Clone()
	return nil
}

// StoreScalar implements vm.Store.
func (s *Store) StoreScalar(key vm.Label, v amount.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[key] = v
	return nil
}
