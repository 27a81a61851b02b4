// Package reflector stores metadata attached to Go types and their properties.
//
// It is the registry that explicit registration writes into and that the schema
// synthesizer reads from. Entries are grouped by namespace key so that unrelated
// subsystems can annotate the same type without clashing.
package reflector

import (
	"reflect"
	"sort"
	"sync"
)

// Key is a metadata namespace, e.g. "davinci:openapi:definition".
type Key string

// Store holds class-level and property-level metadata keyed by type identity.
// All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	types map[reflect.Type]map[Key]any
	props map[reflect.Type]map[string]map[Key]any
}

// New creates an empty Store
func New() *Store {
	return &Store{
		types: make(map[reflect.Type]map[Key]any),
		props: make(map[reflect.Type]map[string]map[Key]any),
	}
}

var defaultStore = New()

// Default returns the process-wide store used by package-level helpers.
func Default() *Store {
	return defaultStore
}

// Target normalizes t so that *T and T share metadata.
func Target(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// DefineMetadata sets the value stored under key for target, replacing any previous value.
func (s *Store) DefineMetadata(key Key, value any, target reflect.Type) {
	target = Target(target)
	if target == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.types[target]
	if !ok {
		entries = make(map[Key]any)
		s.types[target] = entries
	}
	entries[key] = value
}

// GetMetadata returns the value stored under key for target, or nil.
func (s *Store) GetMetadata(key Key, target reflect.Type) any {
	target = Target(target)
	if target == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.types[target][key]
}

// HasMetadata reports whether target has a value under key.
func (s *Store) HasMetadata(key Key, target reflect.Type) bool {
	target = Target(target)
	if target == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.types[target][key]
	return ok
}

// DeleteMetadata removes the value stored under key for target.
func (s *Store) DeleteMetadata(key Key, target reflect.Type) {
	target = Target(target)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.types[target], key)
}

// DefinePropertyMetadata sets the value stored under key for a property of target.
func (s *Store) DefinePropertyMetadata(key Key, value any, target reflect.Type, property string) {
	target = Target(target)
	if target == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byProp, ok := s.props[target]
	if !ok {
		byProp = make(map[string]map[Key]any)
		s.props[target] = byProp
	}
	entries, ok := byProp[property]
	if !ok {
		entries = make(map[Key]any)
		byProp[property] = entries
	}
	entries[key] = value
}

// GetPropertyMetadata returns the value stored under key for a property of target, or nil.
func (s *Store) GetPropertyMetadata(key Key, target reflect.Type, property string) any {
	target = Target(target)
	if target == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.props[target][property][key]
}

// Update atomically replaces the value under key for target with fn(current).
// It is used by registrations that append to a list, so that concurrent
// registrations of the same type do not lose records.
func (s *Store) Update(key Key, target reflect.Type, fn func(current any) any) {
	target = Target(target)
	if target == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.types[target]
	if !ok {
		entries = make(map[Key]any)
		s.types[target] = entries
	}
	entries[key] = fn(entries[key])
}

// Targets returns every type that has a value under key, sorted by type string
// for deterministic iteration.
func (s *Store) Targets(key Key) []reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var targets []reflect.Type
	for t, entries := range s.types {
		if _, ok := entries[key]; ok {
			targets = append(targets, t)
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].String() < targets[j].String()
	})
	return targets
}

// Reset drops all metadata. Intended for tests that use the default store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.types = make(map[reflect.Type]map[Key]any)
	s.props = make(map[reflect.Type]map[string]map[Key]any)
}
