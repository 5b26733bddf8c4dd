package settings

import (
	"slices"
)

// Store maps type keys to their settings, in insertion order, plus the
// store-wide enabled flag.
type Store struct {
	enabled bool
	order   []string
	entries map[string]*Entry
}

// NewStore returns an empty, enabled store.
func NewStore() *Store {
	return &Store{
		enabled: true,
		entries: make(map[string]*Entry),
	}
}

// IsEnabled returns the store-wide switch. When false nothing is logged,
// whatever the per-type records say.
func (s *Store) IsEnabled() bool {
	return s.enabled
}

// SetEnabled sets the store-wide switch.
func (s *Store) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// GetOrDefault returns the entry for key, inserting one holding def when the
// key is absent. The returned pointer stays valid for the life of the store.
func (s *Store) GetOrDefault(key string, def EventSettings) (*Entry, bool) {
	if e, ok := s.entries[key]; ok {
		return e, false
	}
	e := &Entry{Key: key, Settings: def}
	s.entries[key] = e
	s.order = append(s.order, key)
	return e, true
}

// Entry returns the live entry for key.
func (s *Store) Entry(key string) (*Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Get returns a copy of the settings stored for key.
func (s *Store) Get(key string) (EventSettings, bool) {
	e, ok := s.entries[key]
	if !ok {
		return EventSettings{}, false
	}
	return e.Settings, true
}

// Set replaces the settings of an existing key. Unknown keys are not
// inserted: only registration creates entries.
func (s *Store) Set(key string, rec EventSettings) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.Settings = rec
	return true
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.order)
}

// Keys returns the keys in insertion order.
func (s *Store) Keys() []string {
	return slices.Clone(s.order)
}

// SortedKeys returns the keys in lexical order.
func (s *Store) SortedKeys() []string {
	keys := slices.Clone(s.order)
	slices.Sort(keys)
	return keys
}

// Snapshot is a detached copy of a store.
type Snapshot struct {
	PluginEnabled bool
	Events        map[string]EventSettings
}

// Snapshot copies the store.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		PluginEnabled: s.enabled,
		Events:        make(map[string]EventSettings, len(s.entries)),
	}
	for k, e := range s.entries {
		snap.Events[k] = e.Settings
	}
	return snap
}
