package config

import "sync/atomic"

// Store holds the active Settings. The rotation loop reads it every tick; the config
// watcher swaps in a freshly validated value after a reload.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore creates a store seeded with s.
func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns a copy of the active settings.
func (st *Store) Current() Settings {
	return *st.current.Load()
}

// Swap installs next and returns the previous settings.
func (st *Store) Swap(next *Settings) *Settings {
	return st.current.Swap(next)
}
