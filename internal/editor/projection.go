// Package editor binds the settings store to an interactive editor: a
// filtered view of the entries and the edits that write straight back to
// the store.
//
// A Projection holds no copy of the settings. It is used on the host tick
// like every other system; renderers on other goroutines go through a
// Bridge instead.
package editor

import (
	"errors"
	"fmt"

	"logevents/internal/settings"
)

// ErrUnknownKey is returned when an edit names a key the store lacks.
var ErrUnknownKey = errors.New("unknown settings key")

// Projection is the editor's view of a store.
type Projection struct {
	store  *settings.Store
	Filter Filter
}

// NewProjection returns an unfiltered projection of store.
func NewProjection(store *settings.Store) *Projection {
	return &Projection{store: store}
}

// PluginEnabled returns the store-wide switch.
func (p *Projection) PluginEnabled() bool {
	return p.store.IsEnabled()
}

// All returns every entry as a row, sorted by key.
func (p *Projection) All() []Row {
	keys := p.store.SortedKeys()
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rec, _ := p.store.Get(k)
		rows = append(rows, Row{Key: k, Settings: rec})
	}
	return rows
}

// Rows returns the rows passing the filter. With an invalid regular
// expression no row passes.
func (p *Projection) Rows() []Row {
	rows, err := p.Filter.Apply(p.All())
	if err != nil {
		return nil
	}
	return rows
}

// FilterError returns the problem with the current filter, if any.
func (p *Projection) FilterError() error {
	_, err := p.Filter.Apply(nil)
	return err
}

// Total returns the number of entries.
func (p *Projection) Total() int {
	return p.store.Len()
}

// Shown returns the number of rows passing the filter.
func (p *Projection) Shown() int {
	return len(p.Rows())
}

// SetPluginEnabled sets the store-wide switch.
func (p *Projection) SetPluginEnabled(enabled bool) {
	p.store.SetEnabled(enabled)
}

// SetEnabled sets the enabled flag of key.
func (p *Projection) SetEnabled(key string, enabled bool) error {
	return p.update(key, func(s *settings.EventSettings) { s.Enabled = enabled })
}

// SetPretty sets the pretty flag of key.
func (p *Projection) SetPretty(key string, pretty bool) error {
	return p.update(key, func(s *settings.EventSettings) { s.Pretty = pretty })
}

// SetLevel sets the level of key.
func (p *Projection) SetLevel(key string, level settings.Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid level %d", level)
	}
	return p.update(key, func(s *settings.EventSettings) { s.Level = level })
}

// CycleLevel moves the level of key one step, wrapping around. A negative
// step moves down.
func (p *Projection) CycleLevel(key string, step int) error {
	return p.update(key, func(s *settings.EventSettings) {
		if step < 0 {
			s.Level = s.Level.Prev()
		} else {
			s.Level = s.Level.Next()
		}
	})
}

func (p *Projection) update(key string, fn func(*settings.EventSettings)) error {
	e, ok := p.store.Entry(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	fn(&e.Settings)
	return nil
}

// Snapshot copies the switch and every row for a renderer.
func (p *Projection) Snapshot() Snapshot {
	return Snapshot{PluginEnabled: p.store.IsEnabled(), Rows: p.All()}
}

// Snapshot is a detached copy of the editor state.
type Snapshot struct {
	PluginEnabled bool
	Rows          []Row
}

// Equal reports whether two snapshots hold the same settings.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.PluginEnabled != o.PluginEnabled || len(s.Rows) != len(o.Rows) {
		return false
	}
	for i := range s.Rows {
		if s.Rows[i].Key != o.Rows[i].Key || s.Rows[i].Settings != o.Rows[i].Settings {
			return false
		}
	}
	return true
}
