// Package registry tracks which logging entry points were installed for
// which identities, so each (identity, entry point) pair installs its
// logging system at most once.
package registry

import (
	"strings"

	"logevents/internal/typekey"
)

// EntryPoint is a bit set of the ways an occurrence can be logged.
type EntryPoint uint8

const (
	// Send covers occurrences queued on the host's event transport.
	Send EntryPoint = 1 << iota
	// Triggered covers occurrences delivered to observers.
	Triggered
)

func (e EntryPoint) String() string {
	if e == 0 {
		return "none"
	}
	var parts []string
	if e&Send != 0 {
		parts = append(parts, "send")
	}
	if e&Triggered != 0 {
		parts = append(parts, "triggered")
	}
	if rest := e &^ (Send | Triggered); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// Tracker records installed entry points per identity.
// It is setup-time state and is never persisted.
type Tracker struct {
	marks map[typekey.Identity]EntryPoint
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{marks: make(map[typekey.Identity]EntryPoint)}
}

// MarkAndCheck records entry for id and reports whether this is the first
// time entry was recorded for id. Entry points are independent: marking Send
// never affects whether Triggered is still new.
func (t *Tracker) MarkAndCheck(id typekey.Identity, entry EntryPoint) bool {
	have := t.marks[id]
	if have&entry == entry {
		return false
	}
	t.marks[id] = have | entry
	return true
}

// Has reports whether entry was already recorded for id.
func (t *Tracker) Has(id typekey.Identity, entry EntryPoint) bool {
	return t.marks[id]&entry == entry
}

// EntryPoints returns every entry point recorded for id.
func (t *Tracker) EntryPoints(id typekey.Identity) EntryPoint {
	return t.marks[id]
}

// Len returns the number of identities with at least one entry point.
func (t *Tracker) Len() int {
	return len(t.marks)
}
