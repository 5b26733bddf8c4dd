//go:build !nologevents

package logevents

import (
	"logevents/internal/editor"
	"logevents/internal/typekey"
	"logevents/pkg/ecs"
)

// SetPluginEnabled sets the store-wide switch. Before startup a value read
// from the settings file takes precedence.
func SetPluginEnabled(app *ecs.App, enabled bool) {
	if st := stateOf(app); st != nil {
		st.store.SetEnabled(enabled)
	}
}

// PluginEnabled returns the store-wide switch.
func PluginEnabled(app *ecs.App) bool {
	st := stateOf(app)
	return st != nil && st.store.IsEnabled()
}

// Settings returns the settings of E. Before startup it returns the
// registration default.
func Settings[E any](app *ecs.App) (EventSettings, bool) {
	return lookup(app, typekey.Of[E]())
}

// SetSettings replaces the settings of E. Before startup it replaces the
// registration default, so a record in the settings file still wins. It
// returns false when E is not registered.
func SetSettings[E any](app *ecs.App, rec EventSettings) bool {
	return update(app, typekey.Of[E](), rec)
}

// TriggerSettings returns the settings of the (E, C) registration made by
// LogTrigger.
func TriggerSettings[E, C any](app *ecs.App) (EventSettings, bool) {
	return lookup(app, typekey.Pair[E, C]())
}

// SetTriggerSettings is SetSettings for a LogTrigger registration.
func SetTriggerSettings[E, C any](app *ecs.App, rec EventSettings) bool {
	return update(app, typekey.Pair[E, C](), rec)
}

// Key returns the settings key E resolved to. Keys exist from startup on.
func Key[E any](app *ecs.App) (string, bool) {
	st := stateOf(app)
	if st == nil {
		return "", false
	}
	return st.keys.Key(typekey.Of[E]())
}

// Projection returns the editor view of the app's settings, or nil when the
// plugin was not added.
func Projection(app *ecs.App) *editor.Projection {
	st := stateOf(app)
	if st == nil {
		return nil
	}
	return st.projection
}

// Save writes the settings file now.
func Save(app *ecs.App) error {
	st := stateOf(app)
	if st == nil {
		return nil
	}
	return st.save()
}

func lookup(app *ecs.App, id typekey.Identity) (EventSettings, bool) {
	st := stateOf(app)
	if st == nil {
		return EventSettings{}, false
	}
	b, ok := st.bindings[id]
	if !ok {
		return EventSettings{}, false
	}
	if b.entry != nil {
		return b.entry.Settings, true
	}
	return b.def, true
}

func update(app *ecs.App, id typekey.Identity, rec EventSettings) bool {
	st := stateOf(app)
	if st == nil {
		return false
	}
	b, ok := st.bindings[id]
	if !ok {
		return false
	}
	if b.entry != nil {
		b.entry.Settings = rec
	} else {
		b.def = rec
	}
	return true
}
