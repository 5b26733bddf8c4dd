//go:build !nologevents

package logevents

import (
	"logevents/internal/logging"
	"logevents/internal/registry"
	"logevents/internal/settings"
	"logevents/internal/typekey"
	"logevents/pkg/ecs"

	"go.uber.org/zap"
)

// LogEvent logs every E sent on the app's event queue. Lines are written
// once per tick in ecs.Last, after everything produced during the tick.
// Registering E again is a no-op.
func LogEvent[E any](app *ecs.App, opts ...RegisterOption) {
	id := typekey.Of[E]()
	st, b := register(app, id, registry.Send, opts)
	if b == nil {
		return
	}

	var cursor ecs.Cursor[E]
	app.AddSystems(ecs.Last, func(w *ecs.World) {
		events := cursor.Read(w)
		if b.entry == nil || !b.entry.Settings.Enabled {
			return
		}
		for _, inst := range events {
			st.emit(w, b, inst.Event, ecs.Placeholder, inst.Caller)
		}
	}, ecs.InSet(LogEventsSet), ecs.Named("logevents.log_event["+id.Short()+"]"), ecs.Reads[settings.Store]())
}

// AddAndLogEvent adds the queue for E to the app, then logs it like LogEvent.
func AddAndLogEvent[E any](app *ecs.App, opts ...RegisterOption) {
	ecs.AddEvent[E](app)
	LogEvent[E](app, opts...)
}

// LogTriggered logs every trigger of E as it happens.
func LogTriggered[E any](app *ecs.App, opts ...RegisterOption) {
	st, b := register(app, typekey.Of[E](), registry.Triggered, opts)
	if b == nil {
		return
	}
	ecs.Observe(app, func(w *ecs.World, tr ecs.Trigger[E]) {
		if !st.store.IsEnabled() || b.entry == nil || !b.entry.Settings.Enabled {
			return
		}
		st.emit(w, b, tr.Event, tr.Target, tr.Caller)
	})
}

// LogTrigger logs component C of the target whenever E is triggered for C,
// for example LogTrigger[ecs.OnAdd, Health] logs every Health added to an
// entity. Nothing is logged when the target has no C.
func LogTrigger[E, C any](app *ecs.App, opts ...RegisterOption) {
	st, b := register(app, typekey.Pair[E, C](), registry.Triggered, opts)
	if b == nil {
		return
	}
	ecs.ObserveComponent[E, C](app, func(w *ecs.World, tr ecs.Trigger[E]) {
		if !st.store.IsEnabled() || b.entry == nil || !b.entry.Settings.Enabled {
			return
		}
		if !tr.Targeted() {
			return
		}
		c, ok := ecs.Get[C](w, tr.Target)
		if !ok {
			return
		}
		st.emit(w, b, c, tr.Target, tr.Caller)
	})
}

// register records the (id, entry) pair and returns the binding to install
// a system for, or nil when nothing should be installed.
func register(app *ecs.App, id typekey.Identity, entry registry.EntryPoint, opts []RegisterOption) (*state, *binding) {
	st := stateOf(app)
	if st == nil {
		app.Logger().Warn("event logging registered before the logevents plugin was added; ignoring",
			zap.String("type", id.Short()), zap.Stringer("entry_point", entry))
		logging.RegistryWarn("%s registered for %s before the plugin was added", id, entry)
		return nil, nil
	}
	if !st.tracker.MarkAndCheck(id, entry) {
		logging.Registry("%s already logged for %s, skipping", id, entry)
		return nil, nil
	}

	b, ok := st.bindings[id]
	if !ok {
		b = &binding{id: id, def: defaults(opts)}
		st.bindings[id] = b
		st.keys.Add(id)
		if st.resolved {
			st.resolveLate(b)
		}
	}
	logging.RegistryDebug("registered %s for %s", id, entry)
	return st, b
}
