//go:build !nologevents

package logevents

import (
	"context"
	"errors"

	"logevents/internal/editor"
	"logevents/internal/logging"
	"logevents/internal/persist"
	"logevents/internal/registry"
	"logevents/internal/settings"
	"logevents/internal/typekey"
	"logevents/internal/watcher"
	"logevents/pkg/ecs"

	"go.uber.org/zap"
)

// Enabled reports whether this build logs events.
const Enabled = true

// Plugin installs event logging into an app.
type Plugin struct {
	opts options
}

// New returns the plugin.
func New(opts ...Option) *Plugin {
	return &Plugin{opts: newOptions(opts)}
}

// state is the plugin's resource. Systems and observers capture it, so no
// lookup happens per occurrence.
type state struct {
	opts       options
	store      *settings.Store
	keys       *typekey.Registry
	tracker    *registry.Tracker
	bindings   map[typekey.Identity]*binding
	file       *persist.File
	retained   persist.Retained
	invalid    persist.Raw
	resolved   bool
	backend    logging.Backend
	projection *editor.Projection
	watcher    *watcher.SettingsWatcher
	logger     *zap.Logger
}

// binding ties an identity to its store entry. Every entry point registered
// for the identity shares it.
type binding struct {
	id    typekey.Identity
	def   settings.EventSettings
	entry *settings.Entry
}

func stateOf(app *ecs.App) *state {
	return ecs.Resource[state](app.World())
}

// Build loads the settings file and installs the plugin's systems.
func (p *Plugin) Build(app *ecs.App) {
	timer := logging.StartTimer(logging.CategorySettings, "plugin build")
	defer timer.Stop()

	store := settings.NewStore()
	st := &state{
		opts:       p.opts,
		store:      store,
		keys:       typekey.NewRegistry(),
		tracker:    registry.NewTracker(),
		bindings:   make(map[typekey.Identity]*binding),
		backend:    p.opts.backend,
		projection: editor.NewProjection(store),
		logger:     app.Logger().Named("logevents"),
	}
	if st.backend == nil {
		st.backend = logging.NewBackend(st.logger)
	}
	st.load()

	w := app.World()
	ecs.InsertResource(w, st)
	ecs.InsertResource(w, store)

	app.ConfigureSet(ecs.Last, LogEventsSet, func(*ecs.World) bool { return store.IsEnabled() })

	app.AddSystems(ecs.PreStartup, func(*ecs.World) { st.resolve() },
		ecs.Named("logevents.resolve"), ecs.Writes[settings.Store]())

	app.OnExit(func(*ecs.World, ecs.AppExit) {
		st.stopWatcher()
		if err := st.save(); err != nil {
			st.logger.Error("failed to save event log settings", zap.String("path", st.opts.cfg.SettingsPath), zap.Error(err))
		}
	})

	if b := p.opts.bridge; b != nil {
		app.AddSystems(ecs.PreUpdate, func(w *ecs.World) {
			if b.Sync(st.projection) {
				ecs.Exit(w, 0)
			}
		}, ecs.Named("logevents.editor_sync"), ecs.Writes[settings.Store]())
	}

	if p.opts.cfg.Watch {
		app.AddSystems(ecs.PreUpdate, func(*ecs.World) { st.pollReload() },
			ecs.Named("logevents.reload"), ecs.Writes[settings.Store]())
	}
}

// load reads the settings file. A missing or broken file leaves st.file nil,
// which reconciles as an empty file.
func (st *state) load() {
	path := st.opts.cfg.SettingsPath
	f, err := persist.Load(path)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		logging.Settings("no settings file at %s, starting from defaults", path)
		return
	case err != nil:
		st.logger.Warn("could not load event log settings, starting from defaults",
			zap.String("path", path), zap.Error(err))
		return
	}
	for _, w := range f.Warnings {
		st.logger.Warn("invalid settings entry kept as written", zap.String("path", path), zap.String("entry", w))
	}
	logging.Settings("loaded %d entries from %s", len(f.Events), path)
	st.file = f
}

// resolve assigns keys to every registration made before startup and
// creates their store entries.
func (st *state) resolve() {
	if st.resolved {
		return
	}
	st.resolved = true

	f := st.file
	if f == nil {
		// No file: keep whatever the app set programmatically.
		f = persist.NewFile()
		f.PluginEnabled = st.store.IsEnabled()
	}

	resolved := st.keys.Resolve()
	pending := make([]persist.Pending, 0, len(resolved))
	for _, id := range resolved {
		key, _ := st.keys.Key(id)
		pending = append(pending, persist.Pending{Key: key, Default: st.bindings[id].def})
	}
	res := persist.Reconcile(st.store, f, pending)
	for _, id := range resolved {
		st.attach(st.bindings[id])
	}
	st.retained = res.Retained
	st.invalid = res.Invalid

	logging.Registry("resolved %d types: %d from file, %d defaults, %d retained",
		len(resolved), len(res.Adopted), len(res.Defaulted), len(res.Retained))

	if st.opts.cfg.Watch {
		st.startWatcher()
	}
}

// resolveLate handles a registration made after startup. Keys resolved
// earlier stay as they are; a retained record for the new key is adopted.
func (st *state) resolveLate(b *binding) {
	st.keys.Resolve()
	key, _ := st.keys.Key(b.id)
	rec := b.def
	if r, ok := st.retained[key]; ok {
		rec = r
		delete(st.retained, key)
	}
	st.store.GetOrDefault(key, rec)
	st.attach(b)
	logging.RegistryDebug("late registration of %s resolved to %q", b.id, key)
}

func (st *state) attach(b *binding) {
	key, _ := st.keys.Key(b.id)
	b.entry, _ = st.store.Entry(key)
}

func (st *state) save() error {
	timer := logging.StartTimer(logging.CategorySettings, "save")
	defer timer.Stop()

	retained, invalid := st.retained, st.invalid
	if st.opts.cfg.PruneStale {
		retained, invalid = nil, nil
	}
	if err := persist.Save(st.opts.cfg.SettingsPath, st.store, retained, invalid); err != nil {
		return err
	}
	logging.Settings("saved %d entries to %s", st.store.Len()+len(retained)+len(invalid), st.opts.cfg.SettingsPath)
	return nil
}

func (st *state) startWatcher() {
	sw, err := watcher.New(st.opts.cfg.SettingsPath, 0)
	if err != nil {
		st.logger.Warn("settings hot reload unavailable", zap.Error(err))
		return
	}
	if err := sw.Start(context.Background()); err != nil {
		sw.Stop()
		st.logger.Warn("settings hot reload unavailable", zap.Error(err))
		return
	}
	st.watcher = sw
}

func (st *state) stopWatcher() {
	if st.watcher != nil {
		st.watcher.Stop()
		st.watcher = nil
	}
}

func (st *state) pollReload() {
	if st.watcher == nil {
		return
	}
	select {
	case <-st.watcher.Reloads():
	default:
		return
	}
	st.reload()
}

// reload re-reads the settings file into the live store. A file that fails
// to parse leaves the current settings alone.
func (st *state) reload() {
	path := st.opts.cfg.SettingsPath
	f, err := persist.Load(path)
	if err != nil {
		st.logger.Warn("settings reload failed, keeping current settings", zap.String("path", path), zap.Error(err))
		return
	}
	for _, w := range f.Warnings {
		st.logger.Warn("invalid settings entry kept as written", zap.String("path", path), zap.String("entry", w))
	}
	res := persist.Reload(st.store, f)
	st.retained = res.Retained
	st.invalid = res.Invalid
	logging.Watcher("reloaded %s: %d entries applied", path, len(res.Adopted))
}
