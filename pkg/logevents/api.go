// Package logevents logs the events of an ecs.App according to per-type
// settings that persist across runs.
//
// Add the plugin, then register the types to log:
//
//	app.AddPlugins(logevents.New())
//	logevents.AddAndLogEvent[Ping](app)
//	logevents.LogTriggered[Spawned](app, logevents.WithLevel(logevents.LevelDebug))
//	logevents.LogTrigger[ecs.OnAdd, Health](app)
//
// Each registered type gets a settings key (see internal/typekey) and an
// entry in the settings file, by default assets/log_settings.yaml. The file
// is read when the plugin is built, reconciled with the registrations at
// startup and written back when the app exits.
//
// Building with the nologevents tag turns every function of this package
// into a no-op with the same signature.
package logevents

import (
	"logevents/internal/config"
	"logevents/internal/editor"
	"logevents/internal/logging"
	"logevents/internal/persist"
	"logevents/internal/settings"
	"logevents/pkg/ecs"

	"go.uber.org/zap"
)

// LogEventsSet holds every send-based logging system. It runs in ecs.Last,
// gated by the store-wide enabled flag.
const LogEventsSet ecs.SystemSet = "logevents"

// DefaultSettingsPath is where settings are kept unless configured otherwise.
const DefaultSettingsPath = persist.DefaultPath

type (
	// EventSettings is how one type is logged.
	EventSettings = settings.EventSettings
	// Level is the severity an event is logged at.
	Level = settings.Level
)

const (
	LevelTrace = settings.LevelTrace
	LevelDebug = settings.LevelDebug
	LevelInfo  = settings.LevelInfo
	LevelWarn  = settings.LevelWarn
	LevelError = settings.LevelError
)

// DefaultSettings is the record a type gets when registered without options.
func DefaultSettings() EventSettings {
	return settings.Default()
}

// RegisterOption adjusts the default settings of a registration. The
// default only applies when the settings file has no record for the type.
type RegisterOption func(*EventSettings)

// WithDefaults replaces the default record.
func WithDefaults(rec EventSettings) RegisterOption {
	return func(s *EventSettings) { *s = rec }
}

// WithLevel sets the default level.
func WithLevel(l Level) RegisterOption {
	return func(s *EventSettings) { s.Level = l }
}

// Pretty makes the type default to the multi-line representation.
func Pretty() RegisterOption {
	return func(s *EventSettings) { s.Pretty = true }
}

// Disabled makes the type default to not being logged.
func Disabled() RegisterOption {
	return func(s *EventSettings) { s.Enabled = false }
}

func defaults(opts []RegisterOption) EventSettings {
	rec := settings.Default()
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// Option configures the plugin.
type Option func(*options)

type options struct {
	cfg     config.Config
	backend logging.Backend
	bridge  *editor.Bridge
}

func newOptions(opts []Option) options {
	o := options{cfg: *config.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg.SettingsPath == "" {
		o.cfg.SettingsPath = DefaultSettingsPath
	}
	return o
}

// WithConfig takes the settings path, watch and prune behaviour from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = *cfg }
}

// WithSettingsPath sets the settings file.
func WithSettingsPath(path string) Option {
	return func(o *options) { o.cfg.SettingsPath = path }
}

// WithWatch reloads the settings file when it changes on disk.
func WithWatch(on bool) Option {
	return func(o *options) { o.cfg.Watch = on }
}

// WithBackend sends event lines to b instead of the app's logger.
func WithBackend(b logging.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sends event lines to l, named "logevents".
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.backend = logging.NewBackend(l.Named("logevents")) }
}

// WithEditor connects an editor through b. Edits queued on b are applied at
// the start of every tick and a snapshot is published after.
func WithEditor(b *editor.Bridge) Option {
	return func(o *options) { o.bridge = b }
}
