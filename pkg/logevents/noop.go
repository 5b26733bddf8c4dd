//go:build nologevents

package logevents

import (
	"logevents/internal/editor"
	"logevents/pkg/ecs"
)

// Enabled reports whether this build logs events.
const Enabled = false

// Plugin does nothing in this build.
type Plugin struct{}

// New returns the plugin. Options are accepted and ignored.
func New(...Option) *Plugin { return &Plugin{} }

// Build installs nothing and reads no file.
func (*Plugin) Build(*ecs.App) {}

func LogEvent[E any](*ecs.App, ...RegisterOption) {}

func AddAndLogEvent[E any](app *ecs.App, _ ...RegisterOption) {
	// The queue is still needed by whatever sends E.
	ecs.AddEvent[E](app)
}

func LogTriggered[E any](*ecs.App, ...RegisterOption) {}

func LogTrigger[E, C any](*ecs.App, ...RegisterOption) {}

func SetPluginEnabled(*ecs.App, bool) {}

func PluginEnabled(*ecs.App) bool { return false }

func Settings[E any](*ecs.App) (EventSettings, bool) { return EventSettings{}, false }

func SetSettings[E any](*ecs.App, EventSettings) bool { return false }

func TriggerSettings[E, C any](*ecs.App) (EventSettings, bool) { return EventSettings{}, false }

func SetTriggerSettings[E, C any](*ecs.App, EventSettings) bool { return false }

func Key[E any](*ecs.App) (string, bool) { return "", false }

func Projection(*ecs.App) *editor.Projection { return nil }

func Save(*ecs.App) error { return nil }
