package main

import (
	"logevents/internal/demo"
	"logevents/internal/demo/bar"
	"logevents/internal/demo/foo"
	"logevents/pkg/ecs"
	"logevents/pkg/logevents"
)

// registerDemo installs the demo game and registers its events for logging.
// foo and bar both declare Ping and Health, so those keys come out qualified.
func registerDemo(app *ecs.App) {
	demo.Plugin(app)
	foo.Plugin(app)
	bar.Plugin(app)

	logevents.LogEvent[foo.Ping](app, logevents.WithLevel(logevents.LevelDebug))
	logevents.LogEvent[bar.Ping](app)
	logevents.LogTriggered[bar.Ping](app)
	logevents.LogEvent[demo.Damage[demo.Player]](app, logevents.WithLevel(logevents.LevelWarn))
	logevents.LogEvent[demo.Damage[demo.Enemy]](app, logevents.Pretty())
	logevents.LogTriggered[demo.Spawned](app)

	logevents.LogTrigger[ecs.OnAdd, foo.Health](app)
	logevents.LogTrigger[ecs.OnReplace, foo.Health](app, logevents.WithLevel(logevents.LevelTrace))
	logevents.LogTrigger[ecs.OnAdd, bar.Health](app)
	logevents.LogTrigger[ecs.OnRemove, bar.Health](app, logevents.WithLevel(logevents.LevelWarn))
}
