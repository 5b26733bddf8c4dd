// Package bar is the other half of the demo game.
package bar

import (
	"logevents/internal/demo"
	"logevents/pkg/ecs"
)

// Ping is sent every other tick. Its name clashes with foo.Ping.
type Ping struct {
	From string
}

// Health clashes with foo.Health.
type Health struct {
	HP int
}

// Plugin spawns an unnamed bar unit, pings on even ticks and triggers a
// Ping at the unit on odd ones.
func Plugin(app *ecs.App) {
	ecs.AddEvent[Ping](app)

	var unit ecs.Entity
	app.AddSystems(ecs.Startup, func(w *ecs.World) {
		unit = w.Spawn("")
		ecs.TriggerTargets(w, demo.Spawned{Kind: "bar"}, unit)
		ecs.Insert(w, unit, Health{HP: 3})
	}, ecs.Named("bar.spawn"))

	app.AddSystems(ecs.Update, func(w *ecs.World) {
		if w.Tick()%2 == 0 {
			ecs.Send(w, Ping{From: "bar"})
			return
		}
		ecs.TriggerTargets(w, Ping{From: "observer"}, unit)
		if w.Tick() == 9 {
			ecs.Remove[Health](w, unit)
		}
	}, ecs.Named("bar.ping"))
}
