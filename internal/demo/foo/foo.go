// Package foo is one half of the demo game.
package foo

import (
	"logevents/internal/demo"
	"logevents/pkg/ecs"
)

// Ping is sent every tick.
type Ping struct {
	Seq uint64
}

// Health is the hit points of a foo unit.
type Health struct {
	HP  int
	Max int
}

// Plugin spawns one foo unit and pings every tick. Every fourth tick the unit
// heals, which replaces its Health.
func Plugin(app *ecs.App) {
	ecs.AddEvent[Ping](app)

	var unit ecs.Entity
	app.AddSystems(ecs.Startup, func(w *ecs.World) {
		unit = w.Spawn("foo_unit")
		ecs.TriggerTargets(w, demo.Spawned{Kind: "foo"}, unit)
		ecs.Insert(w, unit, Health{HP: 5, Max: 10})
	}, ecs.Named("foo.spawn"))

	app.AddSystems(ecs.Update, func(w *ecs.World) {
		ecs.Send(w, Ping{Seq: w.Tick()})
		if w.Tick()%4 == 3 {
			h, ok := ecs.Get[Health](w, unit)
			if ok && h.HP < h.Max {
				h.HP++
				ecs.Insert(w, unit, h)
			}
		}
	}, ecs.Named("foo.ping"))
}
