// Package demo holds the event types of the demo game. The foo and bar
// subpackages deliberately reuse the type names Ping and Health so that
// settings keys have to be qualified.
package demo

import (
	"logevents/pkg/ecs"
)

// Player tags the player side of a fight.
type Player struct{}

// Enemy tags the enemy side of a fight.
type Enemy struct{}

// Damage is dealt to a side.
type Damage[T any] struct {
	Amount int
	Source string
}

// Spawned is triggered for every entity the demo creates.
type Spawned struct {
	Kind string
}

// Plugin adds the shared demo events: a Damage[Player] every third tick and
// a Damage[Enemy] every fifth.
func Plugin(app *ecs.App) {
	ecs.AddEvent[Damage[Player]](app)
	ecs.AddEvent[Damage[Enemy]](app)
	app.AddSystems(ecs.Update, func(w *ecs.World) {
		t := w.Tick()
		if t%3 == 0 {
			ecs.Send(w, Damage[Player]{Amount: int(t%7) + 1, Source: "trap"})
		}
		if t%5 == 0 {
			ecs.Send(w, Damage[Enemy]{Amount: 3, Source: "sword"})
		}
	}, ecs.Named("demo.deal_damage"))
}
