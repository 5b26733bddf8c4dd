package ecs

import (
	"fmt"
	"math"
	"reflect"

	"go.uber.org/zap"
)

// Entity identifies a spawned entity.
type Entity uint32

// Placeholder is the target of a trigger that targets no entity.
const Placeholder Entity = math.MaxUint32

func (e Entity) String() string {
	if e == Placeholder {
		return "placeholder"
	}
	return fmt.Sprintf("entity#%d", uint32(e))
}

// World owns everything systems operate on: resources, event queues,
// observers, entities and their components.
type World struct {
	resources  map[reflect.Type]any
	events     map[reflect.Type]eventQueue
	eventOrder []reflect.Type
	observers  map[reflect.Type][]observer
	names      map[Entity]string
	alive      map[Entity]struct{}
	components map[reflect.Type]map[Entity]any
	nextEntity Entity
	tick       uint64

	trackLocation bool
	logger        *zap.Logger
}

func newWorld(logger *zap.Logger, trackLocation bool) *World {
	return &World{
		resources:     make(map[reflect.Type]any),
		events:        make(map[reflect.Type]eventQueue),
		observers:     make(map[reflect.Type][]observer),
		names:         make(map[Entity]string),
		alive:         make(map[Entity]struct{}),
		components:    make(map[reflect.Type]map[Entity]any),
		trackLocation: trackLocation,
		logger:        logger,
	}
}

// Tick returns the number of completed update ticks.
func (w *World) Tick() uint64 { return w.tick }

// TracksLocation reports whether sends and triggers capture call sites.
func (w *World) TracksLocation() bool { return w.trackLocation }

// Logger returns the host logger.
func (w *World) Logger() *zap.Logger { return w.logger }

// InsertResource stores v as the resource of type T, replacing any previous one.
func InsertResource[T any](w *World, v *T) {
	w.resources[reflect.TypeFor[T]()] = v
}

// Resource returns the resource of type T, or nil.
func Resource[T any](w *World) *T {
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return v.(*T)
}

// RemoveResource drops the resource of type T.
func RemoveResource[T any](w *World) {
	delete(w.resources, reflect.TypeFor[T]())
}

// Spawn creates an entity. An empty name leaves the entity unnamed.
func (w *World) Spawn(name string) Entity {
	e := w.nextEntity
	w.nextEntity++
	w.alive[e] = struct{}{}
	if name != "" {
		w.names[e] = name
	}
	return e
}

// Alive reports whether e was spawned and not despawned.
func (w *World) Alive(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Name returns the name e was spawned with.
func (w *World) Name(e Entity) (string, bool) {
	n, ok := w.names[e]
	return n, ok
}

// Despawn removes every component of e, firing their removal hooks, then
// forgets e.
func (w *World) Despawn(e Entity) {
	if !w.Alive(e) {
		return
	}
	for t, store := range w.components {
		if _, ok := store[e]; ok {
			w.removeComponent(t, e)
		}
	}
	delete(w.alive, e)
	delete(w.names, e)
}

func zapType(t reflect.Type) zap.Field {
	return zap.Stringer("type", t)
}
