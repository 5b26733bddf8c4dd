package ecs

import (
	"reflect"
)

// Trigger is what an observer receives: the triggered event, the entity it
// targets (Placeholder for untargeted triggers) and the call site.
type Trigger[E any] struct {
	Event  E
	Target Entity
	Caller Location
}

// Targeted reports whether the trigger targets an entity.
func (t Trigger[E]) Targeted() bool {
	return t.Target != Placeholder
}

type observer struct {
	component reflect.Type
	run       func(w *World, ev any, target Entity, loc Location)
}

// Observe runs fn every time E is triggered.
func Observe[E any](a *App, fn func(w *World, t Trigger[E])) {
	addObserver(a.world, nil, fn)
}

// ObserveComponent runs fn every time E is triggered for component C, such
// as an OnAdd fired by inserting a C. Triggers that carry no component are
// delivered as well.
func ObserveComponent[E, C any](a *App, fn func(w *World, t Trigger[E])) {
	addObserver(a.world, reflect.TypeFor[C](), fn)
}

func addObserver[E any](w *World, component reflect.Type, fn func(w *World, t Trigger[E])) {
	t := reflect.TypeFor[E]()
	w.observers[t] = append(w.observers[t], observer{
		component: component,
		run: func(w *World, ev any, target Entity, loc Location) {
			fn(w, Trigger[E]{Event: ev.(E), Target: target, Caller: loc})
		},
	})
}

// TriggerEvent delivers e to its observers immediately, targeting no entity.
func TriggerEvent[E any](w *World, e E) {
	var loc Location
	if w.trackLocation {
		loc = caller(1)
	}
	trigger(w, e, Placeholder, nil, loc)
}

// TriggerTargets delivers e to its observers once per target.
func TriggerTargets[E any](w *World, e E, targets ...Entity) {
	var loc Location
	if w.trackLocation {
		loc = caller(1)
	}
	for _, target := range targets {
		trigger(w, e, target, nil, loc)
	}
}

func trigger[E any](w *World, e E, target Entity, component reflect.Type, loc Location) {
	obs := w.observers[reflect.TypeFor[E]()]
	for _, o := range obs {
		if o.component != nil && component != nil && o.component != component {
			continue
		}
		o.run(w, e, target, loc)
	}
}
