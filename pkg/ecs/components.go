package ecs

import (
	"reflect"
)

// Component lifecycle events. They are triggered for the entity whose
// component changed and are restricted to that component's type, so
// ObserveComponent[OnAdd, Health] only sees Health being added.
type (
	// OnAdd fires after a component is added to an entity that lacked it.
	OnAdd struct{}
	// OnInsert fires after every insert, including replacements.
	OnInsert struct{}
	// OnReplace fires before an existing component is overwritten or removed.
	OnReplace struct{}
	// OnRemove fires before a component is removed.
	OnRemove struct{}
)

// Insert sets component C on e. Inserting on a dead entity does nothing.
func Insert[C any](w *World, e Entity, c C) {
	if !w.Alive(e) {
		return
	}
	t := reflect.TypeFor[C]()
	store := w.components[t]
	if store == nil {
		store = make(map[Entity]any)
		w.components[t] = store
	}
	var loc Location
	if w.trackLocation {
		loc = caller(1)
	}
	_, existed := store[e]
	if existed {
		trigger(w, OnReplace{}, e, t, loc)
	}
	store[e] = c
	if !existed {
		trigger(w, OnAdd{}, e, t, loc)
	}
	trigger(w, OnInsert{}, e, t, loc)
}

// Get returns component C of e.
func Get[C any](w *World, e Entity) (C, bool) {
	var zero C
	v, ok := w.components[reflect.TypeFor[C]()][e]
	if !ok {
		return zero, false
	}
	return v.(C), true
}

// Has reports whether e carries component C.
func Has[C any](w *World, e Entity) bool {
	_, ok := w.components[reflect.TypeFor[C]()][e]
	return ok
}

// Remove drops component C from e. Removal observers still see the value.
func Remove[C any](w *World, e Entity) bool {
	t := reflect.TypeFor[C]()
	if _, ok := w.components[t][e]; !ok {
		return false
	}
	w.removeComponent(t, e)
	return true
}

func (w *World) removeComponent(t reflect.Type, e Entity) {
	var loc Location
	if w.trackLocation {
		loc = caller(2)
	}
	trigger(w, OnReplace{}, e, t, loc)
	trigger(w, OnRemove{}, e, t, loc)
	delete(w.components[t], e)
}
