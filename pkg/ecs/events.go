package ecs

import (
	"reflect"
)

// Instance is one sent event together with its sequence number and the call
// site that sent it.
type Instance[E any] struct {
	ID     uint64
	Event  E
	Caller Location
}

// Events is the double-buffered queue of one event type. An event stays
// readable for the tick it was sent in and the following tick.
type Events[E any] struct {
	older []Instance[E]
	newer []Instance[E]
	next  uint64
}

type eventQueue interface {
	swap()
	len() int
}

func (q *Events[E]) send(e E, loc Location) uint64 {
	id := q.next
	q.next++
	q.newer = append(q.newer, Instance[E]{ID: id, Event: e, Caller: loc})
	return id
}

func (q *Events[E]) swap() {
	q.older, q.newer = q.newer, q.older[:0]
}

func (q *Events[E]) len() int {
	return len(q.older) + len(q.newer)
}

// Len returns the number of events still readable.
func (q *Events[E]) Len() int {
	return q.len()
}

// Cursor reads an event queue from where it last stopped. Each reader owns
// its cursor, so readers never consume events from each other.
type Cursor[E any] struct {
	next uint64
}

// Read returns the events sent since the previous Read. Events that aged out
// of the queue before being read are skipped.
func (c *Cursor[E]) Read(w *World) []Instance[E] {
	q := EventsOf[E](w)
	if q == nil {
		return nil
	}
	var out []Instance[E]
	for _, buf := range [][]Instance[E]{q.older, q.newer} {
		for _, inst := range buf {
			if inst.ID >= c.next {
				out = append(out, inst)
			}
		}
	}
	c.next = q.next
	return out
}

// Skip advances the cursor past every queued event without returning them.
func (c *Cursor[E]) Skip(w *World) int {
	q := EventsOf[E](w)
	if q == nil {
		return 0
	}
	n := int(q.next - c.next)
	if n > q.len() {
		n = q.len()
	}
	c.next = q.next
	return n
}

// AddEvent registers the queue for E. Adding the same type twice is a no-op.
func AddEvent[E any](a *App) {
	w := a.world
	t := reflect.TypeFor[E]()
	if _, ok := w.events[t]; ok {
		return
	}
	w.events[t] = &Events[E]{}
	w.eventOrder = append(w.eventOrder, t)
}

// HasEvent reports whether E was registered with AddEvent.
func HasEvent[E any](w *World) bool {
	_, ok := w.events[reflect.TypeFor[E]()]
	return ok
}

// EventsOf returns the queue for E, or nil if E was never added.
func EventsOf[E any](w *World) *Events[E] {
	q, ok := w.events[reflect.TypeFor[E]()]
	if !ok {
		return nil
	}
	return q.(*Events[E])
}

// Send queues e. It returns false, and drops e, when E was never added.
func Send[E any](w *World, e E) bool {
	return send(w, e, 2)
}

func send[E any](w *World, e E, skip int) bool {
	q := EventsOf[E](w)
	if q == nil {
		w.logger.Warn("event sent before it was added",
			zapType(reflect.TypeFor[E]()))
		return false
	}
	var loc Location
	if w.trackLocation {
		loc = caller(skip)
	}
	q.send(e, loc)
	return true
}

// AppExit asks the app to stop after the current tick.
type AppExit struct {
	Code int
}

// Exit sends an AppExit with the given code.
func Exit(w *World, code int) {
	send(w, AppExit{Code: code}, 2)
}
