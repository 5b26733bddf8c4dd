package ecs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{ N int }

type health struct{ HP int }

func TestEvents_CursorReadsEachEventOnce(t *testing.T) {
	a := New()
	AddEvent[ping](a)
	AddEvent[ping](a)

	var cur Cursor[ping]
	var got []int
	a.AddSystems(Update, func(w *World) {
		Send(w, ping{N: int(w.Tick())})
	})
	a.AddSystems(Last, func(w *World) {
		for _, inst := range cur.Read(w) {
			got = append(got, inst.Event.N)
		}
	})

	for i := 0; i < 3; i++ {
		a.Update()
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestEvents_IndependentCursors(t *testing.T) {
	a := New()
	AddEvent[ping](a)
	w := a.World()
	Send(w, ping{1})
	Send(w, ping{2})

	var c1, c2 Cursor[ping]
	assert.Len(t, c1.Read(w), 2)
	assert.Len(t, c1.Read(w), 0)
	assert.Len(t, c2.Read(w), 2)
}

func TestEvents_TwoTickLifetime(t *testing.T) {
	a := New()
	AddEvent[ping](a)
	w := a.World()

	Send(w, ping{1})
	a.Update()
	assert.Equal(t, 1, EventsOf[ping](w).Len())
	a.Update()
	assert.Equal(t, 0, EventsOf[ping](w).Len())

	var late Cursor[ping]
	assert.Empty(t, late.Read(w))
}

func TestEvents_Skip(t *testing.T) {
	a := New()
	AddEvent[ping](a)
	w := a.World()
	Send(w, ping{1})
	Send(w, ping{2})

	var cur Cursor[ping]
	assert.Equal(t, 2, cur.Skip(w))
	Send(w, ping{3})
	got := cur.Read(w)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Event.N)
}

func TestEvents_SendUnknownTypeIsDropped(t *testing.T) {
	a := New()
	assert.False(t, Send(a.World(), ping{}))
	assert.False(t, HasEvent[ping](a.World()))
	assert.Nil(t, EventsOf[ping](a.World()))
}

func TestEvents_LocationTracking(t *testing.T) {
	a := New(WithLocationTracking(true))
	AddEvent[ping](a)
	w := a.World()
	Send(w, ping{})

	var cur Cursor[ping]
	got := cur.Read(w)
	require.Len(t, got, 1)
	loc := got[0].Caller
	require.True(t, loc.Known())
	assert.Equal(t, "ecs/events_test.go", loc.File)
	assert.True(t, strings.HasPrefix(loc.String(), "ecs/events_test.go:"))

	untracked := New()
	AddEvent[ping](untracked)
	Send(untracked.World(), ping{})
	var cur2 Cursor[ping]
	assert.False(t, cur2.Read(untracked.World())[0].Caller.Known())
	assert.Equal(t, "unknown", Location{}.String())
}
