package registry

import (
	"testing"

	"logevents/internal/typekey"

	"github.com/stretchr/testify/assert"
)

type ping struct{}
type pong struct{}

func TestTracker_FirstMarkOnly(t *testing.T) {
	tr := NewTracker()
	id := typekey.Of[ping]()

	assert.True(t, tr.MarkAndCheck(id, Send))
	assert.False(t, tr.MarkAndCheck(id, Send))
	assert.False(t, tr.MarkAndCheck(id, Send))
	assert.True(t, tr.Has(id, Send))
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_EntryPointsAreIndependent(t *testing.T) {
	tr := NewTracker()
	id := typekey.Of[ping]()

	assert.True(t, tr.MarkAndCheck(id, Triggered))
	assert.False(t, tr.Has(id, Send))
	assert.True(t, tr.MarkAndCheck(id, Send), "triggered must not block send")
	assert.False(t, tr.MarkAndCheck(id, Triggered))
	assert.Equal(t, Send|Triggered, tr.EntryPoints(id))
}

func TestTracker_IdentitiesAreIndependent(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.MarkAndCheck(typekey.Of[ping](), Send))
	assert.True(t, tr.MarkAndCheck(typekey.Of[pong](), Send))
	assert.True(t, tr.MarkAndCheck(typekey.Pair[ping, pong](), Triggered))
	assert.True(t, tr.MarkAndCheck(typekey.Of[ping](), Triggered))
	assert.Equal(t, 3, tr.Len())
}

func TestEntryPoint_String(t *testing.T) {
	assert.Equal(t, "none", EntryPoint(0).String())
	assert.Equal(t, "send", Send.String())
	assert.Equal(t, "send|triggered", (Send | Triggered).String())
}
