package typekey

import (
	"reflect"
	"testing"

	"logevents/internal/demo"
	"logevents/internal/demo/bar"
	"logevents/internal/demo/foo"
	"logevents/pkg/ecs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wrapper[T any] struct{ Value T }

type pair[A, B any] struct {
	A A
	B B
}

type Ping struct{}

func TestShorten(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ping", "Ping"},
		{"main.Ping", "Ping"},
		{"example.com/game/foo.Ping", "Ping"},
		{"Damage[example.com/game/bar.Player]", "Damage[Player]"},
		{"Pair[a/b.X,c/d.Y[e/f.Z]]", "Pair[X,Y[Z]]"},
		{"map[string]*example.com/x.Ping", "map[string]*Ping"},
		{"[]foo.Ping", "[]Ping"},
		{"gopkg.in/yaml.v3.Node", "Node"},
		{"[4]foo.Ping", "[4]Ping"},
		{"chan<- int", "chan<- int"},
		{"func(int) string", "func(int) string"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Shorten(tt.in))
		})
	}
}

func TestIdentity_Short(t *testing.T) {
	assert.Equal(t, "Ping", Of[foo.Ping]().Short())
	assert.Equal(t, "Damage[Player]", Of[demo.Damage[demo.Player]]().Short())
	assert.Equal(t, "wrapper[wrapper[Ping]]", Of[wrapper[wrapper[foo.Ping]]]().Short())
	assert.Equal(t, "pair[Ping,Health]", Of[pair[foo.Ping, bar.Health]]().Short())
	assert.Equal(t, "OnAdd<Health>", Pair[ecs.OnAdd, foo.Health]().Short())
	assert.Equal(t, "[]Ping", Of[[]foo.Ping]().Short())
	assert.Equal(t, "*Ping", Of[*foo.Ping]().Short())
}

func TestIdentity_Qualified(t *testing.T) {
	assert.Equal(t, "logevents/internal/demo/foo.Ping", Of[foo.Ping]().Qualified())
	assert.Equal(t, "logevents/internal/demo.Damage[logevents/internal/demo.Player]",
		Of[demo.Damage[demo.Player]]().Qualified())
	assert.Equal(t, "logevents/pkg/ecs.OnAdd<logevents/internal/demo/bar.Health>",
		Pair[ecs.OnAdd, bar.Health]().Qualified())
	assert.Equal(t, "*logevents/internal/demo/foo.Ping", Of[*foo.Ping]().Qualified())
	assert.Equal(t, "map[string][]logevents/internal/demo/bar.Ping",
		Of[map[string][]bar.Ping]().Qualified())
	assert.Equal(t, "int", Of[int]().Qualified())
}

func TestIdentity_Determinism(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Of[foo.Ping](), Of[foo.Ping]())
		assert.Equal(t, "Ping", Of[foo.Ping]().Short())
	}
	assert.NotEqual(t, Of[foo.Ping](), Of[bar.Ping]())
	assert.NotEqual(t, Of[ecs.OnAdd](), Pair[ecs.OnAdd, foo.Health]())
}

func TestRegistry_NoCollision(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Add(Of[foo.Ping]()))
	assert.False(t, r.Add(Of[foo.Ping]()))
	r.Add(Of[demo.Damage[demo.Player]]())
	r.Resolve()

	k, ok := r.Key(Of[foo.Ping]())
	require.True(t, ok)
	assert.Equal(t, "Ping", k)

	k, _ = r.Key(Of[demo.Damage[demo.Player]]())
	assert.Equal(t, "Damage[Player]", k)
	assert.Equal(t, []string{"Ping", "Damage[Player]"}, r.Keys())
}

func TestRegistry_CollisionQualifiesEveryMember(t *testing.T) {
	r := NewRegistry()
	r.Add(Of[foo.Ping]())
	r.Add(Of[bar.Ping]())
	r.Add(Of[Ping]())
	r.Add(Of[demo.Player]())
	r.Resolve()

	keys := map[Identity]string{}
	for _, id := range []Identity{Of[foo.Ping](), Of[bar.Ping](), Of[Ping](), Of[demo.Player]()} {
		k, ok := r.Key(id)
		require.True(t, ok)
		keys[id] = k
	}
	assert.Equal(t, "logevents/internal/demo/foo.Ping", keys[Of[foo.Ping]()])
	assert.Equal(t, "logevents/internal/demo/bar.Ping", keys[Of[bar.Ping]()])
	assert.Equal(t, "logevents/internal/typekey.Ping", keys[Of[Ping]()])
	assert.Equal(t, "Player", keys[Of[demo.Player]()], "non-colliding identities keep the short form")
}

func TestRegistry_NestedGenericCollision(t *testing.T) {
	// Three nested generics that all shorten to wrapper[wrapper[Ping]].
	r := NewRegistry()
	ids := []Identity{
		Of[wrapper[wrapper[foo.Ping]]](),
		Of[wrapper[wrapper[bar.Ping]]](),
		Of[wrapper[wrapper[Ping]]](),
	}
	for _, id := range ids {
		r.Add(id)
	}
	r.Resolve()

	seen := map[string]bool{}
	for _, id := range ids {
		k, ok := r.Key(id)
		require.True(t, ok)
		assert.Equal(t, id.Qualified(), k)
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestRegistry_PairCollision(t *testing.T) {
	r := NewRegistry()
	r.Add(Pair[ecs.OnAdd, foo.Health]())
	r.Add(Pair[ecs.OnAdd, bar.Health]())
	r.Add(Pair[ecs.OnRemove, foo.Health]())
	r.Resolve()

	k1, _ := r.Key(Pair[ecs.OnAdd, foo.Health]())
	k2, _ := r.Key(Pair[ecs.OnAdd, bar.Health]())
	k3, _ := r.Key(Pair[ecs.OnRemove, foo.Health]())
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, "OnRemove<Health>", k3)
}

func localPing() reflect.Type {
	type Ping struct{ A int }
	return reflect.TypeFor[Ping]()
}

func otherLocalPing() reflect.Type {
	type Ping struct{ B int }
	return reflect.TypeFor[Ping]()
}

func TestRegistry_IndistinguishableQualifiedNames(t *testing.T) {
	a, b := FromType(localPing()), FromType(otherLocalPing())
	require.NotEqual(t, a, b)
	require.Equal(t, a.Qualified(), b.Qualified())

	r := NewRegistry()
	r.Add(a)
	r.Add(b)
	r.Resolve()

	ka, _ := r.Key(a)
	kb, _ := r.Key(b)
	assert.Equal(t, a.Qualified(), ka)
	assert.Equal(t, a.Qualified()+"#2", kb)
}

func TestRegistry_LateAdditionsNeverChangeResolvedKeys(t *testing.T) {
	r := NewRegistry()
	r.Add(Of[foo.Ping]())
	r.Resolve()

	first, _ := r.Key(Of[foo.Ping]())
	require.Equal(t, "Ping", first)

	r.Add(Of[bar.Ping]())
	resolved := r.Resolve()
	assert.Equal(t, []Identity{Of[bar.Ping]()}, resolved)

	again, _ := r.Key(Of[foo.Ping]())
	assert.Equal(t, first, again)

	late, _ := r.Key(Of[bar.Ping]())
	assert.Equal(t, "logevents/internal/demo/bar.Ping", late)

	id, ok := r.Lookup(late)
	require.True(t, ok)
	assert.Equal(t, Of[bar.Ping](), id)

	assert.Nil(t, r.Resolve(), "nothing left to resolve")
}
