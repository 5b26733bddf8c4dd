package editor

import (
	"errors"
	"sync"
	"testing"

	"logevents/internal/settings"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(keys ...string) *settings.Store {
	s := settings.NewStore()
	for _, k := range keys {
		s.GetOrDefault(k, settings.Default())
	}
	return s
}

func keys(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Key)
	}
	return out
}

func TestProjection_PinFilterAndToggle(t *testing.T) {
	store := newStore("Pong", "Ping")
	p := NewProjection(store)
	p.Filter.Text = "pin"

	rows := p.Rows()
	require.Equal(t, []string{"Ping"}, keys(rows))
	assert.Equal(t, 1, p.Shown())
	assert.Equal(t, 2, p.Total())

	require.NoError(t, p.SetEnabled(rows[0].Key, false))

	ping, _ := store.Get("Ping")
	pong, _ := store.Get("Pong")
	assert.False(t, ping.Enabled, "edits land in the store immediately")
	assert.True(t, pong.Enabled)
}

func TestFilter_Substring(t *testing.T) {
	rows := NewProjection(newStore("Ping", "Pong", "OnAdd<Health>", "logevents/internal/demo/foo.Ping")).All()

	got, err := Filter{Text: "PING"}.Apply(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ping", "logevents/internal/demo/foo.Ping"}, keys(got))
	assert.Equal(t, []int{0, 1, 2, 3}, got[0].Matched)

	got, _ = Filter{Text: "PING", CaseSensitive: true}.Apply(rows)
	assert.Empty(t, got)

	got, _ = Filter{Text: "<health>"}.Apply(rows)
	assert.Equal(t, []string{"OnAdd<Health>"}, keys(got))
}

func TestFilter_SubstringOffsetsOnNonASCIIKeys(t *testing.T) {
	// İ is two bytes but lowercases to three.
	rows := NewProjection(newStore("İPing", "ÄÖÜ.Ping")).All()

	got, err := Filter{Text: "ping"}.Apply(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		start := len(r.Key) - len("Ping")
		assert.Equal(t, []int{start, start + 1, start + 2, start + 3}, r.Matched, r.Key)
	}

	got, _ = Filter{Text: "äöü"}.Apply(rows)
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got[0].Matched)
}

func TestFilter_Regex(t *testing.T) {
	rows := NewProjection(newStore("Ping", "Pong", "Damage[Player]")).All()

	got, err := Filter{Text: `^p.ng$`, Mode: ModeRegex}.Apply(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ping", "Pong"}, keys(got))

	got, err = Filter{Text: `^p`, Mode: ModeRegex, CaseSensitive: true}.Apply(rows)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Filter{Text: `Damage\[`, Mode: ModeRegex}.Apply(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Damage[Player]"}, keys(got))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, got[0].Matched)
}

func TestFilter_InvalidRegexMatchesNothing(t *testing.T) {
	p := NewProjection(newStore("Ping"))
	p.Filter = Filter{Text: "(", Mode: ModeRegex}

	assert.Empty(t, p.Rows())
	assert.Error(t, p.FilterError())

	p.Filter.Mode = ModeSubstring
	assert.NoError(t, p.FilterError())
}

func TestFilter_FuzzyRanks(t *testing.T) {
	rows := NewProjection(newStore("Damage[Player]", "Ping", "PlayerDied", "Pong")).All()

	got, err := Filter{Text: "pd", Mode: ModeFuzzy}.Apply(rows)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "PlayerDied", got[0].Key, "camel-case hit ranks first")
	assert.NotContains(t, keys(got), "Ping")

	got, _ = Filter{Text: "pd", Mode: ModeFuzzy, CaseSensitive: true}.Apply(rows)
	assert.Empty(t, got)
	got, _ = Filter{Text: "PD", Mode: ModeFuzzy, CaseSensitive: true}.Apply(rows)
	assert.Equal(t, []string{"PlayerDied"}, keys(got))
}

func TestFilter_EnabledAndLevel(t *testing.T) {
	store := newStore("A", "B", "C")
	store.Set("B", settings.EventSettings{Enabled: false, Level: settings.LevelWarn})
	store.Set("C", settings.EventSettings{Enabled: true, Level: settings.LevelWarn})
	rows := NewProjection(store).All()

	got, _ := Filter{Enabled: DisabledOnly}.Apply(rows)
	assert.Equal(t, []string{"B"}, keys(got))

	got, _ = Filter{Enabled: EnabledOnly, Level: OnlyLevel(settings.LevelWarn)}.Apply(rows)
	assert.Equal(t, []string{"C"}, keys(got))

	got, _ = Filter{}.Apply(rows)
	assert.Len(t, got, 3)
	assert.False(t, Filter{}.Active())
}

func TestFilter_Cycles(t *testing.T) {
	assert.Equal(t, EnabledOnly, EnabledAll.Next())
	assert.Equal(t, EnabledAll, DisabledOnly.Next())

	var lf LevelFilter
	seen := []string{lf.String()}
	for i := 0; i < 6; i++ {
		lf = lf.Next()
		seen = append(seen, lf.String())
	}
	assert.Equal(t, []string{"any", "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "any"}, seen)
}

func TestProjection_Edits(t *testing.T) {
	store := newStore("Ping")
	p := NewProjection(store)

	steps := []Edit{
		{Kind: EditPretty, Key: "Ping", Bool: true},
		{Kind: EditLevel, Key: "Ping", Level: settings.LevelDebug},
		{Kind: EditCycleLevel, Key: "Ping", Step: -1},
		{Kind: EditCycleLevel, Key: "Ping", Step: -1},
		{Kind: EditPluginEnabled, Bool: false},
	}
	for _, e := range steps {
		exit, err := p.Apply(e)
		require.NoError(t, err, e.Kind.String())
		assert.False(t, exit)
	}

	got, _ := store.Get("Ping")
	want := settings.EventSettings{Enabled: true, Pretty: true, Level: settings.LevelError}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, p.PluginEnabled())

	_, err := p.Apply(Edit{Kind: EditEnabled, Key: "Nope"})
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.False(t, store.Has("Nope"), "edits never create entries")

	exit, err := p.Apply(Edit{Kind: EditExit})
	assert.NoError(t, err)
	assert.True(t, exit)
}

func TestBridge_SyncAppliesAndPublishes(t *testing.T) {
	store := newStore("Ping", "Pong")
	p := NewProjection(store)
	b := NewBridge(4)

	var mu sync.Mutex
	var snaps []Snapshot
	b.OnSnapshot(func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})

	assert.False(t, b.Sync(p))
	require.Len(t, snaps, 1)

	assert.False(t, b.Sync(p))
	assert.Len(t, snaps, 1, "unchanged settings are not republished")

	require.True(t, b.Send(Edit{Kind: EditEnabled, Key: "Pong", Bool: false}))
	require.True(t, b.Send(Edit{Kind: EditEnabled, Key: "Missing", Bool: false}))
	assert.False(t, b.Sync(p))
	require.Len(t, snaps, 2)
	assert.False(t, snaps[1].Rows[1].Settings.Enabled)

	late := 0
	b.OnSnapshot(func(Snapshot) { late++ })
	assert.Equal(t, 1, late, "late listeners get the last snapshot")

	b.Send(Edit{Kind: EditExit})
	assert.True(t, b.Sync(p))
}

func TestBridge_SendNeverBlocks(t *testing.T) {
	b := NewBridge(1)
	assert.True(t, b.Send(Edit{Kind: EditExit}))
	assert.False(t, b.Send(Edit{Kind: EditExit}))
	assert.Equal(t, 1, b.Dropped())
}
