package persist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logevents/internal/settings"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecode_HandEditedFile(t *testing.T) {
	data := []byte(`
# tweaked while chasing the ping storm
plugin_enabled: true
colour: blue # unknown, ignored
events_settings:
  Ping:
    enabled: false
    pretty: true
    level: debug

  Damage[Player]: {enabled: true, level: WARNING}
  OnAdd<Health>:
    pretty: true
`)
	f, err := Decode(data)
	require.NoError(t, err)

	want := map[string]settings.EventSettings{
		"Ping":           {Enabled: false, Pretty: true, Level: settings.LevelDebug},
		"Damage[Player]": {Enabled: true, Pretty: false, Level: settings.LevelWarn},
		"OnAdd<Health>":  {Enabled: true, Pretty: true, Level: settings.LevelInfo},
	}
	if diff := cmp.Diff(want, f.Events); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f.PluginEnabled)
	assert.Empty(t, f.Warnings)
}

func TestDecode_SkipsBadEntries(t *testing.T) {
	data := []byte(`
plugin_enabled: false
events_settings:
  Ping: {enabled: true, level: LOUD}
  Pong: just a string
  Tick: {enabled: false}
`)
	f, err := Decode(data)
	require.NoError(t, err)

	assert.False(t, f.PluginEnabled)
	assert.Equal(t, []string{"Tick"}, f.Keys())
	require.Len(t, f.Warnings, 2)
	assert.Contains(t, f.Warnings[0], "Ping")
	assert.Contains(t, f.Warnings[0], "LOUD")
	assert.Contains(t, f.Warnings[1], "Pong")
	assert.Equal(t, []string{"Ping", "Pong"}, f.Invalid.Keys())
}

func TestWrite_KeepsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_settings.yaml")
	f, err := Decode([]byte(`
events_settings:
  Ping: {level: WARNNG}
  Pong: {enabled: false}
`))
	require.NoError(t, err)
	f.PluginEnabled = false
	require.NoError(t, Write(path, f))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARNNG")

	again, err := Load(path)
	require.NoError(t, err)
	assert.False(t, again.PluginEnabled)
	assert.Equal(t, []string{"Pong"}, again.Keys())
	assert.Equal(t, []string{"Ping"}, again.Invalid.Keys())

	// A valid record for the same key replaces the broken one.
	again.Events["Ping"] = settings.Default()
	require.NoError(t, Write(path, again))
	fixed, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, fixed.Warnings)
	assert.Equal(t, []string{"Ping", "Pong"}, fixed.Keys())
}

func TestWrite_KeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log_settings.yaml")

	require.NoError(t, Write(path, NewFile()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0600))
	require.NoError(t, Write(path, NewFile()))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReconcile_InvalidEntries(t *testing.T) {
	f, err := Decode([]byte(`
events_settings:
  Ping: {level: LOUD}
  Gone: {level: LOUD}
`))
	require.NoError(t, err)
	store := settings.NewStore()
	res := Reconcile(store, f, []Pending{{Key: "Ping", Default: settings.Default()}})

	assert.Equal(t, []string{"Ping"}, res.Defaulted)
	assert.Equal(t, []string{"Gone"}, res.Invalid.Keys(), "registered keys take the store record")

	merged := Merge(store, res.Retained, res.Invalid)
	assert.Equal(t, []string{"Ping"}, merged.Keys())
	assert.Equal(t, []string{"Gone"}, merged.Invalid.Keys())
}

func TestDecode_Defaults(t *testing.T) {
	f, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, f.PluginEnabled, "missing plugin_enabled defaults to true")
	assert.Empty(t, f.Events)
}

func TestDecode_AcceptsJSON(t *testing.T) {
	f, err := Decode([]byte(`{"plugin_enabled": true, "events_settings": {"Ping": {"enabled": true, "pretty": false, "level": "ERROR"}}}`))
	require.NoError(t, err)
	assert.Equal(t, settings.LevelError, f.Events["Ping"].Level)
}

func TestDecode_MalformedDocument(t *testing.T) {
	_, err := Decode([]byte("events_settings: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "log_settings.yaml")

	store := settings.NewStore()
	store.SetEnabled(false)
	store.GetOrDefault("Ping", settings.EventSettings{Enabled: false, Pretty: true, Level: settings.LevelDebug})
	store.GetOrDefault("Damage[Player]", settings.Default())
	store.GetOrDefault("logevents/internal/demo/foo.Ping#2", settings.EventSettings{Level: settings.LevelTrace})
	retained := Retained{"Old": {Enabled: true, Level: settings.LevelError}}

	require.NoError(t, Save(path, store, retained, nil))

	f, err := Load(path)
	require.NoError(t, err)
	assert.False(t, f.PluginEnabled)

	want := store.Snapshot().Events
	want["Old"] = settings.EventSettings{Enabled: true, Level: settings.LevelError}
	if diff := cmp.Diff(want, f.Events); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_SortedAndCommented(t *testing.T) {
	f := NewFile()
	f.Events["b"] = settings.Default()
	f.Events["a"] = settings.EventSettings{Level: settings.LevelWarn}

	data, err := Encode(f)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "# "), "head comment first:\n%s", text)
	assert.Less(t, strings.Index(text, "  a:"), strings.Index(text, "  b:"))
	assert.Contains(t, text, "level: WARN")
	assert.Contains(t, text, "plugin_enabled: true")
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, Write(path, NewFile()))
	require.NoError(t, Write(path, NewFile()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s.yaml", entries[0].Name())
}

func TestReconcile(t *testing.T) {
	f := NewFile()
	f.PluginEnabled = false
	f.Events["Ping"] = settings.EventSettings{Enabled: false, Pretty: true, Level: settings.LevelDebug}
	f.Events["Removed"] = settings.Default()

	store := settings.NewStore()
	override := settings.EventSettings{Enabled: true, Level: settings.LevelWarn}
	res := Reconcile(store, f, []Pending{
		{Key: "Ping", Default: settings.Default()},
		{Key: "Pong", Default: override},
	})

	assert.False(t, store.IsEnabled())
	ping, _ := store.Get("Ping")
	assert.Equal(t, f.Events["Ping"], ping, "loaded record wins over default")
	pong, _ := store.Get("Pong")
	assert.Equal(t, override, pong)
	assert.Equal(t, []string{"Ping"}, res.Adopted)
	assert.Equal(t, []string{"Pong"}, res.Defaulted)
	assert.Equal(t, []string{"Removed"}, res.Retained.Keys())
	assert.False(t, store.Has("Removed"), "stale keys never enter the store")
}

func TestReconcile_NilFile(t *testing.T) {
	store := settings.NewStore()
	store.SetEnabled(false)
	res := Reconcile(store, nil, []Pending{{Key: "Ping", Default: settings.Default()}})
	assert.True(t, store.IsEnabled())
	assert.Equal(t, []string{"Ping"}, res.Defaulted)
	assert.Nil(t, res.Retained)
}

func TestReload_KeepsUnlistedKeys(t *testing.T) {
	store := settings.NewStore()
	store.GetOrDefault("Ping", settings.Default())
	store.GetOrDefault("Pong", settings.EventSettings{Level: settings.LevelTrace})
	entry, _ := store.Entry("Ping")

	f := NewFile()
	f.Events["Ping"] = settings.EventSettings{Level: settings.LevelError}
	res := Reload(store, f)

	assert.Equal(t, settings.LevelError, entry.Settings.Level, "entry pointers stay live")
	pong, _ := store.Get("Pong")
	assert.Equal(t, settings.LevelTrace, pong.Level)
	assert.Equal(t, []string{"Ping"}, res.Adopted)
	assert.Equal(t, 2, store.Len())
}

func TestPrune(t *testing.T) {
	f := NewFile()
	for _, k := range []string{"a", "b", "c"} {
		f.Events[k] = settings.Default()
	}
	f.Invalid = Raw{"bad": {Kind: yaml.ScalarNode, Value: "3"}}
	removed := Prune(f, []string{"b"})
	assert.Equal(t, []string{"a", "bad", "c"}, removed)
	assert.Equal(t, []string{"b"}, f.Keys())
	assert.Empty(t, f.Invalid)
}
