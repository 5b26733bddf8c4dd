package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitReload(t *testing.T, sw *SettingsWatcher) {
	t.Helper()
	select {
	case <-sw.Reloads():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload signal")
	}
}

func TestSettingsWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets", "log_settings.yaml")

	sw, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	defer sw.Stop()
	assert.True(t, sw.IsWatching())

	require.NoError(t, os.WriteFile(path, []byte("plugin_enabled: false\n"), 0644))
	waitReload(t, sw)

	stats := sw.GetStats()
	assert.Equal(t, 1, stats.Reloads)
	assert.GreaterOrEqual(t, stats.Creates+stats.Writes, 1)
}

func TestSettingsWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")

	sw, err := New(path, 100*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	defer sw.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("plugin_enabled: true\n"), 0644))
	}
	waitReload(t, sw)

	select {
	case <-sw.Reloads():
		t.Fatal("burst produced more than one reload")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 1, sw.GetStats().Reloads)
}

func TestSettingsWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	sw, err := New(filepath.Join(dir, "s.yaml"), 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	defer sw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-sw.Reloads():
		t.Fatal("unrelated file triggered reload")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Zero(t, sw.GetStats().Reloads)
}

func TestSettingsWatcher_ContextCancelStopsLoop(t *testing.T) {
	sw, err := New(filepath.Join(t.TempDir(), "s.yaml"), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sw.Start(ctx))
	require.NoError(t, sw.Start(ctx), "second start is a no-op")
	cancel()
	sw.Stop()
	sw.Stop()
	assert.False(t, sw.IsWatching())
}

func TestSettingsWatcher_StopWithoutStart(t *testing.T) {
	sw, err := New(filepath.Join(t.TempDir(), "s.yaml"), 0)
	require.NoError(t, err)
	sw.Stop()
	assert.False(t, sw.IsWatching())
}
