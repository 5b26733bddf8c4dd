// Package watcher signals when the settings file changes on disk so the host
// can reload it on its own tick.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"logevents/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a reload is
// signalled. Editors often write a file in several steps.
const DefaultDebounce = 200 * time.Millisecond

// SettingsWatcher watches one settings file. It watches the file's
// directory, so the file may be created, replaced by rename or rewritten in
// place.
type SettingsWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	pending     bool
	lastEvent   time.Time
	debounceDur time.Duration
	reloads     chan struct{}
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Writes        int
	Creates       int
	Removes       int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// New creates a watcher for the settings file at path. A debounce of zero
// uses DefaultDebounce.
func New(path string, debounce time.Duration) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)
	return &SettingsWatcher{
		watcher:     w,
		path:        path,
		dir:         filepath.Dir(path),
		debounceDur: debounce,
		reloads:     make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Reloads delivers one value per settled change. Signals coalesce: a reader
// that falls behind sees at most one pending signal.
func (sw *SettingsWatcher) Reloads() <-chan struct{} {
	return sw.reloads
}

// Start begins watching. This method is non-blocking; events are handled in
// a goroutine until Stop or ctx is done.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil // Already running
	}
	sw.running = true
	sw.mu.Unlock()

	if err := os.MkdirAll(sw.dir, 0755); err != nil {
		logging.WatcherWarn("failed to create settings dir %s: %v (continuing anyway)", sw.dir, err)
	}
	if err := sw.watcher.Add(sw.dir); err != nil {
		sw.mu.Lock()
		sw.running = false
		sw.mu.Unlock()
		return err
	}
	logging.Watcher("watching %s", sw.path)

	go sw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for cleanup.
func (sw *SettingsWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		_ = sw.watcher.Close()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh

	if err := sw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatcher).Error("error closing watcher: %v", err)
	}
	logging.Watcher("stopped")
}

func (sw *SettingsWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	tick := sw.debounceDur / 4
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatcherDebug("context cancelled")
			return

		case <-sw.stopCh:
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.WatcherWarn("watch error: %v", err)
			sw.mu.Lock()
			sw.stats.Errors++
			sw.mu.Unlock()

		case <-debounceTicker.C:
			sw.flush()
		}
	}
}

func (sw *SettingsWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != sw.path {
		return
	}

	var eventType string
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = "create"
	case event.Op.Has(fsnotify.Write):
		eventType = "write"
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		eventType = "remove"
	default:
		return // Ignore chmod
	}
	logging.WatcherDebug("%s event for %s", eventType, event.Name)

	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.stats.LastEventTime = time.Now()
	sw.stats.LastEventType = eventType
	switch eventType {
	case "create":
		sw.stats.Creates++
	case "write":
		sw.stats.Writes++
	case "remove":
		// A removed file keeps the current settings.
		sw.stats.Removes++
		return
	}
	sw.pending = true
	sw.lastEvent = time.Now()
}

// flush signals a reload once the file has been quiet for the debounce window.
func (sw *SettingsWatcher) flush() {
	sw.mu.Lock()
	if !sw.pending || time.Since(sw.lastEvent) < sw.debounceDur {
		sw.mu.Unlock()
		return
	}
	sw.pending = false
	sw.stats.Reloads++
	sw.mu.Unlock()

	select {
	case sw.reloads <- struct{}{}:
	default:
	}
}

// GetStats returns the current watcher statistics.
func (sw *SettingsWatcher) GetStats() Stats {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.stats
}

// IsWatching returns true if the watcher is currently running.
func (sw *SettingsWatcher) IsWatching() bool {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.running
}

// Path returns the watched settings file.
func (sw *SettingsWatcher) Path() string {
	return sw.path
}
