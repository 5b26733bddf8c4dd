// Package logging provides config-driven categorized diagnostics for
// logevents on top of zap. Every category is a named child of one base
// logger. Categories are controlled by debug_mode in the logging config:
// when it is false every category is a no-op.
package logging

import (
	"sync"
	"time"

	"logevents/internal/config"

	"go.uber.org/zap"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI and plugin initialization
	CategorySettings Category = "settings" // Settings file load, reconcile, save
	CategoryRegistry Category = "registry" // Type registration and key resolution
	CategoryDispatch Category = "dispatch" // Per-occurrence formatting problems
	CategoryEditor   Category = "editor"   // Editor projection and bridge
	CategoryWatcher  Category = "watcher"  // Settings file hot reload
)

// Logger is a category logger. A Logger without a sugared logger discards
// everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	base      *zap.Logger
	cfg       config.LoggingConfig
	configMu  sync.RWMutex
)

// Initialize routes every category through l according to c. It may be
// called again to swap the logger or config; cached category loggers are
// dropped.
func Initialize(l *zap.Logger, c config.LoggingConfig) {
	configMu.Lock()
	base = l
	cfg = c
	configMu.Unlock()

	loggersMu.Lock()
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()

	if !c.DebugMode {
		return
	}
	Boot("logging initialized: level=%s format=%s categories=%d", c.Level, c.Format, len(c.Categories))
}

// IsDebugMode returns whether internal diagnostics are enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return base != nil && cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	configMu.RLock()
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	configMu.RUnlock()
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a logger that adds key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes the base logger (call at shutdown)
func Sync() {
	configMu.RLock()
	defer configMu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// BootWarn logs a warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

// Settings logs to the settings category
func Settings(format string, args ...interface{}) {
	Get(CategorySettings).Info(format, args...)
}

// SettingsDebug logs debug to the settings category
func SettingsDebug(format string, args ...interface{}) {
	Get(CategorySettings).Debug(format, args...)
}

// SettingsWarn logs a warning to the settings category
func SettingsWarn(format string, args ...interface{}) {
	Get(CategorySettings).Warn(format, args...)
}

// SettingsError logs an error to the settings category
func SettingsError(format string, args ...interface{}) {
	Get(CategorySettings).Error(format, args...)
}

// Registry logs to the registry category
func Registry(format string, args ...interface{}) {
	Get(CategoryRegistry).Info(format, args...)
}

// RegistryDebug logs debug to the registry category
func RegistryDebug(format string, args ...interface{}) {
	Get(CategoryRegistry).Debug(format, args...)
}

// RegistryWarn logs a warning to the registry category
func RegistryWarn(format string, args ...interface{}) {
	Get(CategoryRegistry).Warn(format, args...)
}

// DispatchWarn logs a warning to the dispatch category
func DispatchWarn(format string, args ...interface{}) {
	Get(CategoryDispatch).Warn(format, args...)
}

// Editor logs to the editor category
func Editor(format string, args ...interface{}) {
	Get(CategoryEditor).Info(format, args...)
}

// EditorDebug logs debug to the editor category
func EditorDebug(format string, args ...interface{}) {
	Get(CategoryEditor).Debug(format, args...)
}

// Watcher logs to the watcher category
func Watcher(format string, args ...interface{}) {
	Get(CategoryWatcher).Info(format, args...)
}

// WatcherDebug logs debug to the watcher category
func WatcherDebug(format string, args ...interface{}) {
	Get(CategoryWatcher).Debug(format, args...)
}

// WatcherWarn logs a warning to the watcher category
func WatcherWarn(format string, args ...interface{}) {
	Get(CategoryWatcher).Warn(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}

func (c Category) String() string {
	return string(c)
}
