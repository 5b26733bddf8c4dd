// Package persist reads and writes the settings file and reconciles it with
// the types registered by the running build.
//
// The file is YAML, so comments and blank lines survive hand editing and
// JSON is accepted as well:
//
//	plugin_enabled: true
//	events_settings:
//	  Ping:
//	    enabled: true
//	    pretty: false
//	    level: INFO
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"logevents/internal/settings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the plugin keeps its settings unless told otherwise.
const DefaultPath = "assets/log_settings.yaml"

// ErrNotFound is returned by Load when the settings file does not exist.
var ErrNotFound = errors.New("settings file not found")

const headComment = "Event logging settings. Edit freely; unknown keys are kept until pruned."

// File is a decoded settings file.
type File struct {
	PluginEnabled bool
	Events        map[string]settings.EventSettings
	// Invalid holds the raw body of every entry that failed to decode. Encode
	// writes them back untouched unless Events has the same key.
	Invalid Raw
	// Warnings lists entries that were skipped while decoding.
	Warnings []string
}

// Raw maps keys to undecoded entry bodies.
type Raw map[string]*yaml.Node

// Keys returns the raw keys in lexical order.
func (r Raw) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// NewFile returns an empty file with the plugin enabled.
func NewFile() *File {
	return &File{PluginEnabled: true, Events: make(map[string]settings.EventSettings)}
}

// Keys returns the event keys in lexical order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.Events))
	for k := range f.Events {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type document struct {
	PluginEnabled  *bool                `yaml:"plugin_enabled"`
	EventsSettings map[string]yaml.Node `yaml:"events_settings"`
}

type entryDocument struct {
	Enabled *bool   `yaml:"enabled"`
	Pretty  *bool   `yaml:"pretty"`
	Level   *string `yaml:"level"`
}

// Decode parses a settings document. Unknown fields are ignored. An entry
// that is not a mapping or names an unknown level is kept in File.Invalid and
// reported in File.Warnings; missing fields take their defaults.
func Decode(data []byte) (*File, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	f := NewFile()
	if doc.PluginEnabled != nil {
		f.PluginEnabled = *doc.PluginEnabled
	}
	for key, node := range doc.EventsSettings {
		rec, err := decodeEntry(&node)
		if err != nil {
			f.Warnings = append(f.Warnings, fmt.Sprintf("%s (line %d): %v", key, node.Line, err))
			if f.Invalid == nil {
				f.Invalid = make(Raw)
			}
			f.Invalid[key] = &node
			continue
		}
		f.Events[key] = rec
	}
	slices.Sort(f.Warnings)
	return f, nil
}

func decodeEntry(node *yaml.Node) (settings.EventSettings, error) {
	rec := settings.Default()
	if node.Kind != yaml.MappingNode {
		return rec, fmt.Errorf("entry is not a mapping")
	}
	var doc entryDocument
	if err := node.Decode(&doc); err != nil {
		return rec, err
	}
	if doc.Enabled != nil {
		rec.Enabled = *doc.Enabled
	}
	if doc.Pretty != nil {
		rec.Pretty = *doc.Pretty
	}
	if doc.Level != nil {
		lvl, err := settings.ParseLevel(*doc.Level)
		if err != nil {
			return rec, err
		}
		rec.Level = lvl
	}
	return rec, nil
}

// Load reads and decodes the file at path. A missing file yields an error
// wrapping ErrNotFound.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return Decode(data)
}

// Encode renders a settings document with keys in lexical order.
func Encode(f *File) ([]byte, error) {
	keys := f.Keys()
	for k := range f.Invalid {
		if _, ok := f.Events[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	events := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		rec, ok := f.Events[key]
		if !ok {
			events.Content = append(events.Content, scalar(key), f.Invalid[key])
			continue
		}
		body := &yaml.Node{}
		err := body.Encode(struct {
			Enabled bool   `yaml:"enabled"`
			Pretty  bool   `yaml:"pretty"`
			Level   string `yaml:"level"`
		}{rec.Enabled, rec.Pretty, rec.Level.String()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		events.Content = append(events.Content, scalar(key), body)
	}

	root := &yaml.Node{
		Kind:        yaml.MappingNode,
		HeadComment: headComment,
		Content: []*yaml.Node{
			scalar("plugin_enabled"), {Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(f.PluginEnabled)},
			scalar("events_settings"), events,
		},
	}
	data, err := yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// Write encodes f and replaces path atomically, creating parent directories.
// An existing file keeps its permissions; a new one gets 0644.
func Write(path string, f *File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Save writes the store, plus any retained or invalid entries the store does
// not hold, to path.
func Save(path string, store *settings.Store, retained Retained, invalid Raw) error {
	return Write(path, Merge(store, retained, invalid))
}

// Merge builds the file that Save would write.
func Merge(store *settings.Store, retained Retained, invalid Raw) *File {
	snap := store.Snapshot()
	f := &File{PluginEnabled: snap.PluginEnabled, Events: snap.Events}
	for k, rec := range retained {
		if _, ok := f.Events[k]; !ok {
			f.Events[k] = rec
		}
	}
	for k, node := range invalid {
		if _, ok := f.Events[k]; ok {
			continue
		}
		if f.Invalid == nil {
			f.Invalid = make(Raw)
		}
		f.Invalid[k] = node
	}
	return f
}
