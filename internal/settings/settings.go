// Package settings holds the per-event-type logging settings and the store
// that maps type keys to them.
//
// The store follows the same shape as a categorized logging config: a master
// switch that silences everything, then one record per key. Unlike a plain
// category map, every key present in the store belongs to a registered type,
// and records are handed out as stable pointers so dispatch never looks a key
// up per occurrence.
//
// The store is not safe for concurrent use. The host runtime serializes every
// system that touches it.
package settings

// EventSettings describes how one event type is logged.
type EventSettings struct {
	// Enabled controls whether occurrences are logged at all.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Pretty selects the multi-line representation over the compact one.
	Pretty bool `yaml:"pretty" json:"pretty"`
	// Level is the severity occurrences are logged at.
	Level Level `yaml:"level" json:"level"`
}

// Default returns the record given to a type registered without overrides.
func Default() EventSettings {
	return EventSettings{
		Enabled: true,
		Pretty:  false,
		Level:   LevelInfo,
	}
}

// Entry is the store slot of one registered type.
type Entry struct {
	Key      string
	Settings EventSettings
}
