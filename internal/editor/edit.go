package editor

import (
	"fmt"

	"logevents/internal/settings"
)

// EditKind names what an Edit changes.
type EditKind int

const (
	EditPluginEnabled EditKind = iota
	EditEnabled
	EditPretty
	EditLevel
	EditCycleLevel
	// EditExit asks the host to exit.
	EditExit
)

func (k EditKind) String() string {
	switch k {
	case EditPluginEnabled:
		return "plugin_enabled"
	case EditEnabled:
		return "enabled"
	case EditPretty:
		return "pretty"
	case EditLevel:
		return "level"
	case EditCycleLevel:
		return "cycle_level"
	case EditExit:
		return "exit"
	default:
		return fmt.Sprintf("EditKind(%d)", int(k))
	}
}

// Edit is one change requested by a renderer. Edits are values so they can
// be queued from another goroutine and applied on the host tick.
type Edit struct {
	Kind  EditKind
	Key   string
	Bool  bool
	Level settings.Level
	// Step is the direction of EditCycleLevel.
	Step int
}

// Apply performs e. It reports whether e asked the host to exit.
func (p *Projection) Apply(e Edit) (exit bool, err error) {
	switch e.Kind {
	case EditPluginEnabled:
		p.SetPluginEnabled(e.Bool)
	case EditEnabled:
		err = p.SetEnabled(e.Key, e.Bool)
	case EditPretty:
		err = p.SetPretty(e.Key, e.Bool)
	case EditLevel:
		err = p.SetLevel(e.Key, e.Level)
	case EditCycleLevel:
		err = p.CycleLevel(e.Key, e.Step)
	case EditExit:
		return true, nil
	default:
		err = fmt.Errorf("unsupported edit %s", e.Kind)
	}
	return false, err
}
