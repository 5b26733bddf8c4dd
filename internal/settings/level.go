package settings

import (
	"fmt"
	"strings"
)

// Level is the severity an event type is logged at.
// Levels are ordered from most verbose (Trace) to least verbose (Error).
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Levels returns every level, most verbose first.
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// String returns the upper-case name used in settings files.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	return l >= LevelTrace && l <= LevelError
}

// Next returns the next less verbose level, wrapping from Error to Trace.
func (l Level) Next() Level {
	if l >= LevelError || l < LevelTrace {
		return LevelTrace
	}
	return l + 1
}

// Prev returns the next more verbose level, wrapping from Trace to Error.
func (l Level) Prev() Level {
	if l <= LevelTrace || l > LevelError {
		return LevelError
	}
	return l - 1
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and "WARNING" is accepted as an alias of WARN.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%q does not represent a valid log level", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid log level %d", int8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
