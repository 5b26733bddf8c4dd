// Package typekey turns compile-time type identities into the stable string
// keys used by the settings store and the settings file.
//
// Keys are short by default ("Ping", "Damage[Player]", "OnAdd<Health>").
// When two registered identities share a short key, every one of them falls
// back to its import-path qualified form instead.
package typekey

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Identity is what a registration logs: a single event type, or a triggered
// event type paired with the component it logs.
type Identity struct {
	Event     reflect.Type
	Component reflect.Type
}

// Of returns the identity of T.
func Of[T any]() Identity {
	return Identity{Event: reflect.TypeFor[T]()}
}

// Pair returns the identity of event E logging component C.
func Pair[E, C any]() Identity {
	return Identity{Event: reflect.TypeFor[E](), Component: reflect.TypeFor[C]()}
}

// FromType returns the identity of t.
func FromType(t reflect.Type) Identity {
	return Identity{Event: t}
}

// IsPair reports whether the identity logs a component.
func (id Identity) IsPair() bool {
	return id.Component != nil
}

// Short renders the identity with every package path dropped.
func (id Identity) Short() string {
	if id.Event == nil {
		return "<nil>"
	}
	s := shortName(id.Event)
	if id.Component != nil {
		s += "<" + shortName(id.Component) + ">"
	}
	return s
}

// Qualified renders the identity with full import paths.
func (id Identity) Qualified() string {
	if id.Event == nil {
		return "<nil>"
	}
	s := qualifiedName(id.Event)
	if id.Component != nil {
		s += "<" + qualifiedName(id.Component) + ">"
	}
	return s
}

func (id Identity) String() string {
	return id.Short()
}

func shortName(t reflect.Type) string {
	if t.Name() != "" {
		return Shorten(t.Name())
	}
	return Shorten(t.String())
}

func qualifiedName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), qualifiedName(t.Elem()))
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	default:
		return t.String()
	}
}

// Shorten drops the package qualifier of every identifier in a rendered type
// name, recursing through generic arguments and composite types:
//
//	example.com/game/foo.Damage[example.com/game/bar.Player] -> Damage[Player]
//	map[string]*foo.Ping                                     -> map[string]*Ping
func Shorten(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	start := -1
	flush := func(end int) {
		if start >= 0 {
			sb.WriteString(stripQualifier(name[start:end]))
			start = -1
		}
	}
	for i, r := range name {
		if isPathRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		sb.WriteRune(r)
	}
	flush(len(name))
	return sb.String()
}

// stripQualifier turns "example.com/game/foo.Ping" into "Ping".
func stripQualifier(tok string) string {
	if i := strings.LastIndexByte(tok, '/'); i >= 0 {
		tok = tok[i+1:]
	}
	if i := strings.LastIndexByte(tok, '.'); i >= 0 && i < len(tok)-1 {
		tok = tok[i+1:]
	}
	return tok
}

func isPathRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '/', r == '-', r == '~':
		return true
	case r > unicode.MaxASCII:
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return false
}
