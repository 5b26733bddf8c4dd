//go:build !nologevents

package logevents

import (
	"fmt"
	"reflect"
	"strings"

	"logevents/internal/logging"
	"logevents/internal/settings"
	"logevents/pkg/ecs"

	"github.com/davecgh/go-spew/spew"
)

var prettyConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

type levelChecker interface {
	Enabled(level settings.Level) bool
}

// emit formats one occurrence and hands it to the backend.
func (st *state) emit(w *ecs.World, b *binding, value any, target ecs.Entity, caller ecs.Location) {
	rec := b.entry.Settings
	if lc, ok := st.backend.(levelChecker); ok && !lc.Enabled(rec.Level) {
		return
	}
	st.backend.Log(rec.Level, message(w, b.entry.Key, value, rec.Pretty, target, caller))
}

// message renders "Key[ on Name(entity)][ at file:line]: value".
func message(w *ecs.World, key string, value any, pretty bool, target ecs.Entity, caller ecs.Location) string {
	var sb strings.Builder
	sb.WriteString(key)
	if target != ecs.Placeholder {
		sb.WriteString(" on ")
		if name, ok := w.Name(target); ok {
			sb.WriteString(name)
			sb.WriteByte('(')
			sb.WriteString(target.String())
			sb.WriteByte(')')
		} else {
			sb.WriteString(target.String())
		}
	}
	if caller.Known() {
		sb.WriteString(" at ")
		sb.WriteString(caller.String())
	}
	sb.WriteString(": ")
	sb.WriteString(render(value, pretty))
	return sb.String()
}

// render formats value compactly or as a multi-line dump. A value whose
// formatting panics is rendered as a placeholder naming its type, except a
// nil pointer, which renders as "<nil>" like fmt does.
func render(value any, pretty bool) (out string) {
	defer func() {
		if r := recover(); r != nil {
			if v := reflect.ValueOf(value); v.Kind() == reflect.Pointer && v.IsNil() {
				out = "<nil>"
				return
			}
			logging.DispatchWarn("formatting %T panicked: %v", value, r)
			out = fmt.Sprintf("<unformattable %T: %v>", value, r)
		}
	}()

	if pretty {
		return strings.TrimRight(prettyConfig.Sdump(value), "\n")
	}
	switch v := value.(type) {
	case fmt.Formatter:
		// fmt drives the Format method itself.
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%+v", value)
}
