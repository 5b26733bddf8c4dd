package editor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"logevents/internal/settings"

	"github.com/sahilm/fuzzy"
)

// Mode selects how Filter.Text is matched against keys.
type Mode int

const (
	ModeSubstring Mode = iota
	ModeRegex
	ModeFuzzy
)

func (m Mode) String() string {
	switch m {
	case ModeRegex:
		return "regex"
	case ModeFuzzy:
		return "fuzzy"
	default:
		return "substring"
	}
}

// EnabledFilter restricts rows by their enabled flag.
type EnabledFilter int

const (
	EnabledAll EnabledFilter = iota
	EnabledOnly
	DisabledOnly
)

func (f EnabledFilter) String() string {
	switch f {
	case EnabledOnly:
		return "enabled"
	case DisabledOnly:
		return "disabled"
	default:
		return "all"
	}
}

// Next cycles all -> enabled -> disabled -> all.
func (f EnabledFilter) Next() EnabledFilter {
	return (f + 1) % 3
}

func (f EnabledFilter) match(enabled bool) bool {
	switch f {
	case EnabledOnly:
		return enabled
	case DisabledOnly:
		return !enabled
	default:
		return true
	}
}

// LevelFilter restricts rows to one level. The zero value matches any level.
type LevelFilter struct {
	Set   bool
	Level settings.Level
}

// OnlyLevel returns a filter matching l.
func OnlyLevel(l settings.Level) LevelFilter {
	return LevelFilter{Set: true, Level: l}
}

func (f LevelFilter) String() string {
	if !f.Set {
		return "any"
	}
	return f.Level.String()
}

// Next cycles any -> TRACE -> ... -> ERROR -> any.
func (f LevelFilter) Next() LevelFilter {
	if !f.Set {
		return OnlyLevel(settings.LevelTrace)
	}
	if f.Level == settings.LevelError {
		return LevelFilter{}
	}
	return OnlyLevel(f.Level.Next())
}

func (f LevelFilter) match(l settings.Level) bool {
	return !f.Set || f.Level == l
}

// Row is one settings entry as the editor shows it.
type Row struct {
	Key      string
	Settings settings.EventSettings
	// Matched holds the byte offsets of Key that matched the text filter.
	Matched []int
}

// Filter is the editor's filter state. The zero value shows every row.
type Filter struct {
	Text          string
	CaseSensitive bool
	Mode          Mode
	Enabled       EnabledFilter
	Level         LevelFilter
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f.Text != "" || f.Enabled != EnabledAll || f.Level.Set
}

// Apply returns the rows that pass the filter. Substring and regex modes
// keep the input order; fuzzy mode orders by match score. An invalid
// regular expression matches nothing and is returned as the error.
func (f Filter) Apply(rows []Row) ([]Row, error) {
	candidates := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Enabled.match(r.Settings.Enabled) && f.Level.match(r.Settings.Level) {
			r.Matched = nil
			candidates = append(candidates, r)
		}
	}
	if f.Text == "" {
		return candidates, nil
	}

	switch f.Mode {
	case ModeRegex:
		return f.applyRegex(candidates)
	case ModeFuzzy:
		return f.applyFuzzy(candidates), nil
	default:
		return f.applySubstring(candidates), nil
	}
}

func (f Filter) applySubstring(rows []Row) []Row {
	out := rows[:0]
	for _, r := range rows {
		var start, end int
		if f.CaseSensitive {
			start = strings.Index(r.Key, f.Text)
			end = start + len(f.Text)
		} else {
			start, end = indexFold(r.Key, f.Text)
		}
		if start < 0 {
			continue
		}
		r.Matched = span(start, end-start)
		out = append(out, r)
	}
	return out
}

// indexFold finds the first case-insensitive occurrence of needle in hay and
// returns its byte range in hay, or -1, -1. Offsets refer to hay itself, so
// they stay valid when case mapping changes a rune's encoded length.
func indexFold(hay, needle string) (int, int) {
	for i := range hay {
		j := i
		ok := true
		for _, nr := range needle {
			if j >= len(hay) {
				ok = false
				break
			}
			hr, size := utf8.DecodeRuneInString(hay[j:])
			if hr != nr && !strings.EqualFold(string(hr), string(nr)) {
				ok = false
				break
			}
			j += size
		}
		if ok {
			return i, j
		}
	}
	return -1, -1
}

func (f Filter) applyRegex(rows []Row) ([]Row, error) {
	expr := f.Text
	if !f.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	out := rows[:0]
	for _, r := range rows {
		loc := re.FindStringIndex(r.Key)
		if loc == nil {
			continue
		}
		r.Matched = span(loc[0], loc[1]-loc[0])
		out = append(out, r)
	}
	return out, nil
}

type rowSource []Row

func (s rowSource) String(i int) string { return s[i].Key }
func (s rowSource) Len() int            { return len(s) }

func (f Filter) applyFuzzy(rows []Row) []Row {
	matches := fuzzy.FindFrom(f.Text, rowSource(rows))
	out := make([]Row, 0, len(matches))
	pattern := []rune(f.Text)
	for _, m := range matches {
		if f.CaseSensitive && !sameCase(m.Str, m.MatchedIndexes, pattern) {
			continue
		}
		r := rows[m.Index]
		r.Matched = append([]int(nil), m.MatchedIndexes...)
		out = append(out, r)
	}
	return out
}

// sameCase reports whether the runes of s at the matched byte offsets equal
// pattern exactly.
func sameCase(s string, matched []int, pattern []rune) bool {
	if len(matched) != len(pattern) {
		return false
	}
	for i, off := range matched {
		r, _ := utf8.DecodeRuneInString(s[off:])
		if r != pattern[i] {
			return false
		}
	}
	return true
}

func span(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
