package ui

import (
	"fmt"
	"strings"

	"logevents/internal/editor"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SnapshotMsg delivers fresh settings from the host loop.
type SnapshotMsg editor.Snapshot

// EditorPageModel is the settings editor. It renders the latest snapshot and
// turns key presses into edits for the host loop; it never touches the
// settings store itself.
type EditorPageModel struct {
	width  int
	height int

	snapshot editor.Snapshot
	rows     []editor.Row
	cursor   int
	received bool

	filter        editor.Filter
	filterErr     error
	filterInput   textinput.Model
	filterFocused bool

	send   func(editor.Edit) bool
	styles Styles
}

// NewEditorPageModel creates the editor. send queues an edit for the host
// and reports whether it was accepted.
func NewEditorPageModel(send func(editor.Edit) bool) EditorPageModel {
	fi := textinput.New()
	fi.Placeholder = "Filter event types..."
	fi.CharLimit = 120
	fi.Width = 40

	return EditorPageModel{
		filterInput: fi,
		send:        send,
		styles:      DefaultStyles(),
	}
}

// Init initializes the model.
func (m EditorPageModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m EditorPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.filterInput.Width = max(msg.Width/2, 20)
		return m, nil
	case SnapshotMsg:
		m.snapshot = editor.Snapshot(msg)
		m.received = true
		m.applyFilter()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m EditorPageModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter options work with and without the input focused.
	switch msg.String() {
	case "ctrl+c":
		m.send(editor.Edit{Kind: editor.EditExit})
		return m, tea.Quit
	case "ctrl+r":
		m.toggleMode(editor.ModeRegex)
		return m, nil
	case "ctrl+f":
		m.toggleMode(editor.ModeFuzzy)
		return m, nil
	case "ctrl+a":
		m.filter.CaseSensitive = !m.filter.CaseSensitive
		m.applyFilter()
		return m, nil
	}

	if m.filterFocused {
		switch msg.String() {
		case "esc", "enter":
			m.filterFocused = false
			m.filterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.send(editor.Edit{Kind: editor.EditExit})
		return m, tea.Quit
	case "/":
		m.filterFocused = true
		cmd := m.filterInput.Focus()
		return m, cmd
	case "esc":
		m.filterInput.SetValue("")
		m.filter = editor.Filter{}
		m.applyFilter()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "tab":
		m.filter.Enabled = m.filter.Enabled.Next()
		m.applyFilter()
	case "l":
		m.filter.Level = m.filter.Level.Next()
		m.applyFilter()
	case "e":
		m.send(editor.Edit{Kind: editor.EditPluginEnabled, Bool: !m.snapshot.PluginEnabled})
	case " ", "space":
		if row, ok := m.selected(); ok {
			m.send(editor.Edit{Kind: editor.EditEnabled, Key: row.Key, Bool: !row.Settings.Enabled})
		}
	case "p":
		if row, ok := m.selected(); ok {
			m.send(editor.Edit{Kind: editor.EditPretty, Key: row.Key, Bool: !row.Settings.Pretty})
		}
	case "left", "h":
		if row, ok := m.selected(); ok {
			m.send(editor.Edit{Kind: editor.EditCycleLevel, Key: row.Key, Step: -1})
		}
	case "right":
		if row, ok := m.selected(); ok {
			m.send(editor.Edit{Kind: editor.EditCycleLevel, Key: row.Key, Step: 1})
		}
	}
	return m, nil
}

func (m *EditorPageModel) toggleMode(mode editor.Mode) {
	if m.filter.Mode == mode {
		m.filter.Mode = editor.ModeSubstring
	} else {
		m.filter.Mode = mode
	}
	m.applyFilter()
}

// applyFilter recomputes the visible rows and keeps the cursor on a row.
func (m *EditorPageModel) applyFilter() {
	m.filter.Text = m.filterInput.Value()
	m.rows, m.filterErr = m.filter.Apply(m.snapshot.Rows)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m EditorPageModel) selected() (editor.Row, bool) {
	if m.cursor >= len(m.rows) {
		return editor.Row{}, false
	}
	return m.rows[m.cursor], true
}

// Rows returns the rows currently shown.
func (m EditorPageModel) Rows() []editor.Row {
	return m.rows
}

// Filter returns the current filter state.
func (m EditorPageModel) Filter() editor.Filter {
	return m.filter
}

// View renders the page.
func (m EditorPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" Event Logging "))
	sb.WriteString("\n\n")

	if !m.received {
		sb.WriteString(m.styles.Muted.Render("Waiting for the first tick..."))
		sb.WriteString("\n")
		return sb.String()
	}

	plugin := checkbox(m.snapshot.PluginEnabled) + " Log events"
	if m.snapshot.PluginEnabled {
		sb.WriteString(m.styles.Success.Render(plugin))
	} else {
		sb.WriteString(m.styles.Muted.Render(plugin))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n")
	if m.filterErr != nil {
		sb.WriteString(m.styles.Error.Render(m.filterErr.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.styles.Content.Render(m.renderRows()))
	sb.WriteString("\n")

	if len(m.rows) != len(m.snapshot.Rows) {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("Showing %d of %d event types", len(m.rows), len(m.snapshot.Rows))))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Footer.Render("[space] enabled  [p] pretty  [←/→] level  [e] all events  [/] filter  [q] quit"))
	return sb.String()
}

func (m EditorPageModel) renderFilterBar() string {
	var sb strings.Builder

	filterStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Border).
		Padding(0, 1)
	if m.filterFocused {
		filterStyle = filterStyle.BorderForeground(m.styles.Theme.Primary)
	}
	sb.WriteString(filterStyle.Render(m.filterInput.View()))
	sb.WriteString("\n")

	options := []struct {
		on    bool
		label string
	}{
		{m.filter.Mode == editor.ModeRegex, "Regex (^R)"},
		{m.filter.Mode == editor.ModeFuzzy, "Fuzzy (^F)"},
		{m.filter.CaseSensitive, "Case (^A)"},
	}
	for _, opt := range options {
		style := m.styles.Muted
		if opt.on {
			style = lipgloss.NewStyle().
				Foreground(m.styles.Theme.Primary).
				Bold(true).
				Underline(true)
		}
		sb.WriteString(style.Render(opt.label))
		sb.WriteString("  ")
	}
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("Show: %s (tab)  Level: %s (l)", m.filter.Enabled, m.filter.Level)))
	return sb.String()
}

func (m EditorPageModel) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("No event types match.")
	}

	width := 0
	for _, r := range m.rows {
		width = max(width, lipgloss.Width(r.Key))
	}

	var sb strings.Builder
	for i, r := range m.rows {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		sb.WriteString(marker)
		sb.WriteString(checkbox(r.Settings.Enabled))
		sb.WriteString(" ")
		sb.WriteString(m.highlight(r))
		sb.WriteString(strings.Repeat(" ", width-lipgloss.Width(r.Key)+2))
		if r.Settings.Pretty {
			sb.WriteString("pretty  ")
		} else {
			sb.WriteString("        ")
		}
		sb.WriteString(m.styles.Level(r.Settings.Level))
		if i < len(m.rows)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// highlight renders the key with the bytes the text filter matched styled.
func (m EditorPageModel) highlight(r editor.Row) string {
	if len(r.Matched) == 0 {
		return r.Key
	}
	matched := make(map[int]bool, len(r.Matched))
	for _, off := range r.Matched {
		matched[off] = true
	}
	var sb strings.Builder
	for off, ch := range r.Key {
		if matched[off] {
			sb.WriteString(m.styles.Match.Render(string(ch)))
		} else {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
