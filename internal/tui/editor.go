// Package tui hosts the live-preview editor in a terminal, driving an
// editor session from bubbletea input events.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/editor"
	"github.com/notelab/livemark/internal/frontmatter"
	"github.com/notelab/livemark/internal/ui"
)

const statusRows = 1

// tickMsg drives the session timers. The generation counter discards
// ticks scheduled before a newer deadline superseded them.
type tickMsg struct {
	gen int
}

// Model is the editor TUI model
type Model struct {
	width  int
	height int

	keyMap   KeyMap
	sess     *editor.Session
	renderer *ui.Renderer
	theme    *ui.Theme

	path  string // file being edited, empty for scratch buffers
	dirty bool

	cursor  int // caret byte offset
	topLine int // first visible line, 1-based

	title     string
	statusMsg string
	showHelp  bool
	quitting  bool

	tickGen int
}

// New creates an editor model over the given file content. The session
// is mounted immediately so the first View renders decorated lines.
func New(cfg editor.Config, theme *ui.Theme, path, content string) *Model {
	m := &Model{
		keyMap:   DefaultKeyMap(),
		theme:    theme,
		renderer: ui.NewRenderer(theme, 0),
		path:     path,
		topLine:  1,
	}
	m.sess = editor.NewSession(cfg, m, nil)
	m.sess.Mount()
	m.sess.SetMarkdown(content)
	m.sess.Focus()
	if meta, _, err := frontmatter.Parse(content); err == nil {
		m.title = meta.Title
	}
	return m
}

// SetReadOnly switches the session edit gate and tints the view.
func (m *Model) SetReadOnly(readOnly bool) {
	m.sess.SetReadOnly(readOnly)
	m.renderer.SetReadOnly(readOnly)
}

// Session exposes the underlying session, mainly for tests.
func (m *Model) Session() *editor.Session { return m.sess }

// Emit receives session events. The TUI is its own bridge: events feed
// the status line instead of a host process.
func (m *Model) Emit(event string, payload map[string]any) {
	switch event {
	case "metadataChanged":
		if title, ok := payload["title"].(string); ok {
			m.title = title
		}
	case "jsError":
		if msg, ok := payload["message"].(string); ok {
			m.statusMsg = msg
		}
	case "linkTapped":
		if href, ok := payload["href"].(string); ok {
			m.statusMsg = "link: " + href
		}
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return m.syncTimers()
}

// syncTimers advances the session clock and schedules a wake-up for the
// next pending deadline, if any.
func (m *Model) syncTimers() tea.Cmd {
	next := m.sess.Tick(time.Now())
	if next.IsZero() {
		return nil
	}
	m.tickGen++
	gen := m.tickGen
	wait := time.Until(next)
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer.SetWidth(m.width)
		m.ensureCursorVisible()
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		return m, m.syncTimers()
	}
	return m, nil
}

func (m *Model) bodyHeight() int {
	h := m.height - statusRows
	if m.showHelp {
		h -= lipgloss.Height(m.helpView())
	}
	if h < 1 {
		h = 1
	}
	return h
}

// ensureCursorVisible scrolls the viewport so the caret line is on
// screen.
func (m *Model) ensureCursorVisible() {
	snap := m.sess.Snapshot()
	line := snap.LineAt(m.cursor).Number
	if line < m.topLine {
		m.topLine = line
	}
	if bottom := m.topLine + m.bodyHeight() - 1; line > bottom {
		m.topLine = line - m.bodyHeight() + 1
	}
	if m.topLine < 1 {
		m.topLine = 1
	}
}

// updateViewport tells the session which byte range is on screen so
// decoration synthesis stays confined to it.
func (m *Model) updateViewport() {
	snap := m.sess.Snapshot()
	bottom := m.topLine + m.bodyHeight() - 1
	if bottom > snap.LineCount() {
		bottom = snap.LineCount()
	}
	from := snap.Line(m.topLine).From
	to := snap.Line(bottom).To + 1
	if to > snap.Len() {
		to = snap.Len()
	}
	m.sess.SetViewport(decor.Viewport{From: from, To: to})
}

// View renders the visible document plus the status line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.sess.Snapshot()
	set := m.sess.Decorations()

	bottom := m.topLine + m.bodyHeight() - 1
	lines := m.renderer.Render(snap, set, m.topLine, bottom)

	cursorLine := snap.LineAt(m.cursor).Number
	if idx := cursorLine - m.topLine; idx >= 0 && idx < len(lines) {
		col := m.renderer.VisibleColumn(snap, set, cursorLine, m.cursor)
		lines[idx] = overlayCursor(lines[idx], col)
	}
	for len(lines) < m.bodyHeight() {
		lines = append(lines, "")
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	if m.showHelp {
		sb.WriteString(m.helpView())
		sb.WriteString("\n")
	}
	sb.WriteString(m.statusView())
	return sb.String()
}

func (m *Model) statusView() string {
	snap := m.sess.Snapshot()
	line := snap.LineAt(m.cursor)

	name := m.title
	if name == "" {
		name = m.path
	}
	if name == "" {
		name = "[scratch]"
	}
	left := " " + name
	if m.dirty {
		left += " *"
	}
	if m.sess.ReadOnly() {
		left += " [read-only]"
	}
	if m.statusMsg != "" {
		left += "  " + m.statusMsg
	}
	right := fmt.Sprintf("%d:%d  ctrl+g help ", line.Number, m.cursor-line.From+1)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	style := lipgloss.NewStyle().Reverse(true)
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(bar)
}

func (m *Model) helpView() string {
	k := m.keyMap
	entries := []struct{ keys, desc string }{
		{k.Save.Help().Key, k.Save.Help().Desc},
		{k.Quit.Help().Key, k.Quit.Help().Desc},
		{k.Undo.Help().Key, k.Undo.Help().Desc},
		{k.Redo.Help().Key, k.Redo.Help().Desc},
		{k.Copy.Help().Key, k.Copy.Help().Desc},
		{k.Paste.Help().Key, k.Paste.Help().Desc},
		{k.Bold.Help().Key, k.Bold.Help().Desc},
		{k.Italic.Help().Key, k.Italic.Help().Desc},
		{k.Strike.Help().Key, k.Strike.Help().Desc},
		{k.InlineCode.Help().Key, k.InlineCode.Help().Desc},
		{k.Link.Help().Key, k.Link.Help().Desc},
		{k.Heading1.Help().Key, k.Heading1.Help().Desc},
		{k.Heading2.Help().Key, k.Heading2.Help().Desc},
		{k.Heading3.Help().Key, k.Heading3.Help().Desc},
		{k.BulletList.Help().Key, k.BulletList.Help().Desc},
		{k.NumberList.Help().Key, k.NumberList.Help().Desc},
		{k.TaskList.Help().Key, k.TaskList.Help().Desc},
		{k.Quote.Help().Key, k.Quote.Help().Desc},
		{k.CodeBlock.Help().Key, k.CodeBlock.Help().Desc},
		{k.Rule.Help().Key, k.Rule.Help().Desc},
		{k.Table.Help().Key, k.Table.Help().Desc},
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.keys+" "+e.desc)
	}
	text := strings.Join(parts, "  •  ")
	if m.width > 0 {
		text = wordwrap.String(text, m.width)
	}
	return lipgloss.NewStyle().Faint(true).Render(text)
}

// Run starts the editor over a file. A missing file starts empty and is
// created on first save.
func Run(cfg editor.Config, theme *ui.Theme, path string, readOnly bool) error {
	var content string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		content = string(data)
	}
	m := New(cfg, theme, path, content)
	if readOnly {
		m.SetReadOnly(true)
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
