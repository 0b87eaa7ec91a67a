package tui

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/notelab/livemark/internal/clipboard"
	"github.com/notelab/livemark/internal/document"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Save):
		m.save()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		m.ensureCursorVisible()
		m.updateViewport()

	case key.Matches(msg, m.keyMap.Undo):
		if m.sess.Undo() {
			m.dirty = true
			m.syncCursorFromSession()
		}

	case key.Matches(msg, m.keyMap.Redo):
		if m.sess.Redo() {
			m.dirty = true
			m.syncCursorFromSession()
		}

	case key.Matches(msg, m.keyMap.Copy):
		m.copySelection()

	case key.Matches(msg, m.keyMap.Paste):
		m.paste()

	case key.Matches(msg, m.keyMap.Home):
		m.moveCursor(m.lineStart())

	case key.Matches(msg, m.keyMap.End):
		m.moveCursor(m.lineEnd())

	case key.Matches(msg, m.keyMap.PageUp):
		m.moveLines(-m.bodyHeight())

	case key.Matches(msg, m.keyMap.PageDown):
		m.moveLines(m.bodyHeight())

	default:
		if name, ok := m.keyMap.commandFor(msg.String()); ok {
			if m.sess.ApplyCommand(name) {
				m.dirty = true
				m.syncCursorFromSession()
			}
			break
		}
		m.handleEditingKey(msg)
	}

	m.ensureCursorVisible()
	m.updateViewport()
	return m, m.syncTimers()
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		if !msg.Alt {
			m.insertText(string(msg.Runes))
		}
	case tea.KeySpace:
		m.insertText(" ")
	case tea.KeyEnter:
		m.insertText("\n")
	case tea.KeyTab:
		m.insertText("  ")
	case tea.KeyBackspace:
		m.deletePrev()
	case tea.KeyDelete:
		m.deleteNext()
	case tea.KeyLeft:
		m.moveCursor(m.prevRune(m.cursor))
	case tea.KeyRight:
		m.moveCursor(m.nextRune(m.cursor))
	case tea.KeyUp:
		m.moveLines(-1)
	case tea.KeyDown:
		m.moveLines(1)
	}
}

// insertText replaces the current selection with text and places the
// caret after it.
func (m *Model) insertText(text string) {
	sel := m.sess.Selection()
	caret := document.Caret(sel.From() + len(text))
	ok := m.sess.HandleEdit(document.Transaction{
		Changes:   []document.Change{{From: sel.From(), To: sel.To(), Insert: text}},
		Selection: &caret,
		Event:     "input",
	})
	if ok {
		m.dirty = true
		m.cursor = caret.Head
	}
}

func (m *Model) deletePrev() {
	sel := m.sess.Selection()
	from, to := sel.From(), sel.To()
	if from == to {
		if from == 0 {
			return
		}
		from = m.prevRune(from)
	}
	m.deleteRange(from, to)
}

func (m *Model) deleteNext() {
	sel := m.sess.Selection()
	from, to := sel.From(), sel.To()
	if from == to {
		if to >= m.sess.Snapshot().Len() {
			return
		}
		to = m.nextRune(to)
	}
	m.deleteRange(from, to)
}

func (m *Model) deleteRange(from, to int) {
	caret := document.Caret(from)
	ok := m.sess.HandleEdit(document.Transaction{
		Changes:   []document.Change{{From: from, To: to}},
		Selection: &caret,
		Event:     "input",
	})
	if ok {
		m.dirty = true
		m.cursor = from
	}
}

// moveCursor places the caret, opening the reveal window around it.
func (m *Model) moveCursor(pos int) {
	snap := m.sess.Snapshot()
	if pos < 0 {
		pos = 0
	}
	if pos > snap.Len() {
		pos = snap.Len()
	}
	m.cursor = pos
	m.sess.SetSelection(document.Caret(pos))
}

// moveLines moves the caret n lines up or down, keeping the byte column
// where the target line allows it.
func (m *Model) moveLines(n int) {
	snap := m.sess.Snapshot()
	line := snap.LineAt(m.cursor)
	col := m.cursor - line.From
	target := line.Number + n
	if target < 1 {
		target = 1
	}
	if target > snap.LineCount() {
		target = snap.LineCount()
	}
	dest := snap.Line(target)
	if col > dest.To-dest.From {
		col = dest.To - dest.From
	}
	m.moveCursor(dest.From + col)
}

func (m *Model) lineStart() int {
	return m.sess.Snapshot().LineAt(m.cursor).From
}

func (m *Model) lineEnd() int {
	return m.sess.Snapshot().LineAt(m.cursor).To
}

func (m *Model) prevRune(pos int) int {
	text := m.sess.Snapshot().Text()
	_, size := utf8.DecodeLastRuneInString(text[:pos])
	return pos - size
}

func (m *Model) nextRune(pos int) int {
	text := m.sess.Snapshot().Text()
	_, size := utf8.DecodeRuneInString(text[pos:])
	return pos + size
}

func (m *Model) syncCursorFromSession() {
	m.cursor = m.sess.Selection().Head
	if max := m.sess.Snapshot().Len(); m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) save() {
	if m.path == "" {
		m.statusMsg = "no file to save to"
		return
	}
	if err := os.WriteFile(m.path, []byte(m.sess.GetMarkdown()), 0o644); err != nil {
		m.statusMsg = "save failed: " + err.Error()
		return
	}
	m.dirty = false
	m.statusMsg = "saved"
}

// copySelection copies the selected text, or the caret line when the
// selection is empty.
func (m *Model) copySelection() {
	snap := m.sess.Snapshot()
	sel := m.sess.Selection()
	text := snap.Slice(sel.From(), sel.To())
	if text == "" {
		text = snap.LineAt(m.cursor).Text
	}
	if err := clipboard.CopyText(text); err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.statusMsg = "copied"
}

func (m *Model) paste() {
	text, err := clipboard.ReadText()
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	if text != "" {
		m.insertText(text)
	}
}

// overlayCursor draws the caret cell in reverse video at the given
// display column of an already-styled line.
func overlayCursor(line string, col int) string {
	reverse := lipgloss.NewStyle().Reverse(true)
	width := ansi.StringWidth(line)
	if col >= width {
		return line + strings.Repeat(" ", col-width) + reverse.Render(" ")
	}
	left := ansi.Truncate(line, col, "")
	cell := ansi.Truncate(ansi.TruncateLeft(line, col, ""), 1, "")
	rest := ansi.TruncateLeft(line, col+1, "")
	plain := ansi.Strip(cell)
	if plain == "" {
		plain = " "
	}
	return left + reverse.Render(plain) + rest
}
