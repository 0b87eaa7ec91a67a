package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const wheelStep = 3

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	snap := m.sess.Snapshot()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.topLine -= wheelStep
		if m.topLine < 1 {
			m.topLine = 1
		}
		m.updateViewport()

	case msg.Button == tea.MouseButtonWheelDown:
		m.topLine += wheelStep
		if max := snap.LineCount(); m.topLine > max {
			m.topLine = max
		}
		m.updateViewport()

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		lineNo := m.topLine + msg.Y
		if lineNo > snap.LineCount() {
			lineNo = snap.LineCount()
		}
		col := m.documentColumn(lineNo, msg.X)

		// Checkbox first: a hit toggles and consumes the tap.
		if m.sess.TapCheckbox(lineNo, col) {
			m.dirty = true
			m.syncCursorFromSession()
			break
		}
		if m.sess.TapLink(lineNo, col, msg.Alt) {
			break
		}
		line := snap.Line(lineNo)
		m.moveCursor(line.From + col)
		m.ensureCursorVisible()
		m.updateViewport()
	}

	return m, m.syncTimers()
}

// documentColumn maps a screen x position back to a byte column in the
// line, undoing the hidden spans and widget glyphs of the composed
// output.
func (m *Model) documentColumn(lineNo, x int) int {
	snap := m.sess.Snapshot()
	set := m.sess.Decorations()
	line := snap.Line(lineNo)

	col := 0
	for off := line.From; off <= line.To; off++ {
		if m.renderer.VisibleColumn(snap, set, lineNo, off) > x {
			break
		}
		col = off - line.From
	}
	return col
}
