package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for the editor TUI
type KeyMap struct {
	// Global
	Quit key.Binding
	Save key.Binding
	Help key.Binding

	// History
	Undo key.Binding
	Redo key.Binding

	// Clipboard
	Copy  key.Binding
	Paste key.Binding

	// Navigation
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Formatting
	Bold       key.Binding
	Italic     key.Binding
	Strike     key.Binding
	InlineCode key.Binding
	Link       key.Binding
	Heading1   key.Binding
	Heading2   key.Binding
	Heading3   key.Binding
	BulletList key.Binding
	NumberList key.Binding
	TaskList   key.Binding
	Quote      key.Binding
	CodeBlock  key.Binding
	Rule       key.Binding
	Table      key.Binding
}

// commandFor maps a formatting binding to the editor command it triggers.
func (k KeyMap) commandFor(msgKey string) (string, bool) {
	bindings := []struct {
		binding key.Binding
		command string
	}{
		{k.Bold, "bold"},
		{k.Italic, "italic"},
		{k.Strike, "strike"},
		{k.InlineCode, "inlineCode"},
		{k.Link, "link"},
		{k.Heading1, "heading1"},
		{k.Heading2, "heading2"},
		{k.Heading3, "heading3"},
		{k.BulletList, "bulletList"},
		{k.NumberList, "orderedList"},
		{k.TaskList, "taskList"},
		{k.Quote, "blockquote"},
		{k.CodeBlock, "codeBlock"},
		{k.Rule, "hr"},
		{k.Table, "table"},
	}
	for _, b := range bindings {
		for _, want := range b.binding.Keys() {
			if want == msgKey {
				return b.command, true
			}
		}
	}
	return "", false
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "help"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "redo"),
		),
		Copy: key.NewBinding(
			key.WithKeys("alt+c"),
			key.WithHelp("alt+c", "copy line"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("home", "line start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("end", "line end"),
		),
		Bold: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "bold"),
		),
		Italic: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "italic"),
		),
		Strike: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("alt+s", "strikethrough"),
		),
		InlineCode: key.NewBinding(
			key.WithKeys("alt+e"),
			key.WithHelp("alt+e", "inline code"),
		),
		Link: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "link"),
		),
		Heading1: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("alt+1", "heading 1"),
		),
		Heading2: key.NewBinding(
			key.WithKeys("alt+2"),
			key.WithHelp("alt+2", "heading 2"),
		),
		Heading3: key.NewBinding(
			key.WithKeys("alt+3"),
			key.WithHelp("alt+3", "heading 3"),
		),
		BulletList: key.NewBinding(
			key.WithKeys("alt+8"),
			key.WithHelp("alt+8", "bullet list"),
		),
		NumberList: key.NewBinding(
			key.WithKeys("alt+7"),
			key.WithHelp("alt+7", "numbered list"),
		),
		TaskList: key.NewBinding(
			key.WithKeys("alt+t"),
			key.WithHelp("alt+t", "task list"),
		),
		Quote: key.NewBinding(
			key.WithKeys("alt+q"),
			key.WithHelp("alt+q", "blockquote"),
		),
		CodeBlock: key.NewBinding(
			key.WithKeys("alt+f"),
			key.WithHelp("alt+f", "code block"),
		),
		Rule: key.NewBinding(
			key.WithKeys("alt+-"),
			key.WithHelp("alt+-", "horizontal rule"),
		),
		Table: key.NewBinding(
			key.WithKeys("alt+\\"),
			key.WithHelp("alt+\\", "table"),
		),
	}
}
