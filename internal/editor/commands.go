// Package editor owns the live editing session: the command layer, the
// pointer interaction handlers, and the session object tying the buffer,
// parser and decoration engine to a host event loop.
package editor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notelab/livemark/internal/document"
)

// Command builds the transaction for one editing command. It returns
// false, without side effects, when the command does not apply to the
// current selection.
type Command func(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool)

// CommandNames returns the closed command vocabulary.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

// LookupCommand resolves a command by name.
func LookupCommand(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

var commands = map[string]Command{
	"bold":        wrapCommand("**", "**", "bold"),
	"italic":      wrapCommand("*", "*", "italic"),
	"strike":      wrapCommand("~~", "~~", "strike"),
	"inlineCode":  wrapCommand("`", "`", "code"),
	"heading1":    headingCommand(1),
	"heading2":    headingCommand(2),
	"heading3":    headingCommand(3),
	"bulletList":  bulletListCommand,
	"orderedList": orderedListCommand,
	"taskList":    taskListCommand,
	"blockquote":  blockquoteCommand,
	"hr":          hrCommand,
	"link":        linkCommand,
	"codeBlock":   codeBlockCommand,
	"table":       tableCommand,
}

const userEvent = "input"

func selectRange(from, to int) *document.Selection {
	return &document.Selection{Anchor: from, Head: to}
}

// wrapCommand toggles an inline wrapper around the selection. An empty
// selection inserts a placeholder and selects it; a selection already
// carrying the wrapper is unwrapped.
func wrapCommand(prefix, suffix, placeholder string) Command {
	return func(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
		from, to := sel.From(), sel.To()
		if from == to {
			insert := prefix + placeholder + suffix
			return document.Transaction{
				Changes:   []document.Change{{From: from, To: from, Insert: insert}},
				Selection: selectRange(from+len(prefix), from+len(prefix)+len(placeholder)),
				Event:     userEvent,
			}, true
		}
		text := snap.Slice(from, to)
		if len(text) >= len(prefix)+len(suffix) && strings.HasPrefix(text, prefix) && strings.HasSuffix(text, suffix) {
			inner := text[len(prefix) : len(text)-len(suffix)]
			return document.Transaction{
				Changes:   []document.Change{{From: from, To: to, Insert: inner}},
				Selection: selectRange(from, from+len(inner)),
				Event:     userEvent,
			}, true
		}
		// The selection a wrap leaves behind covers the inner text, so
		// unwrapping also recognizes markers adjacent to the selection.
		if snap.Slice(from-len(prefix), from) == prefix && snap.Slice(to, to+len(suffix)) == suffix {
			return document.Transaction{
				Changes:   []document.Change{{From: from - len(prefix), To: to + len(suffix), Insert: text}},
				Selection: selectRange(from-len(prefix), from-len(prefix)+len(text)),
				Event:     userEvent,
			}, true
		}
		return document.Transaction{
			Changes:   []document.Change{{From: from, To: to, Insert: prefix + text + suffix}},
			Selection: selectRange(from+len(prefix), to+len(prefix)),
			Event:     userEvent,
		}, true
	}
}

var reHeadingMarker = regexp.MustCompile(`^(\s*)(#{1,6})[ \t]+`)

// headingCommand toggles a heading marker per selected line: same level
// removes it, a different level replaces it, no heading inserts one.
func headingCommand(level int) Command {
	marker := strings.Repeat("#", level) + " "
	return func(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
		return eachLineReverse(snap, sel, func(line document.Line) []document.Change {
			if m := reHeadingMarker.FindStringSubmatch(line.Text); m != nil {
				from := line.From + len(m[1])
				to := line.From + len(m[0])
				if len(m[2]) == level {
					return []document.Change{{From: from, To: to}}
				}
				return []document.Change{{From: from, To: to, Insert: marker}}
			}
			at := line.From + leadingWhitespace(line.Text)
			return []document.Change{{From: at, To: at, Insert: marker}}
		})
	}
}

var (
	reBulletMarker  = regexp.MustCompile(`^(\s*)[-+*][ \t]+`)
	reOrderedMarker = regexp.MustCompile(`^(\s*)\d{1,9}\.[ \t]+`)
	reTaskMarkerPat = regexp.MustCompile(`^(\s*)[-+*][ \t]+\[[ xX]\][ \t]?`)
	reQuoteMarker   = regexp.MustCompile(`^(\s*)> ?`)
)

func bulletListCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	return eachLineReverse(snap, sel, func(line document.Line) []document.Change {
		return toggleMarker(line, reBulletMarker, "- ")
	})
}

func orderedListCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	return eachLineReverse(snap, sel, func(line document.Line) []document.Change {
		// No renumbering: every inserted line gets "1. ".
		return toggleMarker(line, reOrderedMarker, "1. ")
	})
}

func taskListCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	return eachLineReverse(snap, sel, func(line document.Line) []document.Change {
		if m := reTaskMarkerPat.FindStringSubmatch(line.Text); m != nil {
			from := line.From + len(m[1])
			return []document.Change{{From: from, To: line.From + len(m[0])}}
		}
		if m := reBulletMarker.FindStringSubmatch(line.Text); m != nil {
			at := line.From + len(m[0])
			return []document.Change{{From: at, To: at, Insert: "[ ] "}}
		}
		at := line.From + leadingWhitespace(line.Text)
		return []document.Change{{From: at, To: at, Insert: "- [ ] "}}
	})
}

func blockquoteCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	return eachLineReverse(snap, sel, func(line document.Line) []document.Change {
		return toggleMarker(line, reQuoteMarker, "> ")
	})
}

func toggleMarker(line document.Line, re *regexp.Regexp, marker string) []document.Change {
	if m := re.FindStringSubmatch(line.Text); m != nil {
		from := line.From + len(m[1])
		return []document.Change{{From: from, To: line.From + len(m[0])}}
	}
	at := line.From + leadingWhitespace(line.Text)
	return []document.Change{{From: at, To: at, Insert: marker}}
}

// eachLineReverse collects per-line changes over the selected lines,
// last line first so earlier offsets stay valid, and folds them into one
// transaction.
func eachLineReverse(snap *document.Snapshot, sel document.Selection, fn func(document.Line) []document.Change) (document.Transaction, bool) {
	start := snap.LineAt(sel.From()).Number
	end := snap.LineAt(sel.To()).Number
	var changes []document.Change
	for l := end; l >= start; l-- {
		changes = append(changes, fn(snap.Line(l))...)
	}
	if len(changes) == 0 {
		return document.Transaction{}, false
	}
	return document.Transaction{Changes: changes, Event: userEvent}, true
}

func leadingWhitespace(text string) int {
	return len(text) - len(strings.TrimLeft(text, " \t"))
}

func hrCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	from, to := sel.From(), sel.To()
	insert := "\n---\n"
	caret := from + len(insert)
	return document.Transaction{
		Changes:   []document.Change{{From: from, To: to, Insert: insert}},
		Selection: selectRange(caret, caret),
		Event:     userEvent,
	}, true
}

func linkCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	from, to := sel.From(), sel.To()
	label := snap.Slice(from, to)
	if label == "" {
		label = "text"
	}
	insert := fmt.Sprintf("[%s](url)", label)
	urlFrom := from + len(label) + 3 // past "[label]("
	return document.Transaction{
		Changes:   []document.Change{{From: from, To: to, Insert: insert}},
		Selection: selectRange(urlFrom, urlFrom+3),
		Event:     userEvent,
	}, true
}

func codeBlockCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	from, to := sel.From(), sel.To()
	body := snap.Slice(from, to)
	insert := "```\n" + body + "\n```"
	if from == to {
		return document.Transaction{
			Changes:   []document.Change{{From: from, To: to, Insert: insert}},
			Selection: selectRange(from+4, from+4),
			Event:     userEvent,
		}, true
	}
	return document.Transaction{
		Changes:   []document.Change{{From: from, To: to, Insert: insert}},
		Selection: selectRange(from+4, from+4+len(body)),
		Event:     userEvent,
	}, true
}

func tableCommand(snap *document.Snapshot, sel document.Selection) (document.Transaction, bool) {
	from, to := sel.From(), sel.To()
	const template = "| Header | Column |\n| --- | --- |\n| Cell | Cell |\n"
	return document.Transaction{
		Changes:   []document.Change{{From: from, To: to, Insert: template}},
		Selection: selectRange(from+2, from+8), // "Header"
		Event:     userEvent,
	}, true
}
