// Package document holds the editor's text state: immutable snapshots with
// line addressing, atomic edit+selection transactions, and undo history.
// Decoration passes only ever read a snapshot; every mutation goes through
// a Transaction.
package document

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable view of the document text with derived line
// boundaries. Lines are 1-indexed; a line's [From, To) span excludes the
// terminating newline.
type Snapshot struct {
	text       string
	lineStarts []int // offset of the first character of each line
}

// NewSnapshot builds a snapshot over text.
func NewSnapshot(text string) *Snapshot {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Snapshot{text: text, lineStarts: starts}
}

// Text returns the full document text.
func (s *Snapshot) Text() string { return s.text }

// Len returns the document length in bytes.
func (s *Snapshot) Len() int { return len(s.text) }

// Slice returns the text in [from, to), clamped to the document bounds.
func (s *Snapshot) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(s.text) {
		to = len(s.text)
	}
	if from >= to {
		return ""
	}
	return s.text[from:to]
}

// LineCount returns the number of lines. The empty document has one line.
func (s *Snapshot) LineCount() int { return len(s.lineStarts) }

// Line describes one document line.
type Line struct {
	Number int // 1-based
	From   int
	To     int // excludes the newline
	Text   string
}

// Line returns line n (1-based). n is clamped to the valid range.
func (s *Snapshot) Line(n int) Line {
	if n < 1 {
		n = 1
	}
	if n > len(s.lineStarts) {
		n = len(s.lineStarts)
	}
	from := s.lineStarts[n-1]
	to := len(s.text)
	if n < len(s.lineStarts) {
		to = s.lineStarts[n] - 1
	}
	return Line{Number: n, From: from, To: to, Text: s.text[from:to]}
}

// LineAt returns the line containing offset. Offsets past the end map to
// the last line.
func (s *Snapshot) LineAt(offset int) Line {
	if offset < 0 {
		offset = 0
	}
	n := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	})
	return s.Line(n)
}

// Change is a single text replacement: [From, To) replaced by Insert.
type Change struct {
	From   int
	To     int
	Insert string
}

// Transaction is an atomic document mutation: zero or more changes plus an
// optional resulting selection. Event tags the origin ("input", "command",
// "set-markdown", "live-preview", ...).
type Transaction struct {
	Changes   []Change
	Selection *Selection
	Event     string
	NoHistory bool
}

// HasChanges reports whether the transaction edits text.
func (tx Transaction) HasChanges() bool { return len(tx.Changes) > 0 }

// ChangeSet records an applied transaction's changes (in pre-apply
// coordinates) so positions can be mapped across the edit.
type ChangeSet struct {
	changes []Change
}

// Empty reports whether the change set contains no changes.
func (cs ChangeSet) Empty() bool { return len(cs.changes) == 0 }

// Changes returns the applied changes in pre-apply coordinates.
func (cs ChangeSet) Changes() []Change { return cs.changes }

// MapPos maps a pre-apply position to its post-apply equivalent. assoc < 0
// biases toward the start of an insertion at the position, assoc >= 0
// toward the end. Positions inside a replaced range collapse to the end of
// the replacement text.
func (cs ChangeSet) MapPos(pos, assoc int) int {
	delta := 0
	for _, ch := range cs.changes {
		if pos < ch.From || (pos == ch.From && assoc < 0) {
			break
		}
		if pos <= ch.To {
			return ch.From + delta + len(ch.Insert)
		}
		delta += len(ch.Insert) - (ch.To - ch.From)
	}
	return pos + delta
}

// Apply produces a new snapshot with the transaction's changes applied.
// Changes must not overlap; they are applied as one atomic edit.
func (s *Snapshot) Apply(tx Transaction) (*Snapshot, ChangeSet, error) {
	if len(tx.Changes) == 0 {
		return s, ChangeSet{}, nil
	}
	changes := make([]Change, len(tx.Changes))
	copy(changes, tx.Changes)
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].From < changes[j].From })

	prevEnd := 0
	for i, ch := range changes {
		if ch.From < 0 || ch.To < ch.From || ch.To > len(s.text) {
			return nil, ChangeSet{}, fmt.Errorf("change %d out of range [%d, %d) in document of length %d", i, ch.From, ch.To, len(s.text))
		}
		if i > 0 && ch.From < prevEnd {
			return nil, ChangeSet{}, fmt.Errorf("change %d overlaps preceding change", i)
		}
		prevEnd = ch.To
	}

	var b strings.Builder
	pos := 0
	for _, ch := range changes {
		b.WriteString(s.text[pos:ch.From])
		b.WriteString(ch.Insert)
		pos = ch.To
	}
	b.WriteString(s.text[pos:])

	return NewSnapshot(b.String()), ChangeSet{changes: changes}, nil
}
