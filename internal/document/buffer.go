package document

// Selection is the primary selection range. Anchor and Head are equal for a
// caret. From/To are the normalized bounds.
type Selection struct {
	Anchor int
	Head   int
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) Selection { return Selection{Anchor: pos, Head: pos} }

// Range returns a selection spanning [from, to) with the head at to.
func Range(from, to int) Selection { return Selection{Anchor: from, Head: to} }

// From returns the lower bound of the selection.
func (s Selection) From() int {
	if s.Head < s.Anchor {
		return s.Head
	}
	return s.Anchor
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	if s.Head > s.Anchor {
		return s.Head
	}
	return s.Anchor
}

// Empty reports whether the selection is a caret.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Overlaps reports whether the selection touches [from, to]. A caret on
// either boundary counts as overlapping.
func (s Selection) Overlaps(from, to int) bool {
	return s.From() <= to && s.To() >= from
}

func (s Selection) clamp(max int) Selection {
	cl := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	return Selection{Anchor: cl(s.Anchor), Head: cl(s.Head)}
}

// historyEntry is one undo step: the inverse transaction plus the selection
// to restore.
type historyEntry struct {
	changes []Change // in the coordinates of the state the entry restores from
	sel     Selection
}

// Buffer owns the current snapshot, selection and undo history. It is the
// transaction log of the editor: every mutation passes through Dispatch.
type Buffer struct {
	snap *Snapshot
	sel  Selection
	undo []historyEntry
	redo []historyEntry
}

// NewBuffer creates a buffer over the given text with a caret at 0.
func NewBuffer(text string) *Buffer {
	return &Buffer{snap: NewSnapshot(text)}
}

// Snapshot returns the current immutable snapshot.
func (b *Buffer) Snapshot() *Snapshot { return b.snap }

// Selection returns the current selection.
func (b *Buffer) Selection() Selection { return b.sel }

// SetSelection replaces the selection without touching the text.
func (b *Buffer) SetSelection(sel Selection) {
	b.sel = sel.clamp(b.snap.Len())
}

// Dispatch applies a transaction atomically: changes first, then the
// transaction's selection (or the current selection mapped through the
// changes). Each history-recorded transaction is one undo step.
func (b *Buffer) Dispatch(tx Transaction) (ChangeSet, error) {
	prevSel := b.sel
	next, cs, err := b.snap.Apply(tx)
	if err != nil {
		return ChangeSet{}, err
	}

	if !cs.Empty() && !tx.NoHistory {
		b.undo = append(b.undo, historyEntry{changes: invert(b.snap, cs.changes), sel: prevSel})
		b.redo = nil
	}

	b.snap = next
	if tx.Selection != nil {
		b.sel = tx.Selection.clamp(next.Len())
	} else {
		b.sel = Selection{
			Anchor: cs.MapPos(prevSel.Anchor, -1),
			Head:   cs.MapPos(prevSel.Head, -1),
		}.clamp(next.Len())
	}
	return cs, nil
}

// invert computes the changes that undo cs, expressed in post-apply
// coordinates.
func invert(old *Snapshot, changes []Change) []Change {
	out := make([]Change, 0, len(changes))
	delta := 0
	for _, ch := range changes {
		from := ch.From + delta
		out = append(out, Change{
			From:   from,
			To:     from + len(ch.Insert),
			Insert: old.Slice(ch.From, ch.To),
		})
		delta += len(ch.Insert) - (ch.To - ch.From)
	}
	return out
}

// Undo reverts the most recent history entry. Returns false when there is
// nothing to undo.
func (b *Buffer) Undo() bool { return b.restore(&b.undo, &b.redo) }

// Redo re-applies the most recently undone entry.
func (b *Buffer) Redo() bool { return b.restore(&b.redo, &b.undo) }

func (b *Buffer) restore(from, onto *[]historyEntry) bool {
	if len(*from) == 0 {
		return false
	}
	entry := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	next, cs, err := b.snap.Apply(Transaction{Changes: entry.changes})
	if err != nil {
		// History entries are derived from applied transactions, so this
		// only happens if the buffer was corrupted; drop the entry.
		return false
	}
	*onto = append(*onto, historyEntry{changes: invert(b.snap, cs.changes), sel: b.sel})
	b.snap = next
	b.sel = entry.sel.clamp(next.Len())
	return true
}
