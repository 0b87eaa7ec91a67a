package decor

import (
	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/syntax"
)

// HideMarks computes the replacing decorations that hide markdown syntax
// markers in the visible ranges. Marks near the selection stay visible
// while the reveal window is active: header marks reveal when their
// whole line overlaps the selection, inline marks when their own span
// does, and link/image URL and title spans when the enclosing link
// construct does.
func HideMarks(tree *syntax.Tree, snap *document.Snapshot, ranges []Viewport, sel document.Selection, revealActive bool) Set {
	var b Builder
	if tree == nil || tree.Root == nil || snap.Len() == 0 {
		set, _ := b.Finish()
		return set
	}
	seen := map[[2]int]bool{}
	hide := func(from, to int) {
		if to <= from || seen[[2]int{from, to}] {
			return
		}
		seen[[2]int{from, to}] = true
		b.Hide(from, to)
	}

	for _, r := range ranges {
		if r.To <= r.From {
			continue
		}
		tree.Root.Walk(r.From, r.To, func(n *syntax.Node) syntax.WalkAction {
			switch n.Name {
			case syntax.NameHeaderMark:
				line := snap.LineAt(n.From)
				if !(revealActive && sel.Overlaps(line.From, line.To)) {
					hide(n.From, n.To)
				}
			case syntax.NameEmphasisMark, syntax.NameLinkMark, syntax.NameCodeMark:
				if !(revealActive && sel.Overlaps(n.From, n.To)) {
					hide(n.From, n.To)
				}
			case syntax.NameURL, syntax.NameLinkTitle:
				parent := n.Parent()
				if parent == nil || (parent.Name != syntax.NameLink && parent.Name != syntax.NameImage) {
					break
				}
				if !(revealActive && sel.Overlaps(parent.From, parent.To)) {
					hide(n.From, n.To)
				}
			}
			return syntax.WalkContinue
		})
	}

	set, err := b.Finish()
	if err != nil {
		// Marker spans never overlap within a well-formed tree; fall
		// back to no hiding rather than surface a broken set.
		return Set{}
	}
	return set
}
