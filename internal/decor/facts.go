package decor

import (
	"strings"

	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/syntax"
)

// ListInfo records list membership for a line that starts a list item.
type ListInfo struct {
	Ordered bool
	Depth   int
}

// MarkSpan is the raw source span of a list marker.
type MarkSpan struct {
	From int
	To   int
	Text string
}

// TaskInfo is a task checkbox bracket span and its state.
type TaskInfo struct {
	From    int
	To      int
	Checked bool
}

// FenceInfo describes the code fence (or front-matter block) a line
// belongs to. StartLine and EndLine are line numbers; an unterminated
// fence ends on the last document line.
type FenceInfo struct {
	From      int
	To        int
	StartLine int
	EndLine   int
	Info      string
}

// ImageInfo is an image destination usable by an image widget.
type ImageInfo struct {
	Src   string
	Alt   string
	Title string
}

// Facts holds per-line structural classifications keyed by line number.
// The synthesizer reads facts only; it never touches the tree.
type Facts struct {
	HeadingLevel map[int]int
	SetextLine   map[int]bool
	QuoteDepth   map[int]int
	List         map[int]ListInfo
	ListMark     map[int]MarkSpan
	Task         map[int]TaskInfo
	Fence        map[int]FenceInfo
	Image        map[int]ImageInfo
	TableRow     map[int]bool
	TableSep     map[int]bool
	Paragraph    map[int]bool
	HR           map[int]bool
}

func newFacts() *Facts {
	return &Facts{
		HeadingLevel: map[int]int{},
		SetextLine:   map[int]bool{},
		QuoteDepth:   map[int]int{},
		List:         map[int]ListInfo{},
		ListMark:     map[int]MarkSpan{},
		Task:         map[int]TaskInfo{},
		Fence:        map[int]FenceInfo{},
		Image:        map[int]ImageInfo{},
		TableRow:     map[int]bool{},
		TableSep:     map[int]bool{},
		Paragraph:    map[int]bool{},
		HR:           map[int]bool{},
	}
}

// IsTable reports whether a line belongs to a table (row or separator).
func (f *Facts) IsTable(line int) bool { return f.TableRow[line] || f.TableSep[line] }

// Classify walks the syntax tree over [from, to) and accumulates
// structural facts for the lines the range touches. Container facts
// (quote depth, fence membership) cover every line of the container, so
// lines revealed later by scrolling classify identically.
func Classify(tree *syntax.Tree, snap *document.Snapshot, from, to int) *Facts {
	f := newFacts()
	if tree == nil || tree.Root == nil {
		return f
	}
	seenFence := map[[2]int]bool{}

	tree.Root.Walk(from, to, func(n *syntax.Node) syntax.WalkAction {
		switch {
		case n.Name == syntax.NameDocument:
			return syntax.WalkContinue

		case syntax.HeadingLevel(n.Name) > 0:
			line := snap.LineAt(n.From).Number
			f.HeadingLevel[line] = syntax.HeadingLevel(n.Name)
			if strings.HasPrefix(n.Name, "SetextHeading") {
				// The underline line carries the heading style too.
				last := snap.LineAt(lastContentOffset(n)).Number
				for l := line; l <= last; l++ {
					f.HeadingLevel[l] = syntax.HeadingLevel(n.Name)
				}
				f.SetextLine[last] = true
			}
			return syntax.WalkContinue

		case n.Name == syntax.NameBlockquote:
			depth := n.CountAncestors(syntax.NameBlockquote)
			first := snap.LineAt(n.From).Number
			last := snap.LineAt(lastContentOffset(n)).Number
			for l := first; l <= last; l++ {
				if depth > f.QuoteDepth[l] {
					f.QuoteDepth[l] = depth
				}
			}
			return syntax.WalkContinue

		case n.Name == syntax.NameListItem:
			line := snap.LineAt(n.From).Number
			ordered := false
			if p := n.Parent(); p != nil && p.Name == syntax.NameOrderedList {
				ordered = true
			}
			depth := n.CountAncestors(syntax.NameListItem)
			f.List[line] = ListInfo{Ordered: ordered, Depth: depth}
			return syntax.WalkContinue

		case n.Name == syntax.NameListMark:
			line := snap.LineAt(n.From).Number
			f.ListMark[line] = MarkSpan{From: n.From, To: n.To, Text: snap.Slice(n.From, n.To)}
			return syntax.WalkContinue

		case n.Name == syntax.NameTaskMarker:
			line := snap.LineAt(n.From).Number
			raw := snap.Slice(n.From, n.To)
			f.Task[line] = TaskInfo{
				From:    n.From,
				To:      n.To,
				Checked: strings.ContainsAny(raw, "xX"),
			}
			// A task marker proves list membership even when the walk
			// range clipped the enclosing item node.
			if _, ok := f.List[line]; !ok {
				if item := n.FindAncestor(syntax.NameListItem); item != nil {
					ordered := false
					if p := item.Parent(); p != nil && p.Name == syntax.NameOrderedList {
						ordered = true
					}
					f.List[line] = ListInfo{Ordered: ordered, Depth: item.CountAncestors(syntax.NameListItem)}
				} else {
					f.List[line] = ListInfo{Depth: 1}
				}
			}
			return syntax.WalkContinue

		case n.Name == syntax.NameFencedCode, n.Name == syntax.NameCodeBlock, n.Name == syntax.NameFrontMatter:
			key := [2]int{n.From, n.To}
			if seenFence[key] {
				return syntax.WalkSkipChildren
			}
			seenFence[key] = true
			first := snap.LineAt(n.From).Number
			last := snap.LineAt(lastContentOffset(n)).Number
			info := FenceInfo{From: n.From, To: n.To, StartLine: first, EndLine: last, Info: fenceInfoString(snap, n)}
			for l := first; l <= last; l++ {
				f.Fence[l] = info
			}
			// Fence bodies are opaque: nothing inside contributes facts.
			return syntax.WalkSkipChildren

		case n.Name == syntax.NameImage:
			line := snap.LineAt(n.From).Number
			img := imageInfo(snap, n)
			if img.Src != "" {
				f.Image[line] = img
			}
			return syntax.WalkSkipChildren

		case n.Name == syntax.NameTableRow, n.Name == syntax.NameTableHeader:
			f.TableRow[snap.LineAt(n.From).Number] = true
			return syntax.WalkContinue

		case n.Name == syntax.NameTableDelimiter:
			f.TableSep[snap.LineAt(n.From).Number] = true
			return syntax.WalkSkipChildren

		case n.Name == syntax.NameHorizontalRule:
			f.HR[snap.LineAt(n.From).Number] = true
			return syntax.WalkSkipChildren

		case n.Name == syntax.NameParagraph:
			first := snap.LineAt(n.From).Number
			last := snap.LineAt(lastContentOffset(n)).Number
			for l := first; l <= last; l++ {
				f.Paragraph[l] = true
			}
			return syntax.WalkContinue
		}
		return syntax.WalkContinue
	})
	return f
}

// lastContentOffset clamps a node end to the offset of its final byte so
// that a node ending exactly at a line boundary does not classify the
// following line.
func lastContentOffset(n *syntax.Node) int {
	if n.To > n.From {
		return n.To - 1
	}
	return n.From
}

func fenceInfoString(snap *document.Snapshot, n *syntax.Node) string {
	if n.Name == syntax.NameFrontMatter {
		return "yaml"
	}
	if n.Name != syntax.NameFencedCode {
		return ""
	}
	open := snap.Line(snap.LineAt(n.From).Number).Text
	trimmed := strings.TrimLeft(open, " ")
	trimmed = strings.TrimLeft(trimmed, "`~")
	return strings.TrimSpace(trimmed)
}

func imageInfo(snap *document.Snapshot, n *syntax.Node) ImageInfo {
	var img ImageInfo
	for _, c := range n.Children() {
		raw := snap.Slice(c.From, c.To)
		switch c.Name {
		case syntax.NameURL:
			img.Src = raw
		case syntax.NameLinkLabel:
			img.Alt = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
		case syntax.NameLinkTitle:
			if len(raw) >= 2 {
				img.Title = raw[1 : len(raw)-1]
			}
		}
	}
	return img
}
