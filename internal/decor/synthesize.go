package decor

import (
	"strings"

	"github.com/notelab/livemark/internal/document"
)

// Viewport is a visible byte range, half-open.
type Viewport struct {
	From int
	To   int
}

// Synthesize turns structural facts into the sorted line/widget
// decoration set for the visible ranges. Lines appearing in more than
// one range are decorated once.
func Synthesize(snap *document.Snapshot, facts *Facts, ranges []Viewport) (Set, error) {
	var b Builder
	if snap.Len() == 0 {
		return b.Finish()
	}
	seen := map[int]bool{}
	for _, r := range ranges {
		if r.To <= r.From {
			continue
		}
		from := clampOffset(r.From, snap.Len())
		to := clampOffset(r.To-1, snap.Len())
		for l := snap.LineAt(from).Number; l <= snap.LineAt(to).Number; l++ {
			if seen[l] {
				continue
			}
			seen[l] = true
			synthesizeLine(&b, snap, facts, l)
		}
	}
	return b.Finish()
}

func clampOffset(off, max int) int {
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}

func synthesizeLine(b *Builder, snap *document.Snapshot, f *Facts, l int) {
	line := snap.Line(l)

	// Fence interiors are visually inert: one fence decoration, nothing
	// else.
	if fence, ok := f.Fence[l]; ok {
		class := ClassFenceBody
		switch l {
		case fence.StartLine:
			class = ClassFenceStart
		case fence.EndLine:
			class = ClassFenceEnd
		}
		b.Line(line.From, Spec{Class: class})
		return
	}

	quoteDepth := f.QuoteDepth[l]
	listInfo, hasList := f.List[l]
	task, hasTask := f.Task[l]
	mark, hasMark := f.ListMark[l]
	isList := hasList || hasTask
	level := f.HeadingLevel[l]
	blank := isBlankLine(line.Text, quoteDepth)

	if quoteDepth > 0 {
		b.Line(line.From, Spec{
			Class: ClassBlockquote,
			Depth: quoteDepth,
			Start: l == 1 || f.QuoteDepth[l-1] == 0,
			End:   f.QuoteDepth[l+1] == 0,
		})
	}

	if isList {
		ordered := listInfo.Ordered
		if !hasList && hasMark {
			ordered = strings.HasSuffix(mark.Text, ".")
		}
		class := ClassBulletItem
		if ordered {
			class = ClassOrderedItem
		}
		b.Line(line.From, Spec{Class: class, Depth: listInfo.Depth})
		if listInfo.Depth > 1 {
			b.Line(line.From, Spec{Class: ClassListNested, Depth: listInfo.Depth})
		}
		if !lineIsList(f, l-1) {
			b.Line(line.From, Spec{Class: ClassListStart})
		}
		if !lineIsList(f, l+1) {
			b.Line(line.From, Spec{Class: ClassListEnd})
		}
	}

	if level > 0 {
		b.Line(line.From, Spec{Class: HeadingClass(level)})
	}

	if f.HR[l] {
		b.Line(line.From, Spec{Class: ClassHR})
	}

	if img, ok := f.Image[l]; ok {
		b.Line(line.From, Spec{Class: ClassImage})
		b.Widget(line.To, line.To, SideAfter, ImageWidget{Src: img.Src, Alt: img.Alt, Title: img.Title})
	}

	switch {
	case f.TableSep[l]:
		b.Line(line.From, Spec{Class: ClassTableSep})
	case f.TableRow[l]:
		if !f.IsTable(l - 1) {
			b.Line(line.From, Spec{Class: ClassTableStart})
		}
		if f.TableSep[l+1] {
			b.Line(line.From, Spec{Class: ClassTableHeader})
		} else {
			b.Line(line.From, Spec{Class: stripeClass(f, l)})
		}
		if !f.IsTable(l + 1) {
			b.Line(line.From, Spec{Class: ClassTableEnd})
		}
	}

	if hasTask {
		class := ClassTaskOpen
		if task.Checked {
			class = ClassTaskChecked
		}
		b.Line(line.From, Spec{Class: class})
		from := task.From
		if hasMark && len(mark.Text) == 1 && mark.To <= task.From {
			from = mark.From
		}
		b.Mark(from, task.To, ClassTaskMarker)
	} else if isList && hasMark && !strings.HasSuffix(mark.Text, ".") && !strings.HasSuffix(mark.Text, ")") {
		b.Widget(mark.From, mark.To, SideAfter, BulletWidget{})
	}

	if !blank && level == 0 && quoteDepth == 0 && !isList && !f.HR[l] && !f.IsTable(l) {
		b.Line(line.From, Spec{Class: ClassParagraph})
	}

	if blank {
		b.Line(line.From, Spec{Class: ClassBlank})
	}
}

func lineIsList(f *Facts, l int) bool {
	if _, ok := f.List[l]; ok {
		return true
	}
	_, ok := f.Task[l]
	return ok
}

// stripeClass walks backward through contiguous table lines counting
// prior body rows. Lines can be decorated out of order across partial
// rebuilds, so parity comes from the walk rather than a running counter.
func stripeClass(f *Facts, l int) string {
	count := 0
	for k := l - 1; k >= 1 && f.IsTable(k); k-- {
		if f.TableRow[k] && !f.TableSep[k+1] {
			count++
		}
	}
	if count%2 == 0 {
		return ClassTableRowOdd
	}
	return ClassTableRowEven
}

func isBlankLine(text string, quoteDepth int) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if quoteDepth > 0 {
		return strings.Trim(trimmed, "> \t") == ""
	}
	return false
}
