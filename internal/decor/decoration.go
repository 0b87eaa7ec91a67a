// Package decor derives the live-preview decorations: line-level structural
// facts from the syntax tree (or a regex fallback), the synthesized
// line/mark decoration set, and the selection-aware syntax-marker hiding
// pass.
package decor

import (
	"fmt"
	"sort"
)

// Kind classifies a decoration.
type Kind int

const (
	// KindLine styles a whole line; From == To == line start.
	KindLine Kind = iota
	// KindHide replaces a span with nothing (syntax marker hiding).
	KindHide
	// KindMark styles a span without replacing it.
	KindMark
	// KindWidget substitutes a span (or insertion point) with a widget.
	KindWidget
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindHide:
		return "hide"
	case KindMark:
		return "mark"
	case KindWidget:
		return "widget"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Side constants order decorations that share an offset: replacement
// widgets sort before line decorations, which sort before plain marks;
// side 1 anchors after the text (trailing widgets).
const (
	SideWidget = -2
	SideLine   = -1
	SideNone   = 0
	SideAfter  = 1
)

// Widget is a value-comparable substitution payload. Equal widget values
// render identically, so rebuilds with unchanged content reuse output.
type Widget interface {
	widgetTag() string
}

// ImageWidget renders an embedded image figure with an optional caption.
type ImageWidget struct {
	Src   string
	Alt   string
	Title string
}

func (ImageWidget) widgetTag() string { return "image" }

// BulletWidget renders an unordered list marker as a bullet glyph.
type BulletWidget struct{}

func (BulletWidget) widgetTag() string { return "bullet" }

// Spec is the value part of a decoration. Specs are comparable; the
// synthesizer caches and reuses equal line specs across lines.
type Spec struct {
	Kind   Kind
	Class  string
	Depth  int
	Start  bool
	End    bool
	Widget Widget
}

// Decoration is a positioned Spec.
type Decoration struct {
	From      int
	To        int
	StartSide int
	EndSide   int
	Spec      Spec
}

// Line decoration classes.
const (
	ClassBlockquote   = "blockquote"
	ClassBulletItem   = "list-bullet"
	ClassOrderedItem  = "list-ordered"
	ClassListNested   = "list-nested"
	ClassListStart    = "list-start"
	ClassListEnd      = "list-end"
	ClassHR           = "hr"
	ClassImage        = "image"
	ClassParagraph    = "paragraph"
	ClassBlank        = "blank"
	ClassFenceStart   = "fence-start"
	ClassFenceBody    = "fence-body"
	ClassFenceEnd     = "fence-end"
	ClassTableStart   = "table-start"
	ClassTableEnd     = "table-end"
	ClassTableSep     = "table-sep"
	ClassTableHeader  = "table-header"
	ClassTableRowOdd  = "table-row-odd"
	ClassTableRowEven = "table-row-even"
	ClassTaskChecked  = "task-checked"
	ClassTaskOpen     = "task-open"
	ClassTaskMarker   = "task-marker"
)

// HeadingClass returns the line class for a heading level (1-6).
func HeadingClass(level int) string { return fmt.Sprintf("heading-%d", level) }

// Builder accumulates decorations and produces a sorted, validated Set.
type Builder struct {
	decos []Decoration
}

// Add appends a raw decoration.
func (b *Builder) Add(d Decoration) { b.decos = append(b.decos, d) }

// Line adds a line decoration anchored at the line start offset.
func (b *Builder) Line(at int, spec Spec) {
	spec.Kind = KindLine
	b.decos = append(b.decos, Decoration{From: at, To: at, StartSide: SideLine, EndSide: SideLine, Spec: spec})
}

// Hide adds a replacing decoration that removes [from, to) from view.
func (b *Builder) Hide(from, to int) {
	b.decos = append(b.decos, Decoration{From: from, To: to, Spec: Spec{Kind: KindHide}})
}

// Mark adds a styled, visible span.
func (b *Builder) Mark(from, to int, class string) {
	b.decos = append(b.decos, Decoration{From: from, To: to, Spec: Spec{Kind: KindMark, Class: class}})
}

// Widget adds a widget substitution over [from, to); from == to inserts.
func (b *Builder) Widget(from, to, side int, w Widget) {
	b.decos = append(b.decos, Decoration{
		From:      from,
		To:        to,
		StartSide: sideFor(from, to, side),
		EndSide:   side,
		Spec:      Spec{Kind: KindWidget, Widget: w},
	})
}

func sideFor(from, to, side int) int {
	if from == to {
		return side
	}
	return SideWidget
}

// Finish sorts the accumulated decorations into renderer order and
// validates the non-overlap invariant for span decorations. The renderer
// rejects out-of-order or overlapping input, so a violation here is a
// correctness bug, not a cosmetic one.
func (b *Builder) Finish() (Set, error) {
	decos := make([]Decoration, len(b.decos))
	copy(decos, b.decos)
	sort.SliceStable(decos, func(i, j int) bool {
		a, z := decos[i], decos[j]
		if a.From != z.From {
			return a.From < z.From
		}
		if a.StartSide != z.StartSide {
			return a.StartSide < z.StartSide
		}
		if a.To != z.To {
			return a.To < z.To
		}
		return a.EndSide < z.EndSide
	})

	lastEnd := -1
	for _, d := range decos {
		if d.Spec.Kind == KindLine || d.From == d.To {
			continue
		}
		if d.From < lastEnd {
			return Set{}, fmt.Errorf("overlapping span decorations at %d (previous span ends at %d)", d.From, lastEnd)
		}
		lastEnd = d.To
	}
	return Set{decos: decos}, nil
}

// Set is an ordered, validated decoration list.
type Set struct {
	decos []Decoration
}

// Decorations returns the ordered decorations.
func (s Set) Decorations() []Decoration { return s.decos }

// Len returns the number of decorations.
func (s Set) Len() int { return len(s.decos) }

// Merge combines two ordered sets into one ordered set. Overlap between
// the sets is permitted (they belong to different priority classes).
func Merge(a, b Set) Set {
	out := Builder{decos: append(append([]Decoration{}, a.decos...), b.decos...)}
	sort.SliceStable(out.decos, func(i, j int) bool {
		x, y := out.decos[i], out.decos[j]
		if x.From != y.From {
			return x.From < y.From
		}
		if x.StartSide != y.StartSide {
			return x.StartSide < y.StartSide
		}
		if x.To != y.To {
			return x.To < y.To
		}
		return x.EndSide < y.EndSide
	})
	return Set{decos: out.decos}
}
