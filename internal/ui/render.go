package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/document"
)

const maxCaptionWidth = 24

// Renderer turns a snapshot plus its decoration set into styled
// terminal lines.
type Renderer struct {
	theme    *Theme
	width    int
	readOnly bool

	highlighters map[string]*Highlighter

	text       lipgloss.Style
	heading    lipgloss.Style
	headingTop lipgloss.Style
	quote      lipgloss.Style
	marker     lipgloss.Style
	taskDone   lipgloss.Style
	hr         lipgloss.Style
	stripe     lipgloss.Style
	header     lipgloss.Style
	codeBg     lipgloss.Style
	muted      lipgloss.Style
	link       lipgloss.Style
}

// NewRenderer builds a renderer for the given width. Width <= 0 leaves
// lines untruncated.
func NewRenderer(theme *Theme, width int) *Renderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	r := &Renderer{
		theme:        theme,
		width:        width,
		highlighters: map[string]*Highlighter{},
	}
	r.rebuildStyles()
	return r
}

// rebuildStyles derives the line styles from the theme. In read-only
// mode every style without its own background carries the tint.
func (r *Renderer) rebuildStyles() {
	theme := r.theme
	base := lipgloss.NewStyle()
	if r.readOnly && theme.ReadOnlyBg != "" {
		base = base.Background(theme.ReadOnlyBg)
	}
	r.text = base.Foreground(theme.Text)
	r.heading = base.Foreground(theme.Heading).Bold(true)
	r.headingTop = base.Foreground(theme.Heading).Bold(true).Underline(true)
	r.quote = base.Foreground(theme.Quote).Italic(true)
	r.marker = base.Foreground(theme.Marker).Bold(true)
	r.taskDone = base.Foreground(theme.TaskDone).Strikethrough(true)
	r.hr = base.Foreground(theme.HRRule)
	r.stripe = lipgloss.NewStyle().Background(theme.RowStripe)
	r.header = base.Bold(true)
	r.codeBg = lipgloss.NewStyle().Foreground(theme.CodeText).Background(theme.CodeBg)
	r.muted = base.Foreground(theme.Muted)
	r.link = base.Foreground(theme.Link).Underline(true)
}

// SetWidth changes the truncation width.
func (r *Renderer) SetWidth(width int) { r.width = width }

// SetReadOnly toggles the read-only background tint.
func (r *Renderer) SetReadOnly(on bool) {
	if r.readOnly == on {
		return
	}
	r.readOnly = on
	r.rebuildStyles()
}

// Render renders lines fromLine through toLine (1-based, inclusive).
func (r *Renderer) Render(snap *document.Snapshot, set decor.Set, fromLine, toLine int) []string {
	if fromLine < 1 {
		fromLine = 1
	}
	if toLine > snap.LineCount() {
		toLine = snap.LineCount()
	}
	var out []string
	for l := fromLine; l <= toLine; l++ {
		out = append(out, r.renderLine(snap, set, l))
	}
	return out
}

type lineDecorations struct {
	classes []string
	depth   int
	spans   []decor.Decoration
	widgets []decor.Decoration // zero-width trailing widgets
}

func collectLine(set decor.Set, line document.Line) lineDecorations {
	var ld lineDecorations
	for _, d := range set.Decorations() {
		switch {
		case d.Spec.Kind == decor.KindLine && d.From == line.From:
			ld.classes = append(ld.classes, d.Spec.Class)
			if d.Spec.Depth > ld.depth {
				ld.depth = d.Spec.Depth
			}
		case d.From == d.To && d.Spec.Kind == decor.KindWidget && d.From == line.To && d.EndSide == decor.SideAfter:
			ld.widgets = append(ld.widgets, d)
		case d.From < d.To && d.From < line.To+1 && d.To > line.From:
			ld.spans = append(ld.spans, d)
		}
	}
	return ld
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

func headingClass(classes []string) string {
	for _, c := range classes {
		if strings.HasPrefix(c, "heading-") {
			return c
		}
	}
	return ""
}

func (r *Renderer) renderLine(snap *document.Snapshot, set decor.Set, lineNo int) string {
	line := snap.Line(lineNo)
	ld := collectLine(set, line)

	var rendered string
	switch {
	case hasClass(ld.classes, decor.ClassFenceBody):
		rendered = r.codeBg.Render(r.highlighterFor(snap, lineNo).HighlightLine(line.Text))
	case hasClass(ld.classes, decor.ClassFenceStart), hasClass(ld.classes, decor.ClassFenceEnd):
		rendered = r.muted.Render(line.Text)
	case hasClass(ld.classes, decor.ClassHR):
		rendered = r.hr.Render(line.Text)
	default:
		rendered = r.lineStyle(ld).Render(r.composeSpans(line, ld.spans))
	}

	for _, w := range ld.widgets {
		if img, ok := w.Spec.Widget.(decor.ImageWidget); ok {
			rendered += r.muted.Render(" ⧉ " + runewidth.Truncate(imageCaption(img), maxCaptionWidth, "…"))
		}
	}

	if r.width > 0 && ansi.StringWidth(rendered) > r.width {
		rendered = ansi.Truncate(rendered, r.width, "…")
	}
	return rendered
}

func imageCaption(img decor.ImageWidget) string {
	if img.Title != "" {
		return img.Title
	}
	if img.Alt != "" {
		return img.Alt
	}
	return img.Src
}

// composeSpans rebuilds the visible line text: hidden spans drop out,
// widget spans substitute their glyph, mark spans restyle in place.
func (r *Renderer) composeSpans(line document.Line, spans []decor.Decoration) string {
	var sb strings.Builder
	pos := line.From
	for _, d := range spans {
		from, to := clamp(d.From, line.From, line.To), clamp(d.To, line.From, line.To)
		if from > pos {
			sb.WriteString(line.Text[pos-line.From : from-line.From])
		}
		segment := line.Text[from-line.From : to-line.From]
		switch d.Spec.Kind {
		case decor.KindHide:
			// dropped
		case decor.KindWidget:
			if _, ok := d.Spec.Widget.(decor.BulletWidget); ok {
				sb.WriteString(r.marker.Render("•"))
			}
		case decor.KindMark:
			sb.WriteString(r.marker.Render(segment))
		default:
			sb.WriteString(segment)
		}
		if to > pos {
			pos = to
		}
	}
	if pos < line.To {
		sb.WriteString(line.Text[pos-line.From:])
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (r *Renderer) lineStyle(ld lineDecorations) lipgloss.Style {
	switch {
	case headingClass(ld.classes) == "heading-1":
		return r.headingTop
	case headingClass(ld.classes) != "":
		return r.heading
	case hasClass(ld.classes, decor.ClassTaskChecked):
		return r.taskDone
	case hasClass(ld.classes, decor.ClassBlockquote):
		return r.quote
	case hasClass(ld.classes, decor.ClassTableHeader):
		return r.header
	case hasClass(ld.classes, decor.ClassTableRowEven):
		return r.stripe
	case hasClass(ld.classes, decor.ClassTableSep):
		return r.muted
	default:
		return r.text
	}
}

// highlighterFor finds the enclosing fence opener above the line and
// caches a highlighter for its info string.
func (r *Renderer) highlighterFor(snap *document.Snapshot, lineNo int) *Highlighter {
	for l := lineNo - 1; l >= 1; l-- {
		text := strings.TrimLeft(snap.Line(l).Text, " ")
		if strings.HasPrefix(text, "```") || strings.HasPrefix(text, "~~~") {
			lang := strings.TrimSpace(strings.TrimLeft(text, "`~"))
			if h, ok := r.highlighters[lang]; ok {
				return h
			}
			h := NewHighlighter(lang)
			r.highlighters[lang] = h
			return h
		}
	}
	return nil
}

// VisibleColumn maps a byte offset inside a line to its display column in
// the composed output, accounting for dropped hidden spans and widget
// glyphs. Offsets past the line end map to the end-of-line column.
func (r *Renderer) VisibleColumn(snap *document.Snapshot, set decor.Set, lineNo, offset int) int {
	line := snap.Line(lineNo)
	offset = clamp(offset, line.From, line.To)

	ld := collectLine(set, line)
	col := 0
	pos := line.From
	for _, d := range ld.spans {
		from, to := clamp(d.From, line.From, line.To), clamp(d.To, line.From, line.To)
		if from >= offset {
			break
		}
		if from > pos {
			col += runewidth.StringWidth(line.Text[pos-line.From : from-line.From])
		}
		end := to
		if end > offset {
			end = offset
		}
		switch d.Spec.Kind {
		case decor.KindHide:
			// dropped from the composed line
		case decor.KindWidget:
			if _, ok := d.Spec.Widget.(decor.BulletWidget); ok {
				col++
			}
		default:
			col += runewidth.StringWidth(line.Text[from-line.From : end-line.From])
		}
		if to > pos {
			pos = to
		}
	}
	if pos < offset {
		col += runewidth.StringWidth(line.Text[pos-line.From : offset-line.From])
	}
	return col
}
