package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/syntax"
)

func decorate(t *testing.T, src string) (*document.Snapshot, decor.Set) {
	t.Helper()
	snap := document.NewSnapshot(src)
	tree := syntax.Parse(src)
	engine := decor.NewEngine(decor.ModeFull, nil, nil)
	set := engine.Rebuild(tree, snap, []decor.Viewport{{From: 0, To: snap.Len()}}, document.Selection{}, false)
	return snap, set
}

func renderPlain(t *testing.T, src string, width int) []string {
	t.Helper()
	snap, set := decorate(t, src)
	r := NewRenderer(DefaultTheme(), width)
	lines := r.Render(snap, set, 1, snap.LineCount())
	for i, l := range lines {
		lines[i] = ansi.Strip(l)
	}
	return lines
}

func TestRenderHidesInlineMarks(t *testing.T) {
	lines := renderPlain(t, "**bold** and *em*\n", 0)
	if lines[0] != "bold and em" {
		t.Errorf("line = %q, want marks dropped", lines[0])
	}
}

func TestRenderHidesHeadingMarker(t *testing.T) {
	lines := renderPlain(t, "## Title\n", 0)
	// The "##" and its following space stay in the buffer; only the
	// mark span is dropped from view.
	if lines[0] != " Title" {
		t.Errorf("line = %q, want heading marker hidden", lines[0])
	}
}

func TestRenderBulletGlyph(t *testing.T) {
	lines := renderPlain(t, "- item\n", 0)
	if lines[0] != "• item" {
		t.Errorf("line = %q, want bullet glyph", lines[0])
	}
}

func TestRenderKeepsOrderedMarker(t *testing.T) {
	lines := renderPlain(t, "1. item\n", 0)
	if lines[0] != "1. item" {
		t.Errorf("line = %q, want numeral kept", lines[0])
	}
}

func TestRenderImageCaption(t *testing.T) {
	lines := renderPlain(t, "![diagram](d.png)\n", 0)
	if !strings.Contains(lines[0], "⧉ diagram") {
		t.Errorf("line = %q, want image caption", lines[0])
	}
}

func TestRenderLinkHidesURL(t *testing.T) {
	lines := renderPlain(t, "[docs](https://example.com)\n", 0)
	if lines[0] != "docs" {
		t.Errorf("line = %q, want only the label", lines[0])
	}
}

func TestRenderFenceBodyVerbatim(t *testing.T) {
	lines := renderPlain(t, "```\n# not hidden\n```\n", 0)
	if lines[1] != "# not hidden" {
		t.Errorf("fence body = %q, want verbatim text", lines[1])
	}
}

func TestRenderWidth(t *testing.T) {
	snap, set := decorate(t, strings.Repeat("wide text ", 20)+"\n")
	r := NewRenderer(DefaultTheme(), 12)
	lines := r.Render(snap, set, 1, 1)
	if w := ansi.StringWidth(lines[0]); w > 12 {
		t.Errorf("rendered width = %d, want <= 12", w)
	}
}

func TestHighlighter(t *testing.T) {
	h := NewHighlighter("go")
	if h == nil {
		t.Fatal("no highlighter for go")
	}
	out := h.HighlightLine("func main() {}")
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("no escape sequences in %q", out)
	}
	if ansi.Strip(out) != "func main() {}" {
		t.Errorf("content changed: %q", ansi.Strip(out))
	}

	if NewHighlighter("no-such-language-ever") != nil {
		t.Error("unknown language produced a highlighter")
	}
	var nilH *Highlighter
	if got := nilH.HighlightLine("x"); got != "x" {
		t.Errorf("nil highlighter = %q, want passthrough", got)
	}
}

func TestThemeFromConfigOverrides(t *testing.T) {
	theme := ThemeFromConfig(ThemeConfig{Heading: "#ff0000"})
	if theme.Heading != "#ff0000" {
		t.Errorf("Heading = %v, want override", theme.Heading)
	}
	if theme.Quote != DefaultTheme().Quote {
		t.Errorf("Quote = %v, want default preserved", theme.Quote)
	}
}

func TestVisibleColumn(t *testing.T) {
	snap, set := decorate(t, "**bold** and *em*\n")
	r := NewRenderer(DefaultTheme(), 0)

	cases := []struct {
		name   string
		offset int
		want   int
	}{
		{"line start", 0, 0},
		{"after opening marks", 2, 0},
		{"inside bold text", 3, 1},
		{"before closing marks", 6, 4},
		{"after closing marks", 8, 4},
		{"mid plain text", 9, 5},
		{"line end", 17, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.VisibleColumn(snap, set, 1, tc.offset)
			if got != tc.want {
				t.Errorf("VisibleColumn(%d) = %d, want %d", tc.offset, got, tc.want)
			}
		})
	}
}

func TestVisibleColumnBulletWidget(t *testing.T) {
	snap, set := decorate(t, "- item\n")
	r := NewRenderer(DefaultTheme(), 0)

	if got := r.VisibleColumn(snap, set, 1, 0); got != 0 {
		t.Errorf("VisibleColumn(0) = %d, want 0", got)
	}
	// The marker char is replaced by a one-cell glyph.
	if got := r.VisibleColumn(snap, set, 1, 1); got != 1 {
		t.Errorf("VisibleColumn(1) = %d, want 1", got)
	}
	if got := r.VisibleColumn(snap, set, 1, 2); got != 2 {
		t.Errorf("VisibleColumn(2) = %d, want 2", got)
	}
}

func TestReadOnlyTint(t *testing.T) {
	theme := DefaultTheme()
	r := NewRenderer(theme, 0)

	if bg := r.text.GetBackground(); bg == theme.ReadOnlyBg {
		t.Fatal("tint applied before SetReadOnly")
	}

	r.SetReadOnly(true)
	for name, st := range map[string]lipgloss.Style{
		"text":    r.text,
		"heading": r.heading,
		"quote":   r.quote,
		"marker":  r.marker,
	} {
		if st.GetBackground() != theme.ReadOnlyBg {
			t.Errorf("%s style background = %v, want read-only tint", name, st.GetBackground())
		}
	}
	// Styles with a background of their own keep it.
	if r.stripe.GetBackground() != theme.RowStripe {
		t.Errorf("stripe background = %v, want row stripe", r.stripe.GetBackground())
	}
	if r.codeBg.GetBackground() != theme.CodeBg {
		t.Errorf("code background = %v, want code bg", r.codeBg.GetBackground())
	}

	r.SetReadOnly(false)
	if r.text.GetBackground() == theme.ReadOnlyBg {
		t.Error("tint should clear when read-only ends")
	}
}
