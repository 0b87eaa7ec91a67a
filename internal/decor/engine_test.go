package decor

import (
	"testing"
	"time"

	"github.com/notelab/livemark/internal/document"
)

type recordingReporter struct {
	events   []string
	payloads []map[string]any
}

func (r *recordingReporter) Report(event string, payload map[string]any) {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func TestEngineRebuildMergesHides(t *testing.T) {
	tree, snap := build(t, "# Head\n\n*em* text\n")
	e := NewEngine(ModeFull, nil, nil)

	set := e.Rebuild(tree, snap, fullView(snap), caret(0), false)

	var lines, hidden int
	for _, d := range set.Decorations() {
		switch d.Spec.Kind {
		case KindLine:
			lines++
		case KindHide:
			hidden++
		}
	}
	if lines == 0 || hidden == 0 {
		t.Fatalf("merged set has %d line and %d hide decorations, want both > 0", lines, hidden)
	}
	if e.prev.Len() != set.Len() {
		t.Errorf("previous set not retained: prev %d, returned %d", e.prev.Len(), set.Len())
	}
}

func TestEngineSimpleModeSkipsHiding(t *testing.T) {
	tree, snap := build(t, "# Head\n\n*em* text\n")
	e := NewEngine(ModeSimple, nil, nil)

	set := e.Rebuild(tree, snap, fullView(snap), caret(0), false)

	for _, d := range set.Decorations() {
		if d.Spec.Kind == KindHide {
			t.Fatalf("simple mode produced hide decoration %+v", d)
		}
	}
	if !hasClass(lineSpecs(set, 0), "heading-1") {
		t.Errorf("simple mode missed heading: %v", lineSpecs(set, 0))
	}
}

func TestEngineFullModeFallsBackWithoutTree(t *testing.T) {
	snap := document.NewSnapshot("## Two\n- item\n")
	e := NewEngine(ModeFull, nil, nil)

	set := e.Rebuild(nil, snap, fullView(snap), caret(0), false)

	if !hasClass(lineSpecs(set, 0), "heading-2") {
		t.Errorf("fallback missed heading: %v", lineSpecs(set, 0))
	}
	if !hasClass(lineSpecs(set, snap.Line(2).From), ClassBulletItem) {
		t.Errorf("fallback missed list item: %v", lineSpecs(set, snap.Line(2).From))
	}
}

func TestEngineCanary(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time { return now }
	rep := &recordingReporter{}
	e := NewEngine(ModeFull, rep, clock)
	snap := document.NewSnapshot("text\n")
	ranges := fullView(snap)
	sel := caret(0)

	// First empty result arms the canary without reporting.
	e.checkCanary(Set{}, snap, ranges, sel)
	if len(rep.events) != 0 {
		t.Fatalf("canary fired on first empty result: %v", rep.events)
	}

	// Second empty result inside the window reports.
	now = now.Add(500 * time.Millisecond)
	e.checkCanary(Set{}, snap, ranges, sel)
	if len(rep.events) != 1 || rep.events[0] != "decorationEmpty" {
		t.Fatalf("events = %v, want one decorationEmpty", rep.events)
	}

	// Repeats inside the window are rate limited.
	now = now.Add(500 * time.Millisecond)
	e.checkCanary(Set{}, snap, ranges, sel)
	if len(rep.events) != 1 {
		t.Fatalf("canary not rate limited: %v", rep.events)
	}

	// A non-empty result disarms it.
	var b Builder
	b.Line(0, Spec{Class: ClassParagraph})
	ok, _ := b.Finish()
	e.checkCanary(ok, snap, ranges, sel)
	now = now.Add(10 * time.Second)
	e.checkCanary(Set{}, snap, ranges, sel)
	if len(rep.events) != 1 {
		t.Fatalf("canary fired while disarmed: %v", rep.events)
	}
}

func TestEngineCanaryIgnoresEmptyDocument(t *testing.T) {
	rep := &recordingReporter{}
	e := NewEngine(ModeFull, rep, nil)
	snap := document.NewSnapshot("")

	for i := 0; i < 3; i++ {
		e.checkCanary(Set{}, snap, []Viewport{{0, 0}}, caret(0))
	}
	if len(rep.events) != 0 {
		t.Fatalf("canary fired for empty document: %v", rep.events)
	}
}

func TestEngineDiagnosticsPayload(t *testing.T) {
	rep := &recordingReporter{}
	e := NewEngine(ModeFull, rep, nil)
	long := ""
	for i := 0; i < 40; i++ {
		long += "0123456789"
	}
	snap := document.NewSnapshot("one\ntwo\nthree\nfour\nfive\nsix\nseven\n" + long + "\n")

	e.report("decorationError", "boom", snap, fullView(snap), caret(2))

	payload := rep.payloads[0]
	if payload["error"] != "boom" {
		t.Errorf("error = %v", payload["error"])
	}
	if payload["docLength"] != snap.Len() {
		t.Errorf("docLength = %v, want %d", payload["docLength"], snap.Len())
	}
	lines, ok := payload["lines"].([]string)
	if !ok || len(lines) != diagMaxLines {
		t.Fatalf("lines = %v, want %d samples", payload["lines"], diagMaxLines)
	}
	for _, l := range lines {
		if len(l) > diagMaxLineLen {
			t.Errorf("sample line length %d exceeds %d", len(l), diagMaxLineLen)
		}
	}
}
