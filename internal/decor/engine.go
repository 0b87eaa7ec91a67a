package decor

import (
	"fmt"
	"strings"
	"time"

	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/syntax"
)

// Mode selects the classification strategy.
type Mode int

const (
	// ModeFull classifies from the syntax tree, with the regex pass as
	// a fallback when no tree is available.
	ModeFull Mode = iota
	// ModeSimple always uses the regex line classifier and skips mark
	// hiding.
	ModeSimple
)

// ParseMode maps a config string to a Mode. Anything other than
// "simple" selects ModeFull.
func ParseMode(s string) Mode {
	if strings.EqualFold(s, "simple") {
		return ModeSimple
	}
	return ModeFull
}

// Reporter receives diagnostic events from the decoration pipeline.
type Reporter interface {
	Report(event string, payload map[string]any)
}

// NopReporter discards diagnostics.
type NopReporter struct{}

func (NopReporter) Report(string, map[string]any) {}

const canaryWindow = 2 * time.Second

// Engine runs the full decoration pipeline for a rebuild: classify,
// synthesize, hide marks, merge. A failing rebuild keeps the previous
// decoration set on screen instead of blanking the view.
type Engine struct {
	mode     Mode
	reporter Reporter
	now      func() time.Time

	prev       Set
	lastEmpty  time.Time
	haveEmpty  bool
	lastCanary time.Time
}

// NewEngine builds an engine. A nil reporter discards diagnostics; a nil
// clock uses time.Now.
func NewEngine(mode Mode, reporter Reporter, now func() time.Time) *Engine {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{mode: mode, reporter: reporter, now: now}
}

// Rebuild produces the decoration set for the given document state. The
// returned set is also retained as the fallback for a later failing
// rebuild.
func (e *Engine) Rebuild(tree *syntax.Tree, snap *document.Snapshot, ranges []Viewport, sel document.Selection, revealActive bool) (out Set) {
	defer func() {
		if r := recover(); r != nil {
			e.report("decorationError", fmt.Sprintf("%v", r), snap, ranges, sel)
			out = e.prev
		}
	}()

	facts := e.classify(tree, snap, ranges)
	structural, err := Synthesize(snap, facts, ranges)
	if err != nil {
		e.report("decorationError", err.Error(), snap, ranges, sel)
		return e.prev
	}

	e.checkCanary(structural, snap, ranges, sel)

	if e.mode == ModeSimple {
		e.prev = structural
		return structural
	}
	merged := Merge(structural, HideMarks(tree, snap, ranges, sel, revealActive))
	e.prev = merged
	return merged
}

func (e *Engine) classify(tree *syntax.Tree, snap *document.Snapshot, ranges []Viewport) *Facts {
	if e.mode == ModeSimple || tree == nil {
		from, to := lineBounds(snap, ranges)
		return ClassifyLines(snap, from, to)
	}
	facts := newFacts()
	for _, r := range ranges {
		merge := Classify(tree, snap, r.From, r.To)
		mergeFacts(facts, merge)
	}
	return facts
}

func lineBounds(snap *document.Snapshot, ranges []Viewport) (int, int) {
	from, to := snap.LineCount()+1, 0
	for _, r := range ranges {
		if r.To <= r.From || snap.Len() == 0 {
			continue
		}
		a := snap.LineAt(clampOffset(r.From, snap.Len())).Number
		z := snap.LineAt(clampOffset(r.To-1, snap.Len())).Number
		if a < from {
			from = a
		}
		if z > to {
			to = z
		}
	}
	return from, to
}

func mergeFacts(dst, src *Facts) {
	for l, v := range src.HeadingLevel {
		dst.HeadingLevel[l] = v
	}
	for l, v := range src.SetextLine {
		dst.SetextLine[l] = v
	}
	for l, v := range src.QuoteDepth {
		if v > dst.QuoteDepth[l] {
			dst.QuoteDepth[l] = v
		}
	}
	for l, v := range src.List {
		dst.List[l] = v
	}
	for l, v := range src.ListMark {
		dst.ListMark[l] = v
	}
	for l, v := range src.Task {
		dst.Task[l] = v
	}
	for l, v := range src.Fence {
		dst.Fence[l] = v
	}
	for l, v := range src.Image {
		dst.Image[l] = v
	}
	for l, v := range src.TableRow {
		dst.TableRow[l] = v
	}
	for l, v := range src.TableSep {
		dst.TableSep[l] = v
	}
	for l, v := range src.Paragraph {
		dst.Paragraph[l] = v
	}
	for l, v := range src.HR {
		dst.HR[l] = v
	}
}

// checkCanary detects silent decoration failures: an empty structural
// set for a non-empty document and viewport, twice inside the canary
// window, means something upstream stopped producing facts without
// throwing.
func (e *Engine) checkCanary(structural Set, snap *document.Snapshot, ranges []Viewport, sel document.Selection) {
	if structural.Len() > 0 || snap.Len() == 0 || !hasViewport(ranges) {
		e.haveEmpty = false
		return
	}
	now := e.now()
	if e.haveEmpty && now.Sub(e.lastEmpty) <= canaryWindow {
		if now.Sub(e.lastCanary) > canaryWindow {
			e.report("decorationEmpty", "no decorations produced for non-empty document", snap, ranges, sel)
			e.lastCanary = now
		}
	}
	e.haveEmpty = true
	e.lastEmpty = now
}

func hasViewport(ranges []Viewport) bool {
	for _, r := range ranges {
		if r.To > r.From {
			return true
		}
	}
	return false
}

const (
	diagMaxLines   = 6
	diagMaxLineLen = 160
)

func (e *Engine) report(event, msg string, snap *document.Snapshot, ranges []Viewport, sel document.Selection) {
	payload := map[string]any{
		"error":     msg,
		"docLength": snap.Len(),
		"selection": map[string]any{"from": sel.From(), "to": sel.To()},
		"ranges":    rangePayload(ranges),
		"lines":     sampleLines(snap, ranges),
	}
	e.reporter.Report(event, payload)
}

func rangePayload(ranges []Viewport) []map[string]int {
	out := make([]map[string]int, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, map[string]int{"from": r.From, "to": r.To})
	}
	return out
}

func sampleLines(snap *document.Snapshot, ranges []Viewport) []string {
	var out []string
	if snap.Len() == 0 || !hasViewport(ranges) {
		return out
	}
	from, to := lineBounds(snap, ranges)
	for l := from; l <= to && len(out) < diagMaxLines; l++ {
		text := snap.Line(l).Text
		if len(text) > diagMaxLineLen {
			text = text[:diagMaxLineLen]
		}
		out = append(out, text)
	}
	return out
}
