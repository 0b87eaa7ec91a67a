package decor

import (
	"regexp"
	"strings"

	"github.com/notelab/livemark/internal/document"
)

var (
	reLineATX     = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]|$)`)
	reLineQuote   = regexp.MustCompile(`^((?: {0,3}> ?)+)`)
	reLineBullet  = regexp.MustCompile(`^(\s*)([-+*])[ \t]`)
	reLineOrdered = regexp.MustCompile(`^(\s*)(\d{1,9}[.)])[ \t]`)
	reLineTask    = regexp.MustCompile(`^(\s*(?:[-+*]|\d{1,9}[.)])[ \t]+)\[([ xX])\][ \t]`)
	reLineHR      = regexp.MustCompile(`^ {0,3}((?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	reLineFence   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	reLineTableRw = regexp.MustCompile(`^\s*\|`)
	reLineTableSp = regexp.MustCompile(`^\s*\|?[ \t:|-]+\|[ \t:|-]*$`)
	reLineImage   = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^()\s>]+)>?(?:\s+"([^"]*)")?\s*\)`)
)

// ClassifyLines is the tree-free fallback classifier: a single regex
// pass producing the same Facts shape as Classify, used when no tree is
// available or the simple rendering mode is forced. Fence membership is
// tracked from the top of the document so that a viewport starting
// inside a fence still classifies its lines as fence body.
func ClassifyLines(snap *document.Snapshot, fromLine, toLine int) *Facts {
	f := newFacts()
	if snap.LineCount() == 0 {
		return f
	}
	if fromLine < 1 {
		fromLine = 1
	}
	if toLine > snap.LineCount() {
		toLine = snap.LineCount()
	}

	fences := scanFences(snap)
	for _, fence := range fences {
		if fence.EndLine < fromLine || fence.StartLine > toLine {
			continue
		}
		for l := fence.StartLine; l <= fence.EndLine; l++ {
			f.Fence[l] = fence
		}
	}

	for l := fromLine; l <= toLine; l++ {
		if _, inFence := f.Fence[l]; inFence {
			continue
		}
		classifyLine(f, snap, l)
	}
	return f
}

func classifyLine(f *Facts, snap *document.Snapshot, l int) {
	line := snap.Line(l)
	text := line.Text

	rest := text
	base := line.From
	if m := reLineQuote.FindStringSubmatch(text); m != nil {
		depth := strings.Count(m[1], ">")
		f.QuoteDepth[l] = depth
		rest = text[len(m[1]):]
		base += len(m[1])
	}

	switch {
	case reLineHR.MatchString(rest):
		f.HR[l] = true
		return
	case reLineATX.MatchString(rest):
		m := reLineATX.FindStringSubmatch(rest)
		f.HeadingLevel[l] = len(m[1])
	case reLineTableSp.MatchString(rest) && strings.Contains(rest, "-"):
		f.TableSep[l] = true
	case reLineTableRw.MatchString(rest):
		f.TableRow[l] = true
	case reLineBullet.MatchString(rest), reLineOrdered.MatchString(rest):
		classifyListLine(f, l, rest, base)
	default:
		if strings.TrimSpace(rest) != "" {
			f.Paragraph[l] = true
		}
	}

	if m := reLineImage.FindStringSubmatch(rest); m != nil {
		f.Image[l] = ImageInfo{Src: m[2], Alt: m[1], Title: m[3]}
	}
}

func classifyListLine(f *Facts, l int, rest string, base int) {
	var indent, marker string
	ordered := false
	if m := reLineBullet.FindStringSubmatch(rest); m != nil {
		indent, marker = m[1], m[2]
	} else if m := reLineOrdered.FindStringSubmatch(rest); m != nil {
		indent, marker = m[1], m[2]
		ordered = true
	}
	// One nesting level per two columns of indent, floor one.
	depth := 1 + len(indent)/2
	f.List[l] = ListInfo{Ordered: ordered, Depth: depth}
	f.ListMark[l] = MarkSpan{
		From: base + len(indent),
		To:   base + len(indent) + len(marker),
		Text: marker,
	}
	if m := reLineTask.FindStringSubmatch(rest); m != nil {
		from := base + len(m[1])
		f.Task[l] = TaskInfo{From: from, To: from + 3, Checked: m[2] != " "}
	}
}

// scanFences tracks backtick/tilde fence state across the whole
// document, plus a leading YAML front-matter block.
func scanFences(snap *document.Snapshot) []FenceInfo {
	var out []FenceInfo
	openLine := 0
	var openChar byte
	openLen := 0
	start := 1

	if snap.LineCount() > 0 && snap.Line(1).Text == "---" {
		for l := 2; l <= snap.LineCount(); l++ {
			t := snap.Line(l).Text
			if t == "---" || t == "..." {
				out = append(out, FenceInfo{
					From:      snap.Line(1).From,
					To:        snap.Line(l).To,
					StartLine: 1,
					EndLine:   l,
					Info:      "yaml",
				})
				start = l + 1
				break
			}
		}
	}

	for l := start; l <= snap.LineCount(); l++ {
		line := snap.Line(l)
		m := reLineFence.FindStringSubmatch(line.Text)
		if openLine == 0 {
			if m != nil {
				openLine = l
				openChar = m[1][0]
				openLen = len(m[1])
			}
			continue
		}
		if m != nil && m[1][0] == openChar && len(m[1]) >= openLen && strings.TrimSpace(strings.TrimLeft(strings.TrimLeft(line.Text, " "), string(openChar))) == "" {
			out = append(out, fenceBetween(snap, openLine, l))
			openLine = 0
		}
	}
	if openLine != 0 {
		out = append(out, fenceBetween(snap, openLine, snap.LineCount()))
	}
	return out
}

func fenceBetween(snap *document.Snapshot, startLine, endLine int) FenceInfo {
	open := snap.Line(startLine)
	info := strings.TrimSpace(strings.TrimLeft(strings.TrimLeft(open.Text, " "), "`~"))
	return FenceInfo{
		From:      open.From,
		To:        snap.Line(endLine).To,
		StartLine: startLine,
		EndLine:   endLine,
		Info:      info,
	}
}
