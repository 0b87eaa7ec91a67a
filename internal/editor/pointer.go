package editor

import (
	"regexp"
	"strings"

	"github.com/notelab/livemark/internal/document"
)

var reTaskAtStart = regexp.MustCompile(`^(\s*(?:[-+*]|\d{1,9}[.)])[ \t]+)\[([ xX])\]`)

// DefaultCheckboxHitWidth is the extra column margin, beyond the
// checkbox brackets, still counted as a checkbox hit.
const DefaultCheckboxHitWidth = 3

// TapCheckbox maps a pointer-down on a line to a checkbox toggle. The
// hit target is a fixed-width left region, not the whole line; col is
// the column within the line. Returns false when the line carries no
// leading task marker, the click lands right of the hit region, or the
// editor is read-only.
func TapCheckbox(snap *document.Snapshot, readOnly bool, lineNo, col, hitWidth int) (document.Transaction, bool) {
	if readOnly {
		return document.Transaction{}, false
	}
	if hitWidth <= 0 {
		hitWidth = DefaultCheckboxHitWidth
	}
	line := snap.Line(lineNo)
	m := reTaskAtStart.FindStringSubmatch(line.Text)
	if m == nil {
		return document.Transaction{}, false
	}
	if col > len(m[1])+3+hitWidth {
		return document.Transaction{}, false
	}
	stateAt := line.From + len(m[1]) + 1
	next := "x"
	if m[2] != " " {
		next = " "
	}
	return document.Transaction{
		Changes: []document.Change{{From: stateAt, To: stateAt + 1, Insert: next}},
		Event:   userEvent,
	}, true
}

var (
	reInlineLink  = regexp.MustCompile(`\[[^\]]*\]\(\s*<?([^()\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	reAngleLink   = regexp.MustCompile(`<((?:https?://|mailto:)[^>\s]+)>`)
	reBareURL     = regexp.MustCompile(`(?:https?://|www\.)[^\s<>]+`)
	reBareEmail   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	linkResolvers = []struct {
		re    *regexp.Regexp
		group int
		email bool
	}{
		{reInlineLink, 1, false},
		{reAngleLink, 1, false},
		{reBareURL, 0, false},
		{reBareEmail, 0, true},
	}
)

// ResolveLink finds the link target at a column within a line. Patterns
// are tried in declared priority order — an inline markdown link
// containing the column wins over a bare URL elsewhere in the line —
// and only a match whose span contains the column counts.
func ResolveLink(lineText string, col int) (string, bool) {
	for _, resolver := range linkResolvers {
		for _, m := range resolver.re.FindAllStringSubmatchIndex(lineText, -1) {
			if col < m[0] || col > m[1] {
				continue
			}
			href := lineText[m[2*resolver.group]:m[2*resolver.group+1]]
			if resolver.email {
				href = "mailto:" + href
			}
			if strings.HasPrefix(href, "www.") {
				href = "https://" + href
			}
			return href, true
		}
	}
	return "", false
}
