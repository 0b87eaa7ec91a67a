package syntax

import (
	"regexp"
	"strings"
)

// ln is one logical line handed to the block parser: the absolute offset of
// its first character plus its text, with container prefixes (blockquote
// markers, list indentation) already stripped by the caller.
type ln struct {
	from int
	text string
}

func (l ln) end() int    { return l.from + len(l.text) }
func (l ln) blank() bool { return strings.TrimSpace(l.text) == "" }

// Parse builds a syntax tree over src.
func Parse(src string) *Tree {
	root := &Node{Name: NameDocument, From: 0, To: len(src)}
	lines := splitLines(src)

	rest := lines
	if fm := frontMatterSpan(lines); fm > 0 {
		root.append(&Node{Name: NameFrontMatter, From: 0, To: lines[fm-1].end()})
		rest = lines[fm:]
	}
	parseBlocks(root, rest)
	return &Tree{Root: root, src: src}
}

func splitLines(src string) []ln {
	lines := []ln{}
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, ln{from: start, text: src[start:i]})
			start = i + 1
		}
	}
	lines = append(lines, ln{from: start, text: src[start:]})
	return lines
}

// frontMatterSpan returns the number of leading lines taken by a YAML front
// matter block (including both --- delimiters), or 0.
func frontMatterSpan(lines []ln) int {
	if len(lines) < 2 || lines[0].from != 0 || strings.TrimRight(lines[0].text, " \t") != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		t := strings.TrimRight(lines[i].text, " \t")
		if t == "---" || t == "..." {
			return i + 1
		}
	}
	return 0
}

var (
	reATX      = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]|$)`)
	reATXClose = regexp.MustCompile(`(?:^|[ \t])(#+)[ \t]*$`)
	reHR       = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	reSetext   = regexp.MustCompile(`^ {0,3}(=+|-+)[ \t]*$`)
	reQuote    = regexp.MustCompile(`^ {0,3}> ?`)
	reBullet   = regexp.MustCompile(`^( *)([-*+])([ \t]+|$)`)
	reOrdered  = regexp.MustCompile(`^( *)(\d{1,9}[.)])([ \t]+|$)`)
	reTask     = regexp.MustCompile(`^\[([ xX])\][ \t]`)
)

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// fenceMarker describes an open code fence.
type fenceMarker struct {
	ch  byte // '`' or '~'
	run int
}

func fenceOpen(text string) (fenceMarker, bool) {
	ind := leadingSpaces(text)
	if ind > 3 || ind == len(text) {
		return fenceMarker{}, false
	}
	ch := text[ind]
	if ch != '`' && ch != '~' {
		return fenceMarker{}, false
	}
	run := 0
	for ind+run < len(text) && text[ind+run] == ch {
		run++
	}
	if run < 3 {
		return fenceMarker{}, false
	}
	info := text[ind+run:]
	if ch == '`' && strings.ContainsRune(info, '`') {
		return fenceMarker{}, false
	}
	return fenceMarker{ch: ch, run: run}, true
}

func fenceClose(text string, m fenceMarker) bool {
	ind := leadingSpaces(text)
	if ind > 3 {
		return false
	}
	run := 0
	for ind+run < len(text) && text[ind+run] == m.ch {
		run++
	}
	return run >= m.run && strings.TrimSpace(text[ind+run:]) == ""
}

// listMarker describes a bullet or ordered list marker at the start of a
// line.
type listMarker struct {
	indent  int // leading spaces before the marker
	width   int // marker characters ("-" or "12.")
	pad     int // spaces between marker and content
	ordered bool
}

func (m listMarker) contentCol() int { return m.indent + m.width + m.pad }

func matchListMarker(text string) (listMarker, bool) {
	if m := reBullet.FindStringSubmatch(text); m != nil && len(m[1]) <= 3 {
		pad := len(m[3])
		if pad == 0 {
			pad = 1 // empty item: content column is virtual
		}
		return listMarker{indent: len(m[1]), width: 1, pad: pad}, true
	}
	if m := reOrdered.FindStringSubmatch(text); m != nil && len(m[1]) <= 3 {
		pad := len(m[3])
		if pad == 0 {
			pad = 1
		}
		return listMarker{indent: len(m[1]), width: len(m[2]), pad: pad, ordered: true}, true
	}
	return listMarker{}, false
}

// isTableDelimiter reports whether text is a GFM table delimiter row
// (| --- | :---: | ...).
func isTableDelimiter(text string) bool {
	t := strings.TrimSpace(text)
	if !strings.Contains(t, "|") || !strings.Contains(t, "-") {
		return false
	}
	t = strings.TrimPrefix(t, "|")
	t = strings.TrimSuffix(t, "|")
	cells := strings.Split(t, "|")
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		c := strings.TrimSpace(cell)
		c = strings.TrimPrefix(c, ":")
		c = strings.TrimSuffix(c, ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}

func isPipeRow(text string) bool {
	t := strings.TrimSpace(text)
	return t != "" && strings.Contains(t, "|") && !reSetext.MatchString(text)
}

// interruptsParagraph reports whether a line would terminate an open
// paragraph (blank lines and setext underlines are handled separately).
func interruptsParagraph(text string) bool {
	if reATX.MatchString(text) || reHR.MatchString(text) || reQuote.MatchString(text) {
		return true
	}
	if _, ok := fenceOpen(text); ok {
		return true
	}
	if _, ok := matchListMarker(text); ok {
		return true
	}
	return false
}

func parseBlocks(parent *Node, lines []ln) {
	i := 0
	for i < len(lines) {
		l := lines[i]
		if l.blank() {
			i++
			continue
		}
		text := l.text
		indent := leadingSpaces(text)

		if marker, ok := fenceOpen(text); ok {
			i = parseFence(parent, lines, i, marker)
			continue
		}

		if indent >= 4 {
			i = parseIndentedCode(parent, lines, i)
			continue
		}

		if m := reATX.FindStringSubmatch(text); m != nil {
			parseATXHeading(parent, l, len(m[1]))
			i++
			continue
		}

		if reQuote.MatchString(text) {
			i = parseBlockquote(parent, lines, i)
			continue
		}

		if reHR.MatchString(text) {
			parent.append(&Node{Name: NameHorizontalRule, From: l.from, To: l.end()})
			i++
			continue
		}

		if m, ok := matchListMarker(text); ok {
			i = parseList(parent, lines, i, m.ordered)
			continue
		}

		if isPipeRow(text) && i+1 < len(lines) && isTableDelimiter(lines[i+1].text) {
			i = parseTable(parent, lines, i)
			continue
		}

		i = parseParagraph(parent, lines, i)
	}
}

func parseFence(parent *Node, lines []ln, i int, marker fenceMarker) int {
	j := i + 1
	for j < len(lines) && !fenceClose(lines[j].text, marker) {
		j++
	}
	to := lines[len(lines)-1].end()
	next := len(lines)
	if j < len(lines) {
		to = lines[j].end()
		next = j + 1
	}
	parent.append(&Node{Name: NameFencedCode, From: lines[i].from, To: to})
	return next
}

func parseIndentedCode(parent *Node, lines []ln, i int) int {
	last := i
	j := i
	for j < len(lines) {
		if lines[j].blank() {
			j++
			continue
		}
		if leadingSpaces(lines[j].text) < 4 {
			break
		}
		last = j
		j++
	}
	parent.append(&Node{Name: NameCodeBlock, From: lines[i].from, To: lines[last].end()})
	return last + 1
}

func parseATXHeading(parent *Node, l ln, level int) {
	node := &Node{Name: ATXHeading(level), From: l.from, To: l.end()}
	parent.append(node)

	indent := leadingSpaces(l.text)
	markFrom := l.from + indent
	node.append(&Node{Name: NameHeaderMark, From: markFrom, To: markFrom + level})

	contentStart := indent + level
	contentEnd := len(l.text)
	if m := reATXClose.FindStringSubmatchIndex(l.text[contentStart:]); m != nil {
		node.append(&Node{
			Name: NameHeaderMark,
			From: l.from + contentStart + m[2],
			To:   l.from + contentStart + m[3],
		})
		contentEnd = contentStart + m[0]
	}
	parseInline(node, l.text[contentStart:contentEnd], l.from+contentStart)
	sortChildren(node)
}

func parseBlockquote(parent *Node, lines []ln, i int) int {
	var inner []ln
	j := i
	for j < len(lines) {
		loc := reQuote.FindStringIndex(lines[j].text)
		if loc == nil {
			break
		}
		inner = append(inner, ln{from: lines[j].from + loc[1], text: lines[j].text[loc[1]:]})
		j++
	}
	node := &Node{Name: NameBlockquote, From: lines[i].from, To: lines[j-1].end()}
	parent.append(node)
	parseBlocks(node, inner)
	return j
}

func parseList(parent *Node, lines []ln, i int, ordered bool) int {
	name := NameBulletList
	if ordered {
		name = NameOrderedList
	}
	list := &Node{Name: name, From: lines[i].from}
	parent.append(list)

	for i < len(lines) {
		l := lines[i]
		if l.blank() {
			// A blank line only continues the list when the next content
			// line still belongs to it.
			if i+1 < len(lines) && listContinues(lines[i+1].text, ordered) {
				i++
				continue
			}
			break
		}
		m, ok := matchListMarker(l.text)
		if !ok || m.ordered != ordered {
			break
		}

		item := &Node{Name: NameListItem, From: l.from + m.indent}
		list.append(item)
		markFrom := l.from + m.indent
		item.append(&Node{Name: NameListMark, From: markFrom, To: markFrom + m.width})

		col := m.contentCol()
		first := ln{from: l.from + col, text: sliceCol(l.text, col)}

		if tm := reTask.FindStringSubmatch(first.text); tm != nil {
			item.append(&Node{Name: NameTaskMarker, From: first.from, To: first.from + 3})
			first = ln{from: first.from + 4, text: first.text[4:]}
		}

		inner := []ln{first}
		j := i + 1
		for j < len(lines) {
			nl := lines[j]
			if nl.blank() {
				if j+1 < len(lines) && !lines[j+1].blank() && leadingSpaces(lines[j+1].text) >= col {
					inner = append(inner, ln{from: nl.from, text: ""})
					j++
					continue
				}
				break
			}
			if leadingSpaces(nl.text) >= col {
				inner = append(inner, ln{from: nl.from + col, text: sliceCol(nl.text, col)})
				j++
				continue
			}
			break
		}

		parseBlocks(item, inner)
		item.To = inner[lastNonBlank(inner)].end()
		if item.To < markFrom+m.width {
			item.To = markFrom + m.width
		}
		i = j
	}

	list.To = list.children[len(list.children)-1].To
	return i
}

func listContinues(text string, ordered bool) bool {
	if m, ok := matchListMarker(text); ok {
		return m.ordered == ordered
	}
	return leadingSpaces(text) >= 2
}

// sliceCol returns text past byte column col, tolerating short lines.
func sliceCol(text string, col int) string {
	if col >= len(text) {
		return ""
	}
	return text[col:]
}

func lastNonBlank(lines []ln) int {
	for i := len(lines) - 1; i > 0; i-- {
		if !lines[i].blank() {
			return i
		}
	}
	return 0
}

func parseTable(parent *Node, lines []ln, i int) int {
	table := &Node{Name: NameTable, From: lines[i].from}
	parent.append(table)

	header := &Node{Name: NameTableHeader, From: lines[i].from, To: lines[i].end()}
	table.append(header)
	parseInline(header, lines[i].text, lines[i].from)
	sortChildren(header)

	delim := lines[i+1]
	table.append(&Node{Name: NameTableDelimiter, From: delim.from, To: delim.end()})

	j := i + 2
	for j < len(lines) && isPipeRow(lines[j].text) && !lines[j].blank() {
		row := &Node{Name: NameTableRow, From: lines[j].from, To: lines[j].end()}
		table.append(row)
		parseInline(row, lines[j].text, lines[j].from)
		sortChildren(row)
		j++
	}
	table.To = table.children[len(table.children)-1].To
	return j
}

func parseParagraph(parent *Node, lines []ln, i int) int {
	j := i
	for j+1 < len(lines) {
		next := lines[j+1]
		if next.blank() {
			break
		}
		if m := reSetext.FindStringSubmatch(next.text); m != nil {
			level := 2
			if m[1][0] == '=' {
				level = 1
			}
			node := &Node{Name: SetextHeading(level), From: lines[i].from, To: next.end()}
			parent.append(node)
			ind := leadingSpaces(next.text)
			node.append(&Node{Name: NameHeaderMark, From: next.from + ind, To: next.from + ind + len(m[1])})
			for k := i; k <= j; k++ {
				parseInline(node, lines[k].text, lines[k].from)
			}
			sortChildren(node)
			return j + 2
		}
		if interruptsParagraph(next.text) {
			break
		}
		j++
	}

	node := &Node{Name: NameParagraph, From: lines[i].from, To: lines[j].end()}
	parent.append(node)
	for k := i; k <= j; k++ {
		parseInline(node, lines[k].text, lines[k].from)
	}
	sortChildren(node)
	return j + 1
}

func sortChildren(n *Node) {
	children := n.children
	for i := 1; i < len(children); i++ {
		for k := i; k > 0 && children[k].From < children[k-1].From; k-- {
			children[k], children[k-1] = children[k-1], children[k]
		}
	}
}
