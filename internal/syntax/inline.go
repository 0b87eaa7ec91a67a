package syntax

import "regexp"

// parseInline scans one line of block content for inline constructs and
// appends the resulting nodes to parent. base is the absolute offset of
// text[0]. Inline constructs do not cross line boundaries.
func parseInline(parent *Node, text string, base int) {
	if text == "" {
		return
	}
	s := &inlineScanner{parent: parent, text: text, base: base, consumed: make([]bool, len(text))}
	s.scanCodeSpans()
	s.scanLinks()
	s.scanEmphasis()
}

type inlineScanner struct {
	parent   *Node
	text     string
	base     int
	consumed []bool
}

func (s *inlineScanner) consume(from, to int) {
	for i := from; i < to && i < len(s.consumed); i++ {
		s.consumed[i] = true
	}
}

func (s *inlineScanner) free(i int) bool { return !s.consumed[i] }

// scanCodeSpans finds backtick code spans first; their interiors escape all
// other inline syntax.
func (s *inlineScanner) scanCodeSpans() {
	t := s.text
	i := 0
	for i < len(t) {
		if t[i] != '`' {
			i++
			continue
		}
		open := i
		for i < len(t) && t[i] == '`' {
			i++
		}
		run := i - open

		// Find a closing run of exactly the same length.
		closePos := -1
		for j := i; j < len(t); {
			if t[j] != '`' {
				j++
				continue
			}
			start := j
			for j < len(t) && t[j] == '`' {
				j++
			}
			if j-start == run {
				closePos = start
				break
			}
		}
		if closePos == -1 {
			continue
		}

		node := &Node{Name: NameInlineCode, From: s.base + open, To: s.base + closePos + run}
		node.append(&Node{Name: NameCodeMark, From: s.base + open, To: s.base + open + run})
		node.append(&Node{Name: NameCodeMark, From: s.base + closePos, To: s.base + closePos + run})
		s.parent.append(node)
		s.consume(open, closePos+run)
		i = closePos + run
	}
}

var reAutolink = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.\-]*:[^\s<>]+|[^\s<>@]+@[^\s<>]+\.[^\s<>]+)>`)

func (s *inlineScanner) scanLinks() {
	t := s.text
	for i := 0; i < len(t); {
		if !s.free(i) {
			i++
			continue
		}
		switch t[i] {
		case '<':
			if m := reAutolink.FindStringSubmatchIndex(t[i:]); m != nil {
				node := &Node{Name: NameAutolink, From: s.base + i, To: s.base + i + m[1]}
				node.append(&Node{Name: NameLinkMark, From: s.base + i, To: s.base + i + 1})
				node.append(&Node{Name: NameURL, From: s.base + i + m[2], To: s.base + i + m[3]})
				node.append(&Node{Name: NameLinkMark, From: s.base + i + m[1] - 1, To: s.base + i + m[1]})
				s.parent.append(node)
				s.consume(i, i+m[1])
				i += m[1]
				continue
			}
		case '!':
			if i+1 < len(t) && t[i+1] == '[' && s.free(i+1) {
				if end, ok := s.scanLinkAt(i, true); ok {
					i = end
					continue
				}
			}
		case '[':
			if end, ok := s.scanLinkAt(i, false); ok {
				i = end
				continue
			}
		}
		i++
	}
}

// scanLinkAt parses a [label](dest "title") construct starting at start
// (the '!' for images, the '[' for links). Returns the end offset within
// the line and whether a link was recognized.
func (s *inlineScanner) scanLinkAt(start int, image bool) (int, bool) {
	t := s.text
	open := start
	if image {
		open = start + 1
	}

	// Matching close bracket, nesting-aware.
	depth := 0
	closeBracket := -1
	for j := open; j < len(t); j++ {
		if !s.free(j) {
			continue
		}
		switch t[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				closeBracket = j
			}
		}
		if closeBracket >= 0 {
			break
		}
	}
	if closeBracket == -1 || closeBracket+1 >= len(t) || t[closeBracket+1] != '(' {
		return 0, false
	}

	parenOpen := closeBracket + 1
	j := parenOpen + 1
	for j < len(t) && (t[j] == ' ' || t[j] == '\t') {
		j++
	}

	destFrom := j
	destTo := j
	if j < len(t) && t[j] == '<' {
		destFrom = j + 1
		for j++; j < len(t) && t[j] != '>'; j++ {
		}
		if j >= len(t) {
			return 0, false
		}
		destTo = j
		j++
	} else {
		for j < len(t) && t[j] != ' ' && t[j] != '\t' && t[j] != ')' {
			j++
		}
		destTo = j
	}

	for j < len(t) && (t[j] == ' ' || t[j] == '\t') {
		j++
	}

	titleFrom, titleTo := -1, -1
	if j < len(t) && (t[j] == '"' || t[j] == '\'') {
		quote := t[j]
		titleFrom = j
		for j++; j < len(t) && t[j] != quote; j++ {
		}
		if j >= len(t) {
			return 0, false
		}
		titleTo = j + 1
		j++
		for j < len(t) && (t[j] == ' ' || t[j] == '\t') {
			j++
		}
	}

	if j >= len(t) || t[j] != ')' {
		return 0, false
	}
	parenClose := j

	name := NameLink
	if image {
		name = NameImage
	}
	node := &Node{Name: name, From: s.base + start, To: s.base + parenClose + 1}
	node.append(&Node{Name: NameLinkMark, From: s.base + start, To: s.base + open + 1})
	if image {
		node.append(&Node{Name: NameLinkLabel, From: s.base + open, To: s.base + closeBracket + 1})
	}
	node.append(&Node{Name: NameLinkMark, From: s.base + closeBracket, To: s.base + closeBracket + 1})
	node.append(&Node{Name: NameLinkMark, From: s.base + parenOpen, To: s.base + parenOpen + 1})
	if destTo > destFrom {
		node.append(&Node{Name: NameURL, From: s.base + destFrom, To: s.base + destTo})
	}
	if titleFrom >= 0 {
		node.append(&Node{Name: NameLinkTitle, From: s.base + titleFrom, To: s.base + titleTo})
	}
	node.append(&Node{Name: NameLinkMark, From: s.base + parenClose, To: s.base + parenClose + 1})
	s.parent.append(node)

	// Consume the syntax but leave a link's label text open for the
	// emphasis pass; an image's label is plain alt text.
	s.consume(start, open+1)
	if image {
		s.consume(open, closeBracket+1)
	}
	s.consume(closeBracket, parenClose+1)
	return parenClose + 1, true
}

// delimRun is a run of emphasis delimiter characters.
type delimRun struct {
	from, to int
	ch       byte
	canOpen  bool
	canClose bool
}

func (s *inlineScanner) scanEmphasis() {
	t := s.text
	var runs []delimRun
	for i := 0; i < len(t); {
		ch := t[i]
		if (ch != '*' && ch != '_' && ch != '~') || !s.free(i) {
			i++
			continue
		}
		start := i
		for i < len(t) && t[i] == ch && s.free(i) {
			i++
		}
		run := delimRun{from: start, to: i, ch: ch}
		run.canOpen = i < len(t) && t[i] != ' ' && t[i] != '\t'
		run.canClose = start > 0 && t[start-1] != ' ' && t[start-1] != '\t'
		runs = append(runs, run)
	}

	var stack []delimRun
	for _, run := range runs {
		matched := false
		if run.canClose {
			for k := len(stack) - 1; k >= 0; k-- {
				if stack[k].ch != run.ch {
					continue
				}
				opener := stack[k]
				s.emitEmphasis(&opener, &run)
				if opener.to > opener.from {
					stack[k] = opener
					stack = stack[:k+1]
				} else {
					stack = stack[:k]
				}
				matched = run.to == run.from
				break
			}
		}
		if !matched && run.canOpen && run.to > run.from {
			stack = append(stack, run)
		}
	}
}

// emitEmphasis pairs an opener and closer run, innermost first, consuming
// delimiter characters from both.
func (s *inlineScanner) emitEmphasis(open, closer *delimRun) {
	for open.to > open.from && closer.to > closer.from {
		avail := open.to - open.from
		if c := closer.to - closer.from; c < avail {
			avail = c
		}
		k := avail
		if k > 2 {
			k = 2
		}
		if open.ch == '~' {
			if avail < 2 {
				return
			}
			k = 2
		}

		name := NameEmphasis
		switch {
		case open.ch == '~':
			name = NameStrikethrough
		case k == 2:
			name = NameStrongEmphasis
		}

		node := &Node{Name: name, From: s.base + open.to - k, To: s.base + closer.from + k}
		node.append(&Node{Name: NameEmphasisMark, From: s.base + open.to - k, To: s.base + open.to})
		node.append(&Node{Name: NameEmphasisMark, From: s.base + closer.from, To: s.base + closer.from + k})
		s.parent.append(node)

		s.consume(open.to-k, open.to)
		s.consume(closer.from, closer.from+k)
		open.to -= k
		closer.from += k
	}
}
