package syntax

// Reparse re-derives the tree after an edit that replaced old source
// [from, oldTo) with new text ending at newTo in src. When the edit is
// confined to a single top-level block whose reinterpretation cannot leak
// into neighboring blocks, only that block is reparsed and the rest of the
// old tree is reused shifted; otherwise the whole document is parsed.
// The result is always equivalent to Parse(src).
func Reparse(old *Tree, src string, from, oldTo, newTo int) *Tree {
	if old == nil {
		return Parse(src)
	}
	delta := newTo - oldTo

	var target *Node
	var index int
	for i, child := range old.Root.children {
		if child.From <= from && oldTo <= child.To {
			target = child
			index = i
			break
		}
	}
	if target == nil || !blockReparseSafe(target.Name) {
		return Parse(src)
	}

	sliceFrom := target.From
	sliceTo := target.To + delta
	if sliceTo > len(src) || sliceFrom > sliceTo {
		return Parse(src)
	}

	sub := Parse(src[sliceFrom:sliceTo])
	if len(sub.Root.children) != 1 {
		return Parse(src)
	}
	block := sub.Root.children[0]
	if block.Name != target.Name || block.From != 0 || block.To != sliceTo-sliceFrom {
		return Parse(src)
	}
	if block.Name == NameParagraph && !(blankAfter(src, sliceTo) && blankBefore(src, sliceFrom)) {
		return Parse(src)
	}
	if block.Name == NameFencedCode && !fenceTerminated(src[sliceFrom:sliceTo]) {
		return Parse(src)
	}

	root := &Node{Name: NameDocument, From: 0, To: len(src)}
	for _, child := range old.Root.children[:index] {
		root.append(shiftCopy(child, 0))
	}
	root.append(shiftCopy(block, sliceFrom))
	for _, child := range old.Root.children[index+1:] {
		root.append(shiftCopy(child, delta))
	}
	return &Tree{Root: root, src: src}
}

// fenceTerminated reports whether blockSrc ends with a closing fence
// matching its opener. An unterminated fence swallows the lines below it,
// so its block-local reparse cannot be reused.
func fenceTerminated(blockSrc string) bool {
	lines := splitLines(blockSrc)
	if len(lines) < 2 {
		return false
	}
	marker, ok := fenceOpen(lines[0].text)
	if !ok {
		return false
	}
	return fenceClose(lines[len(lines)-1].text, marker)
}

// blockReparseSafe lists block kinds whose interior edits cannot change the
// interpretation of surrounding lines.
func blockReparseSafe(name string) bool {
	switch name {
	case NameFencedCode, NameParagraph, NameCodeBlock:
		return true
	}
	return false
}

// blankAfter reports whether the line following offset end is blank or
// absent. An edited paragraph followed by content could merge with it
// (setext underline, table delimiter), which the block-local reparse cannot
// see.
func blankAfter(src string, end int) bool {
	if end >= len(src) {
		return true
	}
	if src[end] != '\n' {
		return false
	}
	i := end + 1
	for i < len(src) && src[i] != '\n' {
		if src[i] != ' ' && src[i] != '\t' {
			return false
		}
		i++
	}
	return true
}

// blankBefore reports whether the line preceding offset start is blank or
// absent; an indented edit could otherwise attach the paragraph to a list
// above it.
func blankBefore(src string, start int) bool {
	if start == 0 {
		return true
	}
	if src[start-1] != '\n' {
		return false
	}
	i := start - 1
	for i > 0 && src[i-1] != '\n' {
		i--
		if src[i] != ' ' && src[i] != '\t' {
			return false
		}
	}
	return true
}

func shiftCopy(n *Node, delta int) *Node {
	out := &Node{Name: n.Name, From: n.From + delta, To: n.To + delta}
	for _, c := range n.children {
		out.append(shiftCopy(c, delta))
	}
	return out
}
