package syntax

import (
	"strings"
	"testing"
)

// collect returns every node with the given name, in document order.
func collect(t *Tree, name string) []*Node {
	var out []*Node
	t.Root.Walk(0, len(t.Source()), func(n *Node) WalkAction {
		if n.Name == name {
			out = append(out, n)
		}
		return WalkContinue
	})
	return out
}

func spanText(t *Tree, n *Node) string {
	return t.Source()[n.From:n.To]
}

func TestATXHeading(t *testing.T) {
	tree := Parse("## Title\n\nbody\n")

	hs := collect(tree, "ATXHeading2")
	if len(hs) != 1 {
		t.Fatalf("got %d ATXHeading2 nodes, want 1", len(hs))
	}
	if got := spanText(tree, hs[0]); got != "## Title" {
		t.Errorf("heading span = %q", got)
	}
	marks := collect(tree, NameHeaderMark)
	if len(marks) != 1 {
		t.Fatalf("got %d HeaderMark nodes, want 1", len(marks))
	}
	if marks[0].From != 0 || marks[0].To != 2 {
		t.Errorf("HeaderMark span = [%d, %d), want [0, 2)", marks[0].From, marks[0].To)
	}
	if ps := collect(tree, NameParagraph); len(ps) != 1 || spanText(tree, ps[0]) != "body" {
		t.Errorf("paragraph not recognized after heading")
	}
}

func TestATXHeadingClosingSequence(t *testing.T) {
	tree := Parse("# Title ##\n")
	marks := collect(tree, NameHeaderMark)
	if len(marks) != 2 {
		t.Fatalf("got %d HeaderMark nodes, want 2 (opening and closing)", len(marks))
	}
	if got := spanText(tree, marks[1]); got != "##" {
		t.Errorf("closing mark = %q", got)
	}
}

func TestSetextHeading(t *testing.T) {
	tree := Parse("Title\n=====\n\nSub\n---\n")
	if hs := collect(tree, "SetextHeading1"); len(hs) != 1 {
		t.Errorf("got %d SetextHeading1, want 1", len(hs))
	}
	hs := collect(tree, "SetextHeading2")
	if len(hs) != 1 {
		t.Fatalf("got %d SetextHeading2, want 1", len(hs))
	}
	if got := spanText(tree, hs[0]); got != "Sub\n---" {
		t.Errorf("setext span = %q", got)
	}
}

func TestBlockquoteNesting(t *testing.T) {
	tree := Parse("> outer\n> > inner\n")
	quotes := collect(tree, NameBlockquote)
	if len(quotes) != 2 {
		t.Fatalf("got %d Blockquote nodes, want 2", len(quotes))
	}
	if depth := quotes[1].CountAncestors(NameBlockquote); depth != 2 {
		t.Errorf("inner quote depth = %d, want 2", depth)
	}
}

func TestBulletListWithTask(t *testing.T) {
	tree := Parse("- [x] done\n- [ ] todo\n- plain\n")

	items := collect(tree, NameListItem)
	if len(items) != 3 {
		t.Fatalf("got %d ListItem nodes, want 3", len(items))
	}
	tasks := collect(tree, NameTaskMarker)
	if len(tasks) != 2 {
		t.Fatalf("got %d TaskMarker nodes, want 2", len(tasks))
	}
	if got := spanText(tree, tasks[0]); got != "[x]" {
		t.Errorf("first task span = %q, want %q", got, "[x]")
	}
	if got := spanText(tree, tasks[1]); got != "[ ]" {
		t.Errorf("second task span = %q, want %q", got, "[ ]")
	}
	marks := collect(tree, NameListMark)
	if len(marks) != 3 {
		t.Fatalf("got %d ListMark nodes, want 3", len(marks))
	}
	for _, m := range marks {
		if got := spanText(tree, m); got != "-" {
			t.Errorf("list mark = %q, want %q", got, "-")
		}
	}
}

func TestOrderedList(t *testing.T) {
	tree := Parse("1. one\n2. two\n")
	if ls := collect(tree, NameOrderedList); len(ls) != 1 {
		t.Fatalf("got %d OrderedList, want 1", len(ls))
	}
	items := collect(tree, NameListItem)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if anc := items[0].FindAncestor(NameOrderedList, NameBulletList); anc == nil || anc.Name != NameOrderedList {
		t.Error("item ancestor should be OrderedList")
	}
}

func TestNestedList(t *testing.T) {
	tree := Parse("- top\n  - nested\n")
	items := collect(tree, NameListItem)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if depth := items[1].CountAncestors(NameListItem); depth != 2 {
		t.Errorf("nested item depth = %d, want 2", depth)
	}
}

func TestFencedCodeHasNoChildren(t *testing.T) {
	src := "```go\n# not a heading\n- not a list\n```\nafter\n"
	tree := Parse(src)

	fences := collect(tree, NameFencedCode)
	if len(fences) != 1 {
		t.Fatalf("got %d FencedCode nodes, want 1", len(fences))
	}
	f := fences[0]
	if len(f.Children()) != 0 {
		t.Errorf("fence has %d children, want 0", len(f.Children()))
	}
	if got := spanText(tree, f); got != "```go\n# not a heading\n- not a list\n```" {
		t.Errorf("fence span = %q", got)
	}
	if hs := collect(tree, "ATXHeading1"); len(hs) != 0 {
		t.Error("heading-looking line inside fence must not produce a heading node")
	}
}

func TestUnclosedFenceRunsToEnd(t *testing.T) {
	src := "```\ncode\nmore"
	tree := Parse(src)
	fences := collect(tree, NameFencedCode)
	if len(fences) != 1 {
		t.Fatalf("got %d fences, want 1", len(fences))
	}
	if fences[0].To != len(src) {
		t.Errorf("unclosed fence To = %d, want %d", fences[0].To, len(src))
	}
}

func TestTable(t *testing.T) {
	src := "| H1 | H2 |\n| --- | --- |\n| a | b |\n| c | d |\n"
	tree := Parse(src)

	if hs := collect(tree, NameTableHeader); len(hs) != 1 {
		t.Errorf("got %d TableHeader, want 1", len(hs))
	}
	if ds := collect(tree, NameTableDelimiter); len(ds) != 1 {
		t.Errorf("got %d TableDelimiter, want 1", len(ds))
	}
	rows := collect(tree, NameTableRow)
	if len(rows) != 2 {
		t.Fatalf("got %d TableRow, want 2", len(rows))
	}
	if got := spanText(tree, rows[0]); got != "| a | b |" {
		t.Errorf("first row span = %q", got)
	}
}

func TestPipeRowWithoutDelimiterIsParagraph(t *testing.T) {
	tree := Parse("| not | a table |\nplain\n")
	if ts := collect(tree, NameTable); len(ts) != 0 {
		t.Error("pipe row without delimiter row must not become a table")
	}
	if ps := collect(tree, NameParagraph); len(ps) != 1 {
		t.Errorf("got %d paragraphs, want 1", len(ps))
	}
}

func TestHorizontalRule(t *testing.T) {
	for _, src := range []string{"---\n", "***\n", "- - -\n", "___\n"} {
		tree := Parse(src)
		if hrs := collect(tree, NameHorizontalRule); len(hrs) != 1 {
			t.Errorf("Parse(%q): got %d HorizontalRule, want 1", src, len(hrs))
		}
	}
}

func TestFrontMatter(t *testing.T) {
	src := "---\ntitle: Notes\n---\n# Heading\n"
	tree := Parse(src)
	fms := collect(tree, NameFrontMatter)
	if len(fms) != 1 {
		t.Fatalf("got %d FrontMatter, want 1", len(fms))
	}
	if got := spanText(tree, fms[0]); got != "---\ntitle: Notes\n---" {
		t.Errorf("front matter span = %q", got)
	}
	if hs := collect(tree, "ATXHeading1"); len(hs) != 1 {
		t.Error("heading after front matter not parsed")
	}
}

func TestInlineEmphasis(t *testing.T) {
	tree := Parse("some **bold** and *italic* and ~~gone~~\n")

	if ns := collect(tree, NameStrongEmphasis); len(ns) != 1 {
		t.Errorf("got %d StrongEmphasis, want 1", len(ns))
	} else if got := spanText(tree, ns[0]); got != "**bold**" {
		t.Errorf("strong span = %q", got)
	}
	if ns := collect(tree, NameEmphasis); len(ns) != 1 {
		t.Errorf("got %d Emphasis, want 1", len(ns))
	} else if got := spanText(tree, ns[0]); got != "*italic*" {
		t.Errorf("emphasis span = %q", got)
	}
	if ns := collect(tree, NameStrikethrough); len(ns) != 1 {
		t.Errorf("got %d Strikethrough, want 1", len(ns))
	}
	marks := collect(tree, NameEmphasisMark)
	if len(marks) != 6 {
		t.Errorf("got %d EmphasisMark, want 6", len(marks))
	}
}

func TestInlineCodeEscapesEmphasis(t *testing.T) {
	tree := Parse("a `**not bold**` b\n")
	if ns := collect(tree, NameStrongEmphasis); len(ns) != 0 {
		t.Error("emphasis inside code span must not be parsed")
	}
	codes := collect(tree, NameInlineCode)
	if len(codes) != 1 {
		t.Fatalf("got %d InlineCode, want 1", len(codes))
	}
	if got := spanText(tree, codes[0]); got != "`**not bold**`" {
		t.Errorf("code span = %q", got)
	}
	if ms := collect(tree, NameCodeMark); len(ms) != 2 {
		t.Errorf("got %d CodeMark, want 2", len(ms))
	}
}

func TestLink(t *testing.T) {
	src := `see [docs](https://example.com "the title") now` + "\n"
	tree := Parse(src)

	links := collect(tree, NameLink)
	if len(links) != 1 {
		t.Fatalf("got %d Link, want 1", len(links))
	}
	link := links[0]
	url := link.FirstChild(NameURL)
	if url == nil {
		t.Fatal("link has no URL child")
	}
	if got := spanText(tree, url); got != "https://example.com" {
		t.Errorf("URL span = %q", got)
	}
	title := link.FirstChild(NameLinkTitle)
	if title == nil {
		t.Fatal("link has no LinkTitle child")
	}
	if got := spanText(tree, title); got != `"the title"` {
		t.Errorf("title span = %q", got)
	}
	if ms := collect(tree, NameLinkMark); len(ms) != 4 {
		t.Errorf("got %d LinkMark, want 4", len(ms))
	}
	if url.Parent() != link {
		t.Error("URL parent should be the Link node")
	}
}

func TestImage(t *testing.T) {
	tree := Parse(`![alt text](pic.png "cap")` + "\n")

	imgs := collect(tree, NameImage)
	if len(imgs) != 1 {
		t.Fatalf("got %d Image, want 1", len(imgs))
	}
	img := imgs[0]
	label := img.FirstChild(NameLinkLabel)
	if label == nil {
		t.Fatal("image has no LinkLabel child")
	}
	if got := spanText(tree, label); got != "[alt text]" {
		t.Errorf("label span = %q", got)
	}
	if url := img.FirstChild(NameURL); url == nil || spanText(tree, url) != "pic.png" {
		t.Error("image URL child wrong")
	}
}

func TestAutolink(t *testing.T) {
	tree := Parse("go to <https://example.com> now\n")
	links := collect(tree, NameAutolink)
	if len(links) != 1 {
		t.Fatalf("got %d Autolink, want 1", len(links))
	}
	if url := links[0].FirstChild(NameURL); url == nil || spanText(tree, url) != "https://example.com" {
		t.Error("autolink URL child wrong")
	}
}

func TestWalkRangeRestriction(t *testing.T) {
	src := "# one\n\npara\n\n# two\n"
	tree := Parse(src)

	var visited []string
	// Restrict to the paragraph's span only.
	from := strings.Index(src, "para")
	tree.Root.Walk(from, from+4, func(n *Node) WalkAction {
		visited = append(visited, n.Name)
		return WalkContinue
	})
	for _, name := range visited {
		if strings.HasPrefix(name, "ATXHeading") {
			t.Errorf("walk outside range visited %s", name)
		}
	}
}

func TestWalkSkipChildren(t *testing.T) {
	tree := Parse("# head\n")
	var names []string
	tree.Root.Walk(0, 10, func(n *Node) WalkAction {
		names = append(names, n.Name)
		if n.Name == "ATXHeading1" {
			return WalkSkipChildren
		}
		return WalkContinue
	})
	for _, n := range names {
		if n == NameHeaderMark {
			t.Error("WalkSkipChildren descended into heading children")
		}
	}
}
