package syntax

import (
	"fmt"
	"strings"
	"testing"
)

// treeShape renders a tree as name(from,to) lines for structural comparison.
func treeShape(t *Tree) string {
	var b strings.Builder
	var dump func(n *Node, depth int)
	dump = func(n *Node, depth int) {
		fmt.Fprintf(&b, "%s%s(%d,%d)\n", strings.Repeat(" ", depth), n.Name, n.From, n.To)
		for _, c := range n.children {
			dump(c, depth+1)
		}
	}
	dump(t.Root, 0)
	return b.String()
}

func TestReparseMatchesFullParse(t *testing.T) {
	base := "# Title\n\nfirst paragraph here\n\n```go\nfunc main() {}\n```\n\nlast line\n"

	type edit struct {
		name   string
		from   int
		to     int
		insert string
	}
	edits := []edit{
		{name: "type inside paragraph", from: strings.Index(base, "first") + 2, to: strings.Index(base, "first") + 2, insert: "xx"},
		{name: "delete inside paragraph", from: strings.Index(base, "paragraph"), to: strings.Index(base, "paragraph") + 4, insert: ""},
		{name: "type inside code fence", from: strings.Index(base, "main") + 1, to: strings.Index(base, "main") + 1, insert: "Run"},
		{name: "newline inside fence", from: strings.Index(base, "{}") + 1, to: strings.Index(base, "{}") + 1, insert: "\n"},
		{name: "paragraph becomes heading", from: strings.Index(base, "first"), to: strings.Index(base, "first"), insert: "# "},
		{name: "remove fence opener", from: strings.Index(base, "```go"), to: strings.Index(base, "```go") + 5, insert: ""},
		{name: "edit the heading", from: 2, to: 7, insert: "New"},
		{name: "append at end", from: len(base), to: len(base), insert: "more\n"},
	}

	for _, tt := range edits {
		t.Run(tt.name, func(t *testing.T) {
			old := Parse(base)
			src := base[:tt.from] + tt.insert + base[tt.to:]
			got := Reparse(old, src, tt.from, tt.to, tt.from+len(tt.insert))
			want := Parse(src)
			if treeShape(got) != treeShape(want) {
				t.Errorf("incremental tree differs from full parse\nincremental:\n%s\nfull:\n%s", treeShape(got), treeShape(want))
			}
		})
	}
}

func TestReparseFenceCloserRemoved(t *testing.T) {
	// Deleting the closing delimiter leaves the fence open so it swallows
	// the lines below it; the block-local fast path must fall back to a
	// full parse instead of keeping the old block boundary.
	base := "```go\ncode\n```\npara\n"
	old := Parse(base)
	from := strings.LastIndex(base, "```")
	src := base[:from] + base[from+3:]
	got := Reparse(old, src, from, from+3, from)
	want := Parse(src)
	if treeShape(got) != treeShape(want) {
		t.Errorf("incremental tree differs from full parse\nincremental:\n%s\nfull:\n%s", treeShape(got), treeShape(want))
	}
	fences := collect(got, NameFencedCode)
	if len(fences) != 1 || fences[0].To != len(src) {
		t.Errorf("fence should span to end of source, got %v", fences)
	}
}

func TestReparseNilTree(t *testing.T) {
	tree := Reparse(nil, "hello\n", 0, 0, 6)
	if tree == nil || len(tree.Root.children) != 1 {
		t.Fatal("Reparse(nil, ...) should behave like Parse")
	}
}

func TestReparseParagraphMergeGuard(t *testing.T) {
	// Editing a paragraph that sits directly above a table delimiter can turn
	// it into a table header; the block-local fast path must not miss that.
	base := "hello world\n| --- |\n"
	old := Parse(base)
	insert := "| a "
	src := insert + base
	got := Reparse(old, src, 0, 0, len(insert))
	want := Parse(src)
	if treeShape(got) != treeShape(want) {
		t.Errorf("tree differs after table-forming edit\ngot:\n%s\nwant:\n%s", treeShape(got), treeShape(want))
	}
	if len(collect(got, NameTable)) != 1 {
		t.Error("edit should have produced a table")
	}
}
