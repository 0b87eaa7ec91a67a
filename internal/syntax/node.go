// Package syntax builds a markdown syntax tree with exact source offsets.
// Every node, including the syntax markers themselves (heading hashes,
// emphasis delimiters, link brackets), carries its [From, To) span in the
// source text. Trees are recreated per parse and never mutated.
package syntax

// Node names form a closed vocabulary.
const (
	NameDocument       = "Document"
	NameParagraph      = "Paragraph"
	NameBlockquote     = "Blockquote"
	NameBulletList     = "BulletList"
	NameOrderedList    = "OrderedList"
	NameListItem       = "ListItem"
	NameListMark       = "ListMark"
	NameTaskMarker     = "TaskMarker"
	NameHorizontalRule = "HorizontalRule"
	NameFencedCode     = "FencedCode"
	NameCodeBlock      = "CodeBlock"
	NameFrontMatter    = "FrontMatter"
	NameTable          = "Table"
	NameTableRow       = "TableRow"
	NameTableHeader    = "TableHeader"
	NameTableDelimiter = "TableDelimiter"
	NameImage          = "Image"
	NameLink           = "Link"
	NameAutolink       = "Autolink"
	NameLinkLabel      = "LinkLabel"
	NameLinkMark       = "LinkMark"
	NameLinkTitle      = "LinkTitle"
	NameURL            = "URL"
	NameHeaderMark     = "HeaderMark"
	NameEmphasisMark   = "EmphasisMark"
	NameCodeMark       = "CodeMark"
	NameEmphasis       = "Emphasis"
	NameStrongEmphasis = "StrongEmphasis"
	NameStrikethrough  = "Strikethrough"
	NameInlineCode     = "InlineCode"
)

// ATXHeading returns the node name for an ATX heading of the given level.
func ATXHeading(level int) string {
	return [...]string{"ATXHeading1", "ATXHeading2", "ATXHeading3", "ATXHeading4", "ATXHeading5", "ATXHeading6"}[level-1]
}

// SetextHeading returns the node name for a setext heading of the given level.
func SetextHeading(level int) string {
	if level == 1 {
		return "SetextHeading1"
	}
	return "SetextHeading2"
}

// HeadingLevel returns the level of a heading node name, or 0 when the name
// is not a heading.
func HeadingLevel(name string) int {
	switch name {
	case "ATXHeading1", "SetextHeading1":
		return 1
	case "ATXHeading2", "SetextHeading2":
		return 2
	case "ATXHeading3":
		return 3
	case "ATXHeading4":
		return 4
	case "ATXHeading5":
		return 5
	case "ATXHeading6":
		return 6
	}
	return 0
}

// Node is a labeled source span with parent/child links.
type Node struct {
	Name     string
	From     int
	To       int
	parent   *Node
	children []*Node
}

// Parent returns the node's parent, nil for the document root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in document order.
func (n *Node) Children() []*Node { return n.children }

// FirstChild returns the first direct child with the given name, or nil.
func (n *Node) FirstChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) append(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// CountAncestors counts ancestors with the given name, including n itself.
func (n *Node) CountAncestors(name string) int {
	depth := 0
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Name == name {
			depth++
		}
	}
	return depth
}

// FindAncestor returns the nearest ancestor (excluding n) whose name is one
// of the given names, or nil.
func (n *Node) FindAncestor(names ...string) *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		for _, name := range names {
			if cur.Name == name {
				return cur
			}
		}
	}
	return nil
}

// WalkAction controls tree traversal.
type WalkAction int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkAction = iota
	// WalkSkipChildren visits siblings but not children.
	WalkSkipChildren
)

// Walk runs fn over every node whose span intersects [from, to], depth
// first, in document order. fn may return WalkSkipChildren to stop descent.
func (n *Node) Walk(from, to int, fn func(*Node) WalkAction) {
	if n.From > to || n.To < from {
		return
	}
	if fn(n) == WalkSkipChildren {
		return
	}
	for _, c := range n.children {
		c.Walk(from, to, fn)
	}
}

// Tree is the result of a parse.
type Tree struct {
	Root *Node
	src  string
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() string { return t.src }
