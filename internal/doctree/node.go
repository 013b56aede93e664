package doctree

import (
	"fmt"
	"unicode/utf8"

	"github.com/willwagner/markupeditor/internal/schema"
)

// Mark is an inline annotation attached to a text leaf. A leaf's mark
// set is keyed by kind; two marks of the same kind never coexist on one
// leaf.
type Mark struct {
	Kind  schema.MarkKind
	Attrs map[string]string
}

// Attr returns the named mark attribute or "".
func (m Mark) Attr(name string) string {
	return m.Attrs[name]
}

// Node is one node of the document tree. Exactly one of Children or Text
// is populated, per the schema's content declaration for the kind; leaf
// atoms (images) populate neither.
type Node struct {
	Kind     schema.NodeKind
	Attrs    map[string]string
	Children []*Node
	Text     string
	Marks    []Mark

	size int
}

// New constructs a validated node. Children are checked against the
// schema's content rules and attribute defaults are applied; the error
// wraps schema.ErrViolation on any illegal pairing.
func New(kind schema.NodeKind, attrs map[string]string, children ...*Node) (*Node, error) {
	filled, err := schema.FillDefaults(kind, attrs)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if !schema.CanContain(kind, c.Kind) {
			return nil, fmt.Errorf("%w: %s cannot contain %s", schema.ErrViolation, kind, c.Kind)
		}
	}
	n := &Node{Kind: kind, Attrs: filled, Children: children}
	n.size = computeSize(n)
	return n, nil
}

// MustNew is New for construction sites that cannot fail by
// construction (fixed kind/child pairings). It panics on violation.
func MustNew(kind schema.NodeKind, attrs map[string]string, children ...*Node) *Node {
	n, err := New(kind, attrs, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// NewText constructs a text leaf carrying the given marks.
func NewText(text string, marks ...Mark) *Node {
	n := &Node{Kind: schema.KindText, Text: text, Marks: marks}
	n.size = utf8.RuneCountInString(text)
	return n
}

// NewImage constructs an inline image atom.
func NewImage(src, alt string) (*Node, error) {
	attrs := map[string]string{"src": src}
	if alt != "" {
		attrs["alt"] = alt
	}
	return New(schema.KindImage, attrs)
}

func computeSize(n *Node) int {
	switch n.Kind {
	case schema.KindText:
		return utf8.RuneCountInString(n.Text)
	case schema.KindImage:
		return 1
	default:
		s := 2
		for _, c := range n.Children {
			s += c.size
		}
		return s
	}
}

// Size returns the node's total token size.
func (n *Node) Size() int { return n.size }

// ContentSize returns the size of the node's content, excluding its own
// open and close tokens.
func (n *Node) ContentSize() int {
	switch n.Kind {
	case schema.KindText, schema.KindImage:
		return n.size
	default:
		return n.size - 2
	}
}

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool { return n.Kind == schema.KindText }

// IsLeaf reports whether the node can never hold children.
func (n *Node) IsLeaf() bool {
	return n.Kind == schema.KindText || n.Kind == schema.KindImage
}

// IsTextblock reports whether the node directly holds inline content.
func (n *Node) IsTextblock() bool { return schema.Textblock(n.Kind) }

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string { return n.Attrs[name] }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.Children) }

// Child returns the i'th child; it panics on an out-of-range index, which
// is a logic error in the caller.
func (n *Node) Child(i int) *Node { return n.Children[i] }

// ChildOffset returns the content offset of the start of child i, i.e.
// the sum of the sizes of the preceding siblings.
func (n *Node) ChildOffset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += n.Children[j].size
	}
	return off
}

// WithAttrs returns a copy of the node with the attribute map replaced.
func (n *Node) WithAttrs(attrs map[string]string) *Node {
	c := *n
	c.Attrs = attrs
	return &c
}

// WithAttr returns a copy of the node with one attribute set. An empty
// value removes the attribute.
func (n *Node) WithAttr(name, value string) *Node {
	attrs := make(map[string]string, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		attrs[k] = v
	}
	if value == "" {
		delete(attrs, name)
	} else {
		attrs[name] = value
	}
	return n.WithAttrs(attrs)
}

// WithChildren returns a copy of the node with new children, revalidated
// against the schema.
func (n *Node) WithChildren(children []*Node) (*Node, error) {
	for _, c := range children {
		if !schema.CanContain(n.Kind, c.Kind) {
			return nil, fmt.Errorf("%w: %s cannot contain %s", schema.ErrViolation, n.Kind, c.Kind)
		}
	}
	c := *n
	c.Children = children
	c.size = computeSize(&c)
	return &c, nil
}

// Retype returns a copy of the node as a different textblock kind. The
// inline content carries over; retyping to an opaque kind fails if any
// leaf carries marks or is not text.
func (n *Node) Retype(kind schema.NodeKind, attrs map[string]string) (*Node, error) {
	filled, err := schema.FillDefaults(kind, attrs)
	if err != nil {
		return nil, err
	}
	for _, c := range n.Children {
		if !schema.CanContain(kind, c.Kind) {
			return nil, fmt.Errorf("%w: %s cannot contain %s", schema.ErrViolation, kind, c.Kind)
		}
		if !schema.AllowsMarks(kind) && len(c.Marks) > 0 {
			return nil, fmt.Errorf("%w: %s cannot hold marked text", schema.ErrViolation, kind)
		}
	}
	c := *n
	c.Kind = kind
	c.Attrs = filled
	c.size = computeSize(&c)
	return &c, nil
}

// WithText returns a copy of a text leaf with different text.
func (n *Node) WithText(text string) *Node {
	c := *n
	c.Text = text
	c.size = utf8.RuneCountInString(text)
	return &c
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

// Eq reports deep equality of two subtrees, including attributes and
// marks.
func (n *Node) Eq(o *Node) bool {
	if n == o {
		return true
	}
	if n.Kind != o.Kind || n.Text != o.Text || len(n.Children) != len(o.Children) {
		return false
	}
	if !attrsEq(n.Attrs, o.Attrs) || !MarksEq(n.Marks, o.Marks) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Eq(o.Children[i]) {
			return false
		}
	}
	return true
}

// attrsEq treats an empty value the same as an absent key.
func attrsEq(a, b map[string]string) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if v != "" && a[k] != v {
			return false
		}
	}
	return true
}
