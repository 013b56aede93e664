package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// SetBlockStyle retypes every textblock intersecting the selection to
// the target kind, keeping each block's id. Blocks the target kind
// cannot represent are skipped; if no block could be retyped the
// command fails with ErrStyle.
func SetBlockStyle(doc *doctree.Document, sel transaction.Selection, kind schema.NodeKind, attrs map[string]string) (*transaction.Transaction, error) {
	if !schema.Textblock(kind) {
		return nil, ErrStyle
	}
	blocks, err := selectedTextblocks(doc, sel)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc)
	applied := 0
	for _, b := range blocks {
		retyped, ok := retypeBlock(b.node, kind, attrs)
		if !ok {
			continue
		}
		applied++
		if retyped.Eq(b.node) {
			continue
		}
		// Retyping preserves content size, so positions stay stable
		// across the loop.
		tr.Replace(b.pos, b.pos+b.node.Size(), retyped)
		if tr.Err() != nil {
			return nil, tr.Err()
		}
	}
	if applied == 0 {
		return nil, ErrStyle
	}
	tr.SetSelection(sel)
	return tr, nil
}

type blockAt struct {
	node *doctree.Node
	pos  int
}

// selectedTextblocks returns the textblocks touching the selection. A
// collapsed caret resolves to its enclosing textblock.
func selectedTextblocks(doc *doctree.Document, sel transaction.Selection) ([]blockAt, error) {
	if sel.Empty() {
		r, err := position.Resolve(doc, sel.From())
		if err != nil {
			return nil, err
		}
		depth := r.FindAncestor(func(n *doctree.Node) bool { return n.IsTextblock() })
		if depth < 0 {
			return nil, nil
		}
		return []blockAt{{node: r.Node(depth), pos: r.StartAt(depth) - 1}}, nil
	}
	var out []blockAt
	doc.NodesBetween(sel.From(), sel.To(), func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.IsTextblock() {
			out = append(out, blockAt{node: n, pos: pos})
			return false
		}
		return true
	})
	return out, nil
}

// retypeBlock converts a textblock to the target kind. Opaque targets
// reject marked or non-text inline content rather than flattening it.
func retypeBlock(b *doctree.Node, kind schema.NodeKind, attrs map[string]string) (*doctree.Node, bool) {
	merged := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		merged[k] = v
	}
	if id := b.Attr("id"); id != "" && merged["id"] == "" {
		merged["id"] = id
	}
	if !schema.AllowsMarks(kind) {
		for _, c := range b.Children {
			if !c.IsText() || len(c.Marks) > 0 {
				return nil, false
			}
		}
	}
	retyped, err := b.Retype(kind, merged)
	if err != nil {
		return nil, false
	}
	return retyped, true
}
