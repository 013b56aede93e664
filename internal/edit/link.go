package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// InsertLink links the selected text to the URL. A collapsed selection
// inserts the URL itself as linked text and selects it.
func InsertLink(doc *doctree.Document, sel transaction.Selection, url string) (*transaction.Transaction, error) {
	if url == "" {
		return nil, nil
	}
	mark := doctree.Mark{Kind: schema.MarkLink, Attrs: map[string]string{"href": url}}
	if sel.Empty() {
		pos := sel.From()
		leaf := doctree.NewText(url, mark)
		tr := transaction.New(doc).Replace(pos, pos, leaf)
		if err := tr.Err(); err != nil {
			return nil, err
		}
		tr.SetSelection(transaction.Selection{Anchor: pos, Head: pos + leaf.Size()})
		return tr, nil
	}
	tr := transaction.New(doc)
	markRange(tr, doc, sel.From(), sel.To(), mark, true)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

// DeleteLink removes the link mark from the one linked text run the
// selection touches. Any other selection shape is rejected with
// ErrNoSingleLinkSelection.
func DeleteLink(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, error) {
	leaf, pos, err := singleLinkedLeaf(doc, sel)
	if err != nil {
		return nil, err
	}
	unlinked := doctree.NewText(leaf.Text, doctree.RemoveMark(leaf.Marks, schema.MarkLink)...)
	tr := transaction.New(doc).Replace(pos, pos+leaf.Size(), unlinked)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

// singleLinkedLeaf finds the linked text leaf under the selection. A
// caret resolves to the leaf it sits in, preferring the leaf ending at
// the caret when the caret sits on a boundary.
func singleLinkedLeaf(doc *doctree.Document, sel transaction.Selection) (*doctree.Node, int, error) {
	if sel.Empty() {
		r, err := position.Resolve(doc, sel.From())
		if err != nil {
			return nil, 0, err
		}
		leaf := r.TextLeaf
		idx := r.Index()
		if leaf == nil && idx > 0 && idx <= r.Parent().ChildCount() {
			leaf = r.Parent().Child(idx - 1)
			idx--
		}
		if leaf == nil || !leaf.IsText() || !doctree.HasMark(leaf.Marks, schema.MarkLink) {
			return nil, 0, ErrNoSingleLinkSelection
		}
		return leaf, r.ParentStart() + r.Parent().ChildOffset(idx), nil
	}

	var found *doctree.Node
	foundPos := 0
	count := 0
	doc.NodesBetween(sel.From(), sel.To(), func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.IsText() && doctree.HasMark(n.Marks, schema.MarkLink) {
			found, foundPos = n, pos
			count++
		}
		return true
	})
	if count != 1 {
		return nil, 0, ErrNoSingleLinkSelection
	}
	return found, foundPos, nil
}
