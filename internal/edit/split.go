package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// SplitBlock splits the enclosing textblock at the caret into two
// blocks of the same kind, deleting a non-empty selection first. The
// right half drops any id so a split never duplicates one. Returns a
// nil transaction when the caret sits in no textblock and nothing was
// deleted.
func SplitBlock(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, error) {
	tr := transaction.New(doc)
	pos := sel.From()
	if !sel.Empty() {
		DeleteRange(tr, sel.From(), sel.To())
		if err := tr.Err(); err != nil {
			return nil, err
		}
		pos = tr.MapPos(sel.From())
	}
	r, err := position.Resolve(tr.Doc(), pos)
	if err != nil {
		return nil, err
	}
	depth := r.FindAncestor(func(n *doctree.Node) bool { return n.IsTextblock() })
	if depth < 1 {
		if tr.DocChanged() {
			tr.SetSelection(transaction.Collapsed(pos))
			return tr, nil
		}
		return nil, nil
	}
	block := r.Node(depth)
	contentStart := r.StartAt(depth)
	blockPos := contentStart - 1
	local := pos - contentStart

	left, err := block.WithChildren(doctree.SliceInner(block, 0, local))
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string, len(block.Attrs))
	for k, v := range block.Attrs {
		if k != "id" {
			attrs[k] = v
		}
	}
	right, err := doctree.New(block.Kind, attrs, doctree.SliceInner(block, local, block.ContentSize())...)
	if err != nil {
		return nil, err
	}
	tr.Replace(blockPos, blockPos+block.Size(), left, right)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Collapsed(blockPos + left.Size() + 1))
	return tr, nil
}
