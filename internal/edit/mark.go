package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// ToggleMark adds the mark to every text run in the selection, or
// removes it when every run already carries it. Text inside opaque
// blocks (preformatted, button labels) is left alone. A collapsed
// selection is a no-op and returns a nil transaction.
func ToggleMark(doc *doctree.Document, sel transaction.Selection, kind schema.MarkKind, attrs map[string]string) (*transaction.Transaction, error) {
	from, to := sel.From(), sel.To()
	if from == to {
		return nil, nil
	}
	add := !allMarked(doc, from, to, kind)
	mark := doctree.Mark{Kind: kind, Attrs: attrs}
	tr := transaction.New(doc)
	markRange(tr, doc, from, to, mark, add)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

// allMarked reports whether every markable text run touching the range
// carries the mark. A range with no markable runs counts as unmarked.
func allMarked(doc *doctree.Document, from, to int, kind schema.MarkKind) bool {
	any := false
	all := true
	doc.NodesBetween(from, to, func(n *doctree.Node, pos int, parent *doctree.Node) bool {
		if !n.IsText() || !schema.AllowsMarks(parent.Kind) {
			return true
		}
		any = true
		if !doctree.HasMark(n.Marks, kind) {
			all = false
		}
		return true
	})
	return any && all
}

// markRange rewrites the inline content of every mark-bearing textblock
// intersecting [from, to), splitting partially covered runs at the
// range boundaries. Mark changes never alter sizes, so the textblocks
// can be rewritten in document order without remapping.
func markRange(tr *transaction.Transaction, doc *doctree.Document, from, to int, mark doctree.Mark, add bool) {
	type target struct {
		block *doctree.Node
		pos   int
	}
	var targets []target
	doc.NodesBetween(from, to, func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.IsTextblock() {
			if schema.AllowsMarks(n.Kind) {
				targets = append(targets, target{n, pos})
			}
			return false
		}
		return true
	})
	for _, t := range targets {
		start := t.pos + 1
		lo, hi := from, to
		if lo < start {
			lo = start
		}
		if end := start + t.block.ContentSize(); hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		covered := doctree.SliceInner(t.block, lo-start, hi-start)
		changed := make([]*doctree.Node, 0, len(covered))
		for _, leaf := range covered {
			if !leaf.IsText() {
				changed = append(changed, leaf)
				continue
			}
			marks := leaf.Marks
			if add {
				marks = doctree.AddMark(marks, mark)
			} else {
				marks = doctree.RemoveMark(marks, mark.Kind)
			}
			changed = append(changed, doctree.NewText(leaf.Text, marks...))
		}
		tr.Replace(lo, hi, doctree.MergeInline(changed)...)
		if tr.Err() != nil {
			return
		}
	}
}
