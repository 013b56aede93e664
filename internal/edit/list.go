package edit

import (
	"fmt"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

func isList(k schema.NodeKind) bool {
	return k == schema.KindOrderedList || k == schema.KindBulletList
}

func isListNode(n *doctree.Node) bool { return isList(n.Kind) }

// ToggleList wraps the selected blocks in a list of the given kind, or
// lifts them out when they already sit in one. A selection inside a
// list of the other kind retypes that list in place. A selection that
// starts inside a list but shares no list ancestor with its end fails
// with ErrNoCommonList.
func ToggleList(doc *doctree.Document, sel transaction.Selection, kind schema.NodeKind) (*transaction.Transaction, error) {
	if !isList(kind) {
		return nil, fmt.Errorf("%w: %s is not a list kind", schema.ErrViolation, kind)
	}
	rf, err := position.Resolve(doc, sel.From())
	if err != nil {
		return nil, err
	}
	rt, err := position.Resolve(doc, sel.To())
	if err != nil {
		return nil, err
	}
	sd := sharedDepth(rf, rt)

	listDepth := -1
	for d := sd; d >= 1; d-- {
		if isList(rf.Node(d).Kind) {
			listDepth = d
			break
		}
	}
	switch {
	case listDepth >= 0 && rf.Node(listDepth).Kind == kind:
		return liftItems(doc, sel, rf, rt, listDepth)
	case listDepth >= 0:
		return retypeList(doc, sel, rf, listDepth, kind)
	}
	if rf.FindAncestor(isListNode) >= 1 || rt.FindAncestor(isListNode) >= 1 {
		return nil, ErrNoCommonList
	}
	return wrapInList(doc, sel, rf, rt, sd, kind)
}

// liftItems moves the covered items of the list at listDepth out of the
// list, splitting the list around them when the coverage is partial.
func liftItems(doc *doctree.Document, sel transaction.Selection, rf, rt *position.Resolved, listDepth int) (*transaction.Transaction, error) {
	list := rf.Node(listDepth)
	contentStart := rf.StartAt(listDepth)
	listPos := contentStart - 1
	i0, i1 := coveredIndexes(rf, rt, listDepth)

	var repl []*doctree.Node
	if i0 > 0 {
		head, err := list.WithChildren(list.Children[:i0])
		if err != nil {
			return nil, err
		}
		repl = append(repl, head)
	}
	for _, item := range list.Children[i0 : i1+1] {
		repl = append(repl, item.Children...)
	}
	if i1+1 < list.ChildCount() {
		tail, err := list.WithChildren(list.Children[i1+1:])
		if err != nil {
			return nil, err
		}
		repl = append(repl, tail)
	}
	if len(repl) == 0 && rf.Node(listDepth-1).ChildCount() == 1 {
		repl = append(repl, doctree.MustNew(schema.KindParagraph, nil))
	}

	tr := transaction.New(doc).Replace(listPos, listPos+list.Size(), repl...)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Selection{
		Anchor: mapOutOfList(listPos, list, i0, i1, sel.Anchor),
		Head:   mapOutOfList(listPos, list, i0, i1, sel.Head),
	})
	return tr, nil
}

// mapOutOfList translates a position inside a lifted item to its place
// in the replacement, where the item's content sits one level higher.
func mapOutOfList(listPos int, list *doctree.Node, i0, i1 int, pos int) int {
	newOff := 0
	if i0 > 0 {
		head := 0
		for _, item := range list.Children[:i0] {
			head += item.Size()
		}
		newOff = head + 2
	}
	itemStart := listPos + 1
	for k := 0; k < list.ChildCount(); k++ {
		item := list.Child(k)
		if k >= i0 && k <= i1 && pos >= itemStart && pos <= itemStart+item.Size() {
			rel := pos - (itemStart + 1)
			if rel < 0 {
				rel = 0
			}
			if rel > item.ContentSize() {
				rel = item.ContentSize()
			}
			return listPos + newOff + rel
		}
		if k >= i0 && k <= i1 {
			newOff += item.ContentSize()
		}
		itemStart += item.Size()
	}
	if pos <= listPos {
		return pos
	}
	return listPos
}

// retypeList converts the list at listDepth, and every list nested
// under it, to the target kind.
func retypeList(doc *doctree.Document, sel transaction.Selection, rf *position.Resolved, listDepth int, kind schema.NodeKind) (*transaction.Transaction, error) {
	list := rf.Node(listDepth)
	pos := rf.StartAt(listDepth) - 1
	retyped, err := retypeListTree(list, kind)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).Replace(pos, pos+list.Size(), retyped)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

func retypeListTree(n *doctree.Node, kind schema.NodeKind) (*doctree.Node, error) {
	if n.IsLeaf() {
		return n, nil
	}
	kids := make([]*doctree.Node, len(n.Children))
	changed := false
	for i, c := range n.Children {
		rc, err := retypeListTree(c, kind)
		if err != nil {
			return nil, err
		}
		kids[i] = rc
		if rc != c {
			changed = true
		}
	}
	out := n
	if changed {
		var err error
		out, err = n.WithChildren(kids)
		if err != nil {
			return nil, err
		}
	}
	if isList(out.Kind) && out.Kind != kind {
		return out.Retype(kind, out.Attrs)
	}
	return out, nil
}

// wrapInList wraps the blocks covered by the selection in a new list.
// Covered lists are merged into it item by item.
func wrapInList(doc *doctree.Document, sel transaction.Selection, rf, rt *position.Resolved, sd int, kind schema.NodeKind) (*transaction.Transaction, error) {
	wd := sd
	for wd > 0 && schema.ContentOf(rf.Node(wd).Kind) != schema.ContentBlocks && rf.Node(wd).Kind != schema.KindDoc {
		wd--
	}
	parent := rf.Node(wd)
	i0, i1 := coveredIndexes(rf, rt, wd)

	var items []*doctree.Node
	for _, c := range parent.Children[i0 : i1+1] {
		if isList(c.Kind) {
			merged, err := retypeListTree(c, kind)
			if err != nil {
				return nil, err
			}
			items = append(items, merged.Children...)
			continue
		}
		item, err := doctree.New(schema.KindListItem, nil, c)
		if err != nil {
			return nil, ErrNoCommonList
		}
		items = append(items, item)
	}
	list, err := doctree.New(kind, nil, items...)
	if err != nil {
		return nil, err
	}

	start := rf.StartAt(wd) + parent.ChildOffset(i0)
	end := rf.StartAt(wd) + parent.ChildOffset(i1) + parent.Child(i1).Size()
	tr := transaction.New(doc).Replace(start, end, list)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Selection{
		Anchor: mapIntoList(start, parent, i0, i1, sel.Anchor),
		Head:   mapIntoList(start, parent, i0, i1, sel.Head),
	})
	return tr, nil
}

// mapIntoList translates a position inside a wrapped block to its place
// inside the new list. Blocks gain a list-item level; merged lists keep
// their items at the same relative offsets.
func mapIntoList(start int, parent *doctree.Node, i0, i1 int, pos int) int {
	if pos <= start {
		return pos
	}
	newOff := 0
	cStart := start
	for k := i0; k <= i1; k++ {
		c := parent.Child(k)
		if pos <= cStart+c.Size() {
			if isList(c.Kind) {
				rel := pos - (cStart + 1)
				if rel < 0 {
					rel = 0
				}
				if rel > c.ContentSize() {
					rel = c.ContentSize()
				}
				return start + 1 + newOff + rel
			}
			rel := pos - cStart
			return start + 1 + newOff + 1 + rel
		}
		if isList(c.Kind) {
			newOff += c.ContentSize()
		} else {
			newOff += c.Size() + 2
		}
		cStart += c.Size()
	}
	return start + 1 + newOff
}

// coveredIndexes returns the index range of the ancestor's children
// covered by the two resolved positions.
func coveredIndexes(rf, rt *position.Resolved, depth int) (int, int) {
	anc := rf.Node(depth)
	i0 := rf.IndexAt(depth)
	if i0 >= anc.ChildCount() {
		i0 = anc.ChildCount() - 1
	}
	i1 := rt.IndexAt(depth)
	if rt.Depth() == depth && i1 > i0 {
		// The end position sits at a child boundary; coverage stops at
		// the child before it.
		i1--
	}
	if i1 >= anc.ChildCount() {
		i1 = anc.ChildCount() - 1
	}
	if i1 < i0 {
		i1 = i0
	}
	return i0, i1
}

// SplitListItem performs the Enter-key split inside a list item. A
// non-empty selection is deleted first; a selection spanning several
// items therefore merges them before the split. At the very start or
// end of an item's content the split inserts an empty sibling item
// instead of splitting.
func SplitListItem(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, error) {
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
	liDepth := r.FindAncestor(func(n *doctree.Node) bool { return n.Kind == schema.KindListItem })
	if liDepth < 1 {
		return nil, ErrNotInList
	}
	item := r.Node(liDepth)
	contentStart := r.StartAt(liDepth)
	itemPos := contentStart - 1
	itemEnd := itemPos + item.Size()
	local := pos - contentStart

	emptyItem := doctree.MustNew(schema.KindListItem, nil, doctree.MustNew(schema.KindParagraph, nil))
	switch {
	case local == 0:
		tr.Replace(itemPos, itemPos, emptyItem)
		if err := tr.Err(); err != nil {
			return nil, err
		}
		tr.SetSelection(transaction.Collapsed(pos + emptyItem.Size()))
	case local == item.ContentSize():
		tr.Replace(itemEnd, itemEnd, emptyItem)
		if err := tr.Err(); err != nil {
			return nil, err
		}
		tr.SetSelection(transaction.Collapsed(itemEnd + 2))
	default:
		left, err := splitItemHalf(item, 0, local)
		if err != nil {
			return nil, err
		}
		right, err := splitItemHalf(item, local, item.ContentSize())
		if err != nil {
			return nil, err
		}
		tr.Replace(itemPos, itemEnd, left, right)
		if err := tr.Err(); err != nil {
			return nil, err
		}
		tr.SetSelection(transaction.Collapsed(itemPos + left.Size() + 2))
	}
	return tr, nil
}

func splitItemHalf(item *doctree.Node, from, to int) (*doctree.Node, error) {
	kids := doctree.SliceInner(item, from, to)
	if len(kids) == 0 {
		kids = []*doctree.Node{doctree.MustNew(schema.KindParagraph, nil)}
	}
	if from == 0 {
		return item.WithChildren(kids)
	}
	// The trailing half gets no id; one split half keeps the item's
	// identity.
	return doctree.New(schema.KindListItem, nil, kids...)
}

// Indent wraps the blocks covered by the selection in one blockquote
// level.
func Indent(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, error) {
	rf, err := position.Resolve(doc, sel.From())
	if err != nil {
		return nil, err
	}
	rt, err := position.Resolve(doc, sel.To())
	if err != nil {
		return nil, err
	}
	sd := sharedDepth(rf, rt)
	wd := sd
	for wd > 0 && schema.ContentOf(rf.Node(wd).Kind) != schema.ContentBlocks && rf.Node(wd).Kind != schema.KindDoc {
		wd--
	}
	parent := rf.Node(wd)
	i0, i1 := coveredIndexes(rf, rt, wd)
	quote, err := doctree.New(schema.KindBlockquote, nil, parent.Children[i0:i1+1]...)
	if err != nil {
		return nil, err
	}
	start := rf.StartAt(wd) + parent.ChildOffset(i0)
	end := rf.StartAt(wd) + parent.ChildOffset(i1) + parent.Child(i1).Size()
	tr := transaction.New(doc).Replace(start, end, quote)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	// The wrapped content shifts one position right, past the quote's
	// opening boundary.
	tr.SetSelection(transaction.Selection{
		Anchor: shiftInto(sel.Anchor, start, end),
		Head:   shiftInto(sel.Head, start, end),
	})
	return tr, nil
}

func shiftInto(pos, start, end int) int {
	if pos < start {
		return pos
	}
	if pos > end {
		return pos + 2
	}
	return pos + 1
}

// Outdent lifts one enclosing blockquote or list level. With nothing to
// lift it returns (nil, false, nil), the "did nothing" signal.
func Outdent(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, bool, error) {
	rf, err := position.Resolve(doc, sel.From())
	if err != nil {
		return nil, false, err
	}
	rt, err := position.Resolve(doc, sel.To())
	if err != nil {
		return nil, false, err
	}
	sd := sharedDepth(rf, rt)
	depth := -1
	for d := sd; d >= 1; d-- {
		k := rf.Node(d).Kind
		if k == schema.KindBlockquote || isList(k) {
			depth = d
			break
		}
	}
	if depth < 1 {
		return nil, false, nil
	}
	if isList(rf.Node(depth).Kind) {
		tr, err := liftItems(doc, sel, rf, rt, depth)
		if err != nil {
			return nil, false, err
		}
		return tr, true, nil
	}
	quote := rf.Node(depth)
	pos := rf.StartAt(depth) - 1
	repl := quote.Children
	var content []*doctree.Node
	if len(repl) == 0 && rf.Node(depth-1).ChildCount() == 1 {
		content = []*doctree.Node{doctree.MustNew(schema.KindParagraph, nil)}
	} else {
		content = repl
	}
	tr := transaction.New(doc).Replace(pos, pos+quote.Size(), content...)
	if err := tr.Err(); err != nil {
		return nil, false, err
	}
	tr.SetSelection(transaction.Selection{
		Anchor: shiftOutOf(sel.Anchor, pos, pos+quote.Size()),
		Head:   shiftOutOf(sel.Head, pos, pos+quote.Size()),
	})
	return tr, true, nil
}

func shiftOutOf(p, start, end int) int {
	switch {
	case p <= start:
		return p
	case p >= end:
		return p - 2
	default:
		return p - 1
	}
}
