package transaction

import (
	"fmt"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
)

// ReplaceStep replaces the range [From, To) with Content.
//
// Content nodes are fully closed. Inline content (text leaves, images)
// may be written into or across textblocks; replacing across textblock
// boundaries joins the boundary blocks at the cut. Block content must
// target boundary positions between children of one parent.
type ReplaceStep struct {
	From    int
	To      int
	Content []*doctree.Node
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *doctree.Document) (*doctree.Document, error) {
	if s.From > s.To {
		return nil, fmt.Errorf("%w: replace range [%d,%d)", position.ErrOutOfRange, s.From, s.To)
	}
	rf, err := position.Resolve(doc, s.From)
	if err != nil {
		return nil, err
	}
	rt, err := position.Resolve(doc, s.To)
	if err != nil {
		return nil, err
	}

	if inlineContent(s.Content) {
		return applyInline(rf, rt, s.Content)
	}
	return applyBlocks(rf, rt, s.Content)
}

// Invert implements Step. The inverse replaces the child range of the
// deepest common ancestor covered by [From, To) — widened to child
// boundaries — with its pre-apply slice.
func (s *ReplaceStep) Invert(before *doctree.Document) (Step, error) {
	rf, err := position.Resolve(before, s.From)
	if err != nil {
		return nil, err
	}
	rt, err := position.Resolve(before, s.To)
	if err != nil {
		return nil, err
	}
	dc := commonDepth(rf, rt)
	from, to := coveredRange(rf, rt, dc)
	delta := doctree.FragmentSize(s.Content) - (s.To - s.From)
	// Slice within the common ancestor so inline ranges invert to bare
	// leaves rather than trimmed copies of the enclosing block.
	anc := rf.Node(dc)
	start := rf.StartAt(dc)
	return &ReplaceStep{
		From:    from,
		To:      to + delta,
		Content: doctree.SliceInner(anc, from-start, to-start),
	}, nil
}

// Span implements Step.
func (s *ReplaceStep) Span() (position.Span, bool) {
	return position.Span{From: s.From, To: s.To, NewLen: doctree.FragmentSize(s.Content)}, true
}

func inlineContent(nodes []*doctree.Node) bool {
	for _, n := range nodes {
		if !schema.Inline(n.Kind) {
			return false
		}
	}
	return true
}

// commonDepth returns the deepest depth at which both resolutions pass
// through the same node.
func commonDepth(rf, rt *position.Resolved) int {
	max := rf.Depth()
	if rt.Depth() < max {
		max = rt.Depth()
	}
	dc := 0
	for d := 0; d <= max; d++ {
		// Structural sharing can put one *Node at two positions, so
		// identity needs the content start as well as the pointer.
		if rf.Node(d) != rt.Node(d) || rf.StartAt(d) != rt.StartAt(d) {
			break
		}
		dc = d
	}
	return dc
}

// sameParent reports whether both positions resolve into the same
// parent node at the same tree location.
func sameParent(rf, rt *position.Resolved) bool {
	return rf.Parent() == rt.Parent() && rf.ParentStart() == rt.ParentStart()
}

// coveredRange widens [rf, rt] outward to child boundaries of the
// common ancestor.
func coveredRange(rf, rt *position.Resolved, dc int) (int, int) {
	ancestor := rf.Node(dc)
	start := rf.StartAt(dc)

	from := rf.Pos
	if rf.Depth() != dc || rf.TextLeaf != nil {
		from = start + ancestor.ChildOffset(rf.IndexAt(dc))
	}
	to := rt.Pos
	if rt.Depth() != dc || rt.TextLeaf != nil {
		idx := rt.IndexAt(dc)
		to = start + ancestor.ChildOffset(idx) + ancestor.Child(idx).Size()
	}
	return from, to
}

// applyInline handles empty and inline-only content.
func applyInline(rf, rt *position.Resolved, content []*doctree.Node) (*doctree.Document, error) {
	// Same textblock: rebuild its inline content in place.
	if sameParent(rf, rt) && rf.Parent().IsTextblock() {
		block := rf.Parent()
		if err := checkInlineFits(block.Kind, content); err != nil {
			return nil, err
		}
		start := rf.ParentStart()
		before := doctree.SliceInner(block, 0, rf.Pos-start)
		after := doctree.SliceInner(block, rt.Pos-start, block.ContentSize())
		kids := doctree.MergeInline(concat(before, content, after))
		rebuilt, err := block.WithChildren(kids)
		if err != nil {
			return nil, err
		}
		return rebuildWithChild(rf, rf.Depth()-1, rebuilt), nil
	}

	// Boundary positions in a shared parent with no textblock to write
	// into: only pure deletion of whole children is meaningful here.
	if sameParent(rf, rt) && !rf.Parent().IsTextblock() {
		if len(content) > 0 {
			return nil, fmt.Errorf("%w: inline content between blocks", schema.ErrViolation)
		}
		return spliceChildren(rf, rt, rf.Depth(), nil)
	}

	// Different textblocks: delete across the cut and join the
	// boundary blocks.
	return joinAcross(rf, rt, content)
}

// applyBlocks splices block content between child boundaries.
func applyBlocks(rf, rt *position.Resolved, content []*doctree.Node) (*doctree.Document, error) {
	if rf.TextLeaf != nil || rt.TextLeaf != nil || !sameParent(rf, rt) {
		return nil, fmt.Errorf("%w: block content requires boundary positions in one parent", schema.ErrViolation)
	}
	return spliceChildren(rf, rt, rf.Depth(), content)
}

// spliceChildren replaces the children of rf's parent between the two
// boundary indices with content.
func spliceChildren(rf, rt *position.Resolved, depth int, content []*doctree.Node) (*doctree.Document, error) {
	parent := rf.Parent()
	iFrom, iTo := rf.Index(), rt.Index()
	kids := concat(parent.Children[:iFrom], content, parent.Children[iTo:])
	rebuilt, err := parent.WithChildren(kids)
	if err != nil {
		return nil, err
	}
	return rebuildWithChild(rf, depth-1, rebuilt), nil
}

// joinAcross deletes [rf, rt) spanning distinct textblocks and writes
// the inline content at the cut, merging the boundary blocks.
func joinAcross(rf, rt *position.Resolved, content []*doctree.Node) (*doctree.Document, error) {
	dc := commonDepth(rf, rt)
	// Both endpoints must sit inside textblock content below the common
	// ancestor; token accounting for the join depends on the removed
	// range covering matching open and close boundaries. Callers with
	// asymmetric shapes delete block-by-block instead.
	if rf.Depth() == dc || rt.Depth() == dc ||
		!rf.Parent().IsTextblock() || !rt.Parent().IsTextblock() {
		return nil, fmt.Errorf("%w: replace across blocks must start and end inside textblocks", schema.ErrViolation)
	}
	ancestor := rf.Node(dc)
	start := rf.StartAt(dc)
	iFrom, iTo := rf.IndexAt(dc), rt.IndexAt(dc)

	// Trimmed branches on either side of the cut.
	left := doctree.SliceInner(ancestor, ancestor.ChildOffset(iFrom), rf.Pos-start)
	rightEnd := ancestor.ChildOffset(iTo)
	if iTo < ancestor.ChildCount() {
		rightEnd += ancestor.Child(iTo).Size()
	}
	right := doctree.SliceInner(ancestor, rt.Pos-start, rightEnd)

	joined, err := joinFragments(left, right, content)
	if err != nil {
		return nil, err
	}

	hi := iTo
	if iTo < ancestor.ChildCount() {
		hi = iTo + 1
	}
	kids := concat(ancestor.Children[:iFrom], joined, ancestor.Children[hi:])
	rebuilt, err := ancestor.WithChildren(kids)
	if err != nil {
		return nil, err
	}
	return rebuildWithChild(rf, dc-1, rebuilt), nil
}

// joinFragments merges the right fragment's leading edge into the left
// fragment's trailing edge, inserting content at the seam.
func joinFragments(left, right, content []*doctree.Node) ([]*doctree.Node, error) {
	if len(left) == 0 && len(right) == 0 {
		if len(content) == 0 {
			return nil, nil
		}
		p, err := doctree.New(schema.KindParagraph, nil, content...)
		if err != nil {
			return nil, err
		}
		return []*doctree.Node{p}, nil
	}
	if len(left) == 0 {
		edge, err := writeInline(right[0], content, false)
		if err != nil {
			return nil, err
		}
		return append([]*doctree.Node{edge}, right[1:]...), nil
	}
	if len(right) == 0 {
		edge, err := writeInline(left[len(left)-1], content, true)
		if err != nil {
			return nil, err
		}
		return append(append([]*doctree.Node{}, left[:len(left)-1]...), edge), nil
	}

	merged, err := joinNodes(left[len(left)-1], right[0], content)
	if err != nil {
		return nil, err
	}
	out := append([]*doctree.Node{}, left[:len(left)-1]...)
	out = append(out, merged)
	out = append(out, right[1:]...)
	return out, nil
}

// joinNodes merges two same-depth boundary nodes. Two textblocks merge
// into one; two containers of the same kind merge their edge children
// recursively; anything else is a schema violation for this step shape.
func joinNodes(l, r *doctree.Node, content []*doctree.Node) (*doctree.Node, error) {
	if l.IsTextblock() && r.IsTextblock() {
		if err := checkInlineFits(l.Kind, content); err != nil {
			return nil, err
		}
		if !schema.AllowsMarks(l.Kind) {
			for _, c := range r.Children {
				if len(c.Marks) > 0 {
					return nil, fmt.Errorf("%w: %s cannot hold marked text", schema.ErrViolation, l.Kind)
				}
			}
		}
		kids := doctree.MergeInline(concat(l.Children, content, r.Children))
		return l.WithChildren(kids)
	}
	if l.Kind == r.Kind && !l.IsLeaf() && l.ChildCount() > 0 && r.ChildCount() > 0 {
		inner, err := joinNodes(l.Child(l.ChildCount()-1), r.Child(0), content)
		if err != nil {
			return nil, err
		}
		kids := append([]*doctree.Node{}, l.Children[:l.ChildCount()-1]...)
		kids = append(kids, inner)
		kids = append(kids, r.Children[1:]...)
		return l.WithChildren(kids)
	}
	if l.ChildCount() == 0 {
		return r, nil
	}
	if r.ChildCount() == 0 {
		return l, nil
	}
	return nil, fmt.Errorf("%w: cannot join %s with %s", schema.ErrViolation, l.Kind, r.Kind)
}

// writeInline appends or prepends inline content inside the edge
// textblock of a branch.
func writeInline(n *doctree.Node, content []*doctree.Node, atEnd bool) (*doctree.Node, error) {
	if len(content) == 0 {
		return n, nil
	}
	if n.IsTextblock() {
		if err := checkInlineFits(n.Kind, content); err != nil {
			return nil, err
		}
		var kids []*doctree.Node
		if atEnd {
			kids = doctree.MergeInline(concat(n.Children, content, nil))
		} else {
			kids = doctree.MergeInline(concat(content, n.Children, nil))
		}
		return n.WithChildren(kids)
	}
	if n.IsLeaf() || n.ChildCount() == 0 {
		return nil, fmt.Errorf("%w: no textblock to write into at %s", schema.ErrViolation, n.Kind)
	}
	idx := 0
	if atEnd {
		idx = n.ChildCount() - 1
	}
	edge, err := writeInline(n.Child(idx), content, atEnd)
	if err != nil {
		return nil, err
	}
	kids := make([]*doctree.Node, n.ChildCount())
	copy(kids, n.Children)
	kids[idx] = edge
	return n.WithChildren(kids)
}

func checkInlineFits(kind schema.NodeKind, content []*doctree.Node) error {
	for _, c := range content {
		if !schema.CanContain(kind, c.Kind) {
			return fmt.Errorf("%w: %s cannot contain %s", schema.ErrViolation, kind, c.Kind)
		}
		if !schema.AllowsMarks(kind) && len(c.Marks) > 0 {
			return fmt.Errorf("%w: %s cannot hold marked text", schema.ErrViolation, kind)
		}
	}
	return nil
}

func concat(a, b, c []*doctree.Node) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(a)+len(b)+len(c))
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, c...)
	return out
}
