// Package position converts linear document offsets to resolved tree
// paths and maps offsets across edits.
//
// Raw integer offsets are only meaningful against the snapshot they were
// computed for. Code that needs to keep a position valid across a
// transaction maps it through the transaction's spans (see Map); code
// that needs tree context resolves it on demand.
package position

import (
	"errors"
	"fmt"

	"github.com/willwagner/markupeditor/internal/doctree"
)

// ErrOutOfRange reports a position outside the document. Hosts using
// engine-issued positions should never see it; it guards against logic
// errors.
var ErrOutOfRange = errors.New("position out of range")

// Segment is one level of a resolved path: a parent node, the child
// index the position points into, and the absolute position of the
// parent's content start.
type Segment struct {
	Node  *doctree.Node
	Index int
	Start int
}

// Resolved is a document position with full tree context. Segs runs
// from the root (depth 0) to the deepest parent containing the
// position. When the position falls inside a text leaf, TextLeaf and
// TextOffset identify the rune offset within it.
type Resolved struct {
	Pos  int
	Segs []Segment

	TextLeaf   *doctree.Node
	TextOffset int
}

// Resolve turns an offset into a resolved position.
func Resolve(doc *doctree.Document, pos int) (*Resolved, error) {
	if pos < 0 || pos > doc.Size() {
		return nil, fmt.Errorf("%w: %d (document size %d)", ErrOutOfRange, pos, doc.Size())
	}
	r := &Resolved{Pos: pos}
	node := doc.Root
	base := 0
	for {
		rel := pos - base
		off := 0
		idx := node.ChildCount()
		var inside *doctree.Node
		for i, c := range node.Children {
			if rel <= off {
				idx = i
				break
			}
			if rel < off+c.Size() {
				idx = i
				inside = c
				break
			}
			if rel == off+c.Size() {
				// Boundary after c: position before the next child.
				idx = i + 1
				break
			}
			off += c.Size()
		}
		if inside == nil {
			r.Segs = append(r.Segs, Segment{Node: node, Index: idx, Start: base})
			return r, nil
		}
		if inside.IsText() {
			r.Segs = append(r.Segs, Segment{Node: node, Index: idx, Start: base})
			r.TextLeaf = inside
			r.TextOffset = rel - off
			return r, nil
		}
		r.Segs = append(r.Segs, Segment{Node: node, Index: idx, Start: base})
		node = inside
		base = base + off + 1
	}
}

// Depth returns the number of ancestors above the deepest parent; the
// root alone is depth 0.
func (r *Resolved) Depth() int { return len(r.Segs) - 1 }

// Parent returns the deepest node containing the position.
func (r *Resolved) Parent() *doctree.Node { return r.Segs[len(r.Segs)-1].Node }

// Index returns the child index within Parent that the position points
// at (or into, when inside a text leaf).
func (r *Resolved) Index() int { return r.Segs[len(r.Segs)-1].Index }

// ParentStart returns the absolute position of Parent's content start.
func (r *Resolved) ParentStart() int { return r.Segs[len(r.Segs)-1].Start }

// ParentEnd returns the absolute position of Parent's content end.
func (r *Resolved) ParentEnd() int {
	return r.ParentStart() + r.Parent().ContentSize()
}

// Node returns the ancestor node at the given depth; Node(0) is the
// root, Node(Depth()) is Parent.
func (r *Resolved) Node(depth int) *doctree.Node { return r.Segs[depth].Node }

// IndexAt returns the child index taken at the given depth.
func (r *Resolved) IndexAt(depth int) int { return r.Segs[depth].Index }

// StartAt returns the absolute content start of the ancestor at depth.
func (r *Resolved) StartAt(depth int) int { return r.Segs[depth].Start }

// BlockRange returns the absolute positions before and after the child
// of the ancestor at the given depth that this position points into.
func (r *Resolved) BlockRange(depth int) (from, to int) {
	seg := r.Segs[depth]
	idx := seg.Index
	if idx >= seg.Node.ChildCount() {
		idx = seg.Node.ChildCount() - 1
	}
	from = seg.Start + seg.Node.ChildOffset(idx)
	return from, from + seg.Node.Child(idx).Size()
}

// AtBlockStart reports whether the position sits at the start of its
// parent textblock's content.
func (r *Resolved) AtBlockStart() bool {
	return r.Pos == r.ParentStart()
}

// AtBlockEnd reports whether the position sits at the end of its parent
// textblock's content.
func (r *Resolved) AtBlockEnd() bool {
	return r.Pos == r.ParentEnd()
}

// FindAncestor walks outward from Parent and returns the depth of the
// nearest ancestor satisfying pred, or -1.
func (r *Resolved) FindAncestor(pred func(*doctree.Node) bool) int {
	for depth := len(r.Segs) - 1; depth >= 0; depth-- {
		if pred(r.Segs[depth].Node) {
			return depth
		}
	}
	return -1
}
