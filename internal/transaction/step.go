package transaction

import (
	"fmt"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
)

// Step is a primitive tree mutation. Apply never mutates its input; it
// returns a new document sharing unchanged structure. Invert is
// computed against the document the step will be applied to.
type Step interface {
	Apply(doc *doctree.Document) (*doctree.Document, error)

	// Invert returns the step that undoes this one, relative to the
	// pre-apply document. Steps without document effect return nil.
	Invert(before *doctree.Document) (Step, error)

	// Span reports the positional effect of the step for offset
	// mapping; ok is false for steps that do not move positions.
	Span() (position.Span, bool)
}

// SetAttributeStep sets one attribute on the node starting at Pos.
type SetAttributeStep struct {
	Pos   int
	Name  string
	Value string
}

// Apply implements Step.
func (s *SetAttributeStep) Apply(doc *doctree.Document) (*doctree.Document, error) {
	r, err := position.Resolve(doc, s.Pos)
	if err != nil {
		return nil, err
	}
	target, err := nodeAtBoundary(r)
	if err != nil {
		return nil, err
	}
	if s.Name == "border" && target.Kind == schema.KindTable && !schema.ValidBorder(s.Value) {
		return nil, fmt.Errorf("%w: bad table border %q", schema.ErrViolation, s.Value)
	}
	return rebuildWithChild(r, len(r.Segs)-1, target.WithAttr(s.Name, s.Value)), nil
}

// Invert implements Step.
func (s *SetAttributeStep) Invert(before *doctree.Document) (Step, error) {
	r, err := position.Resolve(before, s.Pos)
	if err != nil {
		return nil, err
	}
	target, err := nodeAtBoundary(r)
	if err != nil {
		return nil, err
	}
	return &SetAttributeStep{Pos: s.Pos, Name: s.Name, Value: target.Attr(s.Name)}, nil
}

// Span implements Step; attribute changes never move positions.
func (s *SetAttributeStep) Span() (position.Span, bool) { return position.Span{}, false }

// nodeAtBoundary returns the child the resolved boundary position
// points at.
func nodeAtBoundary(r *position.Resolved) (*doctree.Node, error) {
	parent := r.Parent()
	if r.TextLeaf != nil || r.Index() >= parent.ChildCount() {
		return nil, fmt.Errorf("%w: no node at %d", position.ErrOutOfRange, r.Pos)
	}
	return parent.Child(r.Index()), nil
}

// rebuildWithChild replaces the child the position points at in the
// ancestor at the given depth, then rebuilds the spine up to the root.
func rebuildWithChild(r *position.Resolved, depth int, child *doctree.Node) *doctree.Document {
	for d := depth; d >= 0; d-- {
		parent := r.Node(d)
		kids := make([]*doctree.Node, parent.ChildCount())
		copy(kids, parent.Children)
		kids[r.IndexAt(d)] = child
		rebuilt, err := parent.WithChildren(kids)
		if err != nil {
			// Replacing a child with one of a kind the schema already
			// admitted cannot fail.
			panic(err)
		}
		child = rebuilt
	}
	return doctree.FromRoot(child)
}

// SetSelectionStep records the transaction's target selection. It has
// no document effect and no inverse; history restores the selection
// captured with each entry instead.
type SetSelectionStep struct {
	Sel Selection
}

// Apply implements Step.
func (s *SetSelectionStep) Apply(doc *doctree.Document) (*doctree.Document, error) {
	return doc, nil
}

// Invert implements Step.
func (s *SetSelectionStep) Invert(*doctree.Document) (Step, error) { return nil, nil }

// Span implements Step.
func (s *SetSelectionStep) Span() (position.Span, bool) { return position.Span{}, false }

// SetMetaStep attaches a flag to the transaction, e.g. MetaAddToHistory.
type SetMetaStep struct {
	Key   string
	Value any
}

// Apply implements Step.
func (s *SetMetaStep) Apply(doc *doctree.Document) (*doctree.Document, error) {
	return doc, nil
}

// Invert implements Step.
func (s *SetMetaStep) Invert(*doctree.Document) (Step, error) { return nil, nil }

// Span implements Step.
func (s *SetMetaStep) Span() (position.Span, bool) { return position.Span{}, false }
