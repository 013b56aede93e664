package transaction

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
)

// Well-known meta keys.
const (
	// MetaAddToHistory set to false keeps the transaction out of the
	// undo stack. Programmatic setup and internal cleanup use it.
	MetaAddToHistory = "addToHistory"
)

// Transaction is an ordered sequence of steps built against one
// document snapshot. Steps apply eagerly as they are appended; the
// first failure poisons the transaction and later calls are no-ops.
type Transaction struct {
	before   *doctree.Document
	doc      *doctree.Document
	steps    []Step
	inverses []Step
	spans    []position.Span
	sel      *Selection
	meta     map[string]any
	err      error
}

// New starts a transaction against doc.
func New(doc *doctree.Document) *Transaction {
	return &Transaction{before: doc, doc: doc}
}

// Step appends and applies one step.
func (t *Transaction) Step(s Step) *Transaction {
	if t.err != nil {
		return t
	}
	inv, err := s.Invert(t.doc)
	if err != nil {
		t.err = err
		return t
	}
	next, err := s.Apply(t.doc)
	if err != nil {
		t.err = err
		return t
	}
	t.doc = next
	t.steps = append(t.steps, s)
	if inv != nil {
		t.inverses = append(t.inverses, inv)
	}
	if span, ok := s.Span(); ok {
		t.spans = append(t.spans, span)
	}
	switch v := s.(type) {
	case *SetSelectionStep:
		sel := v.Sel
		t.sel = &sel
	case *SetMetaStep:
		if t.meta == nil {
			t.meta = make(map[string]any)
		}
		t.meta[v.Key] = v.Value
	}
	return t
}

// Replace appends a ReplaceRange step.
func (t *Transaction) Replace(from, to int, content ...*doctree.Node) *Transaction {
	return t.Step(&ReplaceStep{From: from, To: to, Content: content})
}

// Delete appends a deletion of [from, to).
func (t *Transaction) Delete(from, to int) *Transaction {
	return t.Replace(from, to)
}

// SetAttr appends a SetAttribute step for the node starting at pos.
func (t *Transaction) SetAttr(pos int, name, value string) *Transaction {
	return t.Step(&SetAttributeStep{Pos: pos, Name: name, Value: value})
}

// SetSelection records the transaction's target selection.
func (t *Transaction) SetSelection(sel Selection) *Transaction {
	return t.Step(&SetSelectionStep{Sel: sel})
}

// SetMeta attaches a meta flag.
func (t *Transaction) SetMeta(key string, value any) *Transaction {
	return t.Step(&SetMetaStep{Key: key, Value: value})
}

// Err returns the first step failure, if any.
func (t *Transaction) Err() error { return t.err }

// Doc returns the document as of the last applied step.
func (t *Transaction) Doc() *doctree.Document { return t.doc }

// Before returns the snapshot the transaction was started against.
func (t *Transaction) Before() *doctree.Document { return t.before }

// Steps returns the applied steps in order.
func (t *Transaction) Steps() []Step { return t.steps }

// DocChanged reports whether any step changed the document.
func (t *Transaction) DocChanged() bool { return len(t.spans) > 0 }

// Spans returns the positional spans of the applied steps, in order.
// Positions valid against Before are mapped to Doc with these.
func (t *Transaction) Spans() []position.Span { return t.spans }

// Selection returns the explicitly set target selection, if any.
func (t *Transaction) Selection() (Selection, bool) {
	if t.sel == nil {
		return Selection{}, false
	}
	return *t.sel, true
}

// Meta returns the value stored for a meta key.
func (t *Transaction) Meta(key string) (any, bool) {
	v, ok := t.meta[key]
	return v, ok
}

// AddsToHistory reports whether history should record the transaction.
func (t *Transaction) AddsToHistory() bool {
	if v, ok := t.meta[MetaAddToHistory]; ok {
		if b, isBool := v.(bool); isBool {
			return b
		}
	}
	return true
}

// Inverses returns the inverse steps in the order they must be applied
// to Doc to restore Before: the reverse of step order.
func (t *Transaction) Inverses() []Step {
	out := make([]Step, len(t.inverses))
	for i, s := range t.inverses {
		out[len(t.inverses)-1-i] = s
	}
	return out
}

// MapPos maps a position valid against Before to Doc.
func (t *Transaction) MapPos(pos int) int {
	return position.MapOffset(pos, t.spans)
}

// MapSelection maps a selection valid against Before to Doc.
func (t *Transaction) MapSelection(sel Selection) Selection {
	return Selection{
		Anchor: position.MapOffset(sel.Anchor, t.spans),
		Head:   position.MapOffset(sel.Head, t.spans),
	}
}
