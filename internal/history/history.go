// Package history maintains the undo and redo stacks of applied
// transactions.
//
// Each recorded entry carries the transaction's forward steps, its
// inverse steps, and the selections on either side of it. Undo applies
// the inverses and restores the prior selection; redo replays the
// forward steps. Transactions flagged with addToHistory=false are
// applied by the engine but never recorded.
package history

import (
	"errors"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// DefaultMaxDepth bounds the undo stack when no explicit depth is
// configured.
const DefaultMaxDepth = 1000

// ErrApplyFailed reports that replaying an entry's steps failed; the
// entry is pushed back and the document is unchanged.
var ErrApplyFailed = errors.New("history: step replay failed")

// Entry is one undoable unit.
type Entry struct {
	forward   []transaction.Step
	inverses  []transaction.Step
	selBefore transaction.Selection
	selAfter  transaction.Selection
}

// History holds the undo and redo stacks for one engine instance.
type History struct {
	undo     []*Entry
	redo     []*Entry
	maxDepth int
}

// New creates a history bounded to maxDepth entries; a non-positive
// depth falls back to DefaultMaxDepth.
func New(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &History{maxDepth: maxDepth}
}

// Record pushes a finished transaction. Transactions that changed
// nothing or opted out of history are ignored. Any recorded edit
// clears the redo stack.
func (h *History) Record(tr *transaction.Transaction, selBefore, selAfter transaction.Selection) {
	if !tr.DocChanged() || !tr.AddsToHistory() {
		return
	}
	h.undo = append(h.undo, &Entry{
		forward:   tr.Steps(),
		inverses:  tr.Inverses(),
		selBefore: selBefore,
		selAfter:  selAfter,
	})
	h.redo = nil
	if len(h.undo) > h.maxDepth {
		h.undo = h.undo[len(h.undo)-h.maxDepth:]
	}
}

// Undo reverses the most recent entry against doc. The third return is
// false when the stack is empty; that is a no-op, not an error.
func (h *History) Undo(doc *doctree.Document) (*doctree.Document, transaction.Selection, bool, error) {
	if len(h.undo) == 0 {
		return doc, transaction.Selection{}, false, nil
	}
	entry := h.undo[len(h.undo)-1]
	next, err := replay(doc, entry.inverses)
	if err != nil {
		return doc, transaction.Selection{}, false, err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, entry)
	return next, entry.selBefore, true, nil
}

// Redo replays the most recently undone entry against doc.
func (h *History) Redo(doc *doctree.Document) (*doctree.Document, transaction.Selection, bool, error) {
	if len(h.redo) == 0 {
		return doc, transaction.Selection{}, false, nil
	}
	entry := h.redo[len(h.redo)-1]
	next, err := replay(doc, entry.forward)
	if err != nil {
		return doc, transaction.Selection{}, false, err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, entry)
	return next, entry.selAfter, true, nil
}

func replay(doc *doctree.Document, steps []transaction.Step) (*doctree.Document, error) {
	tr := transaction.New(doc)
	for _, s := range steps {
		tr.Step(s)
	}
	if tr.Err() != nil {
		return nil, errors.Join(ErrApplyFailed, tr.Err())
	}
	return tr.Doc(), nil
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the current undo stack depth.
func (h *History) Depth() int { return len(h.undo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
