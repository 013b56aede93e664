package history

import (
	"testing"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

func para(text string) *doctree.Node {
	return doctree.MustNew(schema.KindParagraph, nil, doctree.NewText(text))
}

func docOf(blocks ...*doctree.Node) *doctree.Document {
	return doctree.FromRoot(doctree.MustNew(schema.KindDoc, nil, blocks...))
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d0 := docOf(para("hello"))
	h := New(0)

	tr := transaction.New(d0).Replace(6, 6, doctree.NewText(" world"))
	if tr.Err() != nil {
		t.Fatalf("edit: %v", tr.Err())
	}
	d1 := tr.Doc()
	selBefore := transaction.Collapsed(6)
	selAfter := transaction.Collapsed(12)
	h.Record(tr, selBefore, selAfter)

	if !h.CanUndo() || h.CanRedo() {
		t.Fatal("expected undo available, redo empty")
	}

	d, sel, ok, err := h.Undo(d1)
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if !d.Eq(d0) {
		t.Error("undo did not restore the original document")
	}
	if sel != selBefore {
		t.Errorf("undo selection = %+v, want %+v", sel, selBefore)
	}

	d, sel, ok, err = h.Redo(d)
	if err != nil || !ok {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if !d.Eq(d1) {
		t.Error("redo did not reproduce the edited document")
	}
	if sel != selAfter {
		t.Errorf("redo selection = %+v, want %+v", sel, selAfter)
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	d := docOf(para("x"))
	h := New(0)

	got, _, ok, err := h.Undo(d)
	if ok || err != nil || got != d {
		t.Errorf("empty undo: ok=%v err=%v", ok, err)
	}
	got, _, ok, err = h.Redo(d)
	if ok || err != nil || got != d {
		t.Errorf("empty redo: ok=%v err=%v", ok, err)
	}
}

func TestExcludedTransactionsNotRecorded(t *testing.T) {
	d := docOf(para("x"))
	h := New(0)

	tr := transaction.New(d).
		SetMeta(transaction.MetaAddToHistory, false).
		Replace(2, 2, doctree.NewText("y"))
	h.Record(tr, transaction.Collapsed(2), transaction.Collapsed(3))
	if h.CanUndo() {
		t.Error("excluded transaction was recorded")
	}

	// Selection-only transactions are skipped too.
	tr = transaction.New(d).SetSelection(transaction.Collapsed(1))
	h.Record(tr, transaction.Collapsed(0), transaction.Collapsed(1))
	if h.CanUndo() {
		t.Error("selection-only transaction was recorded")
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	d0 := docOf(para("a"))
	h := New(0)

	tr1 := transaction.New(d0).Replace(2, 2, doctree.NewText("b"))
	h.Record(tr1, transaction.Collapsed(2), transaction.Collapsed(3))
	d1 := tr1.Doc()

	d0b, _, _, _ := h.Undo(d1)
	if !h.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	tr2 := transaction.New(d0b).Replace(2, 2, doctree.NewText("c"))
	h.Record(tr2, transaction.Collapsed(2), transaction.Collapsed(3))
	if h.CanRedo() {
		t.Error("new edit must clear the redo stack")
	}
}

func TestMaxDepthEvictsOldest(t *testing.T) {
	d := docOf(para(""))
	h := New(2)

	cur := d
	for i := 0; i < 3; i++ {
		tr := transaction.New(cur).Replace(1, 1, doctree.NewText("x"))
		h.Record(tr, transaction.Collapsed(1), transaction.Collapsed(2))
		cur = tr.Doc()
	}
	if h.Depth() != 2 {
		t.Errorf("depth = %d, want 2", h.Depth())
	}
}
