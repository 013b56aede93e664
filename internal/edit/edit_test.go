package edit

import (
	"errors"
	"testing"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/markup"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

func newTestDoc(t *testing.T, src string) *doctree.Document {
	t.Helper()
	d, err := markup.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return d
}

func render(t *testing.T, d *doctree.Document) string {
	t.Helper()
	s, err := markup.Render(d, markup.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return s
}

func sel(anchor, head int) transaction.Selection {
	return transaction.Selection{Anchor: anchor, Head: head}
}

func TestToggleMarkAddsAndRemoves(t *testing.T) {
	doc := newTestDoc(t, `<p id="p">This is a start.</p>`)

	tr, err := ToggleMark(doc, sel(6, 8), schema.MarkBold, nil)
	if err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<p id="p">This <b>is</b> a start.</p>` {
		t.Fatalf("bolded = %q", got)
	}

	tr2, err := ToggleMark(tr.Doc(), sel(6, 8), schema.MarkBold, nil)
	if err != nil {
		t.Fatalf("ToggleMark again: %v", err)
	}
	if !tr2.Doc().Eq(doc) {
		t.Errorf("toggle twice did not restore: %q", render(t, tr2.Doc()))
	}
}

func TestToggleMarkPartialRunGoesBold(t *testing.T) {
	doc := newTestDoc(t, `<p>a<b>bc</b></p>`)
	// "a" is unmarked, so the toggle adds rather than removes.
	tr, err := ToggleMark(doc, sel(1, 4), schema.MarkBold, nil)
	if err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<p><b>abc</b></p>` {
		t.Errorf("got %q", got)
	}
}

func TestToggleMarkCollapsedIsNoop(t *testing.T) {
	doc := newTestDoc(t, `<p>ab</p>`)
	tr, err := ToggleMark(doc, sel(1, 1), schema.MarkBold, nil)
	if err != nil || tr != nil {
		t.Errorf("got tr=%v err=%v, want nil/nil", tr, err)
	}
}

func TestSetBlockStyleHeading(t *testing.T) {
	doc := newTestDoc(t, `<p id="p">Hello world</p>`)
	tr, err := SetBlockStyle(doc, sel(1, 3), schema.KindHeading, map[string]string{"level": "2"})
	if err != nil {
		t.Fatalf("SetBlockStyle: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<h2 id="p">Hello world</h2>` {
		t.Errorf("got %q", got)
	}
}

func TestSetBlockStylePreRejectsMarkedContent(t *testing.T) {
	doc := newTestDoc(t, `<p>a<b>b</b></p>`)
	_, err := SetBlockStyle(doc, sel(1, 3), schema.KindPre, nil)
	if !errors.Is(err, ErrStyle) {
		t.Errorf("err = %v, want ErrStyle", err)
	}
}

func TestToggleListWrapAndLift(t *testing.T) {
	doc := newTestDoc(t, `<p id="p">Hello world</p>`)

	tr, err := ToggleList(doc, sel(1, 1), schema.KindOrderedList)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p id="p">Hello world</p></li></ol>` {
		t.Fatalf("wrapped = %q", got)
	}

	after, _ := tr.Selection()
	tr2, err := ToggleList(tr.Doc(), after, schema.KindOrderedList)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if !tr2.Doc().Eq(doc) {
		t.Errorf("toggle twice did not restore: %q", render(t, tr2.Doc()))
	}
}

func TestToggleListRetypesOtherKind(t *testing.T) {
	doc := newTestDoc(t, `<ul><li><p>a</p></li><li><p>b</p></li></ul>`)
	tr, err := ToggleList(doc, sel(4, 4), schema.KindOrderedList)
	if err != nil {
		t.Fatalf("ToggleList: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p>a</p></li><li><p>b</p></li></ol>` {
		t.Errorf("got %q", got)
	}
}

func TestToggleListPartialLiftSplitsList(t *testing.T) {
	doc := newTestDoc(t, `<ol><li><p>a</p></li><li><p>b</p></li><li><p>c</p></li></ol>`)
	// Caret in "b": ol at 0, items of size 5, so item 2 spans [6,11)
	// and its text sits at 8.
	tr, err := ToggleList(doc, sel(8, 8), schema.KindOrderedList)
	if err != nil {
		t.Fatalf("ToggleList: %v", err)
	}
	want := `<ol><li><p>a</p></li></ol><p>b</p><ol><li><p>c</p></li></ol>`
	if got := render(t, tr.Doc()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToggleListNoCommonList(t *testing.T) {
	doc := newTestDoc(t, `<ul><li><p>ab</p></li></ul><p>cd</p>`)
	_, err := ToggleList(doc, sel(4, 10), schema.KindBulletList)
	if !errors.Is(err, ErrNoCommonList) {
		t.Errorf("err = %v, want ErrNoCommonList", err)
	}
}

func TestSplitListItemMiddle(t *testing.T) {
	doc := newTestDoc(t, `<ol><li><p>ad</p></li></ol>`)
	tr, err := SplitListItem(doc, sel(4, 4))
	if err != nil {
		t.Fatalf("SplitListItem: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p>a</p></li><li><p>d</p></li></ol>` {
		t.Fatalf("got %q", got)
	}
	after, ok := tr.Selection()
	if !ok || after != sel(8, 8) {
		t.Errorf("selection = %v, want caret at 8", after)
	}
}

func TestSplitListItemAtEdges(t *testing.T) {
	doc := newTestDoc(t, `<ol><li><p>ab</p></li></ol>`)

	tr, err := SplitListItem(doc, sel(2, 2)) // start of item content
	if err != nil {
		t.Fatalf("start split: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p></p></li><li><p>ab</p></li></ol>` {
		t.Errorf("start split = %q", got)
	}

	tr, err = SplitListItem(doc, sel(6, 6)) // end of item content
	if err != nil {
		t.Fatalf("end split: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p>ab</p></li><li><p></p></li></ol>` {
		t.Errorf("end split = %q", got)
	}
}

func TestSplitListItemAcrossItemsMergesFirst(t *testing.T) {
	doc := newTestDoc(t, `<ol><li><p>abc</p></li><li><p>def</p></li></ol>`)
	// From after "a" to after "e": the covered content goes, the two
	// items merge, and the merge point becomes the split point.
	tr, err := SplitListItem(doc, sel(4, 12))
	if err != nil {
		t.Fatalf("SplitListItem: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<ol><li><p>a</p></li><li><p>f</p></li></ol>` {
		t.Errorf("got %q", got)
	}
}

func TestSplitListItemOutsideList(t *testing.T) {
	doc := newTestDoc(t, `<p>ab</p>`)
	_, err := SplitListItem(doc, sel(1, 1))
	if !errors.Is(err, ErrNotInList) {
		t.Errorf("err = %v, want ErrNotInList", err)
	}
}

func TestIndentOutdentRoundTrip(t *testing.T) {
	doc := newTestDoc(t, `<p>a</p>`)
	tr, err := Indent(doc, sel(1, 1))
	if err != nil {
		t.Fatalf("Indent: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<blockquote><p>a</p></blockquote>` {
		t.Fatalf("indented = %q", got)
	}

	after, _ := tr.Selection()
	tr2, did, err := Outdent(tr.Doc(), after)
	if err != nil || !did {
		t.Fatalf("Outdent: did=%v err=%v", did, err)
	}
	if !tr2.Doc().Eq(doc) {
		t.Errorf("outdent did not restore: %q", render(t, tr2.Doc()))
	}
}

func TestOutdentNothingToDo(t *testing.T) {
	doc := newTestDoc(t, `<p>a</p>`)
	tr, did, err := Outdent(doc, sel(1, 1))
	if tr != nil || did || err != nil {
		t.Errorf("got tr=%v did=%v err=%v, want nil/false/nil", tr, did, err)
	}
}

func TestInsertTableSelectsFirstCell(t *testing.T) {
	doc := newTestDoc(t, `<p>x</p>`)
	tr, err := InsertTable(doc, sel(1, 1), 2, 2)
	if err != nil {
		t.Fatalf("InsertTable: %v", err)
	}
	d := tr.Doc()
	if d.Root.ChildCount() != 2 || d.Root.Child(1).Kind != schema.KindTable {
		t.Fatalf("doc = %q", render(t, d))
	}
	table := d.Root.Child(1)
	if table.ChildCount() != 2 || table.Child(0).ChildCount() != 2 {
		t.Errorf("table shape = %dx%d", table.ChildCount(), table.Child(0).ChildCount())
	}
	after, ok := tr.Selection()
	if !ok || after != sel(7, 7) {
		t.Errorf("selection = %v, want caret at 7 (first cell)", after)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestInsertTableReplacesEmptyParagraph(t *testing.T) {
	doc := doctree.NewDocument()
	tr, err := InsertTable(doc, sel(1, 1), 1, 1)
	if err != nil {
		t.Fatalf("InsertTable: %v", err)
	}
	d := tr.Doc()
	if d.Root.ChildCount() != 1 || d.Root.Child(0).Kind != schema.KindTable {
		t.Errorf("doc = %q", render(t, d))
	}
}

const bodyTable = `<table border="cell"><tr><td><p>a</p></td><td><p>b</p></td></tr><tr><td><p>c</p></td><td><p>d</p></td></tr></table>`

func TestAddRowBefore(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	// Caret in "c", the second row's first cell.
	tr, err := AddRow(doc, sel(16, 16), true)
	if err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	table := tr.Doc().Root.Child(0)
	if table.ChildCount() != 3 {
		t.Fatalf("rows = %d, want 3", table.ChildCount())
	}
	if table.Child(1).Child(0).TextContent() != "" {
		t.Errorf("inserted row is not empty")
	}
	if err := tr.Doc().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAddColumnAfterRightmost(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	// Caret in "b", the rightmost column.
	tr, err := AddColumn(doc, sel(9, 9), false)
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	table := tr.Doc().Root.Child(0)
	for i := 0; i < table.ChildCount(); i++ {
		if w := doctree.RowWidth(table.Child(i)); w != 3 {
			t.Errorf("row %d width = %d, want 3", i, w)
		}
	}
	if err := tr.Doc().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

const headedTable = `<table border="cell"><tr><th colspan="2"><p>h</p></th></tr><tr><td><p>a</p></td><td><p>b</p></td></tr></table>`

func TestAddColumnRespansHeader(t *testing.T) {
	doc := newTestDoc(t, headedTable)
	// Header row spans [1,9); body "a" cell starts at 10, its text at 12.
	tr, err := AddColumn(doc, sel(12, 12), false)
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	table := tr.Doc().Root.Child(0)
	if got := doctree.ColSpan(table.Child(0).Child(0)); got != 3 {
		t.Errorf("header colspan = %d, want 3", got)
	}
	if err := tr.Doc().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAddHeader(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	tr, err := AddHeader(doc, sel(4, 4))
	if err != nil {
		t.Fatalf("AddHeader: %v", err)
	}
	table := tr.Doc().Root.Child(0)
	if !isHeaderRow(table.Child(0)) {
		t.Fatal("no header row inserted")
	}
	if got := doctree.ColSpan(table.Child(0).Child(0)); got != 2 {
		t.Errorf("header colspan = %d, want 2", got)
	}
	if err := tr.Doc().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// Idempotent: a second AddHeader does nothing.
	tr2, err := AddHeader(tr.Doc(), sel(4, 4))
	if err != nil || tr2 != nil {
		t.Errorf("second AddHeader: tr=%v err=%v", tr2, err)
	}
}

func TestDeleteAreaColumnAndLastColumn(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	// Delete the column holding "b".
	tr, err := DeleteArea(doc, sel(9, 9), AreaColumn)
	if err != nil {
		t.Fatalf("DeleteArea(column): %v", err)
	}
	table := tr.Doc().Root.Child(0)
	if w := doctree.RowWidth(table.Child(0)); w != 1 {
		t.Fatalf("width after delete = %d, want 1", w)
	}

	// Deleting the remaining column removes the table.
	tr2, err := DeleteArea(tr.Doc(), sel(4, 4), AreaColumn)
	if err != nil {
		t.Fatalf("DeleteArea(last column): %v", err)
	}
	for i := 0; i < tr2.Doc().Root.ChildCount(); i++ {
		if tr2.Doc().Root.Child(i).Kind == schema.KindTable {
			t.Error("table still present")
		}
	}
}

func TestDeleteAreaTableLeavesParagraph(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	tr, err := DeleteArea(doc, sel(4, 4), AreaTable)
	if err != nil {
		t.Fatalf("DeleteArea(table): %v", err)
	}
	d := tr.Doc()
	if d.Root.ChildCount() != 1 || d.Root.Child(0).Kind != schema.KindParagraph {
		t.Errorf("doc = %q", render(t, d))
	}
}

func TestTableOpsOutsideTable(t *testing.T) {
	doc := newTestDoc(t, `<p>a</p>`)
	if _, err := AddRow(doc, sel(1, 1), false); !errors.Is(err, ErrNotInTable) {
		t.Errorf("AddRow err = %v, want ErrNotInTable", err)
	}
	if _, err := DeleteArea(doc, sel(1, 1), AreaRow); !errors.Is(err, ErrNotInTable) {
		t.Errorf("DeleteArea err = %v, want ErrNotInTable", err)
	}
}

func TestSetTableBorder(t *testing.T) {
	doc := newTestDoc(t, bodyTable)
	tr, err := SetTableBorder(doc, sel(4, 4), schema.BorderOuter)
	if err != nil {
		t.Fatalf("SetTableBorder: %v", err)
	}
	if got := tr.Doc().Root.Child(0).Attr("border"); got != schema.BorderOuter {
		t.Errorf("border = %q", got)
	}
	if _, err := SetTableBorder(doc, sel(4, 4), "dotted"); err == nil {
		t.Error("invalid border accepted")
	}
}

func TestInsertLinkCollapsedInsertsURL(t *testing.T) {
	doc := newTestDoc(t, `<p>ab</p>`)
	tr, err := InsertLink(doc, sel(2, 2), "https://x.test")
	if err != nil {
		t.Fatalf("InsertLink: %v", err)
	}
	want := `<p>a<a href="https://x.test">https://x.test</a>b</p>`
	if got := render(t, tr.Doc()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDeleteLinkSingleRun(t *testing.T) {
	doc := newTestDoc(t, `<p>a<a href="https://x.test">x</a>b</p>`)
	// Caret inside the linked run.
	tr, err := DeleteLink(doc, sel(3, 3))
	if err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<p>axb</p>` {
		t.Errorf("got %q", got)
	}
}

func TestDeleteLinkRequiresExactlyOne(t *testing.T) {
	doc := newTestDoc(t, `<p><a href="https://x.test">x</a>m<a href="https://y.test">y</a></p>`)
	_, err := DeleteLink(doc, sel(1, 4))
	if !errors.Is(err, ErrNoSingleLinkSelection) {
		t.Errorf("err = %v, want ErrNoSingleLinkSelection", err)
	}
}

func TestImageInsertModifyCut(t *testing.T) {
	doc := newTestDoc(t, `<p>ab</p>`)
	tr, err := InsertImage(doc, sel(2, 2), "a.png", "pic")
	if err != nil {
		t.Fatalf("InsertImage: %v", err)
	}
	after, _ := tr.Selection()
	if after != sel(2, 3) {
		t.Fatalf("selection = %v, want image selected [2,3)", after)
	}

	tr2, err := ModifyImage(tr.Doc(), after, "b.png", "pic2")
	if err != nil {
		t.Fatalf("ModifyImage: %v", err)
	}
	img, ok := tr2.Doc().NodeAfter(2)
	if !ok || img.Attr("src") != "b.png" || img.Attr("alt") != "pic2" {
		t.Errorf("image attrs = %v", img.Attrs)
	}

	tr3, info, err := CutImage(tr2.Doc(), after)
	if err != nil {
		t.Fatalf("CutImage: %v", err)
	}
	if info.Src != "b.png" || info.Alt != "pic2" {
		t.Errorf("cut info = %+v", info)
	}
	if !tr3.Doc().Eq(doc) {
		t.Errorf("cut did not restore plain text: %q", render(t, tr3.Doc()))
	}
}

func TestImageOpsNeedSingleImage(t *testing.T) {
	doc := newTestDoc(t, `<p>ab</p>`)
	if _, err := ModifyImage(doc, sel(1, 2), "a.png", ""); !errors.Is(err, ErrNoImageSelection) {
		t.Errorf("err = %v, want ErrNoImageSelection", err)
	}
}

func TestContainerAndButtonLifecycle(t *testing.T) {
	doc := newTestDoc(t, `<p>a</p>`)
	tr, err := AddContainer(doc, ContainerSpec{ID: "side", Class: "panel"})
	if err != nil {
		t.Fatalf("AddContainer: %v", err)
	}
	d := tr.Doc()
	c, _, ok := d.FindByID("side")
	if !ok || c.Kind != schema.KindContainer || c.Attr("class") != "panel" {
		t.Fatalf("container missing: %q", render(t, d))
	}

	tr2, err := AddButton(d, "go", "side", "", "Go")
	if err != nil {
		t.Fatalf("AddButton: %v", err)
	}
	d = tr2.Doc()
	b, _, ok := d.FindByID("go")
	if !ok || b.Kind != schema.KindButton || b.TextContent() != "Go" {
		t.Fatalf("button missing: %q", render(t, d))
	}

	tr3, err := RemoveContainer(d, "side")
	if err != nil {
		t.Fatalf("RemoveContainer: %v", err)
	}
	if _, _, ok := tr3.Doc().FindByID("side"); ok {
		t.Error("container still present after removal")
	}
	if _, err := RemoveContainer(tr3.Doc(), "side"); !errors.Is(err, ErrUnknownID) {
		t.Errorf("err = %v, want ErrUnknownID", err)
	}
}

func TestDeleteRangePeelsAsymmetricShapes(t *testing.T) {
	doc := newTestDoc(t, `<ul><li><p>ab</p><p>cd</p></li></ul><p>ef</p>`)
	// From inside "ab" to inside "ef": the endpoints share no list, so
	// the single join step is rejected and the range is peeled.
	tr := transaction.New(doc)
	// doc: ul[0,12) li[1,11) p1[2,6) "ab" at 3..5, p2[6,10); p(ef) at 12, "ef" at 13..15.
	DeleteRange(tr, 4, 14)
	if err := tr.Err(); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	want := `<ul><li><p>a</p></li></ul><p>f</p>`
	if got := render(t, tr.Doc()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSplitBlockKeepsKindDropsID(t *testing.T) {
	doc := newTestDoc(t, `<h2 id="t">ab</h2>`)
	tr, err := SplitBlock(doc, sel(2, 2))
	if err != nil {
		t.Fatalf("SplitBlock: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<h2 id="t">a</h2><h2>b</h2>` {
		t.Fatalf("split = %q", got)
	}
	after, _ := tr.Selection()
	if after.Anchor != 4 || after.Head != 4 {
		t.Fatalf("selection = %+v, want caret at 4", after)
	}
}

func TestSplitBlockDeletesSelectionFirst(t *testing.T) {
	doc := newTestDoc(t, `<p>abcd</p>`)
	tr, err := SplitBlock(doc, sel(2, 4))
	if err != nil {
		t.Fatalf("SplitBlock: %v", err)
	}
	if got := render(t, tr.Doc()); got != `<p>a</p><p>d</p>` {
		t.Fatalf("split = %q", got)
	}
}
