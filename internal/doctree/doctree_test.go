package doctree

import (
	"errors"
	"testing"

	"github.com/willwagner/markupeditor/internal/schema"
)

func para(text string, marks ...Mark) *Node {
	if text == "" {
		return MustNew(schema.KindParagraph, nil)
	}
	return MustNew(schema.KindParagraph, nil, NewText(text, marks...))
}

func docOf(blocks ...*Node) *Document {
	return FromRoot(MustNew(schema.KindDoc, nil, blocks...))
}

func TestNodeSizes(t *testing.T) {
	leaf := NewText("héllo")
	if leaf.Size() != 5 {
		t.Errorf("text size = %d, want 5 (runes, not bytes)", leaf.Size())
	}

	p := para("hello")
	if p.Size() != 7 {
		t.Errorf("paragraph size = %d, want 7", p.Size())
	}
	if p.ContentSize() != 5 {
		t.Errorf("paragraph content size = %d, want 5", p.ContentSize())
	}

	img, err := NewImage("pic.png", "a picture")
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if img.Size() != 1 {
		t.Errorf("image size = %d, want 1", img.Size())
	}

	d := docOf(para("ab"), para("cd"))
	if d.Size() != 8 {
		t.Errorf("doc size = %d, want 8", d.Size())
	}
}

func TestNewRejectsIllegalChild(t *testing.T) {
	_, err := New(schema.KindParagraph, nil, para("x"))
	if !errors.Is(err, schema.ErrViolation) {
		t.Errorf("paragraph-in-paragraph should violate schema, got %v", err)
	}
	_, err = New(schema.KindOrderedList, nil, para("x"))
	if !errors.Is(err, schema.ErrViolation) {
		t.Errorf("paragraph-in-list should violate schema, got %v", err)
	}
}

func TestRetype(t *testing.T) {
	p := para("title")
	h, err := p.Retype(schema.KindHeading, map[string]string{"level": "2"})
	if err != nil {
		t.Fatalf("Retype: %v", err)
	}
	if h.Kind != schema.KindHeading || h.Attr("level") != "2" {
		t.Errorf("retyped node = %s level %s", h.Kind, h.Attr("level"))
	}
	if h.TextContent() != "title" {
		t.Error("content lost in retype")
	}

	marked := para("x", Mark{Kind: schema.MarkBold})
	if _, err := marked.Retype(schema.KindPre, nil); !errors.Is(err, schema.ErrViolation) {
		t.Errorf("marked text into pre should violate schema, got %v", err)
	}
}

func TestNodesBetween(t *testing.T) {
	d := docOf(para("ab"), para("cd"))

	var kinds []schema.NodeKind
	var positions []int
	d.NodesBetween(0, d.Size(), func(n *Node, pos int, _ *Node) bool {
		kinds = append(kinds, n.Kind)
		positions = append(positions, pos)
		return true
	})

	wantKinds := []schema.NodeKind{schema.KindParagraph, schema.KindText, schema.KindParagraph, schema.KindText}
	wantPos := []int{0, 1, 4, 5}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("visited %d nodes, want %d", len(kinds), len(wantKinds))
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] || positions[i] != wantPos[i] {
			t.Errorf("visit %d = %s@%d, want %s@%d", i, kinds[i], positions[i], wantKinds[i], wantPos[i])
		}
	}
}

func TestTextBetween(t *testing.T) {
	d := docOf(para("This is a start."))
	if got := d.TextBetween(6, 8, " "); got != "is" {
		t.Errorf("TextBetween(6,8) = %q, want %q", got, "is")
	}
	d2 := docOf(para("ab"), para("cd"))
	if got := d2.TextBetween(0, d2.Size(), "\n"); got != "ab\ncd" {
		t.Errorf("TextBetween all = %q", got)
	}
}

func TestSliceTrimsPartialBlocks(t *testing.T) {
	d := docOf(para("hello"), para("world"))

	// Cover the tail of the first block and the head of the second.
	nodes := d.Slice(4, 10)
	if len(nodes) != 2 {
		t.Fatalf("slice returned %d nodes, want 2", len(nodes))
	}
	if nodes[0].TextContent() != "lo" || nodes[1].TextContent() != "wo" {
		t.Errorf("slice = %q / %q, want lo / wo", nodes[0].TextContent(), nodes[1].TextContent())
	}

	// A fully covered block is shared, not copied.
	nodes = d.Slice(0, 7)
	if nodes[0] != d.Root.Child(0) {
		t.Error("fully covered block should be shared")
	}

	// An empty range, even strictly inside a block, covers nothing.
	if nodes = d.Slice(3, 3); nodes != nil {
		t.Errorf("empty range slice = %v, want nil", nodes)
	}
}

func TestWithAttrEmptyValueRemoves(t *testing.T) {
	p := MustNew(schema.KindParagraph, map[string]string{"id": "x"}, NewText("a"))
	cleared := p.WithAttr("id", "")
	if _, ok := cleared.Attrs["id"]; ok {
		t.Error("empty value must remove the key")
	}
	plain := MustNew(schema.KindParagraph, nil, NewText("a"))
	if !cleared.Eq(plain) || !plain.Eq(cleared) {
		t.Error("cleared node should equal one built without the attribute")
	}
}

func TestFindByID(t *testing.T) {
	p := MustNew(schema.KindParagraph, map[string]string{"id": "p"}, NewText("x"))
	d := docOf(para("a"), p)
	n, pos, ok := d.FindByID("p")
	if !ok || n != p || pos != 3 {
		t.Errorf("FindByID = %v@%d ok=%v", n, pos, ok)
	}
	if _, _, ok := d.FindByID("missing"); ok {
		t.Error("FindByID should miss")
	}
}

func TestMergeInline(t *testing.T) {
	bold := Mark{Kind: schema.MarkBold}
	merged := MergeInline([]*Node{NewText("a"), NewText("b"), NewText("", bold), NewText("c", bold), NewText("d", bold)})
	if len(merged) != 2 {
		t.Fatalf("merged into %d leaves, want 2", len(merged))
	}
	if merged[0].Text != "ab" || merged[1].Text != "cd" {
		t.Errorf("merged = %q, %q", merged[0].Text, merged[1].Text)
	}
	if !HasMark(merged[1].Marks, schema.MarkBold) {
		t.Error("marks lost in merge")
	}
}

func TestMarkSetKeyedByKind(t *testing.T) {
	set := AddMark(nil, Mark{Kind: schema.MarkBold})
	set = AddMark(set, Mark{Kind: schema.MarkLink, Attrs: map[string]string{"href": "a"}})
	set = AddMark(set, Mark{Kind: schema.MarkLink, Attrs: map[string]string{"href": "b"}})
	if len(set) != 2 {
		t.Fatalf("mark set size = %d, want 2 (same kind replaces)", len(set))
	}
	link, _ := FindMark(set, schema.MarkLink)
	if link.Attr("href") != "b" {
		t.Errorf("link href = %q, want b", link.Attr("href"))
	}
	set = RemoveMark(set, schema.MarkBold)
	if HasMark(set, schema.MarkBold) {
		t.Error("bold not removed")
	}
}

func TestValidateTableShape(t *testing.T) {
	cell := func(text string) *Node {
		return MustNew(schema.KindTableCell, nil, para(text))
	}
	row := func(cells ...*Node) *Node {
		return MustNew(schema.KindTableRow, nil, cells...)
	}

	good := docOf(MustNew(schema.KindTable, nil,
		row(MustNew(schema.KindTableHeader, map[string]string{"colspan": "2"}, para("h"))),
		row(cell("a"), cell("b")),
	))
	if err := good.Validate(); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}

	ragged := docOf(MustNew(schema.KindTable, nil,
		row(cell("a"), cell("b")),
		row(cell("c")),
	))
	if err := ragged.Validate(); !errors.Is(err, schema.ErrViolation) {
		t.Errorf("ragged table should violate schema, got %v", err)
	}

	badHeader := docOf(MustNew(schema.KindTable, nil,
		row(MustNew(schema.KindTableHeader, map[string]string{"colspan": "1"}, para("h"))),
		row(cell("a"), cell("b")),
	))
	if err := badHeader.Validate(); !errors.Is(err, schema.ErrViolation) {
		t.Errorf("short header colspan should violate schema, got %v", err)
	}
}

func TestValidateContainerIDs(t *testing.T) {
	c1 := MustNew(schema.KindContainer, map[string]string{"id": "c"}, para("a"))
	c2 := MustNew(schema.KindContainer, map[string]string{"id": "c"}, para("b"))
	d := docOf(c1, c2)
	if err := d.Validate(); !errors.Is(err, schema.ErrViolation) {
		t.Errorf("duplicate container id should violate schema, got %v", err)
	}
}
