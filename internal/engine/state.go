package engine

import (
	"strconv"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
)

// SelectionState snapshots the formatting context at the selection so
// a host can light up its toolbar. Marks holds the mark names active
// over the whole selection; Style is the textblock style at the
// selection start ("p", "h1".."h6", "pre", or empty outside text).
type SelectionState struct {
	Collapsed     bool
	Marks         map[string]bool
	Style         string
	InOrderedList bool
	InBulletList  bool
	InTable       bool
	LinkHref      string
	ImageSrc      string
}

// SelectionState computes the current selection's formatting context.
func (e *Engine) SelectionState() SelectionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := SelectionState{Collapsed: e.sel.Empty(), Marks: map[string]bool{}}
	r, err := position.Resolve(e.doc, e.sel.From())
	if err != nil {
		return st
	}
	for d := r.Depth(); d >= 0; d-- {
		switch n := r.Node(d); n.Kind {
		case schema.KindParagraph:
			st.Style = "p"
		case schema.KindHeading:
			lv, _ := strconv.Atoi(n.Attr("level"))
			if lv < 1 || lv > 6 {
				lv = 1
			}
			st.Style = "h" + strconv.Itoa(lv)
		case schema.KindPre:
			st.Style = "pre"
		case schema.KindOrderedList:
			st.InOrderedList = true
		case schema.KindBulletList:
			st.InBulletList = true
		case schema.KindTable:
			st.InTable = true
		}
	}

	leaves := e.selectionLeaves(r)
	if len(leaves) > 0 {
		kinds := []schema.MarkKind{
			schema.MarkBold, schema.MarkItalic, schema.MarkUnderline,
			schema.MarkStrike, schema.MarkCode, schema.MarkLink,
		}
		for _, kind := range kinds {
			all := true
			for _, leaf := range leaves {
				if !doctree.HasMark(leaf.Marks, kind) {
					all = false
					break
				}
			}
			if all {
				st.Marks[kind.String()] = true
			}
		}
		if m, ok := doctree.FindMark(leaves[0].Marks, schema.MarkLink); ok {
			st.LinkHref = m.Attr("href")
		}
	}

	if e.sel.To()-e.sel.From() == 1 {
		if n, ok := e.doc.NodeAfter(e.sel.From()); ok && n.Kind == schema.KindImage {
			st.ImageSrc = n.Attr("src")
		}
	}
	return st
}

// selectionLeaves returns the text leaves the selection covers; a
// collapsed caret resolves to the leaf it sits in.
func (e *Engine) selectionLeaves(r *position.Resolved) []*doctree.Node {
	if e.sel.Empty() {
		if r.TextLeaf != nil {
			return []*doctree.Node{r.TextLeaf}
		}
		return nil
	}
	var leaves []*doctree.Node
	e.doc.NodesBetween(e.sel.From(), e.sel.To(), func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.IsText() {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}
