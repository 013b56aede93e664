package doctree

import (
	"fmt"
	"strconv"

	"github.com/willwagner/markupeditor/internal/schema"
)

// Document is an immutable snapshot of the node tree. Every applied
// transaction produces a new Document value; old snapshots stay valid
// for as long as history retains them.
type Document struct {
	Root *Node
}

// NewDocument returns the empty document: a root holding one empty
// paragraph.
func NewDocument() *Document {
	p := MustNew(schema.KindParagraph, nil)
	return &Document{Root: MustNew(schema.KindDoc, nil, p)}
}

// FromRoot wraps an existing root node.
func FromRoot(root *Node) *Document {
	return &Document{Root: root}
}

// Size returns the document's content size; valid positions are
// 0..Size inclusive.
func (d *Document) Size() int { return d.Root.ContentSize() }

// Eq reports deep equality with another document.
func (d *Document) Eq(o *Document) bool { return d.Root.Eq(o.Root) }

// FindByID locates the node with the given "id" attribute and returns
// it with the absolute position before it.
func (d *Document) FindByID(id string) (*Node, int, bool) {
	var found *Node
	var foundPos int
	d.NodesBetween(0, d.Size(), func(n *Node, pos int, _ *Node) bool {
		if found != nil {
			return false
		}
		if n.Attr("id") == id {
			found, foundPos = n, pos
			return false
		}
		return true
	})
	return found, foundPos, found != nil
}

// Validate checks the document-wide invariants: container id uniqueness
// and table shape (uniform row widths, header colspan equal to the
// column count, no colspanned body cells).
func (d *Document) Validate() error {
	seen := make(map[string]bool)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.Kind == schema.KindContainer {
			id := n.Attr("id")
			if seen[id] {
				return fmt.Errorf("%w: duplicate container id %q", schema.ErrViolation, id)
			}
			seen[id] = true
		}
		if n.Kind == schema.KindTable {
			if err := validateTable(n); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Root)
}

func validateTable(table *Node) error {
	cols := -1
	for _, row := range table.Children {
		w := RowWidth(row)
		if cols == -1 {
			cols = w
		} else if w != cols {
			return fmt.Errorf("%w: table row width %d, want %d", schema.ErrViolation, w, cols)
		}
		for _, cell := range row.Children {
			if cell.Kind == schema.KindTableHeader && ColSpan(cell) != cols {
				return fmt.Errorf("%w: header colspan %d, want %d", schema.ErrViolation, ColSpan(cell), cols)
			}
		}
	}
	return nil
}

// RowWidth returns the column count implied by a row's cells.
func RowWidth(row *Node) int {
	w := 0
	for _, cell := range row.Children {
		if cell.Kind == schema.KindTableHeader {
			w += ColSpan(cell)
		} else {
			w++
		}
	}
	return w
}

// ColSpan returns a header cell's colspan attribute, defaulting to 1.
func ColSpan(cell *Node) int {
	n, err := strconv.Atoi(cell.Attr("colspan"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
