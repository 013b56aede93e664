package edit

import (
	"fmt"
	"strconv"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// Area selects the target of DeleteArea.
type Area int

const (
	AreaRow Area = iota
	AreaColumn
	AreaTable
)

// tableCtx is the resolved table context of a selection: the table
// node, its position, and the row/cell the selection start sits in.
type tableCtx struct {
	table    *doctree.Node
	pos      int // position before the table
	rowIdx   int
	colIdx   int
	inHeader bool
}

func findTable(doc *doctree.Document, sel transaction.Selection) (*tableCtx, error) {
	r, err := position.Resolve(doc, sel.From())
	if err != nil {
		return nil, err
	}
	depth := r.FindAncestor(func(n *doctree.Node) bool { return n.Kind == schema.KindTable })
	if depth < 1 {
		return nil, ErrNotInTable
	}
	ctx := &tableCtx{table: r.Node(depth), pos: r.StartAt(depth) - 1}
	if r.Depth() > depth {
		ctx.rowIdx = r.IndexAt(depth)
		row := r.Node(depth + 1)
		ctx.inHeader = isHeaderRow(row)
		if r.Depth() > depth+1 {
			ctx.colIdx = r.IndexAt(depth + 1)
			if ctx.colIdx >= row.ChildCount() {
				ctx.colIdx = row.ChildCount() - 1
			}
		}
	}
	if ctx.rowIdx >= ctx.table.ChildCount() {
		ctx.rowIdx = ctx.table.ChildCount() - 1
	}
	return ctx, nil
}

func isHeaderRow(row *doctree.Node) bool {
	return row.ChildCount() > 0 && row.Child(0).Kind == schema.KindTableHeader
}

// columnCount returns the table's column count, taken from its first
// body row, or from the header span when only a header exists.
func columnCount(table *doctree.Node) int {
	for _, row := range table.Children {
		if !isHeaderRow(row) {
			return row.ChildCount()
		}
	}
	if table.ChildCount() > 0 {
		return doctree.RowWidth(table.Child(0))
	}
	return 0
}

func emptyCell() *doctree.Node {
	return doctree.MustNew(schema.KindTableCell, nil, doctree.MustNew(schema.KindParagraph, nil))
}

func emptyRow(cols int) *doctree.Node {
	cells := make([]*doctree.Node, cols)
	for i := range cells {
		cells[i] = emptyCell()
	}
	return doctree.MustNew(schema.KindTableRow, nil, cells...)
}

func headerRow(cols int) *doctree.Node {
	th := doctree.MustNew(schema.KindTableHeader,
		map[string]string{"colspan": strconv.Itoa(cols)},
		doctree.MustNew(schema.KindParagraph, nil))
	return doctree.MustNew(schema.KindTableRow, nil, th)
}

// InsertTable inserts a rows-by-cols table after the block holding the
// caret and selects the first cell. Inserting into an empty paragraph
// replaces the paragraph instead.
func InsertTable(doc *doctree.Document, sel transaction.Selection, rows, cols int) (*transaction.Transaction, error) {
	return InsertTableWithBorder(doc, sel, rows, cols, "")
}

// InsertTableWithBorder is InsertTable with an explicit border style;
// an empty border takes the schema default.
func InsertTableWithBorder(doc *doctree.Document, sel transaction.Selection, rows, cols int, border string) (*transaction.Transaction, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: table needs at least one row and column", schema.ErrViolation)
	}
	var attrs map[string]string
	if border != "" {
		if !schema.ValidBorder(border) {
			return nil, fmt.Errorf("%w: bad border %q", schema.ErrViolation, border)
		}
		attrs = map[string]string{"border": border}
	}
	rowNodes := make([]*doctree.Node, rows)
	for i := range rowNodes {
		rowNodes[i] = emptyRow(cols)
	}
	table, err := doctree.New(schema.KindTable, attrs, rowNodes...)
	if err != nil {
		return nil, err
	}

	r, err := position.Resolve(doc, sel.From())
	if err != nil {
		return nil, err
	}
	blockFrom, blockTo := r.BlockRange(0)
	blockIdx := r.IndexAt(0)
	if blockIdx >= doc.Root.ChildCount() {
		blockIdx = doc.Root.ChildCount() - 1
	}
	block := doc.Root.Child(blockIdx)
	tr := transaction.New(doc)
	tablePos := blockTo
	if block.IsTextblock() && block.ContentSize() == 0 {
		tablePos = blockFrom
		tr.Replace(blockFrom, blockTo, table)
	} else {
		tr.Replace(blockTo, blockTo, table)
	}
	if err := tr.Err(); err != nil {
		return nil, err
	}
	// Caret lands in the first cell's paragraph.
	tr.SetSelection(transaction.Collapsed(tablePos + 4))
	return tr, nil
}

// AddRow inserts an empty body row before or after the row holding the
// selection.
func AddRow(doc *doctree.Document, sel transaction.Selection, before bool) (*transaction.Transaction, error) {
	ctx, err := findTable(doc, sel)
	if err != nil {
		return nil, err
	}
	at := ctx.rowIdx
	if !before {
		at++
	}
	if ctx.inHeader && before {
		// Body rows never precede the header.
		at = ctx.rowIdx + 1
	}
	rows := spliceRows(ctx.table.Children, at, 0, emptyRow(columnCount(ctx.table)))
	caretRow := ctx.rowIdx
	if at <= ctx.rowIdx {
		caretRow++
	}
	return replaceTable(doc, ctx, rows, caretRow, ctx.colIdx)
}

// AddColumn inserts an empty cell in every body row before or after the
// selected column, then re-spans header rows across the new count.
func AddColumn(doc *doctree.Document, sel transaction.Selection, before bool) (*transaction.Transaction, error) {
	ctx, err := findTable(doc, sel)
	if err != nil {
		return nil, err
	}
	cols := columnCount(ctx.table)
	col := ctx.colIdx
	if ctx.inHeader {
		// A spanned header cell gives no column; edge-insert instead.
		col = 0
		if !before {
			col = cols - 1
		}
	}
	at := col
	if !before {
		at++
	}
	rows := make([]*doctree.Node, ctx.table.ChildCount())
	for i, row := range ctx.table.Children {
		if isHeaderRow(row) {
			rows[i] = row
			continue
		}
		cells := spliceRows(row.Children, at, 0, emptyCell())
		nr, err := row.WithChildren(cells)
		if err != nil {
			return nil, err
		}
		rows[i] = nr
	}
	rows, err = respanHeaders(rows, cols+1)
	if err != nil {
		return nil, err
	}
	caretCol := ctx.colIdx
	if !ctx.inHeader && at <= ctx.colIdx {
		caretCol++
	}
	return replaceTable(doc, ctx, rows, ctx.rowIdx, caretCol)
}

// AddHeader inserts a header row spanning the full column count. A
// table that already has one is left alone (nil transaction).
func AddHeader(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, error) {
	ctx, err := findTable(doc, sel)
	if err != nil {
		return nil, err
	}
	for _, row := range ctx.table.Children {
		if isHeaderRow(row) {
			return nil, nil
		}
	}
	rows := spliceRows(ctx.table.Children, 0, 0, headerRow(columnCount(ctx.table)))
	return replaceTable(doc, ctx, rows, ctx.rowIdx+1, ctx.colIdx)
}

// DeleteArea removes the selected row, column, or the whole table.
// Removing the last row or column removes the table.
func DeleteArea(doc *doctree.Document, sel transaction.Selection, area Area) (*transaction.Transaction, error) {
	ctx, err := findTable(doc, sel)
	if err != nil {
		return nil, err
	}
	switch area {
	case AreaTable:
		return deleteTable(doc, ctx)
	case AreaRow:
		bodyRows := 0
		for _, row := range ctx.table.Children {
			if !isHeaderRow(row) {
				bodyRows++
			}
		}
		if bodyRows <= 1 && !ctx.inHeader {
			return deleteTable(doc, ctx)
		}
		rows := spliceRows(ctx.table.Children, ctx.rowIdx, 1)
		if len(rows) == 0 {
			return deleteTable(doc, ctx)
		}
		return replaceTable(doc, ctx, rows, ctx.rowIdx, ctx.colIdx)
	case AreaColumn:
		cols := columnCount(ctx.table)
		if cols <= 1 {
			return deleteTable(doc, ctx)
		}
		col := ctx.colIdx
		if ctx.inHeader {
			col = 0
		}
		rows := make([]*doctree.Node, ctx.table.ChildCount())
		for i, row := range ctx.table.Children {
			if isHeaderRow(row) {
				rows[i] = row
				continue
			}
			nr, err := row.WithChildren(spliceRows(row.Children, col, 1))
			if err != nil {
				return nil, err
			}
			rows[i] = nr
		}
		rows, err = respanHeaders(rows, cols-1)
		if err != nil {
			return nil, err
		}
		return replaceTable(doc, ctx, rows, ctx.rowIdx, col)
	}
	return nil, fmt.Errorf("%w: unknown table area %d", schema.ErrViolation, area)
}

// SetTableBorder sets the table's border attribute, one of outer,
// header, cell, or none.
func SetTableBorder(doc *doctree.Document, sel transaction.Selection, border string) (*transaction.Transaction, error) {
	ctx, err := findTable(doc, sel)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).SetAttr(ctx.pos, "border", border)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

// respanHeaders resets every header cell's colspan to the given column
// count, the invariant every column-mutating operation restores.
func respanHeaders(rows []*doctree.Node, cols int) ([]*doctree.Node, error) {
	out := make([]*doctree.Node, len(rows))
	for i, row := range rows {
		if !isHeaderRow(row) {
			out[i] = row
			continue
		}
		cells := make([]*doctree.Node, row.ChildCount())
		for j, cell := range row.Children {
			cells[j] = cell.WithAttr("colspan", strconv.Itoa(cols))
		}
		nr, err := row.WithChildren(cells)
		if err != nil {
			return nil, err
		}
		out[i] = nr
	}
	return out, nil
}

func replaceTable(doc *doctree.Document, ctx *tableCtx, rows []*doctree.Node, caretRow, caretCol int) (*transaction.Transaction, error) {
	nt, err := ctx.table.WithChildren(rows)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).Replace(ctx.pos, ctx.pos+ctx.table.Size(), nt)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Collapsed(cellCaretPos(ctx.pos, nt, caretRow, caretCol)))
	return tr, nil
}

// cellCaretPos returns the position at the content start of the given
// cell's first block, clamping out-of-range indexes.
func cellCaretPos(tablePos int, table *doctree.Node, rowIdx, colIdx int) int {
	if rowIdx >= table.ChildCount() {
		rowIdx = table.ChildCount() - 1
	}
	if rowIdx < 0 {
		rowIdx = 0
	}
	pos := tablePos + 1
	for i := 0; i < rowIdx; i++ {
		pos += table.Child(i).Size()
	}
	row := table.Child(rowIdx)
	pos++
	if colIdx >= row.ChildCount() {
		colIdx = row.ChildCount() - 1
	}
	if colIdx < 0 {
		colIdx = 0
	}
	for j := 0; j < colIdx; j++ {
		pos += row.Child(j).Size()
	}
	return pos + 2
}

func deleteTable(doc *doctree.Document, ctx *tableCtx) (*transaction.Transaction, error) {
	r, err := position.Resolve(doc, ctx.pos)
	if err != nil {
		return nil, err
	}
	var repl []*doctree.Node
	if r.Parent().ChildCount() == 1 {
		repl = []*doctree.Node{doctree.MustNew(schema.KindParagraph, nil)}
	}
	tr := transaction.New(doc).Replace(ctx.pos, ctx.pos+ctx.table.Size(), repl...)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Collapsed(tr.MapPos(ctx.pos)))
	return tr, nil
}

// spliceRows copies nodes with del entries removed at i and the given
// nodes inserted there.
func spliceRows(nodes []*doctree.Node, i, del int, insert ...*doctree.Node) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(nodes)-del+len(insert))
	out = append(out, nodes[:i]...)
	out = append(out, insert...)
	out = append(out, nodes[i+del:]...)
	return out
}
