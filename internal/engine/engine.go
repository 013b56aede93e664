// Package engine is the embeddable editing facade: it owns the
// document, the selection, undo history, and search state, and exposes
// the command set a host UI drives. Commands are atomic: a failed
// command changes nothing and reports a CommandError; a successful one
// commits the new document and emits the matching events.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/willwagner/markupeditor/internal/config"
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/edit"
	"github.com/willwagner/markupeditor/internal/event"
	"github.com/willwagner/markupeditor/internal/history"
	"github.com/willwagner/markupeditor/internal/markup"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/search"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// Engine is the top-level editor state machine. All methods are safe
// for concurrent use; commands run one at a time under the mutex and
// events are emitted synchronously on the calling goroutine.
type Engine struct {
	mu sync.Mutex

	log    *zap.Logger
	cfg    config.Config
	events *event.Emitter

	doc      *doctree.Document
	sel      transaction.Selection
	hist     *history.History
	searcher *search.Searcher
}

// New returns an engine holding the empty document.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      zap.NewNop(),
		cfg:      config.Default(),
		events:   event.NewEmitter(),
		doc:      doctree.NewDocument(),
		searcher: search.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sel = transaction.Collapsed(1)
	e.hist = history.New(e.cfg.MaxUndoDepth)
	return e
}

// Events returns the emitter hosts subscribe on.
func (e *Engine) Events() *event.Emitter { return e.events }

// Doc returns the current document snapshot.
func (e *Engine) Doc() *doctree.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Selection returns the current selection.
func (e *Engine) Selection() transaction.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Reconfigure applies new settings. The undo depth takes effect for
// entries recorded from now on.
func (e *Engine) Reconfigure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.log.Info("reconfigured",
		zap.Int("maxUndoDepth", cfg.MaxUndoDepth),
		zap.String("tableBorder", cfg.TableBorder))
	return nil
}

// SetContent replaces the document with parsed markup, clears history
// and search, and emits ready.
func (e *Engine) SetContent(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, err := markup.Parse(text)
	if err != nil {
		return e.fail("setContent", err)
	}
	e.doc = doc
	e.sel = transaction.Collapsed(firstCaret(doc))
	e.hist.Clear()
	e.searcher.Cancel()
	e.log.Info("content loaded", zap.Int("size", doc.Size()))
	e.events.Emit(event.Ready{})
	e.events.Emit(event.StateChanged{})
	e.events.Emit(event.SelectionChanged{Anchor: e.sel.Anchor, Head: e.sel.Head})
	return nil
}

// GetContent serializes the document, or one container's content when
// containerID is set. With clean false and search active, search hits
// are decorated with highlight spans; clean output never carries them.
func (e *Engine) GetContent(pretty, clean bool, containerID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	opts := markup.RenderOptions{}
	if pretty {
		opts.Pretty = true
		opts.Indent = e.cfg.PrettyIndent
	}
	if containerID != "" {
		c, _, ok := e.doc.FindByID(containerID)
		if !ok || c.Kind != schema.KindContainer {
			return "", e.fail("getContent", fmt.Errorf("%w: %q", edit.ErrUnknownID, containerID))
		}
		return markup.RenderNodes(c.Children, opts)
	}
	if !clean && e.searcher.Active() {
		for _, m := range e.searcher.Matches() {
			opts.Highlights = append(opts.Highlights, markup.Highlight{From: m.From, To: m.To})
		}
	}
	return markup.Render(e.doc, opts)
}

// SetSelection moves the selection to the given anchor and head.
func (e *Engine) SetSelection(anchor, head int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := position.Resolve(e.doc, anchor); err != nil {
		return e.fail("setSelection", err)
	}
	if _, err := position.Resolve(e.doc, head); err != nil {
		return e.fail("setSelection", err)
	}
	sel := transaction.Selection{Anchor: anchor, Head: head}
	if sel == e.sel {
		return nil
	}
	e.sel = sel
	e.events.Emit(event.SelectionChanged{Anchor: anchor, Head: head})
	return nil
}

// SelectionText returns the plain text covered by the selection, with
// a newline between blocks.
func (e *Engine) SelectionText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.Empty() {
		return ""
	}
	return e.doc.TextBetween(e.sel.From(), e.sel.To(), "\n")
}

// ToggleMark toggles the named inline mark over the selection. Link is
// not a toggleable mark; it is managed by InsertLink and DeleteLink.
func (e *Engine) ToggleMark(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	kind, ok := schema.MarkKindByName(name)
	if !ok || kind == schema.MarkLink {
		return e.fail("toggleMark", fmt.Errorf("%w: mark %q is not toggleable", schema.ErrViolation, name))
	}
	tr, err := edit.ToggleMark(e.doc, e.sel, kind, nil)
	return e.apply("toggleMark", tr, err)
}

// SetBlockStyle retypes the selected textblocks. Style is one of "p",
// "h1" through "h6", or "pre".
func (e *Engine) SetBlockStyle(style string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	kind, attrs, err := blockStyleKind(style)
	if err != nil {
		return e.fail("setBlockStyle", err)
	}
	tr, err := edit.SetBlockStyle(e.doc, e.sel, kind, attrs)
	return e.apply("setBlockStyle", tr, err)
}

// ToggleList wraps the selection in a list of the given kind ("ol" or
// "ul"), retypes an enclosing list of the other kind, or lifts the
// covered items out of an enclosing list of the same kind.
func (e *Engine) ToggleList(kind string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var nk schema.NodeKind
	switch kind {
	case "ol":
		nk = schema.KindOrderedList
	case "ul":
		nk = schema.KindBulletList
	default:
		return e.fail("toggleList", fmt.Errorf("%w: unknown list kind %q", schema.ErrViolation, kind))
	}
	tr, err := edit.ToggleList(e.doc, e.sel, nk)
	return e.apply("toggleList", tr, err)
}

// Indent nests the selected blocks one level deeper.
func (e *Engine) Indent() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.Indent(e.doc, e.sel)
	return e.apply("indent", tr, err)
}

// Outdent lifts the selected blocks out of their nearest quote or list
// ancestor. At top level it does nothing.
func (e *Engine) Outdent() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, did, err := edit.Outdent(e.doc, e.sel)
	if err == nil && !did {
		e.log.Debug("outdent at top level, nothing to do")
		return nil
	}
	return e.apply("outdent", tr, err)
}

// InsertLink links the selected text to url, or inserts the url as
// linked text at a collapsed caret. An empty url does nothing.
func (e *Engine) InsertLink(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.InsertLink(e.doc, e.sel, url)
	return e.apply("insertLink", tr, err)
}

// DeleteLink unlinks the single link at or around the selection.
func (e *Engine) DeleteLink() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.DeleteLink(e.doc, e.sel)
	return e.apply("deleteLink", tr, err)
}

// InsertImage replaces the selection with an image and selects it.
func (e *Engine) InsertImage(src, alt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.InsertImage(e.doc, e.sel, src, alt)
	return e.apply("insertImage", tr, err)
}

// ModifyImage rewrites the src and alt of the selected image.
func (e *Engine) ModifyImage(src, alt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.ModifyImage(e.doc, e.sel, src, alt)
	return e.apply("modifyImage", tr, err)
}

// CutImage removes the selected image. The clipboard event carries the
// image data and fires before the document changes, so the host never
// sees a cut it cannot paste back.
func (e *Engine) CutImage() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, info, err := edit.CutImage(e.doc, e.sel)
	if err != nil {
		return e.fail("cutImage", err)
	}
	containerID := e.containerOf(e.sel.From())
	e.events.Emit(event.ImageCutForClipboard{
		Src:    info.Src,
		Alt:    info.Alt,
		Width:  info.Width,
		Height: info.Height,
	})
	if err := e.apply("cutImage", tr, nil); err != nil {
		return err
	}
	e.events.Emit(event.ImageDeleted{Src: info.Src, ContainerID: containerID})
	return nil
}

// InsertTable inserts a rows-by-cols table after the caret's block and
// places the caret in the first cell.
func (e *Engine) InsertTable(rows, cols int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.InsertTableWithBorder(e.doc, e.sel, rows, cols, e.cfg.TableBorder)
	return e.apply("insertTable", tr, err)
}

// AddRow inserts a body row next to the caret's row.
func (e *Engine) AddRow(before bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.AddRow(e.doc, e.sel, before)
	return e.apply("addRow", tr, err)
}

// AddColumn inserts a column next to the caret's column.
func (e *Engine) AddColumn(before bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.AddColumn(e.doc, e.sel, before)
	return e.apply("addColumn", tr, err)
}

// AddHeader adds a header row to the caret's table if it has none.
func (e *Engine) AddHeader() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.AddHeader(e.doc, e.sel)
	return e.apply("addHeader", tr, err)
}

// DeleteTableArea deletes the caret's row, column, or whole table.
// Area is "row", "column", or "table".
func (e *Engine) DeleteTableArea(area string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var a edit.Area
	switch area {
	case "row":
		a = edit.AreaRow
	case "column":
		a = edit.AreaColumn
	case "table":
		a = edit.AreaTable
	default:
		return e.fail("deleteTableArea", fmt.Errorf("%w: unknown table area %q", schema.ErrViolation, area))
	}
	tr, err := edit.DeleteArea(e.doc, e.sel, a)
	return e.apply("deleteTableArea", tr, err)
}

// SetTableBorder sets the border style of the caret's table.
func (e *Engine) SetTableBorder(border string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.SetTableBorder(e.doc, e.sel, border)
	return e.apply("setTableBorder", tr, err)
}

// AddContainer appends a host-addressable container region.
func (e *Engine) AddContainer(spec edit.ContainerSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.AddContainer(e.doc, spec)
	return e.apply("addContainer", tr, err)
}

// RemoveContainer removes the container with the given id.
func (e *Engine) RemoveContainer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.RemoveContainer(e.doc, id)
	return e.apply("removeContainer", tr, err)
}

// AddButton inserts a button into the named container.
func (e *Engine) AddButton(id, parentID, class, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.AddButton(e.doc, id, parentID, class, label)
	return e.apply("addButton", tr, err)
}

// RemoveButton removes the button with the given id.
func (e *Engine) RemoveButton(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, err := edit.RemoveButton(e.doc, id)
	return e.apply("removeButton", tr, err)
}

// ButtonClicked reports a host click on a button node, echoed back as
// an event with the click rectangle so the host can anchor a popover.
func (e *Engine) ButtonClicked(id string, rect event.Rect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, _, ok := e.doc.FindByID(id)
	if !ok || n.Kind != schema.KindButton {
		return e.fail("buttonClicked", fmt.Errorf("%w: button %q", edit.ErrUnknownID, id))
	}
	e.events.Emit(event.ButtonClicked{ID: id, Rect: rect})
	return nil
}

// Search finds the first occurrence of text from the selection in the
// given direction ("forward" or "backward") and selects it. With
// activate true, Enter and Shift-Enter advance the search until it is
// deactivated. It reports whether a match was found; an empty text
// cancels any search.
func (e *Engine) Search(text, direction string, activate bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dir := search.Forward
	from := e.sel.To()
	if direction == "backward" {
		dir = search.Backward
		from = e.sel.From()
	}
	wasActive := e.searcher.Active()
	if text == "" {
		e.searcher.Cancel()
		if wasActive {
			e.events.Emit(event.SearchDeactivated{})
		}
		return false, nil
	}
	m, found := e.searcher.SearchFor(e.doc, from, text, dir, e.cfg.SearchCaseSensitive, activate)
	if activate && !wasActive {
		e.events.Emit(event.SearchActivated{Query: text})
	}
	if !activate && wasActive {
		e.events.Emit(event.SearchDeactivated{})
	}
	if !found {
		e.log.Debug("no match", zap.String("query", text))
		return false, nil
	}
	e.sel = transaction.Selection{Anchor: m.From, Head: m.To}
	e.events.Emit(event.SelectionChanged{Anchor: e.sel.Anchor, Head: e.sel.Head})
	return true, nil
}

// CancelSearch clears search state and stops key interception.
func (e *Engine) CancelSearch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	wasActive := e.searcher.Active()
	e.searcher.Cancel()
	if wasActive {
		e.events.Emit(event.SearchDeactivated{})
	}
}

// HandleEnter is the Enter/Shift-Enter entry point. With search active
// it advances to the next (or, shifted, previous) match instead of
// editing. Otherwise it splits the caret's list item, or the caret's
// textblock when outside a list.
func (e *Engine) HandleEnter(shift bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.searcher.Active() {
		var m search.Match
		var found bool
		if shift {
			m, found = e.searcher.Prev(e.doc, e.sel.From())
		} else {
			m, found = e.searcher.Next(e.doc, e.sel.To())
		}
		if !found {
			return nil
		}
		e.sel = transaction.Selection{Anchor: m.From, Head: m.To}
		e.events.Emit(event.SelectionChanged{Anchor: e.sel.Anchor, Head: e.sel.Head})
		return nil
	}
	tr, err := edit.SplitListItem(e.doc, e.sel)
	if errors.Is(err, edit.ErrNotInList) {
		tr, err = edit.SplitBlock(e.doc, e.sel)
	}
	return e.apply("handleEnter", tr, err)
}

// Undo rolls back the last recorded transaction.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restore("undo", e.hist.Undo)
}

// Redo reapplies the last undone transaction.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restore("redo", e.hist.Redo)
}

// CanUndo reports whether an undo entry exists.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanUndo()
}

// CanRedo reports whether a redo entry exists.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanRedo()
}

func (e *Engine) restore(op string, step func(*doctree.Document) (*doctree.Document, transaction.Selection, bool, error)) error {
	doc, sel, ok, err := step(e.doc)
	if err != nil {
		return e.fail(op, err)
	}
	if !ok {
		e.log.Debug("history empty", zap.String("op", op))
		return nil
	}
	e.doc = doc
	e.sel = sel
	e.deactivateSearch()
	e.events.Emit(event.StateChanged{})
	e.events.Emit(event.SelectionChanged{Anchor: sel.Anchor, Head: sel.Head})
	return nil
}

// apply commits a prepared transaction: validate, record in history,
// advance the document and selection, and emit events. A nil
// transaction with a nil error is a no-op command.
func (e *Engine) apply(op string, tr *transaction.Transaction, err error) error {
	if err != nil {
		return e.fail(op, err)
	}
	if tr == nil {
		return nil
	}
	if trErr := tr.Err(); trErr != nil {
		return e.fail(op, trErr)
	}
	if vErr := tr.Doc().Validate(); vErr != nil {
		return e.fail(op, vErr)
	}
	selBefore := e.sel
	selAfter, explicit := tr.Selection()
	if !explicit {
		selAfter = tr.MapSelection(selBefore)
	}
	if tr.DocChanged() {
		if tr.AddsToHistory() {
			e.hist.Record(tr, selBefore, selAfter)
		}
		e.doc = tr.Doc()
		e.deactivateSearch()
	}
	e.sel = selAfter
	e.log.Debug("command applied",
		zap.String("op", op),
		zap.Bool("docChanged", tr.DocChanged()))
	if tr.DocChanged() {
		e.events.Emit(event.StateChanged{})
	}
	if selAfter != selBefore {
		e.events.Emit(event.SelectionChanged{Anchor: selAfter.Anchor, Head: selAfter.Head})
	}
	return nil
}

func (e *Engine) fail(op string, err error) error {
	ce := classify(op, err)
	if ce.Severity == Alertable {
		e.log.Warn("command failed",
			zap.String("op", op),
			zap.String("kind", string(ce.Kind)),
			zap.Error(err))
		e.events.Emit(event.Error{
			Kind:        string(ce.Kind),
			Message:     err.Error(),
			Recoverable: true,
		})
	} else {
		e.log.Debug("command precondition not met",
			zap.String("op", op),
			zap.Error(err))
	}
	return ce
}

func (e *Engine) deactivateSearch() {
	if !e.searcher.Active() {
		return
	}
	e.searcher.Deactivate()
	e.events.Emit(event.SearchDeactivated{})
}

func (e *Engine) containerOf(pos int) string {
	r, err := position.Resolve(e.doc, pos)
	if err != nil {
		return ""
	}
	d := r.FindAncestor(func(n *doctree.Node) bool { return n.Kind == schema.KindContainer })
	if d < 1 {
		return ""
	}
	return r.Node(d).Attr("id")
}

func blockStyleKind(style string) (schema.NodeKind, map[string]string, error) {
	switch style {
	case "p":
		return schema.KindParagraph, nil, nil
	case "pre":
		return schema.KindPre, nil, nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return schema.KindHeading, map[string]string{"level": style[1:]}, nil
	}
	return schema.KindInvalid, nil, fmt.Errorf("%w: unknown block style %q", schema.ErrViolation, style)
}

func firstCaret(doc *doctree.Document) int {
	if doc.Size() == 0 {
		return 0
	}
	return 1
}
