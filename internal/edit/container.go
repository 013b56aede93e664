package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// ContainerSpec describes a host-addressable region to add.
type ContainerSpec struct {
	ID       string
	ParentID string // empty appends at the document end
	Class    string
	Attrs    map[string]string // extra declared attributes, e.g. editable
	Content  []*doctree.Node   // defaults to one empty paragraph
}

// AddContainer inserts a container region at the end of its parent's
// content, or at the document end when no parent is named.
func AddContainer(doc *doctree.Document, spec ContainerSpec) (*transaction.Transaction, error) {
	attrs := map[string]string{"id": spec.ID}
	if attrs["id"] == "" {
		attrs["id"] = schema.NewID()
	}
	if spec.Class != "" {
		attrs["class"] = spec.Class
	}
	for k, v := range spec.Attrs {
		attrs[k] = v
	}
	content := spec.Content
	if len(content) == 0 {
		content = []*doctree.Node{doctree.MustNew(schema.KindParagraph, nil)}
	}
	node, err := doctree.New(schema.KindContainer, attrs, content...)
	if err != nil {
		return nil, err
	}
	pos, err := appendPos(doc, spec.ParentID)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).Replace(pos, pos, node)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	return tr, nil
}

// RemoveContainer removes the container with the given id.
func RemoveContainer(doc *doctree.Document, id string) (*transaction.Transaction, error) {
	return removeByID(doc, id, schema.KindContainer)
}

// AddButton inserts a button with the given label into the named
// container.
func AddButton(doc *doctree.Document, id, parentID, class, label string) (*transaction.Transaction, error) {
	attrs := map[string]string{"id": id}
	if id == "" {
		attrs["id"] = schema.NewID()
	}
	if class != "" {
		attrs["class"] = class
	}
	var kids []*doctree.Node
	if label != "" {
		kids = append(kids, doctree.NewText(label))
	}
	node, err := doctree.New(schema.KindButton, attrs, kids...)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, ErrUnknownID
	}
	pos, err := appendPos(doc, parentID)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).Replace(pos, pos, node)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	return tr, nil
}

// RemoveButton removes the button with the given id.
func RemoveButton(doc *doctree.Document, id string) (*transaction.Transaction, error) {
	return removeByID(doc, id, schema.KindButton)
}

// appendPos returns the position at the end of the named container's
// content, or the document end for an empty id.
func appendPos(doc *doctree.Document, parentID string) (int, error) {
	if parentID == "" {
		return doc.Size(), nil
	}
	parent, pos, ok := doc.FindByID(parentID)
	if !ok || parent.Kind != schema.KindContainer {
		return 0, ErrUnknownID
	}
	return pos + parent.Size() - 1, nil
}

func removeByID(doc *doctree.Document, id string, kind schema.NodeKind) (*transaction.Transaction, error) {
	n, pos, ok := doc.FindByID(id)
	if !ok || n.Kind != kind {
		return nil, ErrUnknownID
	}
	var repl []*doctree.Node
	if pos == 0 && doc.Root.ChildCount() == 1 {
		repl = []*doctree.Node{doctree.MustNew(schema.KindParagraph, nil)}
	}
	tr := transaction.New(doc).Replace(pos, pos+n.Size(), repl...)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	return tr, nil
}
