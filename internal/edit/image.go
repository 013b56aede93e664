package edit

import (
	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// ImageInfo describes an image node for host-side handling, notably
// the clipboard payload of a cut.
type ImageInfo struct {
	Src    string
	Alt    string
	Width  string
	Height string
}

// InsertImage replaces the selection with an image node and selects it.
func InsertImage(doc *doctree.Document, sel transaction.Selection, src, alt string) (*transaction.Transaction, error) {
	img, err := doctree.NewImage(src, alt)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).Replace(sel.From(), sel.To(), img)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(transaction.Selection{Anchor: sel.From(), Head: sel.From() + 1})
	return tr, nil
}

// ModifyImage rewrites the src and alt of the single selected image.
func ModifyImage(doc *doctree.Document, sel transaction.Selection, src, alt string) (*transaction.Transaction, error) {
	_, pos, err := selectedImage(doc, sel)
	if err != nil {
		return nil, err
	}
	tr := transaction.New(doc).SetAttr(pos, "src", src).SetAttr(pos, "alt", alt)
	if err := tr.Err(); err != nil {
		return nil, err
	}
	tr.SetSelection(sel)
	return tr, nil
}

// CutImage deletes the single selected image and reports what was cut
// so the host can place it on the clipboard first.
func CutImage(doc *doctree.Document, sel transaction.Selection) (*transaction.Transaction, ImageInfo, error) {
	img, pos, err := selectedImage(doc, sel)
	if err != nil {
		return nil, ImageInfo{}, err
	}
	info := ImageInfo{
		Src:    img.Attr("src"),
		Alt:    img.Attr("alt"),
		Width:  img.Attr("width"),
		Height: img.Attr("height"),
	}
	tr := transaction.New(doc).Delete(pos, pos+1)
	if err := tr.Err(); err != nil {
		return nil, ImageInfo{}, err
	}
	tr.SetSelection(transaction.Collapsed(pos))
	return tr, info, nil
}

// selectedImage requires the selection to cover exactly one image node.
func selectedImage(doc *doctree.Document, sel transaction.Selection) (*doctree.Node, int, error) {
	if sel.To()-sel.From() != 1 {
		return nil, 0, ErrNoImageSelection
	}
	n, ok := doc.NodeAfter(sel.From())
	if !ok || n.Kind != schema.KindImage {
		return nil, 0, ErrNoImageSelection
	}
	return n, sel.From(), nil
}
