package markup

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
)

// Parse converts markup text into a document. Tags and attributes
// outside the vocabulary are stripped: unknown elements are unwrapped
// in place, unknown attributes dropped. Empty input yields the empty
// document (one empty paragraph).
func Parse(markup string) (*doctree.Document, error) {
	blocks, err := ParseFragment(markup, schema.KindDoc)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return doctree.NewDocument(), nil
	}
	root, err := doctree.New(schema.KindDoc, nil, blocks...)
	if err != nil {
		return nil, err
	}
	doc := doctree.FromRoot(root)
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseFragment converts markup into nodes legal under the given
// parent kind.
func ParseFragment(markup string, parent schema.NodeKind) ([]*doctree.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	frag, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	p := &parser{}
	nodes := p.content(frag, parent, nil)
	if p.err != nil {
		return nil, p.err
	}
	return nodes, nil
}

type parser struct {
	err error
}

// content builds the child nodes of a parent of the given kind from a
// list of HTML nodes, carrying the inherited mark set.
func (p *parser) content(hns []*html.Node, parent schema.NodeKind, marks []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	inline := schema.ContentOf(parent) == schema.ContentInline ||
		schema.ContentOf(parent) == schema.ContentText
	for _, hn := range hns {
		out = append(out, p.node(hn, parent, inline, marks)...)
	}
	if inline {
		return doctree.MergeInline(out)
	}
	return out
}

func (p *parser) node(hn *html.Node, parent schema.NodeKind, inline bool, marks []doctree.Mark) []*doctree.Node {
	switch hn.Type {
	case html.TextNode:
		return p.text(hn.Data, parent, inline, marks)
	case html.ElementNode:
		return p.element(hn, parent, inline, marks)
	default:
		// Comments, doctypes and the like are outside the vocabulary.
		return nil
	}
}

func (p *parser) text(text string, parent schema.NodeKind, inline bool, marks []doctree.Mark) []*doctree.Node {
	if !inline {
		// Whitespace between blocks is formatting, not content. Other
		// stray text at block level is wrapped in a paragraph when the
		// parent admits one.
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if !schema.CanContain(parent, schema.KindParagraph) {
			return nil
		}
		wrapped, err := doctree.New(schema.KindParagraph, nil, doctree.NewText(strings.TrimSpace(text)))
		if err != nil {
			p.fail(err)
			return nil
		}
		return []*doctree.Node{wrapped}
	}
	if !schema.AllowsMarks(parent) {
		marks = nil
	}
	return []*doctree.Node{doctree.NewText(text, marks...)}
}

func (p *parser) element(hn *html.Node, parent schema.NodeKind, inline bool, marks []doctree.Mark) []*doctree.Node {
	tag := hn.Data

	if mk, ok := markOfTag(tag); ok {
		mark := doctree.Mark{Kind: mk}
		if mk == schema.MarkLink {
			if href := htmlAttr(hn, "href"); href != "" {
				mark.Attrs = map[string]string{"href": href}
			}
		}
		return p.content(childList(hn), parent, doctree.AddMark(marks, mark))
	}

	kind, level, ok := kindOfTag(tag)
	if !ok || !schema.CanContain(parent, kind) {
		// Outside the vocabulary, or vocabulary tag in an illegal
		// place: unwrap and keep the children.
		return p.content(childList(hn), parent, marks)
	}

	attrs := p.filterAttrs(hn, kind, level)
	kids := p.content(childList(hn), kind, nil)
	node, err := doctree.New(kind, attrs, kids...)
	if err != nil {
		p.fail(err)
		return nil
	}
	return []*doctree.Node{node}
}

// filterAttrs keeps only the attributes the schema declares for the
// kind, dropping empty values.
func (p *parser) filterAttrs(hn *html.Node, kind schema.NodeKind, level int) map[string]string {
	attrs := make(map[string]string)
	for _, name := range allowedAttrs(kind) {
		if v := htmlAttr(hn, name); v != "" {
			attrs[name] = v
		}
	}
	if kind == schema.KindHeading && level > 0 {
		attrs["level"] = strconv.Itoa(level)
	}
	if (kind == schema.KindContainer || kind == schema.KindButton) && attrs["id"] == "" {
		// Containers and buttons must be addressable; synthesize an id
		// for markup that omitted one.
		attrs["id"] = schema.NewID()
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func childList(hn *html.Node) []*html.Node {
	var out []*html.Node
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func htmlAttr(hn *html.Node, name string) string {
	for _, a := range hn.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
