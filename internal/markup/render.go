package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
)

// Highlight is an absolute text range to decorate in rendered output.
type Highlight struct {
	From int
	To   int
}

// RenderOptions controls serialization.
type RenderOptions struct {
	// Pretty indents block elements one per line.
	Pretty bool

	// Indent is the per-level indentation for pretty output; two
	// spaces when empty.
	Indent string

	// Highlights wraps the given ranges in presentation-only spans.
	// Clean output (reported to the host) passes none.
	Highlights []Highlight
}

// Render serializes a document.
func Render(doc *doctree.Document, opts RenderOptions) (string, error) {
	return RenderNodes(doc.Root.Children, opts)
}

// RenderNodes serializes a node list, e.g. a container's content.
func RenderNodes(nodes []*doctree.Node, opts RenderOptions) (string, error) {
	if opts.Pretty {
		return renderPretty(nodes, opts)
	}
	var buf bytes.Buffer
	pos := 0
	for _, n := range nodes {
		for _, hn := range toHTML(n, pos, opts.Highlights) {
			if err := html.Render(&buf, hn); err != nil {
				return "", err
			}
		}
		pos += n.Size()
	}
	return buf.String(), nil
}

func renderPretty(nodes []*doctree.Node, opts RenderOptions) (string, error) {
	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}
	var b strings.Builder
	pos := 0
	for _, n := range nodes {
		if err := prettyNode(&b, n, pos, 0, indent, opts.Highlights); err != nil {
			return "", err
		}
		pos += n.Size()
	}
	return b.String(), nil
}

// prettyNode writes one block node. Textblocks render on a single line
// with their inline content; structural blocks open and close on their
// own lines.
func prettyNode(b *strings.Builder, n *doctree.Node, pos, depth int, indent string, hl []Highlight) error {
	pad := strings.Repeat(indent, depth)
	if n.IsTextblock() || n.IsLeaf() {
		var buf bytes.Buffer
		for _, hn := range toHTML(n, pos, hl) {
			if err := html.Render(&buf, hn); err != nil {
				return err
			}
		}
		b.WriteString(pad)
		b.Write(buf.Bytes())
		b.WriteString("\n")
		return nil
	}

	b.WriteString(pad)
	b.WriteString(openTag(n))
	b.WriteString("\n")
	childPos := pos + 1
	for _, c := range n.Children {
		if err := prettyNode(b, c, childPos, depth+1, indent, hl); err != nil {
			return err
		}
		childPos += c.Size()
	}
	b.WriteString(pad)
	b.WriteString("</" + tagOf(n.Kind, n.Attrs) + ">")
	b.WriteString("\n")
	return nil
}

func openTag(n *doctree.Node) string {
	var b strings.Builder
	b.WriteString("<" + tagOf(n.Kind, n.Attrs))
	for _, name := range attrNamesFor(n) {
		if v := n.Attr(name); v != "" {
			b.WriteString(" " + name + `="` + html.EscapeString(v) + `"`)
		}
	}
	b.WriteString(">")
	return b.String()
}

// toHTML converts a node to html nodes; pos is the node's absolute
// start position, used to place highlight spans.
func toHTML(n *doctree.Node, pos int, hl []Highlight) []*html.Node {
	if n.IsText() {
		return textToHTML(n, pos, hl)
	}
	hn := &html.Node{Type: html.ElementNode, Data: tagOf(n.Kind, n.Attrs)}
	for _, name := range attrNamesFor(n) {
		if v := n.Attr(name); v != "" {
			hn.Attr = append(hn.Attr, html.Attribute{Key: name, Val: v})
		}
	}
	childPos := pos + 1
	for _, c := range n.Children {
		for _, ch := range toHTML(c, childPos, hl) {
			hn.AppendChild(ch)
		}
		childPos += c.Size()
	}
	return []*html.Node{hn}
}

// attrNamesFor lists the attributes to serialize, in declaration
// order. Heading levels fold into the tag name instead.
func attrNamesFor(n *doctree.Node) []string {
	names := allowedAttrs(n.Kind)
	if n.Kind != schema.KindHeading {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "level" {
			out = append(out, name)
		}
	}
	return out
}

// textToHTML renders a text leaf, splitting it at highlight boundaries
// and wrapping its mark tags in fixed nesting order.
func textToHTML(n *doctree.Node, pos int, hl []Highlight) []*html.Node {
	segs := splitHighlights(n.Text, pos, hl)
	nodes := make([]*html.Node, 0, len(segs))
	for _, seg := range segs {
		tn := &html.Node{Type: html.TextNode, Data: seg.text}
		if seg.lit {
			span := &html.Node{
				Type: html.ElementNode,
				Data: "span",
				Attr: []html.Attribute{{Key: "class", Val: HighlightClass}},
			}
			span.AppendChild(tn)
			nodes = append(nodes, span)
		} else {
			nodes = append(nodes, tn)
		}
	}

	// Wrap innermost-first so the first kind in renderMarkOrder ends
	// up outermost.
	for i := len(renderMarkOrder) - 1; i >= 0; i-- {
		mark, ok := doctree.FindMark(n.Marks, renderMarkOrder[i])
		if !ok {
			continue
		}
		wrap := &html.Node{Type: html.ElementNode, Data: markTag(mark.Kind)}
		if mark.Kind == schema.MarkLink {
			if href := mark.Attr("href"); href != "" {
				wrap.Attr = []html.Attribute{{Key: "href", Val: href}}
			}
		}
		for _, c := range nodes {
			wrap.AppendChild(c)
		}
		nodes = []*html.Node{wrap}
	}
	return nodes
}

type textSeg struct {
	text string
	lit  bool
}

// splitHighlights cuts text (starting at absolute pos) at highlight
// boundaries.
func splitHighlights(text string, pos int, hl []Highlight) []textSeg {
	runes := []rune(text)
	if len(hl) == 0 {
		return []textSeg{{text: text}}
	}
	var segs []textSeg
	cur := 0
	for cur < len(runes) {
		abs := pos + cur
		next := len(runes)
		lit := false
		for _, h := range hl {
			if abs >= h.From && abs < h.To {
				lit = true
				if h.To-pos < next {
					next = h.To - pos
				}
			} else if h.From > abs && h.From-pos < next {
				next = h.From - pos
			}
		}
		segs = append(segs, textSeg{text: string(runes[cur:next]), lit: lit})
		cur = next
	}
	return segs
}
