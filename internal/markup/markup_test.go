package markup

import (
	"strings"
	"testing"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/schema"
)

func mustParse(t *testing.T, s string) *doctree.Document {
	t.Helper()
	d, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return d
}

func mustRender(t *testing.T, d *doctree.Document, opts RenderOptions) string {
	t.Helper()
	s, err := Render(d, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return s
}

func TestParseSimpleParagraph(t *testing.T) {
	d := mustParse(t, `<p id="p">This is a start.</p>`)
	root := d.Root
	if root.ChildCount() != 1 {
		t.Fatalf("blocks = %d, want 1", root.ChildCount())
	}
	p := root.Child(0)
	if p.Kind != schema.KindParagraph || p.Attr("id") != "p" {
		t.Errorf("block = %s id=%q", p.Kind, p.Attr("id"))
	}
	if p.TextContent() != "This is a start." {
		t.Errorf("text = %q", p.TextContent())
	}
}

func TestParseMarks(t *testing.T) {
	d := mustParse(t, `<p>This <b>is</b> a start.</p>`)
	p := d.Root.Child(0)
	if p.ChildCount() != 3 {
		t.Fatalf("leaves = %d, want 3", p.ChildCount())
	}
	if !doctree.HasMark(p.Child(1).Marks, schema.MarkBold) {
		t.Error("bold mark lost")
	}
	// strong/em aliases normalize.
	d = mustParse(t, `<p><strong>a</strong><em>b</em></p>`)
	p = d.Root.Child(0)
	if !doctree.HasMark(p.Child(0).Marks, schema.MarkBold) || !doctree.HasMark(p.Child(1).Marks, schema.MarkItalic) {
		t.Error("strong/em aliases not normalized")
	}
}

func TestParseLinkHref(t *testing.T) {
	d := mustParse(t, `<p><a href="https://x.test">x</a></p>`)
	leaf := d.Root.Child(0).Child(0)
	link, ok := doctree.FindMark(leaf.Marks, schema.MarkLink)
	if !ok || link.Attr("href") != "https://x.test" {
		t.Errorf("link mark = %+v ok=%v", link, ok)
	}
}

func TestParseStripsUnknownTagsAndAttrs(t *testing.T) {
	d := mustParse(t, `<p onclick="evil()" style="color:red">a<span data-x="1">b</span><script>x</script>c</p>`)
	p := d.Root.Child(0)
	if p.TextContent() != "abxc" {
		t.Errorf("text = %q, want abxc (span/script unwrapped)", p.TextContent())
	}
	if p.Attr("onclick") != "" || p.Attr("style") != "" {
		t.Error("unknown attributes kept")
	}
}

func TestParseHeadingLevels(t *testing.T) {
	d := mustParse(t, `<h3>t</h3>`)
	h := d.Root.Child(0)
	if h.Kind != schema.KindHeading || h.Attr("level") != "3" {
		t.Errorf("heading = %s level=%q", h.Kind, h.Attr("level"))
	}
	if got := mustRender(t, d, RenderOptions{}); got != "<h3>t</h3>" {
		t.Errorf("render = %q", got)
	}
}

func TestParseEmptyYieldsEmptyParagraph(t *testing.T) {
	d := mustParse(t, "")
	if d.Root.ChildCount() != 1 || d.Root.Child(0).Kind != schema.KindParagraph {
		t.Error("empty markup should yield a single empty paragraph")
	}
}

func TestRenderMarks(t *testing.T) {
	bold := doctree.Mark{Kind: schema.MarkBold}
	p := doctree.MustNew(schema.KindParagraph, map[string]string{"id": "p"},
		doctree.NewText("This "), doctree.NewText("is", bold), doctree.NewText(" a start."))
	d := doctree.FromRoot(doctree.MustNew(schema.KindDoc, nil, p))

	got := mustRender(t, d, RenderOptions{})
	want := `<p id="p">This <b>is</b> a start.</p>`
	if got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		`<p id="p">This <b>is</b> a start.</p>`,
		`<h2>Title</h2><p>Body</p>`,
		`<ol><li><p>one</p></li><li><p>two</p></li></ol>`,
		`<blockquote><p>quoted</p></blockquote>`,
		`<pre>code here</pre>`,
		`<p><a href="https://x.test">link</a> and <i>em</i></p>`,
		`<p>pic: <img src="a.png" alt="a"/></p>`,
		`<div id="c1" editable="true"><p>region</p></div>`,
	}
	for _, src := range cases {
		d := mustParse(t, src)
		out := mustRender(t, d, RenderOptions{})
		d2 := mustParse(t, out)
		if !d.Eq(d2) {
			t.Errorf("round trip changed document for %q: re-rendered %q", src, out)
		}
	}
}

func TestRoundTripTable(t *testing.T) {
	src := `<table border="cell"><tr><th colspan="2"><p>h</p></th></tr><tr><td><p>a</p></td><td><p>b</p></td></tr></table>`
	d := mustParse(t, src)
	out := mustRender(t, d, RenderOptions{})
	if !mustParse(t, out).Eq(d) {
		t.Errorf("table round trip changed document: %q", out)
	}
}

func TestPrettyPrint(t *testing.T) {
	d := mustParse(t, `<ul><li><p>a</p></li></ul>`)
	got := mustRender(t, d, RenderOptions{Pretty: true})
	want := "<ul>\n  <li>\n    <p>a</p>\n  </li>\n</ul>\n"
	if got != want {
		t.Errorf("pretty = %q, want %q", got, want)
	}
}

func TestHighlightDecorationStrippedOnParse(t *testing.T) {
	d := mustParse(t, `<p>find me here</p>`)

	// "me" occupies offsets 6..8.
	lit := mustRender(t, d, RenderOptions{Highlights: []Highlight{{From: 6, To: 8}}})
	if !strings.Contains(lit, `<span class="`+HighlightClass+`">me</span>`) {
		t.Errorf("decorated output = %q", lit)
	}

	// Clean output carries no decoration; parsing decorated output
	// strips it back to the same document.
	clean := mustRender(t, d, RenderOptions{})
	if strings.Contains(clean, "span") {
		t.Errorf("clean output contains decoration: %q", clean)
	}
	if !mustParse(t, lit).Eq(d) {
		t.Error("decoration survived a parse")
	}
}
