package markup

import (
	"strconv"

	"github.com/willwagner/markupeditor/internal/schema"
)

// HighlightClass is the class of the presentation-only span wrapped
// around search matches in decorated output.
const HighlightClass = "mu-search-hit"

// tagOf returns the markup tag for a node kind; headings fold their
// level attribute into the tag name.
func tagOf(kind schema.NodeKind, attrs map[string]string) string {
	switch kind {
	case schema.KindParagraph:
		return "p"
	case schema.KindHeading:
		lvl, err := strconv.Atoi(attrs["level"])
		if err != nil || lvl < 1 || lvl > 6 {
			lvl = 1
		}
		return "h" + strconv.Itoa(lvl)
	case schema.KindPre:
		return "pre"
	case schema.KindBlockquote:
		return "blockquote"
	case schema.KindOrderedList:
		return "ol"
	case schema.KindBulletList:
		return "ul"
	case schema.KindListItem:
		return "li"
	case schema.KindTable:
		return "table"
	case schema.KindTableRow:
		return "tr"
	case schema.KindTableCell:
		return "td"
	case schema.KindTableHeader:
		return "th"
	case schema.KindImage:
		return "img"
	case schema.KindContainer:
		return "div"
	case schema.KindButton:
		return "button"
	}
	return ""
}

// kindOfTag maps a tag back to a node kind. Heading tags carry their
// level out-of-band.
func kindOfTag(tag string) (kind schema.NodeKind, level int, ok bool) {
	switch tag {
	case "p":
		return schema.KindParagraph, 0, true
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return schema.KindHeading, int(tag[1] - '0'), true
	case "pre":
		return schema.KindPre, 0, true
	case "blockquote":
		return schema.KindBlockquote, 0, true
	case "ol":
		return schema.KindOrderedList, 0, true
	case "ul":
		return schema.KindBulletList, 0, true
	case "li":
		return schema.KindListItem, 0, true
	case "table":
		return schema.KindTable, 0, true
	case "tr":
		return schema.KindTableRow, 0, true
	case "td":
		return schema.KindTableCell, 0, true
	case "th":
		return schema.KindTableHeader, 0, true
	case "img":
		return schema.KindImage, 0, true
	case "div":
		return schema.KindContainer, 0, true
	case "button":
		return schema.KindButton, 0, true
	}
	return schema.KindInvalid, 0, false
}

// markTag returns the tag for a mark kind.
func markTag(kind schema.MarkKind) string {
	switch kind {
	case schema.MarkBold:
		return "b"
	case schema.MarkItalic:
		return "i"
	case schema.MarkUnderline:
		return "u"
	case schema.MarkStrike:
		return "s"
	case schema.MarkCode:
		return "code"
	case schema.MarkLink:
		return "a"
	}
	return ""
}

// markOfTag maps a tag (including common aliases) to a mark kind.
func markOfTag(tag string) (schema.MarkKind, bool) {
	switch tag {
	case "b", "strong":
		return schema.MarkBold, true
	case "i", "em":
		return schema.MarkItalic, true
	case "u":
		return schema.MarkUnderline, true
	case "s", "del", "strike":
		return schema.MarkStrike, true
	case "code":
		return schema.MarkCode, true
	case "a":
		return schema.MarkLink, true
	}
	return schema.MarkInvalid, false
}

// renderMarkOrder fixes the nesting order of mark tags in output so
// that equal documents serialize identically.
var renderMarkOrder = []schema.MarkKind{
	schema.MarkLink,
	schema.MarkCode,
	schema.MarkBold,
	schema.MarkItalic,
	schema.MarkUnderline,
	schema.MarkStrike,
}

// allowedAttrs returns the attribute names admitted for a kind, in
// render order.
func allowedAttrs(kind schema.NodeKind) []string {
	specs := schema.Attrs(kind)
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
