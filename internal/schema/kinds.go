package schema

// NodeKind identifies a node type in the document tree.
type NodeKind int

const (
	// KindInvalid is the zero value; it never appears in a valid tree.
	KindInvalid NodeKind = iota

	// KindDoc is the document root.
	KindDoc

	// KindText is a text leaf. Text leaves carry marks and never have
	// children.
	KindText

	// KindParagraph is a plain textblock.
	KindParagraph

	// KindHeading is a textblock with a "level" attribute (1-6).
	KindHeading

	// KindPre is a preformatted textblock. Its content is opaque text;
	// marks are not permitted inside it.
	KindPre

	// KindBlockquote wraps block content one quote level deeper.
	KindBlockquote

	// KindOrderedList and KindBulletList hold list items.
	KindOrderedList
	KindBulletList

	// KindListItem holds block content inside a list.
	KindListItem

	// KindTable holds rows. Its "border" attribute is one of
	// "outer", "header", "cell", "none".
	KindTable

	// KindTableRow holds cells or a single spanning header.
	KindTableRow

	// KindTableCell is a body cell; body cells are never colspanned.
	KindTableCell

	// KindTableHeader is a header cell with a "colspan" attribute that
	// always equals the table's column count.
	KindTableHeader

	// KindImage is an inline atom with "src" and "alt" attributes.
	KindImage

	// KindContainer is a host-addressable region with a document-unique
	// "id" attribute.
	KindContainer

	// KindButton is a host-defined button inside a container. Its label
	// is its text content.
	KindButton
)

var nodeKindNames = map[NodeKind]string{
	KindDoc:         "doc",
	KindText:        "text",
	KindParagraph:   "paragraph",
	KindHeading:     "heading",
	KindPre:         "pre",
	KindBlockquote:  "blockquote",
	KindOrderedList: "ordered_list",
	KindBulletList:  "bullet_list",
	KindListItem:    "list_item",
	KindTable:       "table",
	KindTableRow:    "table_row",
	KindTableCell:   "table_cell",
	KindTableHeader: "table_header",
	KindImage:       "image",
	KindContainer:   "container",
	KindButton:      "button",
}

// String returns the kind's stable name.
func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return "invalid"
}

// MarkKind identifies an inline annotation type.
type MarkKind int

const (
	MarkInvalid MarkKind = iota
	MarkBold
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkCode

	// MarkLink carries an "href" attribute.
	MarkLink
)

var markKindNames = map[MarkKind]string{
	MarkBold:      "bold",
	MarkItalic:    "italic",
	MarkUnderline: "underline",
	MarkStrike:    "strike",
	MarkCode:      "code",
	MarkLink:      "link",
}

// String returns the mark kind's stable name.
func (m MarkKind) String() string {
	if s, ok := markKindNames[m]; ok {
		return s
	}
	return "invalid"
}

// MarkKindByName resolves a stable name back to a mark kind.
func MarkKindByName(name string) (MarkKind, bool) {
	for k, s := range markKindNames {
		if s == name {
			return k, true
		}
	}
	return MarkInvalid, false
}

// NodeKindByName resolves a stable name back to a node kind.
func NodeKindByName(name string) (NodeKind, bool) {
	for k, s := range nodeKindNames {
		if s == name {
			return k, true
		}
	}
	return KindInvalid, false
}
