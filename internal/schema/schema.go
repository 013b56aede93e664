package schema

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrViolation is the sentinel wrapped by every schema rejection.
var ErrViolation = errors.New("schema violation")

// Content categorizes what a node kind may hold.
type Content int

const (
	// ContentNone marks leaf atoms (image, text).
	ContentNone Content = iota

	// ContentInline allows text leaves and inline atoms.
	ContentInline

	// ContentBlocks allows block-level children.
	ContentBlocks

	// ContentText allows exactly one unmarked text leaf (opaque).
	ContentText

	// ContentListItems, ContentRows and ContentCells are the structural
	// table/list contexts.
	ContentListItems
	ContentRows
	ContentCells
)

// kindInfo is the per-kind declaration table.
type kindInfo struct {
	content Content
	inline  bool
	attrs   []AttrSpec
}

// AttrSpec declares one attribute of a node kind.
type AttrSpec struct {
	Name     string
	Default  string
	Required bool
}

var kinds = map[NodeKind]kindInfo{
	KindDoc:        {content: ContentBlocks},
	KindText:       {content: ContentNone, inline: true},
	KindParagraph:  {content: ContentInline, attrs: idClass()},
	KindHeading:    {content: ContentInline, attrs: append(idClass(), AttrSpec{Name: "level", Default: "1", Required: true})},
	KindPre:        {content: ContentText, attrs: idClass()},
	KindBlockquote: {content: ContentBlocks, attrs: idClass()},

	KindOrderedList: {content: ContentListItems, attrs: idClass()},
	KindBulletList:  {content: ContentListItems, attrs: idClass()},
	KindListItem:    {content: ContentBlocks, attrs: idClass()},

	KindTable:       {content: ContentRows, attrs: append(idClass(), AttrSpec{Name: "border", Default: BorderCell})},
	KindTableRow:    {content: ContentCells},
	KindTableCell:   {content: ContentBlocks},
	KindTableHeader: {content: ContentBlocks, attrs: []AttrSpec{{Name: "colspan", Default: "1"}}},

	KindImage: {content: ContentNone, inline: true, attrs: []AttrSpec{
		{Name: "src", Required: true},
		{Name: "alt"},
		{Name: "width"},
		{Name: "height"},
	}},

	KindContainer: {content: ContentBlocks, attrs: []AttrSpec{
		{Name: "id", Required: true},
		{Name: "class"},
		{Name: "editable", Default: "true"},
	}},
	KindButton: {content: ContentText, attrs: []AttrSpec{
		{Name: "id", Required: true},
		{Name: "class"},
	}},
}

func idClass() []AttrSpec {
	return []AttrSpec{{Name: "id"}, {Name: "class"}}
}

// Table border attribute values.
const (
	BorderOuter  = "outer"
	BorderHeader = "header"
	BorderCell   = "cell"
	BorderNone   = "none"
)

// ValidBorder reports whether s is a legal table border value.
func ValidBorder(s string) bool {
	switch s {
	case BorderOuter, BorderHeader, BorderCell, BorderNone:
		return true
	}
	return false
}

// Inline reports whether the kind participates in inline content.
func Inline(k NodeKind) bool { return kinds[k].inline }

// Block reports whether the kind is a block-level node.
func Block(k NodeKind) bool {
	info, ok := kinds[k]
	return ok && !info.inline && k != KindDoc
}

// Textblock reports whether the kind directly holds inline or opaque text
// content. Textblocks are what block-style commands retype.
func Textblock(k NodeKind) bool {
	c := kinds[k].content
	return c == ContentInline || c == ContentText
}

// AllowsMarks reports whether text inside the kind may carry marks.
// Preformatted blocks and button labels hold opaque text.
func AllowsMarks(k NodeKind) bool { return kinds[k].content == ContentInline }

// ContentOf returns the content category declared for the kind.
func ContentOf(k NodeKind) Content { return kinds[k].content }

// CanContain is the single legality predicate for parent/child pairs.
func CanContain(parent, child NodeKind) bool {
	switch kinds[parent].content {
	case ContentInline:
		return child == KindText || child == KindImage
	case ContentBlocks:
		switch child {
		case KindParagraph, KindHeading, KindPre, KindBlockquote,
			KindOrderedList, KindBulletList, KindTable:
			return true
		case KindContainer:
			// Containers nest only under the root or, as an explicitly
			// modeled nested region, under another container.
			return parent == KindDoc || parent == KindContainer
		case KindButton:
			return parent == KindContainer
		}
		return false
	case ContentText:
		return child == KindText
	case ContentListItems:
		return child == KindListItem
	case ContentRows:
		return child == KindTableRow
	case ContentCells:
		return child == KindTableCell || child == KindTableHeader
	}
	return false
}

// Attrs returns the attribute declarations for the kind.
func Attrs(k NodeKind) []AttrSpec { return kinds[k].attrs }

// FillDefaults returns attrs with declared defaults applied and reports
// a violation for missing required attributes.
func FillDefaults(k NodeKind, attrs map[string]string) (map[string]string, error) {
	specs := kinds[k].attrs
	if len(specs) == 0 && len(attrs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(attrs)+len(specs))
	for key, v := range attrs {
		out[key] = v
	}
	for _, spec := range specs {
		if _, ok := out[spec.Name]; ok {
			continue
		}
		if spec.Default != "" {
			out[spec.Name] = spec.Default
		} else if spec.Required {
			return nil, fmt.Errorf("%w: %s requires attribute %q", ErrViolation, k, spec.Name)
		}
	}
	return out, nil
}

// NewID returns a fresh host-visible node id.
func NewID() string {
	return "MU-" + uuid.NewString()[:8]
}
