package doctree

import "github.com/willwagner/markupeditor/internal/schema"

// HasMark reports whether the set contains a mark of the given kind.
func HasMark(marks []Mark, kind schema.MarkKind) bool {
	for _, m := range marks {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// FindMark returns the mark of the given kind, if present.
func FindMark(marks []Mark, kind schema.MarkKind) (Mark, bool) {
	for _, m := range marks {
		if m.Kind == kind {
			return m, true
		}
	}
	return Mark{}, false
}

// AddMark returns the set with the mark added, replacing any existing
// mark of the same kind. Marks of one kind never nest.
func AddMark(marks []Mark, mark Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	for _, m := range marks {
		if m.Kind != mark.Kind {
			out = append(out, m)
		}
	}
	return append(out, mark)
}

// RemoveMark returns the set without any mark of the given kind.
func RemoveMark(marks []Mark, kind schema.MarkKind) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if m.Kind != kind {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MarksEq reports whether two mark sets are identical, order ignored.
func MarksEq(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		other, ok := FindMark(b, m.Kind)
		if !ok || !attrsEq(m.Attrs, other.Attrs) {
			return false
		}
	}
	return true
}
