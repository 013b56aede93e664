package transaction

// Selection is a pair of document offsets. Anchor is the fixed end,
// Head the moving end; equal ends denote a collapsed caret. A selection
// is valid against exactly one document snapshot and must be remapped
// after every transaction.
type Selection struct {
	Anchor int
	Head   int
}

// Collapsed returns a caret selection at pos.
func Collapsed(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// From returns the lower end of the selection.
func (s Selection) From() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// To returns the upper end of the selection.
func (s Selection) To() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

// Empty reports whether the selection is a collapsed caret.
func (s Selection) Empty() bool { return s.Anchor == s.Head }
