// Package search implements incremental document search. A Searcher
// holds the current query and match index; while it is active the
// engine routes Enter and Shift-Enter to Next and Prev instead of
// editing. Any edit deactivates it.
package search

import (
	"unicode"

	"github.com/willwagner/markupeditor/internal/doctree"
)

// Direction of search advancement.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Match is one occurrence of the query, as a document range.
type Match struct {
	From int
	To   int
}

// Searcher is the engine's search state machine.
type Searcher struct {
	query         string
	direction     Direction
	caseSensitive bool
	active        bool

	matches []Match
	indexed *doctree.Document
}

func New() *Searcher { return &Searcher{} }

// Active reports whether search currently intercepts advancement keys.
func (s *Searcher) Active() bool { return s.active }

// Query returns the current query text.
func (s *Searcher) Query() string { return s.query }

// Direction returns the last requested direction.
func (s *Searcher) Direction() Direction { return s.direction }

// Matches returns the current match index, for decoration rendering.
func (s *Searcher) Matches() []Match { return s.matches }

// Cancel clears the query and deactivates search.
func (s *Searcher) Cancel() {
	s.query = ""
	s.active = false
	s.matches = nil
	s.indexed = nil
}

// Deactivate stops intercepting advancement keys but keeps the query,
// so a repeated search resumes without re-typing. Called on any edit.
func (s *Searcher) Deactivate() {
	s.active = false
	s.indexed = nil
	s.matches = nil
}

// SearchFor sets the query and reports the first match from the given
// position on. The match index is rebuilt only when the query, case
// mode, or document differ from the last build. An empty query cancels.
// activate arms Enter/Shift-Enter interception.
func (s *Searcher) SearchFor(doc *doctree.Document, from int, text string, dir Direction, caseSensitive, activate bool) (Match, bool) {
	if text == "" {
		s.Cancel()
		return Match{}, false
	}
	if text != s.query || caseSensitive != s.caseSensitive || doc != s.indexed {
		s.query = text
		s.caseSensitive = caseSensitive
		s.rebuild(doc)
	}
	s.direction = dir
	s.active = activate
	if dir == Backward {
		return s.prev(from)
	}
	return s.next(from)
}

// Next moves to the next match after the given position, wrapping
// around at the document end.
func (s *Searcher) Next(doc *doctree.Document, from int) (Match, bool) {
	if s.query == "" {
		return Match{}, false
	}
	if doc != s.indexed {
		s.rebuild(doc)
	}
	s.direction = Forward
	return s.next(from)
}

// Prev is the backward counterpart of Next.
func (s *Searcher) Prev(doc *doctree.Document, from int) (Match, bool) {
	if s.query == "" {
		return Match{}, false
	}
	if doc != s.indexed {
		s.rebuild(doc)
	}
	s.direction = Backward
	return s.prev(from)
}

func (s *Searcher) next(from int) (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	for _, m := range s.matches {
		if m.From >= from {
			return m, true
		}
	}
	return s.matches[0], true
}

func (s *Searcher) prev(from int) (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	for i := len(s.matches) - 1; i >= 0; i-- {
		if s.matches[i].From < from {
			return s.matches[i], true
		}
	}
	return s.matches[len(s.matches)-1], true
}

// rebuild indexes every textblock. Text offsets inside a textblock are
// contiguous across its leaves, so matches may span mark boundaries but
// never block boundaries.
func (s *Searcher) rebuild(doc *doctree.Document) {
	s.indexed = doc
	s.matches = s.matches[:0]
	query := []rune(s.query)
	doc.NodesBetween(0, doc.Size(), func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if !n.IsTextblock() {
			return true
		}
		// Inline atoms occupy a position but contribute no text, so
		// each rune carries its own document offset.
		var text []rune
		var at []int
		off := pos + 1
		for _, c := range n.Children {
			if c.IsText() {
				for i, r := range []rune(c.Text) {
					text = append(text, r)
					at = append(at, off+i)
				}
			}
			off += c.Size()
		}
		for i := 0; i+len(query) <= len(text); i++ {
			if runesMatch(text[i:i+len(query)], query, s.caseSensitive) {
				s.matches = append(s.matches, Match{From: at[i], To: at[i+len(query)-1] + 1})
			}
		}
		return false
	})
}

func runesMatch(a, b []rune, caseSensitive bool) bool {
	for i := range b {
		x, y := a[i], b[i]
		if !caseSensitive {
			x, y = unicode.ToLower(x), unicode.ToLower(y)
		}
		if x != y {
			return false
		}
	}
	return true
}
