package position

// Span describes the positional effect of one applied step: the range
// [From, To) it replaced and the size of the content that replaced it.
type Span struct {
	From   int
	To     int
	NewLen int
}

// Delta returns the size change the span introduced.
func (s Span) Delta() int { return s.NewLen - (s.To - s.From) }

// MapOffset adjusts a document offset across a sequence of spans, in
// application order.
//
// Positions inside a replaced range are LEFT-biased: they map to the
// start boundary of the replacement, never its end. This is
// selection-visible behavior — after deleting a range the caret lands
// at the deletion start — and the rest of the engine depends on it.
func MapOffset(pos int, spans []Span) int {
	for _, s := range spans {
		pos = mapOne(pos, s)
	}
	return pos
}

func mapOne(pos int, s Span) int {
	if pos <= s.From {
		return pos
	}
	if pos >= s.To {
		return pos + s.Delta()
	}
	// Inside the replaced range: left bias.
	return s.From
}

// MapRange maps both ends of a range and normalizes so from <= to.
func MapRange(from, to int, spans []Span) (int, int) {
	f, t := MapOffset(from, spans), MapOffset(to, spans)
	if f > t {
		f, t = t, f
	}
	return f, t
}
