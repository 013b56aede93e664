package doctree

// Slice extracts the content between two document positions as a list
// of fully closed nodes. Blocks only partially covered by the range are
// copied with their content trimmed to the covered portion; fully
// covered nodes are shared, not copied.
func (d *Document) Slice(from, to int) []*Node {
	return sliceContent(d.Root, from, to)
}

// SliceInner slices a node's content; from and to are relative to the
// node's content start.
func SliceInner(n *Node, from, to int) []*Node {
	return sliceContent(n, from, to)
}

// sliceContent slices the children of n; from and to are relative to
// n's content start.
func sliceContent(n *Node, from, to int) []*Node {
	// An empty range covers nothing, even strictly inside a child.
	if from >= to {
		return nil
	}
	var out []*Node
	off := 0
	for _, c := range n.Children {
		end := off + c.Size()
		if end <= from {
			off = end
			continue
		}
		if off >= to {
			break
		}
		switch {
		case c.IsText():
			lo, hi := 0, c.Size()
			if from > off {
				lo = from - off
			}
			if to < end {
				hi = to - off
			}
			if lo == 0 && hi == c.Size() {
				out = append(out, c)
			} else {
				out = append(out, sliceText(c, lo, hi))
			}
		case off >= from && end <= to:
			out = append(out, c)
		case c.IsLeaf():
			// A size-1 atom overlapping the range is covered by it.
			out = append(out, c)
		default:
			lo, hi := 0, c.ContentSize()
			if from > off+1 {
				lo = from - off - 1
			}
			if to < end-1 {
				hi = to - off - 1
			}
			inner := sliceContent(c, lo, hi)
			trimmed, err := c.WithChildren(inner)
			if err != nil {
				// Trimming never introduces new kinds.
				panic(err)
			}
			out = append(out, trimmed)
		}
		off = end
	}
	return out
}

func sliceText(leaf *Node, from, to int) *Node {
	runes := []rune(leaf.Text)
	return leaf.WithText(string(runes[from:to]))
}

// FragmentSize returns the total size of a node list.
func FragmentSize(nodes []*Node) int {
	s := 0
	for _, n := range nodes {
		s += n.Size()
	}
	return s
}

// MergeInline joins adjacent text leaves that carry identical mark sets
// and drops empty text leaves. Inline content is normalized this way
// after every inline edit so that equal documents compare equal.
func MergeInline(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.IsText() && n.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && n.IsText() && MarksEq(last.Marks, n.Marks) {
				out[len(out)-1] = last.WithText(last.Text + n.Text)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
