package doctree

import "strings"

// NodesBetween calls fn for every node whose span touches [from, to),
// in document order. pos is the absolute position before the node. If
// fn returns false the node's descendants are skipped.
func (d *Document) NodesBetween(from, to int, fn func(n *Node, pos int, parent *Node) bool) {
	nodesBetween(d.Root, 0, from, to, fn)
}

// nodesBetween walks the children of n. base is the absolute position
// of n's content start.
func nodesBetween(n *Node, base, from, to int, fn func(*Node, int, *Node) bool) {
	off := base
	for _, c := range n.Children {
		end := off + c.Size()
		if end > from && off < to {
			if fn(c, off, n) && !c.IsLeaf() {
				nodesBetween(c, off+1, from, to, fn)
			}
		}
		if off >= to {
			return
		}
		off = end
	}
}

// NodeAfter returns the node that starts exactly at pos, preferring the
// shallowest such node.
func (d *Document) NodeAfter(pos int) (*Node, bool) {
	var found *Node
	d.NodesBetween(pos, pos+1, func(n *Node, p int, _ *Node) bool {
		if found == nil && p == pos {
			found = n
			return false
		}
		return found == nil
	})
	return found, found != nil
}

// TextBetween returns the text content between two positions. Textblock
// boundaries are rendered as blockSep.
func (d *Document) TextBetween(from, to int, blockSep string) string {
	var b strings.Builder
	first := true
	d.NodesBetween(from, to, func(n *Node, pos int, _ *Node) bool {
		if n.IsTextblock() {
			if !first {
				b.WriteString(blockSep)
			}
			first = false
			return true
		}
		if n.IsText() {
			runes := []rune(n.Text)
			lo, hi := 0, len(runes)
			if from > pos {
				lo = from - pos
			}
			if to < pos+len(runes) {
				hi = to - pos
			}
			b.WriteString(string(runes[lo:hi]))
		}
		return true
	})
	return b.String()
}
