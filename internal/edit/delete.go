package edit

import (
	"sort"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/transaction"
)

// DeleteRange removes [from, to) from the transaction's current
// document. A range whose endpoints both sit inside textblocks under a
// common parent collapses to a single replace step, joining the
// boundary blocks. Ranges the joining step cannot express are peeled
// instead: trailing content on the start side, leading content on the
// end side, and whole subtrees in between, each as its own step. The
// boundary blocks then stay separate.
func DeleteRange(tr *transaction.Transaction, from, to int) {
	if tr.Err() != nil || from >= to {
		return
	}
	probe := transaction.New(tr.Doc()).Delete(from, to)
	if probe.Err() == nil {
		tr.Delete(from, to)
		return
	}
	ranges, err := peelRanges(tr.Doc(), from, to)
	if err != nil {
		tr.Delete(from, to) // surface the original rejection
		return
	}
	// Back to front, so earlier ranges stay valid as steps apply.
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] > ranges[j][0] })
	for _, r := range ranges {
		tr.Delete(r[0], r[1])
		if tr.Err() != nil {
			return
		}
	}
}

// peelRanges decomposes [from, to) into disjoint ranges that each stay
// within a single parent's child list or a single textblock.
func peelRanges(doc *doctree.Document, from, to int) ([][2]int, error) {
	rf, err := position.Resolve(doc, from)
	if err != nil {
		return nil, err
	}
	rt, err := position.Resolve(doc, to)
	if err != nil {
		return nil, err
	}
	dc := sharedDepth(rf, rt)
	var ranges [][2]int
	add := func(lo, hi int) {
		if lo < hi {
			ranges = append(ranges, [2]int{lo, hi})
		}
	}

	// Start side: at each level below the common ancestor, the content
	// trailing the path.
	for d := dc + 1; d <= rf.Depth(); d++ {
		end := rf.StartAt(d) + rf.Node(d).ContentSize()
		lo := from
		if d < rf.Depth() {
			lo = rf.StartAt(d) + rf.Node(d).ChildOffset(rf.IndexAt(d)) + rf.Node(d+1).Size()
		}
		add(lo, end)
	}

	// End side: content leading the path.
	for d := dc + 1; d <= rt.Depth(); d++ {
		hi := to
		if d < rt.Depth() {
			hi = rt.StartAt(d) + rt.Node(d).ChildOffset(rt.IndexAt(d))
		}
		add(rt.StartAt(d), hi)
	}

	// Whole children of the common ancestor strictly between the two
	// paths.
	anc := rf.Node(dc)
	mStart := from
	if rf.Depth() > dc {
		i := rf.IndexAt(dc)
		mStart = rf.StartAt(dc) + anc.ChildOffset(i) + anc.Child(i).Size()
	}
	mEnd := to
	if rt.Depth() > dc {
		mEnd = rt.StartAt(dc) + anc.ChildOffset(rt.IndexAt(dc))
	}
	add(mStart, mEnd)
	return ranges, nil
}

// sharedDepth returns the deepest depth at which both resolved paths
// pass through the same node occurrence.
func sharedDepth(rf, rt *position.Resolved) int {
	d := 0
	max := rf.Depth()
	if rt.Depth() < max {
		max = rt.Depth()
	}
	for d < max && rf.Node(d+1) == rt.Node(d+1) && rf.StartAt(d+1) == rt.StartAt(d+1) {
		d++
	}
	return d
}
