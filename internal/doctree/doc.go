// Package doctree provides the immutable document tree.
//
// Nodes are never mutated after construction; every edit builds new nodes
// along the changed path and shares the rest of the tree structurally.
// Offsets follow the token convention: a text leaf occupies one unit per
// rune, an inline atom occupies one unit, and every other node occupies
// its content size plus one opening and one closing token. Document
// offsets range over the root's content, so 0 is the position before the
// first top-level block.
package doctree
