// Package transaction implements the primitive, invertible steps that
// mutate the document tree and the transactions that group them.
//
// A transaction is built against one document snapshot. Each appended
// step applies eagerly, so later steps address the already-edited tree;
// the original snapshot is never mutated, and a transaction that fails
// partway is discarded as a whole. Alongside the forward steps the
// transaction records each step's inverse and positional span, which is
// what history and selection mapping consume.
package transaction
