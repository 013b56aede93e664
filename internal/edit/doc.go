// Package edit implements the structural editing algorithms: mark and
// block-style changes, list toggling and splitting, indentation, table
// surgery, and link/image handling.
//
// Every operation is expressed as a transaction over the current
// document, so each one is atomic and invertible; none of them mutate
// the tree directly. Operations whose structural preconditions are not
// met return a sentinel error and leave no transaction behind.
package edit
