// Package markup converts between the document tree and the
// constrained HTML-like interchange format.
//
// The schema's node and mark kinds map 1:1 to a fixed tag vocabulary.
// Parsing strips any tag or attribute outside the vocabulary (unknown
// elements are unwrapped, their children kept). Rendering can pretty-
// print with indentation and can decorate search matches with
// presentation-only wrapper spans; those spans are never part of
// content and clean output omits them.
package markup
