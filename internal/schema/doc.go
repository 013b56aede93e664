// Package schema declares the closed vocabulary of node and mark kinds
// the editor understands, the content each node kind may hold, and the
// attributes each kind carries.
//
// Every tree-construction path in the engine (markup parsing, structural
// editing, container insertion) routes through CanContain and Validate;
// the schema is the single source of truth for document legality.
package schema
