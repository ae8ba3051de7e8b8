// Package syntax defines the syntax tree the linter works on.
//
// A tree is produced by the parser package from JSX/TSX source and is
// read-only afterwards. Each node keeps a back reference to its parent so
// rules can ask about the lexical context of a node (for example "is this
// expression inside a markup attribute?"). Ownership and traversal order
// follow Children; parents are only used for context queries.
//
// The node set is closed. Markup and the handful of expression forms the
// rules care about get their own types; every other grammar node is a
// Generic tagged with its grammar type name.
package syntax
