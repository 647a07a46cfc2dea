// Package parser converts a captured 802.11 frame plus its timestamp into
// a structured Document tree. It is self-contained and has no dependency
// on the stage runtime.
package parser

// Document is the tree-shaped structure produced for every parsed frame.
// Nothing downstream depends on key order, so a plain map is enough:
// nested objects are map[string]any and arrays are []any.
type Document map[string]any
