// Package flow holds the document model shared by the host side of flowpane.
//
// A flow document is a Graphviz DOT description of a task graph. The host
// owns exactly one document at a time, tracked as an immutable Snapshot with
// a monotonically increasing revision. Alongside the snapshot the host keeps
// a task Registry mapping node names to their defining source location, used
// to answer openTaskDefinition intents from views.
//
// The registry scanner is deliberately not a DOT parser. Graph semantics
// (structure, layout) belong to the layout engine; the scanner only needs
// the line where each node is first mentioned.
package flow

import "strings"

// Snapshot is an immutable capture of the document at a revision.
// Rev increases by one for every accepted document change; views use the
// content only, the revision exists for logging and cache keys.
type Snapshot struct {
	Content string
	Rev     uint64
}

// Empty reports whether the snapshot carries no renderable content.
// Whitespace-only documents count as empty.
func (s Snapshot) Empty() bool {
	return strings.TrimSpace(s.Content) == ""
}
