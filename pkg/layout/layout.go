// Package layout is the boundary to the external graph layout library.
//
// The rest of flowpane treats layout as a pure function: document content in,
// positioned nodes plus a drawable artifact out. Coordinates use screen
// conventions (origin top-left, y growing downward, units in points) so view
// code never deals with the layout library's native coordinate system.
//
// The Graphviz implementation parses DOT, runs the dot layout engine, and
// extracts node geometry from the attributed output. Layout results are
// deterministic for identical content, which makes them cacheable; see
// [Cached].
package layout

import "context"

// Node is a positioned graph node. X and Y are the node center in points,
// measured from the top-left corner of the drawing.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is a completed layout: node geometry in render order, the overall
// drawing size, and the rendered SVG artifact. Results serialize to JSON for
// caching.
type Result struct {
	Nodes  []Node  `json:"nodes"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	SVG    []byte  `json:"svg"`
}

// Engine computes layouts. Implementations must be safe for concurrent use;
// every call is independent.
type Engine interface {
	// Layout positions the nodes of content and renders the artifact.
	// Empty or unparseable content fails with an INVALID_CONTENT error;
	// layout and render failures report RENDER_FAILED.
	Layout(ctx context.Context, content string) (*Result, error)
}
