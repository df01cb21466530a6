package view

import "github.com/flowpane/flowpane/pkg/layout"

// SearchMark is the search highlight state of a node.
type SearchMark int

const (
	// SearchNone means the node does not match the current query.
	SearchNone SearchMark = iota

	// SearchMatch means the node matches the current query.
	SearchMatch

	// SearchCurrent means the node is the focused match.
	SearchCurrent
)

// Node is a rendered node with its interaction state. Pointers into a
// NodeSet stay valid only until the next render; every re-render builds a
// fresh set and everything holding references is rebuilt from it.
type Node struct {
	ID     string
	Label  string
	X      float64
	Y      float64
	Width  float64
	Height float64

	Selected bool
	Mark     SearchMark
}

// NodeSet is the node collection of one render, in render order.
type NodeSet struct {
	nodes []*Node
	byID  map[string]*Node
}

// NewNodeSet builds interaction nodes from a layout result.
func NewNodeSet(ns []layout.Node) *NodeSet {
	s := &NodeSet{
		nodes: make([]*Node, 0, len(ns)),
		byID:  make(map[string]*Node, len(ns)),
	}
	for _, ln := range ns {
		n := &Node{
			ID:     ln.ID,
			Label:  ln.Label,
			X:      ln.X,
			Y:      ln.Y,
			Width:  ln.Width,
			Height: ln.Height,
		}
		s.nodes = append(s.nodes, n)
		if _, dup := s.byID[n.ID]; !dup {
			s.byID[n.ID] = n
		}
	}
	return s
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// Nodes returns the nodes in render order. The slice is shared; callers
// must not modify it.
func (s *NodeSet) Nodes() []*Node {
	if s == nil {
		return nil
	}
	return s.nodes
}

// ByID finds a node by identifier.
func (s *NodeSet) ByID(id string) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.byID[id]
	return n, ok
}

// Contains reports whether n belongs to this set. A node from a previous
// render never does, even when a node with the same ID exists.
func (s *NodeSet) Contains(n *Node) bool {
	if s == nil || n == nil {
		return false
	}
	return s.byID[n.ID] == n
}
