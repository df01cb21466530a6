package view

import "github.com/flowpane/flowpane/pkg/msg"

// SelectionState tracks the selected node of the current render. At most
// one node is selected at a time; selecting emits a showTaskDetails intent
// and activating emits openTaskDefinition without touching the selection.
type SelectionState struct {
	nodes    *NodeSet
	selected *Node
	emit     func(msg.Message)
}

// NewSelectionState creates selection state that reports intents through
// emit.
func NewSelectionState(emit func(msg.Message)) *SelectionState {
	if emit == nil {
		emit = func(msg.Message) {}
	}
	return &SelectionState{emit: emit}
}

// SetNodes installs the node set of a new render. Any previous selection
// is dropped; references into the old set are dead.
func (s *SelectionState) SetNodes(nodes *NodeSet) {
	s.nodes = nodes
	s.selected = nil
}

// Select makes n the sole selected node and emits showTaskDetails. Nodes
// from a previous render are ignored.
func (s *SelectionState) Select(n *Node) {
	if !s.nodes.Contains(n) {
		return
	}
	if s.selected != nil {
		s.selected.Selected = false
	}
	n.Selected = true
	s.selected = n
	s.emit(msg.ShowTaskDetails(n.ID))
}

// Activate emits openTaskDefinition for n. The selection is unchanged, so
// activating an unselected node does not select it.
func (s *SelectionState) Activate(n *Node) {
	if !s.nodes.Contains(n) {
		return
	}
	s.emit(msg.OpenTaskDefinition(n.ID))
}

// Clear drops the selection without emitting anything.
func (s *SelectionState) Clear() {
	if s.selected != nil {
		s.selected.Selected = false
		s.selected = nil
	}
}

// Selected returns the selected node, or nil.
func (s *SelectionState) Selected() *Node {
	return s.selected
}
