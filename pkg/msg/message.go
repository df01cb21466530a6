// Package msg defines the typed message protocol between the flowpane host
// and its views.
//
// The host and a view share no memory. Everything crossing the boundary is a
// Message: the host pushes document updates, the view reports readiness,
// navigation intents, and diagnostics. Delivery is asynchronous and ordered
// per direction; there are no replies or acknowledgements.
//
// # Message Types
//
// Host to view:
//   - update: full document content to render
//
// View to host:
//   - ready: the view finished booting and can receive updates
//   - showTaskDetails: the user selected a node
//   - openTaskDefinition: the user activated a node
//   - debug: free-form diagnostic line
//   - error: view-side failure report
//
// Unknown types must be logged and ignored by both sides so that protocol
// extensions never break older peers.
package msg

import (
	"encoding/json"

	"github.com/flowpane/flowpane/pkg/errors"
)

// Type identifies the kind of a message.
type Type string

// Message types exchanged between host and view.
const (
	TypeUpdate             Type = "update"
	TypeReady              Type = "ready"
	TypeShowTaskDetails    Type = "showTaskDetails"
	TypeOpenTaskDefinition Type = "openTaskDefinition"
	TypeDebug              Type = "debug"
	TypeError              Type = "error"
)

// Message is the single wire record. Fields are populated per type:
// Content for update, NodeID for the two navigation intents, Text for
// debug and error, Detail optionally for error.
type Message struct {
	Type    Type   `json:"type"`
	Content string `json:"content,omitempty"`
	NodeID  string `json:"nodeId,omitempty"`
	Text    string `json:"message,omitempty"`
	Detail  string `json:"error,omitempty"`
}

// Update builds a host-to-view document update.
func Update(content string) Message {
	return Message{Type: TypeUpdate, Content: content}
}

// Ready builds the view readiness signal.
func Ready() Message {
	return Message{Type: TypeReady}
}

// ShowTaskDetails builds a selection intent for the given node.
func ShowTaskDetails(nodeID string) Message {
	return Message{Type: TypeShowTaskDetails, NodeID: nodeID}
}

// OpenTaskDefinition builds an activation intent for the given node.
func OpenTaskDefinition(nodeID string) Message {
	return Message{Type: TypeOpenTaskDefinition, NodeID: nodeID}
}

// Debug builds a diagnostic message.
func Debug(text string) Message {
	return Message{Type: TypeDebug, Text: text}
}

// Error builds an error report. detail may be empty when there is no
// underlying cause worth forwarding.
func Error(text string, cause error) Message {
	m := Message{Type: TypeError, Text: text}
	if cause != nil {
		m.Detail = cause.Error()
	}
	return m
}

// Encode serializes a message to its JSON wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProtocol, err, "encode %s message", m.Type)
	}
	return data, nil
}

// Decode parses a message from its JSON wire form. A record without a
// type field is a protocol error; unknown types decode fine and are left
// for the receiver to ignore.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeProtocol, err, "decode message")
	}
	if m.Type == "" {
		return Message{}, errors.New(errors.ErrCodeProtocol, "message has no type")
	}
	return m, nil
}
