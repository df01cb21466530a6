// Package host implements the privileged side of flowpane.
//
// The host owns the flow document: it loads the file, watches it for
// edits, and holds the authoritative Snapshot plus the task registry
// built from it. Views attach over a message channel; each attached view
// gets its own session loop that answers ready handshakes, forwards
// navigation intents to the Navigator, and records view diagnostics.
//
// The host trusts nothing from a view beyond the message protocol: node
// identifiers are validated and resolved against the registry before any
// navigation happens.
package host

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowpane/flowpane/pkg/errors"
	"github.com/flowpane/flowpane/pkg/flow"
	"github.com/flowpane/flowpane/pkg/msg"
	"github.com/flowpane/flowpane/pkg/observability"
)

// sendTimeout bounds how long a broadcast waits on a slow session before
// giving up on that message.
const sendTimeout = 5 * time.Second

// Navigator executes navigation on behalf of a view. Implementations
// typically open an editor or print the location.
type Navigator interface {
	// OpenDefinition jumps to the task's defining source location.
	OpenDefinition(ctx context.Context, task flow.Task) error

	// ShowDetails surfaces task information to the user.
	ShowDetails(ctx context.Context, task flow.Task)

	// NotFound reports that a view referenced a task the registry does
	// not know, usually because the document changed underneath it.
	NotFound(ctx context.Context, name string)
}

// LogNavigator is the default Navigator: it logs locations instead of
// driving an editor.
type LogNavigator struct {
	Logger *log.Logger
}

// OpenDefinition logs the task's location.
func (n *LogNavigator) OpenDefinition(ctx context.Context, task flow.Task) error {
	n.Logger.Info("open definition", "task", task.Name, "path", task.Location.Path, "line", task.Location.Line)
	return nil
}

// ShowDetails logs the task.
func (n *LogNavigator) ShowDetails(ctx context.Context, task flow.Task) {
	n.Logger.Info("task details", "task", task.Name, "path", task.Location.Path, "line", task.Location.Line)
}

// NotFound logs the unresolved name.
func (n *LogNavigator) NotFound(ctx context.Context, name string) {
	n.Logger.Warn("task not found", "name", name)
}

// Host owns one flow document and its attached view sessions.
type Host struct {
	mu sync.Mutex

	path     string
	snap     flow.Snapshot
	registry *flow.Registry

	sessions map[string]msg.Channel

	nav    Navigator
	logger *log.Logger
}

// New creates a host for the document at path. nav may be nil, in which
// case navigation is logged. The document is not loaded until Load.
func New(path string, nav Navigator, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	if nav == nil {
		nav = &LogNavigator{Logger: logger}
	}
	return &Host{
		path:     path,
		registry: flow.ScanRegistry(path, ""),
		sessions: make(map[string]msg.Channel),
		nav:      nav,
		logger:   logger,
	}
}

// Path returns the document path.
func (h *Host) Path() string {
	return h.path
}

// Load reads the document from disk and broadcasts it.
func (h *Host) Load(ctx context.Context) error {
	if err := errors.ValidateDocumentPath(h.path); err != nil {
		return err
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", h.path)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "read document %s", h.path)
	}

	h.SetDocument(ctx, string(data))
	return nil
}

// SetDocument installs new document content: the revision advances, the
// task registry is rebuilt, and every attached view receives an update.
func (h *Host) SetDocument(ctx context.Context, content string) {
	h.mu.Lock()
	h.snap = flow.Snapshot{Content: content, Rev: h.snap.Rev + 1}
	h.registry = flow.ScanRegistry(h.path, content)
	snap := h.snap
	targets := make(map[string]msg.Channel, len(h.sessions))
	for id, ch := range h.sessions {
		targets[id] = ch
	}
	h.mu.Unlock()

	h.logger.Debug("document updated", "rev", snap.Rev, "bytes", len(content), "tasks", h.Registry().Len())

	for id, ch := range targets {
		h.push(ctx, id, ch, msg.Update(snap.Content))
	}
}

// Reload re-reads the document from disk. Used by the watcher.
func (h *Host) Reload(ctx context.Context) error {
	return h.Load(ctx)
}

// Snapshot returns the current document snapshot.
func (h *Host) Snapshot() flow.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

// Registry returns the current task registry.
func (h *Host) Registry() *flow.Registry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry
}

// Attach runs the session loop for one view until its channel closes or
// ctx ends. The id only names the session in logs.
func (h *Host) Attach(ctx context.Context, id string, ch msg.Channel) {
	h.mu.Lock()
	h.sessions[id] = ch
	h.mu.Unlock()

	h.logger.Info("view attached", "session", id)

	defer func() {
		h.mu.Lock()
		delete(h.sessions, id)
		h.mu.Unlock()
		h.logger.Info("view detached", "session", id)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch.Receive():
			if !ok {
				return
			}
			observability.Channel().OnReceive(ctx, string(m.Type))
			h.handle(ctx, id, ch, m)
		}
	}
}

// handle dispatches one view message. Unknown types are logged and
// ignored.
func (h *Host) handle(ctx context.Context, id string, ch msg.Channel, m msg.Message) {
	switch m.Type {
	case msg.TypeReady:
		// Every ready is answered with the latest content, so a view
		// rebooting mid-session always converges. A host with no
		// document yet stays silent until the first SetDocument.
		snap := h.Snapshot()
		if snap.Rev == 0 {
			h.logger.Debug("view ready before first document", "session", id)
			return
		}
		h.push(ctx, id, ch, msg.Update(snap.Content))

	case msg.TypeShowTaskDetails:
		if task, ok := h.resolve(ctx, m.NodeID); ok {
			h.nav.ShowDetails(ctx, task)
		}

	case msg.TypeOpenTaskDefinition:
		task, ok := h.resolve(ctx, m.NodeID)
		if !ok {
			return
		}
		if err := h.nav.OpenDefinition(ctx, task); err != nil {
			h.logger.Error("open definition failed", "task", task.Name, "err", err)
		}

	case msg.TypeDebug:
		h.logger.Debug("view debug", "session", id, "msg", m.Text)

	case msg.TypeError:
		h.logger.Error("view error", "session", id, "msg", m.Text, "detail", m.Detail)

	default:
		h.logger.Warn("ignoring unknown message", "session", id, "type", m.Type)
	}
}

// resolve validates a node id from the wire and looks it up in the
// registry. Misses go through the Navigator's NotFound.
func (h *Host) resolve(ctx context.Context, nodeID string) (flow.Task, bool) {
	if err := errors.ValidateNodeID(nodeID); err != nil {
		h.logger.Warn("rejecting node id", "id", nodeID, "err", err)
		return flow.Task{}, false
	}

	task, ok := h.Registry().Resolve(nodeID)
	if !ok {
		h.nav.NotFound(ctx, nodeID)
		return flow.Task{}, false
	}
	return task, true
}

func (h *Host) push(ctx context.Context, id string, ch msg.Channel, m msg.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := ch.Send(sendCtx, m); err != nil {
		h.logger.Warn("session send failed", "session", id, "type", m.Type, "err", err)
	}
}
