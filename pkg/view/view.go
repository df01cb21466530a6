// Package view implements the sandboxed side of flowpane: rendering a flow
// graph and handling direct user interaction.
//
// # Architecture
//
// A View owns four cooperating components behind one event loop:
//
//   - RenderLifecycle arbitrates overlapping document updates (last wins)
//   - TransformController owns pan/zoom/fit state
//   - SelectionState tracks the selected node and emits navigation intents
//   - SearchEngine matches node labels and navigates between matches
//
// The loop suspends only at two boundaries: waiting for host messages and
// waiting for layout completions. Layout runs off-loop because it is the
// only slow operation; everything else mutates state synchronously, so no
// component ever observes a half-applied render.
//
// The view never blanks after its first successful render: empty or broken
// documents produce an error diagnostic to the host while the previous
// graph stays on screen.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowpane/flowpane/pkg/layout"
	"github.com/flowpane/flowpane/pkg/msg"
	"github.com/flowpane/flowpane/pkg/observability"
)

// completion carries a finished layout back into the event loop.
type completion struct {
	gen      uint64
	result   *layout.Result
	err      error
	duration time.Duration
}

// View wires the interaction components to a message channel and a layout
// engine. Public methods are safe to call from the UI goroutine while the
// event loop runs.
type View struct {
	mu sync.Mutex

	ch     msg.Channel
	engine layout.Engine
	logger *log.Logger

	transform *TransformController
	selection *SelectionState
	search    *SearchEngine
	lifecycle *RenderLifecycle

	nodes  *NodeSet
	result *layout.Result

	completions chan completion

	// exec runs layout jobs. Tests replace it to run jobs inline.
	exec func(func())

	onRender func()
}

// New creates a view reading from ch and laying out with engine.
// logger may be nil.
func New(engine layout.Engine, ch msg.Channel, logger *log.Logger) *View {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	v := &View{
		ch:          ch,
		engine:      engine,
		logger:      logger,
		transform:   NewTransformController(),
		lifecycle:   NewRenderLifecycle(),
		completions: make(chan completion, 16),
		exec:        func(fn func()) { go fn() },
	}

	emit := func(m msg.Message) {
		if err := ch.Send(context.Background(), m); err != nil {
			logger.Warn("intent not delivered", "type", m.Type, "err", err)
		}
	}
	v.selection = NewSelectionState(emit)
	v.search = NewSearchEngine(func(n *Node) {
		v.transform.CenterOn(n.X, n.Y)
	})

	return v
}

// SetOnRender registers a callback invoked after each applied render.
// The callback runs outside the view lock.
func (v *View) SetOnRender(fn func()) {
	v.mu.Lock()
	v.onRender = fn
	v.mu.Unlock()
}

// Transform exposes the pan/zoom controller for the UI layer.
func (v *View) Transform() *TransformController {
	return v.transform
}

// Run announces readiness and processes host messages and render
// completions until ctx ends or the channel closes.
func (v *View) Run(ctx context.Context) error {
	if err := v.ch.Send(ctx, msg.Ready()); err != nil {
		return err
	}
	v.logger.Debug("view ready")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-v.ch.Receive():
			if !ok {
				v.logger.Debug("channel closed")
				return nil
			}
			observability.Channel().OnReceive(ctx, string(m.Type))
			v.handleMessage(ctx, m)
		case c := <-v.completions:
			v.handleCompletion(ctx, c)
		}
	}
}

// handleMessage dispatches one host message. Unknown types are logged and
// ignored so protocol growth never breaks the view.
func (v *View) handleMessage(ctx context.Context, m msg.Message) {
	switch m.Type {
	case msg.TypeUpdate:
		v.handleUpdate(ctx, m.Content)
	default:
		v.logger.Warn("ignoring unknown message", "type", m.Type)
	}
}

// handleUpdate starts a render for new document content. Empty content is
// rejected up front: the host is told, the current graph stays.
func (v *View) handleUpdate(ctx context.Context, content string) {
	if strings.TrimSpace(content) == "" {
		v.logger.Warn("update with empty document")
		v.send(ctx, msg.Error("document is empty", nil))
		return
	}

	v.mu.Lock()
	gen := v.lifecycle.Submit()
	v.mu.Unlock()

	observability.Render().OnRenderStart(ctx, gen)
	v.logger.Debug("render submitted", "gen", gen, "bytes", len(content))

	v.exec(func() {
		start := time.Now()
		result, err := v.engine.Layout(ctx, content)
		v.completions <- completion{
			gen:      gen,
			result:   result,
			err:      err,
			duration: time.Since(start),
		}
	})
}

// handleCompletion applies, reports, or discards a finished layout
// according to the lifecycle's verdict.
func (v *View) handleCompletion(ctx context.Context, c completion) {
	v.mu.Lock()
	disp := v.lifecycle.Complete(c.gen, c.err)
	v.mu.Unlock()

	nodeCount := 0
	if c.result != nil {
		nodeCount = len(c.result.Nodes)
	}
	observability.Render().OnRenderComplete(ctx, c.gen, nodeCount, c.duration, disp == Superseded, c.err)

	switch disp {
	case Superseded:
		// A newer update is in flight or applied; this result is dead.
		v.logger.Debug("discarding superseded render", "gen", c.gen)

	case Failed:
		v.logger.Warn("render failed", "gen", c.gen, "err", c.err)
		v.send(ctx, msg.Error("render failed", c.err))

	case Applied:
		v.apply(c.result)
		v.logger.Debug("render applied", "gen", c.gen, "nodes", nodeCount, "took", c.duration)
		v.send(ctx, msg.Debug(fmt.Sprintf("rendered %d nodes in %s", nodeCount, c.duration.Round(time.Millisecond))))
	}
}

// apply installs a fresh render: new node set, cleared selection, matches
// rebuilt for the preserved query, transform reconciled to the new bounds.
func (v *View) apply(result *layout.Result) {
	v.mu.Lock()
	v.result = result
	v.nodes = NewNodeSet(result.Nodes)
	v.selection.SetNodes(v.nodes)
	v.search.SetNodes(v.nodes)
	v.transform.SetBounds(result.Width, result.Height)
	v.transform.Reconcile()
	fn := v.onRender
	v.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// =============================================================================
// UI operations
// =============================================================================

// Nodes returns the nodes of the current render in render order.
func (v *View) Nodes() []*Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nodes.Nodes()
}

// Artifact returns the SVG of the current render, nil before the first one.
func (v *View) Artifact() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.result == nil {
		return nil
	}
	return v.result.SVG
}

// State returns the render lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lifecycle.State()
}

// SelectNode selects the node with the given id and emits showTaskDetails.
func (v *View) SelectNode(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n, ok := v.nodes.ByID(id); ok {
		v.selection.Select(n)
	}
}

// ActivateNode emits openTaskDefinition for the node with the given id.
func (v *View) ActivateNode(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n, ok := v.nodes.ByID(id); ok {
		v.selection.Activate(n)
	}
}

// ClearSelection drops the selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Clear()
}

// Selected returns the selected node, or nil.
func (v *View) Selected() *Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Selected()
}

// SetQuery updates the search query.
func (v *View) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search.SetQuery(q)
}

// NextMatch focuses the next search match.
func (v *View) NextMatch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search.Next()
}

// PreviousMatch focuses the previous search match.
func (v *View) PreviousMatch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search.Previous()
}

// Search exposes the search engine for the UI layer. Callers must only
// touch it from the UI goroutine.
func (v *View) Search() *SearchEngine {
	return v.search
}

func (v *View) send(ctx context.Context, m msg.Message) {
	if err := v.ch.Send(ctx, m); err != nil {
		v.logger.Warn("message not delivered", "type", m.Type, "err", err)
	}
}
