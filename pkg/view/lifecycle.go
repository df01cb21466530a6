package view

// State is the render lifecycle state of the view.
type State int

const (
	// StateIdle means nothing has been rendered yet.
	StateIdle State = iota

	// StateRendering means a layout is in flight.
	StateRendering

	// StateReady means the latest completed render is on screen.
	StateReady
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Disposition classifies a render completion.
type Disposition int

const (
	// Applied means the completion is the latest request and its result
	// goes on screen.
	Applied Disposition = iota

	// Failed means the completion is the latest request but errored;
	// the previous render stays on screen.
	Failed

	// Superseded means a newer request was submitted while this one was
	// in flight; its result must be discarded entirely.
	Superseded
)

// String returns the disposition name for logging.
func (d Disposition) String() string {
	switch d {
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// RenderLifecycle arbitrates overlapping render requests: the last
// submitted request wins, and completions of older requests are rejected
// no matter when they arrive. This closes the gap where a stale render
// finishing late could clobber the state of a newer one.
//
// The lifecycle is not goroutine safe; the view event loop is its only
// caller.
type RenderLifecycle struct {
	state State

	// latest is the generation of the newest submitted request.
	latest uint64

	// applied is the generation currently on screen, 0 if none.
	applied uint64
}

// NewRenderLifecycle creates an idle lifecycle.
func NewRenderLifecycle() *RenderLifecycle {
	return &RenderLifecycle{state: StateIdle}
}

// Submit registers a new render request and returns its generation.
// Any in-flight request is implicitly superseded.
func (l *RenderLifecycle) Submit() uint64 {
	l.latest++
	l.state = StateRendering
	return l.latest
}

// Complete reports the outcome of the request identified by gen and
// returns how the caller must treat it. Only the latest generation can be
// applied or failed; everything older is superseded.
func (l *RenderLifecycle) Complete(gen uint64, err error) Disposition {
	if gen != l.latest {
		return Superseded
	}

	if err != nil {
		// Keep whatever was on screen before.
		if l.applied > 0 {
			l.state = StateReady
		} else {
			l.state = StateIdle
		}
		return Failed
	}

	l.applied = gen
	l.state = StateReady
	return Applied
}

// State returns the current lifecycle state.
func (l *RenderLifecycle) State() State {
	return l.state
}

// HasRendered reports whether any render has ever been applied. Once
// true, the view never blanks again.
func (l *RenderLifecycle) HasRendered() bool {
	return l.applied > 0
}
