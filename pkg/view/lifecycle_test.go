package view

import (
	"errors"
	"testing"
)

func TestLifecycleStates(t *testing.T) {
	l := NewRenderLifecycle()

	if l.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", l.State())
	}
	if l.HasRendered() {
		t.Error("HasRendered before any render")
	}

	gen := l.Submit()
	if l.State() != StateRendering {
		t.Errorf("state after Submit = %v, want rendering", l.State())
	}

	if disp := l.Complete(gen, nil); disp != Applied {
		t.Errorf("disposition = %v, want applied", disp)
	}
	if l.State() != StateReady {
		t.Errorf("state after Complete = %v, want ready", l.State())
	}
	if !l.HasRendered() {
		t.Error("HasRendered false after applied render")
	}
}

func TestLifecycleLastRequestWins(t *testing.T) {
	l := NewRenderLifecycle()

	// Two updates in quick succession: the first completes after the
	// second was submitted and must be discarded.
	gen1 := l.Submit()
	gen2 := l.Submit()

	if disp := l.Complete(gen1, nil); disp != Superseded {
		t.Errorf("stale completion = %v, want superseded", disp)
	}
	if l.State() != StateRendering {
		t.Errorf("state after stale completion = %v, want rendering", l.State())
	}
	if l.HasRendered() {
		t.Error("stale completion must not count as a render")
	}

	if disp := l.Complete(gen2, nil); disp != Applied {
		t.Errorf("latest completion = %v, want applied", disp)
	}
}

func TestLifecycleStaleCompletionAfterApply(t *testing.T) {
	l := NewRenderLifecycle()

	gen1 := l.Submit()
	gen2 := l.Submit()

	// Completions arrive out of order: the newer one first.
	if disp := l.Complete(gen2, nil); disp != Applied {
		t.Fatalf("disposition = %v, want applied", disp)
	}

	// The stale success arrives last; it must not reapply.
	if disp := l.Complete(gen1, nil); disp != Superseded {
		t.Errorf("late stale completion = %v, want superseded", disp)
	}
	if l.State() != StateReady {
		t.Errorf("state = %v, want ready", l.State())
	}
}

func TestLifecycleStaleErrorIgnored(t *testing.T) {
	l := NewRenderLifecycle()

	gen1 := l.Submit()
	gen2 := l.Submit()

	if disp := l.Complete(gen2, nil); disp != Applied {
		t.Fatalf("disposition = %v, want applied", disp)
	}

	// A stale failure must not disturb the applied render either.
	if disp := l.Complete(gen1, errors.New("boom")); disp != Superseded {
		t.Errorf("stale failure = %v, want superseded", disp)
	}
	if l.State() != StateReady {
		t.Errorf("state = %v, want ready", l.State())
	}
}

func TestLifecycleFailureKeepsPreviousRender(t *testing.T) {
	l := NewRenderLifecycle()

	// First render succeeds.
	if disp := l.Complete(l.Submit(), nil); disp != Applied {
		t.Fatalf("disposition = %v, want applied", disp)
	}

	// Second render fails: state returns to ready on the old render.
	if disp := l.Complete(l.Submit(), errors.New("bad dot")); disp != Failed {
		t.Errorf("disposition = %v, want failed", disp)
	}
	if l.State() != StateReady {
		t.Errorf("state after failure = %v, want ready (previous render kept)", l.State())
	}
	if !l.HasRendered() {
		t.Error("HasRendered lost after failure")
	}
}

func TestLifecycleFirstRenderFailure(t *testing.T) {
	l := NewRenderLifecycle()

	if disp := l.Complete(l.Submit(), errors.New("bad dot")); disp != Failed {
		t.Errorf("disposition = %v, want failed", disp)
	}
	if l.State() != StateIdle {
		t.Errorf("state = %v, want idle (nothing ever rendered)", l.State())
	}
	if l.HasRendered() {
		t.Error("HasRendered true after failed first render")
	}
}
