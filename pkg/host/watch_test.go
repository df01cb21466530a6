package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.dot")
	if err := os.WriteFile(path, []byte("digraph g { alpha; }"), 0644); err != nil {
		t.Fatal(err)
	}

	h := New(path, &recordingNavigator{}, quietLogger())
	if err := h.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.Watch(ctx, 20*time.Millisecond)
	}()

	// Give the watcher time to register before rewriting.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("digraph g { beta; }"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, ok := h.Registry().Resolve("beta")
		return ok
	})
	if h.Snapshot().Rev < 2 {
		t.Errorf("rev = %d, want at least 2", h.Snapshot().Rev)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.dot")
	if err := os.WriteFile(path, []byte("digraph g { alpha; }"), 0644); err != nil {
		t.Fatal(err)
	}

	h := New(path, &recordingNavigator{}, quietLogger())
	if err := h.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.Watch(ctx, 20*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.dot"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := h.Snapshot().Rev; got != 1 {
		t.Errorf("rev = %d, sibling write should not reload", got)
	}
}
