package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flowpane/flowpane/pkg/layout"
	"github.com/flowpane/flowpane/pkg/msg"
	"github.com/flowpane/flowpane/pkg/view"
)

type stubEngine struct{}

func (stubEngine) Layout(ctx context.Context, content string) (*layout.Result, error) {
	return &layout.Result{}, nil
}

func newTestModel(t *testing.T) flowModel {
	t.Helper()
	_, viewEnd := msg.Pipe()
	t.Cleanup(func() { viewEnd.Close() })
	return newFlowModel(view.New(stubEngine{}, viewEnd, nil))
}

func TestModelQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := newTestModel(t)
			_, cmd := m.Update(keyMsg(key))
			if cmd == nil {
				t.Fatalf("%q should quit", key)
			}
		})
	}
}

func TestModelSearchPrompt(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("/"))
	m = next.(flowModel)
	if !m.searching {
		t.Fatal("/ should open the search prompt")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bu")})
	m = next.(flowModel)
	if m.input != "bu" {
		t.Errorf("input = %q", m.input)
	}
	if got := m.v.Search().Query(); got != "bu" {
		t.Errorf("query = %q, want live update", got)
	}

	next, _ = m.Update(keyMsg("enter"))
	m = next.(flowModel)
	if m.searching {
		t.Error("enter should close the prompt")
	}
	if got := m.v.Search().Query(); got != "bu" {
		t.Errorf("query after close = %q", got)
	}
}

func TestModelEmptyViewRenders(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(flowModel)

	out := m.View()
	if !strings.Contains(out, "Flowpane") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "waiting for the host") {
		t.Error("missing empty-state hint")
	}
}

func TestModelCycleSelectionOnEmptyGraph(t *testing.T) {
	m := newTestModel(t)
	// Must not panic or select anything when no render happened yet.
	m.cycleSelection(1)
	if m.v.Selected() != nil {
		t.Error("selection on empty graph")
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
