package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowpane/flowpane/pkg/view"
)

// renderedMsg tells the TUI that the view applied a new render.
type renderedMsg struct{}

// disconnectedMsg tells the TUI that the host connection ended.
type disconnectedMsg struct{}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listMatchStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	listCurrentStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// panStep is the pan distance per arrow key, in container pixels.
const panStep = 40.0

// flowModel is the bubbletea model for the interactive view. All graph
// state lives in the wrapped view; the model only holds UI chrome state.
type flowModel struct {
	v *view.View

	width  int
	height int
	sized  bool

	searching    bool
	input        string
	disconnected bool
}

func newFlowModel(v *view.View) flowModel {
	return flowModel{v: v}
}

func (m flowModel) Init() tea.Cmd {
	return nil
}

func (m flowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		tc := m.v.Transform()
		if !m.sized {
			m.sized = true
			tc.SetContainer(float64(msg.Width), float64(msg.Height))
			tc.FitToView()
		} else {
			tc.NotifyResize(float64(msg.Width), float64(msg.Height))
		}

	case renderedMsg:
		// Fresh graph state; the re-render below picks it up.

	case disconnectedMsg:
		m.disconnected = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// updateSearch handles keys while the search prompt is open. The query is
// applied on every keystroke so matches update live.
func (m flowModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
	case "ctrl+c":
		return m, tea.Quit
	case "backspace":
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
			m.v.SetQuery(m.input)
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
			m.v.SetQuery(m.input)
		}
	}
	return m, nil
}

func (m flowModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tc := m.v.Transform()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.input = m.v.Search().Query()

	case "n":
		m.v.NextMatch()
	case "N":
		m.v.PreviousMatch()

	case "f":
		tc.FitToView()
	case "+", "=":
		tc.ZoomBy(1.25)
	case "-", "_":
		tc.ZoomBy(0.8)

	case "up", "k":
		tc.PanBy(0, panStep)
	case "down", "j":
		tc.PanBy(0, -panStep)
	case "left", "h":
		tc.PanBy(panStep, 0)
	case "right", "l":
		tc.PanBy(-panStep, 0)

	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)

	case "enter", "o":
		if n := m.v.Selected(); n != nil {
			m.v.ActivateNode(n.ID)
		}

	case "esc":
		m.v.ClearSelection()
		m.input = ""
		m.v.SetQuery("")
	}
	return m, nil
}

// cycleSelection moves the selection through the nodes in render order,
// wrapping at both ends.
func (m flowModel) cycleSelection(delta int) {
	nodes := m.v.Nodes()
	if len(nodes) == 0 {
		return
	}

	idx := -1
	if sel := m.v.Selected(); sel != nil {
		for i, n := range nodes {
			if n == sel {
				idx = i
				break
			}
		}
	}

	next := (idx + delta + len(nodes)) % len(nodes)
	m.v.SelectNode(nodes[next].ID)
}

func (m flowModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Flowpane"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	nodes := m.v.Nodes()
	if len(nodes) == 0 {
		b.WriteString(StyleDim.Render("  waiting for the host to send a document"))
		b.WriteString("\n")
	}

	visible := m.height - 7
	if visible < 5 {
		visible = 5
	}
	for i, n := range nodes {
		if i >= visible {
			b.WriteString(StyleDim.Render(fmt.Sprintf("  … %d more", len(nodes)-visible)))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.nodeLine(n))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

// statusLine summarizes the graph, zoom, and search state in one line.
func (m flowModel) statusLine() string {
	parts := []string{fmt.Sprintf("%d tasks", len(m.v.Nodes()))}

	scale := m.v.Transform().Transform().Scale
	if scale > 0 {
		parts = append(parts, fmt.Sprintf("zoom %.0f%%", scale*100))
	}

	s := m.v.Search()
	if q := s.Query(); q != "" {
		if s.MatchCount() == 0 {
			parts = append(parts, fmt.Sprintf("search %q: no matches", q))
		} else {
			parts = append(parts, fmt.Sprintf("search %q (%d/%d)", q, s.CurrentIndex()+1, s.MatchCount()))
		}
	}

	return StyleDim.Render(strings.Join(parts, " · "))
}

func (m flowModel) nodeLine(n *view.Node) string {
	cursor := "  "
	if n.Selected {
		cursor = "▸ "
	}

	mark := "  "
	switch n.Mark {
	case view.SearchMatch:
		mark = listMatchStyle.Render("○ ")
	case view.SearchCurrent:
		mark = listCurrentStyle.Render("● ")
	}

	line := cursor + mark + n.Label
	switch {
	case n.Selected:
		return listSelectedStyle.Render(line)
	case n.Mark == view.SearchCurrent:
		return listCurrentStyle.Render(line)
	case n.Mark == view.SearchMatch:
		return listMatchStyle.Render(line)
	default:
		return listNormalStyle.Render(line)
	}
}

func (m flowModel) footer() string {
	if m.searching {
		return StyleHighlight.Render("/") + StyleValue.Render(m.input) + StyleHighlight.Render("▌")
	}
	if m.disconnected {
		return StyleWarning.Render("host disconnected")
	}
	return StyleDim.Render("tab select  ⏎ open  / search  n/N match  ←↓↑→ pan  +/- zoom  f fit  q quit")
}
