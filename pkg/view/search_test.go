package view

import (
	"testing"

	"github.com/flowpane/flowpane/pkg/layout"
)

func taskNodes() []layout.Node {
	return []layout.Node{
		{ID: "pkg.build", Label: "pkg.build", X: 10, Y: 10},
		{ID: "pkg.test", Label: "pkg.test", X: 20, Y: 20},
		{ID: "pkg.build_docs", Label: "pkg.build_docs", X: 30, Y: 30},
	}
}

func newSearch(t *testing.T) (*SearchEngine, *NodeSet, *[]string) {
	t.Helper()
	centered := &[]string{}
	e := NewSearchEngine(func(n *Node) {
		*centered = append(*centered, n.ID)
	})
	set := NewNodeSet(taskNodes())
	e.SetNodes(set)
	return e, set, centered
}

func TestSearchQueryBuild(t *testing.T) {
	e, set, centered := newSearch(t)

	e.SetQuery("build")

	// Two of three labels contain "build", in render order.
	if got := e.MatchCount(); got != 2 {
		t.Fatalf("MatchCount = %d, want 2", got)
	}
	cur, ok := e.Current()
	if !ok || cur.ID != "pkg.build" {
		t.Errorf("current = %v, want pkg.build", cur)
	}
	if e.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", e.CurrentIndex())
	}

	// Marks: first match current, second match marked, rest untouched.
	wantMarks := map[string]SearchMark{
		"pkg.build":      SearchCurrent,
		"pkg.test":       SearchNone,
		"pkg.build_docs": SearchMatch,
	}
	for id, want := range wantMarks {
		n, _ := set.ByID(id)
		if n.Mark != want {
			t.Errorf("mark of %s = %v, want %v", id, n.Mark, want)
		}
	}

	// The first match was centered.
	if len(*centered) != 1 || (*centered)[0] != "pkg.build" {
		t.Errorf("centered = %v, want [pkg.build]", *centered)
	}

	// Next moves to the second match and centers it.
	e.Next()
	cur, _ = e.Current()
	if cur.ID != "pkg.build_docs" {
		t.Errorf("current after Next = %s, want pkg.build_docs", cur.ID)
	}
	if n, _ := set.ByID("pkg.build"); n.Mark != SearchMatch {
		t.Error("previous current should drop back to match mark")
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	e, _, _ := newSearch(t)

	e.SetQuery("BUILD")
	if got := e.MatchCount(); got != 2 {
		t.Errorf("MatchCount = %d, want 2", got)
	}

	e.SetQuery("Pkg.TEST")
	if got := e.MatchCount(); got != 1 {
		t.Errorf("MatchCount = %d, want 1", got)
	}
}

func TestSearchWraparound(t *testing.T) {
	e, _, _ := newSearch(t)
	e.SetQuery("build")

	start, _ := e.Current()
	n := e.MatchCount()

	// n calls to Next return to the starting match.
	for i := 0; i < n; i++ {
		e.Next()
	}
	cur, _ := e.Current()
	if cur != start {
		t.Errorf("after %d Next calls current = %s, want %s", n, cur.ID, start.ID)
	}

	// Previous wraps backwards past the start.
	e.Previous()
	cur, _ = e.Current()
	if cur.ID != "pkg.build_docs" {
		t.Errorf("Previous from first = %s, want pkg.build_docs", cur.ID)
	}
}

func TestSearchEmptyQueryIsNoOp(t *testing.T) {
	e, set, centered := newSearch(t)

	e.SetQuery("")
	if e.MatchCount() != 0 || e.CurrentIndex() != -1 {
		t.Errorf("empty query: matches=%d index=%d, want 0/-1", e.MatchCount(), e.CurrentIndex())
	}

	// Navigation does nothing and centers nothing.
	e.Next()
	e.Previous()
	if e.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex = %d, want -1", e.CurrentIndex())
	}
	if len(*centered) != 0 {
		t.Errorf("centered = %v, want none", *centered)
	}
	for _, n := range set.Nodes() {
		if n.Mark != SearchNone {
			t.Errorf("node %s marked %v with empty query", n.ID, n.Mark)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	e, _, centered := newSearch(t)

	e.SetQuery("deploy")
	if e.MatchCount() != 0 {
		t.Errorf("MatchCount = %d, want 0", e.MatchCount())
	}
	if e.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex = %d, want -1", e.CurrentIndex())
	}
	if _, ok := e.Current(); ok {
		t.Error("Current should report no match")
	}
	e.Next()
	if len(*centered) != 0 {
		t.Errorf("centered = %v, want none", *centered)
	}
}

func TestSearchClearingQueryDropsMarks(t *testing.T) {
	e, set, _ := newSearch(t)

	e.SetQuery("build")
	e.SetQuery("")

	for _, n := range set.Nodes() {
		if n.Mark != SearchNone {
			t.Errorf("node %s still marked %v", n.ID, n.Mark)
		}
	}
}

func TestSearchSurvivesRerender(t *testing.T) {
	e, oldSet, _ := newSearch(t)
	e.SetQuery("build")

	oldCurrent, _ := e.Current()

	// Re-render: new node set, same labels plus one more match.
	newSet := NewNodeSet(append(taskNodes(), layout.Node{
		ID: "pkg.build_release", Label: "pkg.build_release", X: 40, Y: 40,
	}))
	e.SetNodes(newSet)

	// Query survives, matches are rebuilt against the new set.
	if e.Query() != "build" {
		t.Errorf("query = %q, want build", e.Query())
	}
	if got := e.MatchCount(); got != 3 {
		t.Fatalf("MatchCount after re-render = %d, want 3", got)
	}

	// The focused match is a node of the new set, never the old ref.
	cur, ok := e.Current()
	if !ok {
		t.Fatal("no current match after re-render")
	}
	if cur == oldCurrent {
		t.Error("current match still references the previous render")
	}
	if !newSet.Contains(cur) {
		t.Error("current match is not part of the new node set")
	}
	if oldSet.Contains(cur) {
		t.Error("current match claims membership of the old set")
	}
}
