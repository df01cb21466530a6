package view

import "strings"

// SearchEngine matches node labels against a case-insensitive substring
// query. Matches keep render order; next and previous wrap around. The
// query string survives re-renders, but matches are rebuilt from the new
// node set because node references never outlive a render.
type SearchEngine struct {
	nodes   *NodeSet
	query   string
	matches []*Node

	// current indexes matches; -1 exactly when matches is empty.
	current int

	onCenter func(*Node)
}

// NewSearchEngine creates a search engine. onCenter is invoked whenever
// navigation focuses a match, so the view can center it.
func NewSearchEngine(onCenter func(*Node)) *SearchEngine {
	if onCenter == nil {
		onCenter = func(*Node) {}
	}
	return &SearchEngine{current: -1, onCenter: onCenter}
}

// SetNodes installs the node set of a new render and re-runs the
// preserved query against it.
func (e *SearchEngine) SetNodes(nodes *NodeSet) {
	e.nodes = nodes
	e.rebuild(false)
}

// SetQuery updates the query and rebuilds the match list. The first match
// becomes current and is centered; an empty query clears all marks.
func (e *SearchEngine) SetQuery(query string) {
	e.query = query
	e.rebuild(true)
}

// Query returns the current query string.
func (e *SearchEngine) Query() string {
	return e.query
}

// Next focuses the following match, wrapping past the end. With no
// matches it does nothing.
func (e *SearchEngine) Next() {
	e.step(1)
}

// Previous focuses the preceding match, wrapping past the start. With no
// matches it does nothing.
func (e *SearchEngine) Previous() {
	e.step(-1)
}

func (e *SearchEngine) step(delta int) {
	if len(e.matches) == 0 {
		return
	}
	e.matches[e.current].Mark = SearchMatch
	e.current = (e.current + delta + len(e.matches)) % len(e.matches)
	cur := e.matches[e.current]
	cur.Mark = SearchCurrent
	e.onCenter(cur)
}

// MatchCount returns the number of matches.
func (e *SearchEngine) MatchCount() int {
	return len(e.matches)
}

// CurrentIndex returns the index of the focused match, -1 when there are
// no matches.
func (e *SearchEngine) CurrentIndex() int {
	return e.current
}

// Current returns the focused match.
func (e *SearchEngine) Current() (*Node, bool) {
	if e.current == -1 {
		return nil, false
	}
	return e.matches[e.current], true
}

// rebuild recomputes matches for the current query and node set. center
// controls whether the first match is centered, which is wanted on query
// edits but not on re-renders.
func (e *SearchEngine) rebuild(center bool) {
	for _, m := range e.matches {
		m.Mark = SearchNone
	}
	e.matches = nil
	e.current = -1

	q := strings.ToLower(strings.TrimSpace(e.query))
	if q == "" || e.nodes.Len() == 0 {
		return
	}

	for _, n := range e.nodes.Nodes() {
		if strings.Contains(strings.ToLower(n.Label), q) {
			n.Mark = SearchMatch
			e.matches = append(e.matches, n)
		}
	}
	if len(e.matches) == 0 {
		return
	}

	e.current = 0
	first := e.matches[0]
	first.Mark = SearchCurrent
	if center {
		e.onCenter(first)
	}
}
