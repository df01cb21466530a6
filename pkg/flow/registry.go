package flow

import (
	"regexp"
	"strings"
)

// Location points at the line in the source document where a task is defined.
// Lines are 1-based.
type Location struct {
	Path string
	Line int
}

// Task is a named node in the flow document plus its defining location.
type Task struct {
	Name     string
	Location Location
}

// Registry maps task names to their definitions. Lookups accept either the
// node identifier or its display label; the first mention of a name in the
// document wins.
type Registry struct {
	tasks map[string]Task
	order []string
}

// dotKeywords are statement-leading words that never name a task.
var dotKeywords = map[string]bool{
	"digraph":  true,
	"graph":    true,
	"subgraph": true,
	"node":     true,
	"edge":     true,
	"strict":   true,
}

var labelAttrRe = regexp.MustCompile(`label\s*=\s*(?:"((?:[^"\\]|\\.)*)"|([A-Za-z0-9_.]+))`)

// ScanRegistry builds a task registry from document content. path is
// recorded in every location so the host can hand editors a full position.
//
// The scan is line oriented: a node is registered at the first line that
// mentions it, whether that line is a node statement or an edge. Attribute
// assignments, keywords, and braces are skipped.
func ScanRegistry(path, content string) *Registry {
	r := &Registry{tasks: make(map[string]Task)}

	for i, line := range strings.Split(content, "\n") {
		stmt := stripLineComment(line)
		stmt = strings.TrimSpace(stmt)
		stmt = strings.TrimSuffix(stmt, ";")
		if stmt == "" || stmt == "{" || stmt == "}" {
			continue
		}

		lineNo := i + 1

		if strings.Contains(stmt, "->") || isUndirectedEdge(stmt) {
			for _, id := range edgeEndpoints(stmt) {
				r.add(id, "", Location{Path: path, Line: lineNo})
			}
			continue
		}

		id, rest, ok := leadingID(stmt)
		if !ok || dotKeywords[strings.ToLower(id)] {
			continue
		}
		// Graph-level attribute assignments (rankdir=LR) are not nodes.
		if strings.HasPrefix(strings.TrimSpace(rest), "=") {
			continue
		}

		label := ""
		if m := labelAttrRe.FindStringSubmatch(rest); m != nil {
			if m[1] != "" {
				label = unescapeLabel(m[1])
			} else {
				label = m[2]
			}
		}
		r.add(id, label, Location{Path: path, Line: lineNo})
	}

	return r
}

// Resolve looks up a task by node identifier or display label.
func (r *Registry) Resolve(name string) (Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns registered node identifiers in document order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of distinct tasks.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) add(id, label string, loc Location) {
	id = unquote(id)
	if id == "" {
		return
	}

	name := id
	if label != "" {
		name = label
	}

	if _, seen := r.tasks[id]; !seen {
		task := Task{Name: name, Location: loc}
		r.tasks[id] = task
		r.order = append(r.order, id)
		// Labels resolve to the same task unless the label already
		// names another node.
		if label != "" && label != id {
			if _, taken := r.tasks[label]; !taken {
				r.tasks[label] = task
			}
		}
	}
}

// leadingID extracts the first DOT identifier of a statement and returns
// the remainder. Quoted identifiers may contain spaces.
func leadingID(stmt string) (id, rest string, ok bool) {
	if stmt == "" {
		return "", "", false
	}
	if stmt[0] == '"' {
		for i := 1; i < len(stmt); i++ {
			if stmt[i] == '"' && stmt[i-1] != '\\' {
				return stmt[:i+1], stmt[i+1:], true
			}
		}
		return "", "", false
	}
	end := strings.IndexAny(stmt, " \t[=")
	if end == -1 {
		return stmt, "", true
	}
	return stmt[:end], stmt[end:], true
}

// edgeEndpoints splits an edge statement into its endpoint identifiers,
// dropping any trailing attribute list.
func edgeEndpoints(stmt string) []string {
	if i := strings.Index(stmt, "["); i != -1 {
		stmt = stmt[:i]
	}
	sep := "->"
	if !strings.Contains(stmt, sep) {
		sep = "--"
	}

	var out []string
	for _, part := range strings.Split(stmt, sep) {
		part = strings.TrimSpace(part)
		if part == "" || dotKeywords[strings.ToLower(part)] {
			continue
		}
		out = append(out, part)
	}
	return out
}

// isUndirectedEdge reports whether stmt uses the undirected edge operator.
// A plain "--" inside a quoted identifier does not count.
func isUndirectedEdge(stmt string) bool {
	inQuote := false
	for i := 0; i < len(stmt)-1; i++ {
		switch {
		case stmt[i] == '"' && (i == 0 || stmt[i-1] != '\\'):
			inQuote = !inQuote
		case !inQuote && stmt[i] == '-' && stmt[i+1] == '-':
			return true
		}
	}
	return false
}

func stripLineComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"' && (i == 0 || line[i-1] != '\\'):
			inQuote = !inQuote
		case !inQuote && line[i] == '#':
			return line[:i]
		case !inQuote && line[i] == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

func unquote(id string) string {
	id = strings.TrimSpace(id)
	if len(id) >= 2 && id[0] == '"' && id[len(id)-1] == '"' {
		return unescapeLabel(id[1 : len(id)-1])
	}
	return id
}

func unescapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
