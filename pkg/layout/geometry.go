package layout

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flowpane/flowpane/pkg/errors"
)

// pointsPerInch converts graphviz width/height attributes (inches) into the
// point units used by pos and bb.
const pointsPerInch = 72.0

var (
	bbRe     = regexp.MustCompile(`\bbb="([0-9.]+),([0-9.]+),([0-9.]+),([0-9.]+)"`)
	posRe    = regexp.MustCompile(`\bpos="(-?[0-9.]+),(-?[0-9.]+)"`)
	widthRe  = regexp.MustCompile(`\bwidth="?([0-9.]+)"?`)
	heightRe = regexp.MustCompile(`\bheight="?([0-9.]+)"?`)
	labelRe  = regexp.MustCompile(`\blabel="((?:[^"\\]|\\.)*)"`)
)

// parseGeometry recovers node positions from graphviz's attributed DOT
// output. Graphviz places pos as the node center in points with the origin
// at the bottom-left; the result is flipped to screen coordinates.
func parseGeometry(attributed []byte) (*Result, error) {
	result := &Result{}

	var defaultLabel string
	for _, stmt := range splitStatements(string(attributed)) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || stmt == "}" {
			continue
		}

		if isEdgeStatement(stmt) {
			continue
		}

		id, rest, ok := splitLeadingID(stmt)
		if !ok {
			continue
		}

		switch strings.ToLower(id) {
		case "graph":
			if m := bbRe.FindStringSubmatch(rest); m != nil {
				result.Width, _ = strconv.ParseFloat(m[3], 64)
				result.Height, _ = strconv.ParseFloat(m[4], 64)
			}
			continue
		case "node":
			// The node defaults statement may set a shared label.
			if m := labelRe.FindStringSubmatch(rest); m != nil {
				defaultLabel = m[1]
			}
			continue
		case "edge", "subgraph":
			continue
		}

		pos := posRe.FindStringSubmatch(rest)
		if pos == nil {
			continue
		}

		n := Node{ID: unquoteID(id)}
		n.X, _ = strconv.ParseFloat(pos[1], 64)
		n.Y, _ = strconv.ParseFloat(pos[2], 64)

		if m := widthRe.FindStringSubmatch(rest); m != nil {
			w, _ := strconv.ParseFloat(m[1], 64)
			n.Width = w * pointsPerInch
		}
		if m := heightRe.FindStringSubmatch(rest); m != nil {
			h, _ := strconv.ParseFloat(m[1], 64)
			n.Height = h * pointsPerInch
		}

		label := defaultLabel
		if m := labelRe.FindStringSubmatch(rest); m != nil {
			label = m[1]
		}
		n.Label = resolveLabel(label, n.ID)

		result.Nodes = append(result.Nodes, n)
	}

	if result.Width == 0 && result.Height == 0 && len(result.Nodes) > 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "layout output has no bounding box")
	}

	// Flip to screen coordinates now that the drawing height is known.
	for i := range result.Nodes {
		result.Nodes[i].Y = result.Height - result.Nodes[i].Y
	}

	return result, nil
}

// splitStatements splits attributed DOT into statements on semicolons
// outside quoted strings. Graph headers ("digraph g {") are stripped from
// the chunk they share with the first statement.
func splitStatements(src string) []string {
	var (
		stmts   []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '"' && (i == 0 || src[i-1] != '\\'):
			inQuote = !inQuote
		case !inQuote && src[i] == ';':
			stmts = append(stmts, stripHeader(src[start:i]))
			start = i + 1
		}
	}
	stmts = append(stmts, stripHeader(src[start:]))
	return stmts
}

// stripHeader drops everything up to the last unquoted opening brace.
func stripHeader(chunk string) string {
	inQuote := false
	last := -1
	for i := 0; i < len(chunk); i++ {
		switch {
		case chunk[i] == '"' && (i == 0 || chunk[i-1] != '\\'):
			inQuote = !inQuote
		case !inQuote && chunk[i] == '{':
			last = i
		}
	}
	if last == -1 {
		return chunk
	}
	return chunk[last+1:]
}

// isEdgeStatement reports whether stmt contains an edge operator outside
// quoted strings.
func isEdgeStatement(stmt string) bool {
	inQuote := false
	for i := 0; i < len(stmt)-1; i++ {
		switch {
		case stmt[i] == '"' && (i == 0 || stmt[i-1] != '\\'):
			inQuote = !inQuote
		case !inQuote && stmt[i] == '-' && (stmt[i+1] == '>' || stmt[i+1] == '-'):
			return true
		}
	}
	return false
}

// splitLeadingID extracts the first identifier of a statement.
func splitLeadingID(stmt string) (id, rest string, ok bool) {
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
	end := strings.IndexAny(stmt, " \t\n[")
	if end == -1 {
		return stmt, "", true
	}
	return stmt[:end], stmt[end:], true
}

func unquoteID(id string) string {
	if len(id) >= 2 && id[0] == '"' && id[len(id)-1] == '"' {
		id = id[1 : len(id)-1]
	}
	return unescape(id)
}

// resolveLabel maps graphviz label attributes to display labels. The
// default "\N" placeholder expands to the node name.
func resolveLabel(label, id string) string {
	if label == "" || label == `\N` {
		return id
	}
	return unescape(label)
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
