package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowpane/flowpane/pkg/errors"
)

// GraphvizEngine lays out DOT documents with the dot engine.
// Each Layout call creates and closes its own graphviz instance, so the
// engine is safe for concurrent use.
type GraphvizEngine struct{}

// NewGraphviz creates a Graphviz-backed layout engine.
func NewGraphviz() *GraphvizEngine {
	return &GraphvizEngine{}
}

// Name identifies the engine for cache keys.
func (e *GraphvizEngine) Name() string { return "dot" }

// Layout parses content, runs the dot layout, and renders the SVG artifact.
// Node geometry is recovered from the attributed DOT output of the same
// layout pass, so positions always match the artifact.
func (e *GraphvizEngine) Layout(ctx context.Context, content string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New(errors.ErrCodeInvalidContent, "document is empty")
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(content))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidContent, err, "parse document")
	}
	defer g.Close()

	var svg bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &svg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render svg")
	}

	var attributed bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &attributed); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render attributed output")
	}

	result, err := parseGeometry(attributed.Bytes())
	if err != nil {
		return nil, err
	}
	result.SVG = normalizeViewBox(svg.Bytes())
	return result, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg root element so the viewBox starts at
// the origin and the element carries explicit pixel dimensions. Embedders
// can then scale the artifact without parsing graphviz's translate offsets.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Ensure GraphvizEngine implements Engine.
var _ Engine = (*GraphvizEngine)(nil)
