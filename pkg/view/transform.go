package view

import (
	"sync"
	"time"
)

// Zoom limits and fit behavior. Fit never enlarges a drawing beyond its
// natural size; explicit zooming is clamped to the same range in both
// directions.
const (
	// MinScale is the lowest zoom level reachable by any operation.
	MinScale = 0.1

	// MaxScale is the highest zoom level reachable by any operation.
	MaxScale = 10.0

	// FitMargin is the padding in points kept around the drawing when
	// fitting it to the container.
	FitMargin = 40.0

	// DefaultResizeDebounce coalesces container resize bursts into a
	// single re-fit.
	DefaultResizeDebounce = 150 * time.Millisecond
)

// Transform maps graph coordinates to container coordinates:
// screen = graph*Scale + Translate.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Apply maps a graph point to container coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// Invert maps a container point back to graph coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.TranslateX) / t.Scale, (y - t.TranslateY) / t.Scale
}

// TransformController owns the view transform. All operations clamp the
// scale to [MinScale, MaxScale]; fit additionally caps at 1.0 so small
// graphs render at natural size instead of blowing up.
//
// The controller is safe for concurrent use: resize debouncing fires from
// a timer goroutine.
type TransformController struct {
	mu sync.Mutex

	containerW, containerH float64
	boundsW, boundsH       float64

	t Transform

	// userScale is the zoom level chosen via ZoomBy/ZoomTo, reapplied
	// after re-renders until the next explicit fit. Zero means the view
	// tracks fit.
	userScale float64

	debounce    time.Duration
	resizeTimer *time.Timer

	onChange func(Transform)
}

// NewTransformController creates a controller with identity transform and
// the default resize debounce window.
func NewTransformController() *TransformController {
	return &TransformController{
		t:        Transform{Scale: 1.0},
		debounce: DefaultResizeDebounce,
	}
}

// SetOnChange registers a callback invoked after every transform change.
// The callback runs with the controller unlocked.
func (c *TransformController) SetOnChange(fn func(Transform)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetDebounce overrides the resize debounce window. Mainly for tests.
func (c *TransformController) SetDebounce(d time.Duration) {
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// Transform returns the current transform.
func (c *TransformController) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// SetContainer records the container size without refitting. Use
// NotifyResize for live resizes.
func (c *TransformController) SetContainer(w, h float64) {
	c.mu.Lock()
	c.containerW, c.containerH = w, h
	c.mu.Unlock()
}

// SetBounds records the drawing size of the current graph.
func (c *TransformController) SetBounds(w, h float64) {
	c.mu.Lock()
	c.boundsW, c.boundsH = w, h
	c.mu.Unlock()
}

// FitToView scales the drawing to fill the container, capped at natural
// size, and centers it. An explicit fit discards the remembered user zoom.
func (c *TransformController) FitToView() {
	c.mu.Lock()
	c.userScale = 0
	c.fitLocked()
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

// fitLocked computes the fit transform. Callers hold c.mu.
func (c *TransformController) fitLocked() {
	if c.boundsW <= 0 || c.boundsH <= 0 || c.containerW <= 0 || c.containerH <= 0 {
		c.t = Transform{Scale: 1.0}
		return
	}

	scale := min3(
		c.containerW/(c.boundsW+FitMargin),
		c.containerH/(c.boundsH+FitMargin),
		1.0,
	)
	if scale < MinScale {
		scale = MinScale
	}

	c.t = Transform{
		Scale:      scale,
		TranslateX: (c.containerW - c.boundsW*scale) / 2,
		TranslateY: (c.containerH - c.boundsH*scale) / 2,
	}
}

// ZoomBy multiplies the current scale by factor, clamped to the zoom
// limits, keeping the graph point at the container center fixed.
func (c *TransformController) ZoomBy(factor float64) {
	c.mu.Lock()
	c.zoomToLocked(c.t.Scale * factor)
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

// ZoomTo sets an absolute scale, clamped to the zoom limits, keeping the
// graph point at the container center fixed.
func (c *TransformController) ZoomTo(scale float64) {
	c.mu.Lock()
	c.zoomToLocked(scale)
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

func (c *TransformController) zoomToLocked(scale float64) {
	scale = clampScale(scale)

	cx, cy := c.containerW/2, c.containerH/2
	gx, gy := c.t.Invert(cx, cy)

	c.t.Scale = scale
	c.t.TranslateX = cx - gx*scale
	c.t.TranslateY = cy - gy*scale
	c.userScale = scale
}

// PanBy shifts the view by a container-space delta.
func (c *TransformController) PanBy(dx, dy float64) {
	c.mu.Lock()
	c.t.TranslateX += dx
	c.t.TranslateY += dy
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

// CenterOn moves the given graph point to the container center at the
// current scale.
func (c *TransformController) CenterOn(x, y float64) {
	c.mu.Lock()
	c.t.TranslateX = c.containerW/2 - x*c.t.Scale
	c.t.TranslateY = c.containerH/2 - y*c.t.Scale
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

// Reconcile recomputes the transform after a re-render: fit the new
// drawing, then reapply the remembered user zoom if the user had deviated
// from fit.
func (c *TransformController) Reconcile() {
	c.mu.Lock()
	user := c.userScale
	c.fitLocked()
	if user != 0 {
		c.zoomToLocked(user)
	}
	fn, t := c.onChange, c.t
	c.mu.Unlock()
	notify(fn, t)
}

// NotifyResize records the new container size and schedules a debounced
// re-fit. Bursts of resize events within the debounce window collapse into
// one fit.
func (c *TransformController) NotifyResize(w, h float64) {
	c.mu.Lock()
	c.containerW, c.containerH = w, h
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.fitLocked()
		if c.userScale != 0 {
			c.zoomToLocked(c.userScale)
		}
		fn, t := c.onChange, c.t
		c.mu.Unlock()
		notify(fn, t)
	})
	c.mu.Unlock()
}

func notify(fn func(Transform), t Transform) {
	if fn != nil {
		fn(t)
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
