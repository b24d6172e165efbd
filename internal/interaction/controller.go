// Package interaction implements the per-element pointer gesture state machine:
// drag and eight-handle resize with optional aspect-ratio lock.
package interaction

import (
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Env is the canvas context a gesture frame is computed against.
type Env struct {
	Bounds Bounds
	Grid   Grid
}

// EnvFor derives the gesture environment from a canvas state.
func EnvFor(s *document.CanvasState) Env {
	return Env{
		Bounds: Bounds{Width: s.Width, Height: s.Height},
		Grid:   Grid{Size: s.GridSize, Enabled: s.SnapEnabled()},
	}
}

// Controller tracks one drag or resize gesture. All points are logical units.
type Controller struct {
	mode      Mode
	elementID string
	handle    Handle
	offset    geometry.Point
	start     geometry.Point
	origin    geometry.Rect
	current   geometry.Rect
}

func (c *Controller) Mode() Mode        { return c.mode }
func (c *Controller) ElementID() string { return c.elementID }
func (c *Controller) Handle() Handle    { return c.handle }
func (c *Controller) Active() bool      { return c.mode != Idle }

// Origin is the element geometry when the gesture began.
func (c *Controller) Origin() geometry.Rect { return c.origin }

// BeginDrag starts dragging el. Pinned elements are rejected.
func (c *Controller) BeginDrag(el document.Element, pointer geometry.Point) bool {
	if el.IsPinned {
		return false
	}
	c.mode = Dragging
	c.elementID = el.ID
	c.handle = HandleNone
	c.origin = el.Rect()
	c.current = c.origin
	c.start = pointer
	c.offset = pointer.Sub(geometry.Point{X: el.X, Y: el.Y})
	return true
}

// BeginResize starts resizing el from handle. Pinned elements are rejected.
func (c *Controller) BeginResize(el document.Element, handle Handle, pointer geometry.Point) bool {
	if el.IsPinned || !handle.Valid() {
		return false
	}
	c.mode = Resizing
	c.elementID = el.ID
	c.handle = handle
	c.origin = el.Rect()
	c.current = c.origin
	c.start = pointer
	c.offset = geometry.Point{}
	return true
}

// Move computes the geometry for the next pointer position. It returns false when
// no gesture is active.
func (c *Controller) Move(pointer geometry.Point, lockAspect bool, env Env) (geometry.Rect, bool) {
	switch c.mode {
	case Dragging:
		c.current = DragTo(pointer, c.offset, c.origin, env.Bounds, env.Grid)
	case Resizing:
		c.current = Resize(c.origin, c.handle, pointer.Sub(c.start), lockAspect, env.Grid)
	default:
		return geometry.Rect{}, false
	}
	return c.current, true
}

// End finishes the gesture and returns the committed update. changed is false
// when the geometry never moved away from where it started.
func (c *Controller) End() (update document.Update, changed bool, ok bool) {
	if c.mode == Idle {
		return document.Update{}, false, false
	}
	update = document.Update{ID: c.elementID, Patch: document.GeometryPatch(c.current)}
	changed = c.current != c.origin
	c.Cancel()
	return update, changed, true
}

// Cancel drops the gesture without producing an update.
func (c *Controller) Cancel() {
	*c = Controller{}
}
