package interaction

import (
	"math"

	"github.com/popcanvas/popcanvas/internal/geometry"
)

// Handle identifies one of the eight resize grips around a selected element.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleW    Handle = "w"
	HandleE    Handle = "e"
	HandleSW   Handle = "sw"
	HandleS    Handle = "s"
	HandleSE   Handle = "se"
)

// Valid reports whether h is one of the eight grips.
func (h Handle) Valid() bool {
	switch h {
	case HandleNW, HandleN, HandleNE, HandleW, HandleE, HandleSW, HandleS, HandleSE:
		return true
	}
	return false
}

// IsCorner reports whether the handle moves both dimensions.
func (h Handle) IsCorner() bool {
	return h == HandleNW || h == HandleNE || h == HandleSW || h == HandleSE
}

func (h Handle) movesLeft() bool   { return h == HandleW || h == HandleNW || h == HandleSW }
func (h Handle) movesRight() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) movesTop() bool    { return h == HandleN || h == HandleNW || h == HandleNE }
func (h Handle) movesBottom() bool { return h == HandleS || h == HandleSW || h == HandleSE }

// Grid is the snapping configuration for a gesture.
type Grid struct {
	Size    float64
	Enabled bool
}

func (g Grid) snap(v float64) float64 {
	return geometry.Snap(v, g.Size, g.Enabled)
}

// Resize computes the rect produced by dragging handle by delta from origin.
// The edge opposite to the handle stays fixed; sizes are snapped and floored at
// geometry.MinSize. With lockAspect the original width/height ratio is preserved.
func Resize(origin geometry.Rect, handle Handle, delta geometry.Point, lockAspect bool, grid Grid) geometry.Rect {
	w, h := origin.Width, origin.Height

	switch {
	case handle.movesRight():
		w = origin.Width + delta.X
	case handle.movesLeft():
		w = origin.Width - delta.X
	}
	switch {
	case handle.movesBottom():
		h = origin.Height + delta.Y
	case handle.movesTop():
		h = origin.Height - delta.Y
	}

	if lockAspect {
		w, h = lockedSize(origin, handle, delta, w, h, grid)
	} else {
		if handle.movesLeft() || handle.movesRight() {
			w = max(geometry.MinSize, grid.snap(w))
		}
		if handle.movesTop() || handle.movesBottom() {
			h = max(geometry.MinSize, grid.snap(h))
		}
	}

	x, y := origin.X, origin.Y
	if handle.movesLeft() {
		x = origin.X + (origin.Width - w)
	}
	if handle.movesTop() {
		y = origin.Y + (origin.Height - h)
	}
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

// lockedSize picks the driving dimension, snaps and floors it, then derives the
// other from the original aspect ratio.
func lockedSize(origin geometry.Rect, handle Handle, delta geometry.Point, w, h float64, grid Grid) (float64, float64) {
	aspect := 1.0
	if origin.Height != 0 && origin.Width != 0 {
		aspect = origin.Width / origin.Height
	}

	widthDrives := handle == HandleE || handle == HandleW
	if handle.IsCorner() {
		widthDrives = math.Abs(delta.X) >= math.Abs(delta.Y)
	}

	if widthDrives {
		w = max(geometry.MinSize, grid.snap(w))
		h = w / aspect
		if h < geometry.MinSize {
			h = geometry.MinSize
			w = h * aspect
		}
		return w, h
	}

	h = max(geometry.MinSize, grid.snap(h))
	w = h * aspect
	if w < geometry.MinSize {
		w = geometry.MinSize
		h = w / aspect
	}
	return w, h
}

// Bounds is the canvas area a dragged element must stay within.
type Bounds struct {
	Width  float64
	Height float64
}

// DragTo places an element of the given size with its top-left at pointer - offset,
// snapped and clamped so it stays fully inside bounds.
func DragTo(pointer, offset geometry.Point, size geometry.Rect, bounds Bounds, grid Grid) geometry.Rect {
	x := grid.snap(pointer.X - offset.X)
	y := grid.snap(pointer.Y - offset.Y)
	x = geometry.Clamp(x, 0, bounds.Width-size.Width)
	y = geometry.Clamp(y, 0, bounds.Height-size.Height)
	return geometry.Rect{X: x, Y: y, Width: size.Width, Height: size.Height}
}
