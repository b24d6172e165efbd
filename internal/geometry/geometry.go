// Package geometry holds the coordinate and grid helpers shared by the canvas engine.
// Everything here is pure; all interaction math happens in logical canvas units.
package geometry

import "math"

// MinSize is the smallest width or height an element may be resized to.
const MinSize = 20.0

// Device is a simulated preview frame.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// Scale returns the render scale applied to the canvas for the device preview.
func (d Device) Scale() float64 {
	switch d {
	case DeviceTablet:
		return 0.9
	case DeviceMobile:
		return 0.8
	default:
		return 1
	}
}

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Snap quantizes value to the nearest multiple of gridSize when enabled.
// When disabled (or the grid is degenerate) it rounds to the nearest integer so
// sub-pixel positions are never persisted.
func Snap(value, gridSize float64, enabled bool) float64 {
	if !enabled || gridSize <= 0 {
		return math.Round(value)
	}
	return math.Round(value/gridSize) * gridSize
}

// ToLogical converts a screen-space pointer position into logical canvas units,
// undoing the container placement and the device/zoom scale.
func ToLogical(pointer, containerOrigin Point, scale float64) Point {
	return ViewTransform(containerOrigin, scale).Invert().TransformPoint(pointer)
}

// ToScreen is the inverse of ToLogical.
func ToScreen(logical, containerOrigin Point, scale float64) Point {
	return ViewTransform(containerOrigin, scale).TransformPoint(logical)
}

// Clamp limits v to [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
