package engine

import (
	"log/slog"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

// DropEvent is a toolbox item released over the canvas.
type DropEvent struct {
	Type   document.ElementType `json:"type"`
	Screen geometry.Point       `json:"screen"`
}

// Drop creates an element of the dropped type with its top-left corner at the
// drop point, snapped to the grid. It returns the new id, or "" when the type
// could not be built.
func (e *Engine) Drop(ev DropEvent) string {
	if e.factory == nil {
		slog.Warn("drop ignored, no element factory configured", "type", ev.Type)
		return ""
	}
	el, err := e.factory.NewElement(ev.Type)
	if err != nil {
		slog.Warn("drop ignored", "type", ev.Type, "error", err)
		return ""
	}
	p := e.ToLogical(ev.Screen)
	snap := e.state.SnapEnabled()
	el.X = geometry.Snap(p.X, e.state.GridSize, snap)
	el.Y = geometry.Snap(p.Y, e.state.GridSize, snap)
	return e.AddElement(el)
}
