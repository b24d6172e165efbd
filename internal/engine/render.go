package engine

import (
	"encoding/json"
	"slices"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

// PaintOrder returns copies of the elements sorted by zIndex ascending. Ties keep
// sequence order.
func (e *Engine) PaintOrder() []document.Element {
	out := make([]document.Element, len(e.state.Elements))
	for i, el := range e.state.Elements {
		out[i] = el.Clone()
	}
	slices.SortStableFunc(out, func(a, b document.Element) int {
		return a.ZIndex - b.ZIndex
	})
	return out
}

// HitTest returns the topmost element containing the logical point, or "".
func (e *Engine) HitTest(p geometry.Point) string {
	order := e.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].Rect().Contains(p) {
			return order[i].ID
		}
	}
	return ""
}

// SelectionBounds returns the union of the selected elements' rectangles.
func (e *Engine) SelectionBounds() (geometry.Rect, bool) {
	var bounds geometry.Rect
	found := false
	for _, id := range e.selection {
		el := e.state.Element(id)
		if el == nil {
			continue
		}
		if !found {
			bounds = el.Rect()
			found = true
			continue
		}
		bounds = bounds.Union(el.Rect())
	}
	return bounds, found
}

// DrawItem is one element as the host should paint it.
type DrawItem struct {
	ID       string               `json:"id"`
	Type     document.ElementType `json:"type"`
	Rect     geometry.Rect        `json:"rect"`
	ZIndex   int                  `json:"zIndex"`
	Selected bool                 `json:"selected"`
	Pinned   bool                 `json:"pinned"`
	// Handles is set for the single selected, unpinned element.
	Handles bool `json:"handles"`
}

// Frame is everything the host needs to draw one frame of the editor.
type Frame struct {
	Items    []DrawItem     `json:"items"`
	Marquee  *geometry.Rect `json:"marquee,omitempty"`
	Scale    float64        `json:"scale"`
	Scroll   geometry.Point `json:"scroll"`
	ShowGrid bool           `json:"showGrid"`
	GridSize float64        `json:"gridSize"`
	CanUndo  bool           `json:"canUndo"`
	CanRedo  bool           `json:"canRedo"`
}

// Frame builds the current draw list.
func (e *Engine) Frame() Frame {
	order := e.PaintOrder()
	items := make([]DrawItem, len(order))
	single := len(e.selection) == 1
	for i, el := range order {
		selected := e.IsSelected(el.ID)
		items[i] = DrawItem{
			ID:       el.ID,
			Type:     el.Type,
			Rect:     el.Rect(),
			ZIndex:   el.ZIndex,
			Selected: selected,
			Pinned:   el.IsPinned,
			Handles:  selected && single && !el.IsPinned,
		}
	}
	f := Frame{
		Items:    items,
		Scale:    e.scale(),
		Scroll:   e.scroll,
		ShowGrid: e.state.ShowGrid,
		GridSize: e.state.GridSize,
		CanUndo:  e.CanUndo(),
		CanRedo:  e.CanRedo(),
	}
	if r, ok := e.Marquee(); ok {
		f.Marquee = &r
	}
	return f
}

// FrameJSON serializes Frame for the browser bridge.
func (e *Engine) FrameJSON() string {
	data, err := json.Marshal(e.Frame())
	if err != nil {
		return "{}"
	}
	return string(data)
}
