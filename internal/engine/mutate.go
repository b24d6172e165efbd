package engine

import (
	"log/slog"
	"slices"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

// Zoom bounds accepted by SetZoom.
const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// commit records the current state as one history entry.
func (e *Engine) commit() {
	e.history.Push(e.committedState())
}

// committedState is the state with any in-flight drag or resize frame rolled back
// to where the gesture began. Live frames reach history only through the
// gesture's own commit.
func (e *Engine) committedState() document.CanvasState {
	if !e.gesture.Active() {
		return e.state
	}
	snap := e.state.Clone()
	if el := snap.Element(e.gesture.ElementID()); el != nil {
		document.GeometryPatch(e.gesture.Origin()).Apply(el)
	}
	return snap
}

// applyUpdates writes updates onto the state and returns the ones that matched an
// element. Sizes are floored at the minimum element size.
func (e *Engine) applyUpdates(updates []document.Update) []document.Update {
	applied := make([]document.Update, 0, len(updates))
	for _, u := range updates {
		el := e.state.Element(u.ID)
		if el == nil || u.Patch.Empty() {
			continue
		}
		u.Patch.Apply(el)
		el.Width = max(el.Width, geometry.MinSize)
		el.Height = max(el.Height, geometry.MinSize)
		applied = append(applied, u)
	}
	return applied
}

// UpdateElement applies a partial change to one element as a single history step.
func (e *Engine) UpdateElement(id string, patch document.Patch) bool {
	return e.UpdateElements([]document.Update{{ID: id, Patch: patch}})
}

// UpdateElements applies a batch of partial changes as a single history step.
// Updates naming unknown elements are skipped.
func (e *Engine) UpdateElements(updates []document.Update) bool {
	applied := e.applyUpdates(updates)
	if len(applied) == 0 {
		return false
	}
	e.commit()
	e.listener.OnUpdateElements(applied)
	return true
}

// SetElementProps replaces an element's type-specific properties.
func (e *Engine) SetElementProps(id string, props document.Props) bool {
	return e.UpdateElement(id, document.Patch{Props: props})
}

// TogglePin flips the pinned flag of an element.
func (e *Engine) TogglePin(id string) bool {
	el := e.state.Element(id)
	if el == nil {
		return false
	}
	return e.UpdateElement(id, document.Patch{IsPinned: document.Bool(!el.IsPinned)})
}

// AddElement inserts el on top of the paint order and selects it. A missing or
// colliding id is replaced with a fresh one. It returns the id used, or "" when
// the element type is unknown.
func (e *Engine) AddElement(el document.Element) string {
	if !el.Type.Valid() {
		slog.Warn("rejecting element of unknown type", "type", el.Type)
		return ""
	}
	if el.Props == nil {
		blank, err := document.NewElement(el.ID, el.Type)
		if err != nil {
			return ""
		}
		el.Props = blank.Props
	}
	if el.ID == "" || e.state.Index(el.ID) >= 0 {
		el.ID = e.newID()
	}
	el.Width = max(el.Width, geometry.MinSize)
	el.Height = max(el.Height, geometry.MinSize)
	el.ZIndex = e.state.MaxZIndex() + 1

	e.state.Elements = append(e.state.Elements, el.Clone())
	e.commit()
	e.listener.OnAddElements([]document.Element{el.Clone()})
	e.setSelection([]string{el.ID})
	return el.ID
}

// DeleteElements removes the named elements and prunes them from the selection.
func (e *Engine) DeleteElements(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	var removed []string
	e.state.Elements = slices.DeleteFunc(e.state.Elements, func(el document.Element) bool {
		if slices.Contains(ids, el.ID) {
			removed = append(removed, el.ID)
			return true
		}
		return false
	})
	if len(removed) == 0 {
		return nil
	}
	if e.gesture.Active() && slices.Contains(removed, e.gesture.ElementID()) {
		e.gesture.Cancel()
	}
	e.commit()
	e.listener.OnDeleteElements(removed)
	e.setSelection(slices.DeleteFunc(slices.Clone(e.selection), func(id string) bool {
		return slices.Contains(removed, id)
	}))
	return removed
}

// DeleteSelected removes every selected element.
func (e *Engine) DeleteSelected() []string {
	return e.DeleteElements(slices.Clone(e.selection))
}

// Duplicate clones every selected element, offset by DuplicateOffset on both axes
// and stacked above everything else, then selects the clones.
func (e *Engine) Duplicate() []string {
	if len(e.selection) == 0 {
		return nil
	}
	clones := make([]document.Element, 0, len(e.selection))
	for _, id := range e.selection {
		src := e.state.Element(id)
		if src == nil {
			continue
		}
		c := src.Clone()
		c.ID = e.newID()
		c.X += DuplicateOffset
		c.Y += DuplicateOffset
		c.ZIndex = e.state.MaxZIndex() + 1
		e.state.Elements = append(e.state.Elements, c)
		clones = append(clones, c.Clone())
	}
	if len(clones) == 0 {
		return nil
	}
	e.commit()
	e.listener.OnAddElements(clones)
	ids := make([]string, len(clones))
	for i, c := range clones {
		ids[i] = c.ID
	}
	e.setSelection(ids)
	return ids
}

// SetBackground replaces the canvas background.
func (e *Engine) SetBackground(bg document.Background) {
	if bg == e.state.Background {
		return
	}
	e.state.Background = bg
	e.commit()
	e.listener.OnRestore(e.State())
}

// SetLayout switches the canvas layout and its dimensions.
func (e *Engine) SetLayout(t document.LayoutType) {
	if t == e.state.Layout.Type {
		return
	}
	e.state.SetLayout(t)
	e.commit()
	e.listener.OnRestore(e.State())
}

// SetOverlay replaces the overlay shown behind the popup.
func (e *Engine) SetOverlay(o document.Overlay) {
	if o == e.state.Overlay {
		return
	}
	e.state.Overlay = o
	e.commit()
	e.listener.OnRestore(e.State())
}

// SetCloseButton replaces the close button settings.
func (e *Engine) SetCloseButton(c document.CloseButton) {
	if c == e.state.CloseButton {
		return
	}
	e.state.CloseButton = c
	e.commit()
	e.listener.OnRestore(e.State())
}

// --- View settings: these never create history entries ---

// SetZoom sets the editor zoom factor, clamped to [MinZoom, MaxZoom].
func (e *Engine) SetZoom(z float64) {
	e.state.Zoom = geometry.Clamp(z, MinZoom, MaxZoom)
}

// SetShowGrid toggles the grid overlay and with it snapping.
func (e *Engine) SetShowGrid(show bool) {
	e.state.ShowGrid = show
}

// SetGridSize sets the snapping step. Non-positive sizes are ignored.
func (e *Engine) SetGridSize(size float64) {
	if size > 0 {
		e.state.GridSize = size
	}
}

// SetPreviewDevice sets the device the canvas is previewed on.
func (e *Engine) SetPreviewDevice(d geometry.Device) {
	e.state.PreviewDevice = d
}

// SetViewport records where the canvas container sits on screen.
func (e *Engine) SetViewport(origin geometry.Point) {
	e.origin = origin
}

// scale is the screen-pixels-per-logical-unit factor.
func (e *Engine) scale() float64 {
	return e.state.Zoom * e.state.PreviewDevice.Scale()
}

// ToLogical converts a screen point into canvas coordinates.
func (e *Engine) ToLogical(screen geometry.Point) geometry.Point {
	return geometry.ToLogical(screen, e.origin, e.scale())
}

// --- History ---

// Undo restores the previous snapshot. Selection is cleared and view settings
// are kept.
func (e *Engine) Undo() bool {
	state, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(state)
	return true
}

// Redo restores the next snapshot.
func (e *Engine) Redo() bool {
	state, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(state)
	return true
}

func (e *Engine) restore(state document.CanvasState) {
	state.Zoom = e.state.Zoom
	state.ShowGrid = e.state.ShowGrid
	state.GridSize = e.state.GridSize
	state.PreviewDevice = e.state.PreviewDevice
	e.state = state
	e.cancelGestures()
	e.setSelection(nil)
	e.listener.OnRestore(e.State())
}
