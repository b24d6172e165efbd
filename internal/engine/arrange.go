package engine

import (
	"github.com/popcanvas/popcanvas/internal/align"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/layers"
)

// elementsByID returns copies of the named elements in the order given.
func (e *Engine) elementsByID(ids []string) []document.Element {
	out := make([]document.Element, 0, len(ids))
	for _, id := range ids {
		if el := e.state.Element(id); el != nil {
			out = append(out, el.Clone())
		}
	}
	return out
}

// Align aligns the selection. It needs at least two selected elements.
func (e *Engine) Align(mode align.Mode) bool {
	return e.AlignElements(e.selection, mode)
}

// AlignElements aligns the named elements as one history step.
func (e *Engine) AlignElements(ids []string, mode align.Mode) bool {
	return e.UpdateElements(e.dropUnchanged(align.Align(e.elementsByID(ids), mode)))
}

// Distribute spaces the selection evenly. It needs at least three selected
// elements.
func (e *Engine) Distribute(axis align.Axis) bool {
	return e.DistributeElements(e.selection, axis)
}

// DistributeElements spaces the named elements evenly as one history step.
func (e *Engine) DistributeElements(ids []string, axis align.Axis) bool {
	return e.UpdateElements(e.dropUnchanged(align.Distribute(e.elementsByID(ids), axis)))
}

// dropUnchanged filters out geometry updates that would leave their element as it
// is, so an already arranged selection records no history step.
func (e *Engine) dropUnchanged(updates []document.Update) []document.Update {
	out := updates[:0]
	for _, u := range updates {
		el := e.state.Element(u.ID)
		if el == nil {
			continue
		}
		next := el.Clone()
		u.Patch.Apply(&next)
		if u.Patch.Props != nil || next.Base != el.Base {
			out = append(out, u)
		}
	}
	return out
}

// Raise swaps id with the element just above it in paint order.
func (e *Engine) Raise(id string) bool {
	return e.UpdateElements(layers.Raise(e.state.Elements, id))
}

// Lower swaps id with the element just below it in paint order.
func (e *Engine) Lower(id string) bool {
	return e.UpdateElements(layers.Lower(e.state.Elements, id))
}

// BringToFront moves id above every other element.
func (e *Engine) BringToFront(id string) bool {
	return e.UpdateElements(layers.BringToFront(e.state.Elements, id))
}

// SendToBack moves id below every other element.
func (e *Engine) SendToBack(id string) bool {
	return e.UpdateElements(layers.SendToBack(e.state.Elements, id))
}
