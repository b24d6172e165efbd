package engine

import (
	"slices"
)

// Selection returns the selected element ids in selection order.
func (e *Engine) Selection() []string {
	return slices.Clone(e.selection)
}

// IsSelected reports whether id is in the selection.
func (e *Engine) IsSelected(id string) bool {
	return slices.Contains(e.selection, id)
}

// setSelection replaces the selection, dropping unknown and duplicate ids, and
// notifies the listener when it changed.
func (e *Engine) setSelection(ids []string) {
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if e.state.Index(id) < 0 || slices.Contains(next, id) {
			continue
		}
		next = append(next, id)
	}
	if slices.Equal(next, e.selection) || (len(next) == 0 && len(e.selection) == 0) {
		return
	}
	e.selection = next
	e.listener.OnSelectElements(slices.Clone(next))
}

// Select makes ids the selection.
func (e *Engine) Select(ids ...string) {
	e.setSelection(ids)
}

// ToggleSelect adds id to the selection, or removes it when already selected.
func (e *Engine) ToggleSelect(id string) {
	if i := slices.Index(e.selection, id); i >= 0 {
		e.setSelection(slices.Delete(slices.Clone(e.selection), i, i+1))
		return
	}
	e.setSelection(append(slices.Clone(e.selection), id))
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.setSelection(nil)
}

// SelectAll selects every element in sequence order.
func (e *Engine) SelectAll() {
	ids := make([]string, len(e.state.Elements))
	for i, el := range e.state.Elements {
		ids[i] = el.ID
	}
	e.setSelection(ids)
}
