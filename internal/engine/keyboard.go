package engine

import "strings"

// KeyEvent is a key press. Editable is set when the event came from a text input
// or other editable target, in which case shortcuts are not applied.
type KeyEvent struct {
	Key      string    `json:"key"`
	Mods     Modifiers `json:"mods"`
	Editable bool      `json:"editable"`
}

// KeySource delivers key presses to a subscriber until unsubscribed. The subscriber
// reports whether it consumed the press.
type KeySource interface {
	Subscribe(fn func(KeyEvent) bool) (unsubscribe func())
}

// Mount subscribes the engine to a key source, replacing any earlier one.
func (e *Engine) Mount(src KeySource) {
	e.Unmount()
	if src == nil {
		return
	}
	e.unsubscribe = src.Subscribe(e.HandleKey)
}

// Unmount drops the key source subscription. Events delivered afterwards have no
// effect on the engine.
func (e *Engine) Unmount() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// HandleKey applies the editor shortcuts and reports whether ev was consumed so
// the host can suppress the default action.
func (e *Engine) HandleKey(ev KeyEvent) bool {
	if ev.Editable {
		return false
	}
	key := ev.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}

	if ev.Mods.Command() {
		switch key {
		case "z":
			if ev.Mods.Shift {
				e.Redo()
			} else {
				e.Undo()
			}
			return true
		case "y":
			e.Redo()
			return true
		case "a":
			e.SelectAll()
			return true
		case "d":
			e.Duplicate()
			return true
		}
		return false
	}

	switch key {
	case "Delete", "Backspace":
		if len(e.selection) == 0 {
			return false
		}
		e.DeleteSelected()
		return true
	case "Escape":
		// Gestures and pans keep running; only the selection goes.
		e.ClearSelection()
		return true
	}
	return false
}
