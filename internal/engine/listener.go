package engine

import (
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

// Listener receives the engine's output callbacks. Calls happen synchronously on
// the goroutine that drove the engine.
type Listener interface {
	OnSelectElements(ids []string)
	OnUpdateElements(updates []document.Update)
	OnAddElements(elements []document.Element)
	OnDeleteElements(ids []string)
	// OnRestore fires when the whole state is replaced (load, undo, redo).
	OnRestore(state document.CanvasState)
	OnScroll(scroll geometry.Point)
}

// NopListener ignores every callback.
type NopListener struct{}

func (NopListener) OnSelectElements([]string)          {}
func (NopListener) OnUpdateElements([]document.Update) {}
func (NopListener) OnAddElements([]document.Element)   {}
func (NopListener) OnDeleteElements([]string)          {}
func (NopListener) OnRestore(document.CanvasState)     {}
func (NopListener) OnScroll(geometry.Point)            {}

// ListenerFuncs adapts optional callback functions to a Listener.
type ListenerFuncs struct {
	SelectElements func(ids []string)
	UpdateElements func(updates []document.Update)
	AddElements    func(elements []document.Element)
	DeleteElements func(ids []string)
	Restore        func(state document.CanvasState)
	Scroll         func(scroll geometry.Point)
}

func (l ListenerFuncs) OnSelectElements(ids []string) {
	if l.SelectElements != nil {
		l.SelectElements(ids)
	}
}

func (l ListenerFuncs) OnUpdateElements(updates []document.Update) {
	if l.UpdateElements != nil {
		l.UpdateElements(updates)
	}
}

func (l ListenerFuncs) OnAddElements(elements []document.Element) {
	if l.AddElements != nil {
		l.AddElements(elements)
	}
}

func (l ListenerFuncs) OnDeleteElements(ids []string) {
	if l.DeleteElements != nil {
		l.DeleteElements(ids)
	}
}

func (l ListenerFuncs) OnRestore(state document.CanvasState) {
	if l.Restore != nil {
		l.Restore(state)
	}
}

func (l ListenerFuncs) OnScroll(scroll geometry.Point) {
	if l.Scroll != nil {
		l.Scroll(scroll)
	}
}
