// Package engine is the editor core: it holds a popup design and applies selection,
// gesture, keyboard and drop input to it with undo/redo history.
package engine

import (
	"encoding/json"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
	"github.com/popcanvas/popcanvas/internal/history"
	"github.com/popcanvas/popcanvas/internal/interaction"
	"github.com/popcanvas/popcanvas/internal/typeid"
)

// DuplicateOffset is how far clones are shifted from their source on both axes.
const DuplicateOffset = 20.0

// Engine is the canvas surface controller. It owns the canvas state, the selection
// and the undo history, and turns pointer, keyboard and drop events into element
// mutations reported through a Listener.
//
// An Engine is not safe for concurrent use; hosts serialize calls the way a UI
// event loop does.
type Engine struct {
	state     document.CanvasState
	selection []string
	history   *history.Stack

	// Active pointer gesture; at most one of these is in progress.
	gesture interaction.Controller
	marquee *marquee
	pan     *pan

	// Viewport: where the canvas sits on screen and how far it is scrolled.
	origin geometry.Point
	scroll geometry.Point

	listener    Listener
	factory     ElementFactory
	newID       func() string
	unsubscribe func()
}

// ElementFactory supplies fully formed new elements (the toolbox).
type ElementFactory interface {
	NewElement(t document.ElementType) (document.Element, error)
}

type Option func(*Engine)

// WithListener routes output callbacks to l.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithFactory sets the element factory used for drops.
func WithFactory(f ElementFactory) Option {
	return func(e *Engine) { e.factory = f }
}

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) { e.history = history.New(n) }
}

// WithIDGenerator overrides how new element ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an engine holding an empty modal canvas.
func New(opts ...Option) *Engine {
	e := &Engine{
		history:  history.New(history.DefaultLimit),
		listener: NopListener{},
		newID:    typeid.NewElementID,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset(*document.NewBlankCanvas(document.LayoutModal))
	return e
}

// SetListener replaces the output listener. Nil installs a no-op listener.
func (e *Engine) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	e.listener = l
}

// --- Loading ---

// Load replaces the canvas state, clearing selection, gestures and history.
func (e *Engine) Load(state document.CanvasState) {
	e.reset(state)
	e.listener.OnRestore(e.State())
}

// LoadJSON decodes and loads a persisted canvas state.
func (e *Engine) LoadJSON(data []byte) error {
	state, err := document.Decode(data)
	if err != nil {
		return err
	}
	e.Load(*state)
	return nil
}

func (e *Engine) reset(state document.CanvasState) {
	state.Normalize()
	e.state = state.Clone()
	e.selection = nil
	e.cancelGestures()
	e.history.Reset(e.state)
}

// --- Queries ---

// State returns a deep copy of the canvas state.
func (e *Engine) State() document.CanvasState {
	return e.state.Clone()
}

// StateJSON serializes the canvas state.
func (e *Engine) StateJSON() ([]byte, error) {
	return json.Marshal(e.state)
}

// Element returns a copy of one element.
func (e *Engine) Element(id string) (document.Element, bool) {
	el := e.state.Element(id)
	if el == nil {
		return document.Element{}, false
	}
	return el.Clone(), true
}

// CanUndo reports whether an earlier snapshot exists.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether a later snapshot exists.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// GestureMode reports the active single-element gesture.
func (e *Engine) GestureMode() interaction.Mode { return e.gesture.Mode() }

// Scroll returns the viewport scroll offset.
func (e *Engine) Scroll() geometry.Point { return e.scroll }
