package engine

import (
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
	"github.com/popcanvas/popcanvas/internal/interaction"
)

type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is the keyboard modifier state at the time of an event.
type Modifiers struct {
	Shift bool `json:"shift"`
	Alt   bool `json:"alt"`
	Ctrl  bool `json:"ctrl"`
	Meta  bool `json:"meta"`
}

// Command reports whether the platform command modifier (Ctrl or Meta) is held.
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// PointerEvent is a pointer press, move or release in screen coordinates.
// Target names the element under the pointer; when empty the engine hit-tests.
// Handle is set when the press landed on a resize handle of Target.
type PointerEvent struct {
	Screen geometry.Point     `json:"screen"`
	Target string             `json:"target,omitempty"`
	Handle interaction.Handle `json:"handle,omitempty"`
	Button Button             `json:"button"`
	Mods   Modifiers          `json:"mods"`
}

// marquee is an in-progress rubber-band selection.
type marquee struct {
	start    geometry.Point
	current  geometry.Point
	additive bool
	moved    bool
}

func (m *marquee) rect() geometry.Rect {
	return geometry.RectFromPoints(m.start, m.current)
}

// pan is an in-progress viewport pan.
type pan struct {
	start  geometry.Point
	scroll geometry.Point
}

// cancelGestures drops every gesture without touching the state. Only callers that
// replace the state wholesale may use it.
func (e *Engine) cancelGestures() {
	e.gesture.Cancel()
	e.marquee = nil
	e.pan = nil
}

// finishGesture ends an active drag or resize and commits its geometry as one
// history entry.
func (e *Engine) finishGesture() {
	u, changed, ok := e.gesture.End()
	if !ok || !changed || e.state.Index(u.ID) < 0 {
		return
	}
	e.commit()
	e.listener.OnUpdateElements([]document.Update{u})
}

// PointerDown starts a gesture: drag or resize on an element, pan with Alt or the
// middle button, otherwise a marquee on the background. A drag or resize still
// active from a lost release is committed first.
func (e *Engine) PointerDown(ev PointerEvent) {
	e.finishGesture()
	e.marquee = nil
	e.pan = nil
	p := e.ToLogical(ev.Screen)

	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Mods.Alt) {
		e.pan = &pan{start: ev.Screen, scroll: e.scroll}
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	target := ev.Target
	if target == "" {
		target = e.HitTest(p)
	}
	if el := e.state.Element(target); el != nil {
		e.pointerDownOnElement(el.Clone(), p, ev)
		return
	}
	e.marquee = &marquee{start: p, current: p, additive: ev.Mods.Shift}
}

func (e *Engine) pointerDownOnElement(el document.Element, p geometry.Point, ev PointerEvent) {
	if ev.Mods.Shift || ev.Mods.Command() {
		e.ToggleSelect(el.ID)
		return
	}
	e.setSelection([]string{el.ID})
	if ev.Handle.Valid() {
		e.gesture.BeginResize(el, ev.Handle, p)
		return
	}
	e.gesture.BeginDrag(el, p)
}

// PointerMove advances the active gesture. Drag and resize frames are applied
// live and reported without creating history entries.
func (e *Engine) PointerMove(ev PointerEvent) {
	switch {
	case e.gesture.Active():
		r, ok := e.gesture.Move(e.ToLogical(ev.Screen), ev.Mods.Shift, interaction.EnvFor(&e.state))
		if !ok {
			return
		}
		el := e.state.Element(e.gesture.ElementID())
		if el == nil {
			e.gesture.Cancel()
			return
		}
		if el.Rect() == r {
			return
		}
		u := document.Update{ID: el.ID, Patch: document.GeometryPatch(r)}
		u.Patch.Apply(el)
		e.listener.OnUpdateElements([]document.Update{u})
	case e.pan != nil:
		e.scroll = e.pan.scroll.Sub(ev.Screen.Sub(e.pan.start))
		e.listener.OnScroll(e.scroll)
	case e.marquee != nil:
		p := e.ToLogical(ev.Screen)
		if p != e.marquee.start {
			e.marquee.moved = true
		}
		e.marquee.current = p
	}
}

// PointerUp finishes the active gesture. A drag or resize that changed geometry
// commits exactly one history entry.
func (e *Engine) PointerUp(ev PointerEvent) {
	switch {
	case e.gesture.Active():
		e.finishGesture()
	case e.pan != nil:
		e.pan = nil
	case e.marquee != nil:
		m := e.marquee
		e.marquee = nil
		if p := e.ToLogical(ev.Screen); p != m.start {
			m.current = p
			m.moved = true
		}
		e.finishMarquee(m)
	}
}

// finishMarquee selects every element overlapping the band. A click without
// movement clears the selection unless additive; a band that hits nothing
// leaves the selection alone.
func (e *Engine) finishMarquee(m *marquee) {
	if !m.moved {
		if !m.additive {
			e.setSelection(nil)
		}
		return
	}
	band := m.rect()
	var hits []string
	for _, el := range e.state.Elements {
		if band.Intersects(el.Rect()) {
			hits = append(hits, el.ID)
		}
	}
	if len(hits) == 0 {
		return
	}
	if m.additive {
		hits = append(append([]string(nil), e.selection...), hits...)
	}
	e.setSelection(hits)
}

// Marquee returns the rubber band rectangle while a marquee is in progress.
func (e *Engine) Marquee() (geometry.Rect, bool) {
	if e.marquee == nil || !e.marquee.moved {
		return geometry.Rect{}, false
	}
	return e.marquee.rect(), true
}
