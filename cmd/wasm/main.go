//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/popcanvas/popcanvas/internal/align"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/engine"
	"github.com/popcanvas/popcanvas/internal/geometry"
	"github.com/popcanvas/popcanvas/internal/toolbox"
)

var (
	eng      *engine.Engine
	callback js.Value
)

func main() {
	eng = engine.New(
		engine.WithFactory(toolbox.New()),
		engine.WithListener(jsListener()),
	)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("setCallback", js.FuncOf(setCallback))
	api.Set("loadCanvas", js.FuncOf(loadCanvas))
	api.Set("loadSampleCanvas", js.FuncOf(loadSampleCanvas))
	api.Set("mount", js.FuncOf(mount))
	api.Set("unmount", js.FuncOf(unmount))
	api.Set("setViewport", js.FuncOf(setViewport))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("drop", js.FuncOf(drop))
	api.Set("select", js.FuncOf(selectElements))
	api.Set("updateElements", js.FuncOf(updateElements))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("duplicate", js.FuncOf(duplicate))
	api.Set("togglePin", js.FuncOf(togglePin))
	api.Set("align", js.FuncOf(alignSelected))
	api.Set("distribute", js.FuncOf(distributeSelected))
	api.Set("layer", js.FuncOf(layer))
	api.Set("setBackground", js.FuncOf(setBackground))
	api.Set("setLayout", js.FuncOf(setLayout))
	api.Set("setZoom", js.FuncOf(setZoom))
	api.Set("setGrid", js.FuncOf(setGrid))
	api.Set("setPreviewDevice", js.FuncOf(setPreviewDevice))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← engine) ---
	api.Set("getFrame", js.FuncOf(getFrame))
	api.Set("getCanvas", js.FuncOf(getCanvas))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("hitTest", js.FuncOf(hitTest))

	js.Global().Set("popcanvasEngine", api)
	js.Global().Set("popcanvasWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// emit forwards an engine notification to the registered JS callback as
// (event, json).
func emit(event string, payload any) {
	if callback.Type() != js.TypeFunction {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	callback.Invoke(event, string(data))
}

func jsListener() engine.Listener {
	return engine.ListenerFuncs{
		SelectElements: func(ids []string) { emit("select", ids) },
		UpdateElements: func(u []document.Update) { emit("update", u) },
		AddElements:    func(els []document.Element) { emit("add", els) },
		DeleteElements: func(ids []string) { emit("delete", ids) },
		Restore:        func(s document.CanvasState) { emit("restore", s) },
		Scroll:         func(p geometry.Point) { emit("scroll", p) },
	}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func decodeArg(args []js.Value, v any) bool {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return false
	}
	return json.Unmarshal([]byte(args[0].String()), v) == nil
}

func stringSlice(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	out := make([]string, v.Length())
	for i := range out {
		out[i] = v.Index(i).String()
	}
	return out
}

// --- Command Handlers ---

func setCallback(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		callback = js.Undefined()
		return nil
	}
	callback = args[0]
	return nil
}

func loadCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing canvas JSON")
	}
	if err := eng.LoadJSON([]byte(args[0].String())); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func loadSampleCanvas(this js.Value, args []js.Value) interface{} {
	eng.Load(*document.NewSampleCanvas())
	return ok()
}

// domKeys subscribes to keydown events on the document.
type domKeys struct{}

func (domKeys) Subscribe(fn func(engine.KeyEvent) bool) func() {
	doc := js.Global().Get("document")
	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := args[0]
		target := ev.Get("target")
		tag := target.Get("tagName")
		editable := target.Get("isContentEditable").Truthy() ||
			(tag.Type() == js.TypeString && (tag.String() == "INPUT" || tag.String() == "TEXTAREA" || tag.String() == "SELECT"))

		handled := fn(engine.KeyEvent{
			Key: ev.Get("key").String(),
			Mods: engine.Modifiers{
				Shift: ev.Get("shiftKey").Bool(),
				Alt:   ev.Get("altKey").Bool(),
				Ctrl:  ev.Get("ctrlKey").Bool(),
				Meta:  ev.Get("metaKey").Bool(),
			},
			Editable: editable,
		})
		if handled {
			ev.Call("preventDefault")
		}
		return nil
	})
	doc.Call("addEventListener", "keydown", handler)
	return func() {
		doc.Call("removeEventListener", "keydown", handler)
		handler.Release()
	}
}

func mount(this js.Value, args []js.Value) interface{} {
	eng.Mount(domKeys{})
	return nil
}

func unmount(this js.Value, args []js.Value) interface{} {
	eng.Unmount()
	return nil
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetViewport(geometry.Point{X: args[0].Float(), Y: args[1].Float()})
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, &ev) {
		eng.PointerDown(ev)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, &ev) {
		eng.PointerMove(ev)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, &ev) {
		eng.PointerUp(ev)
	}
	return nil
}

func keyDown(this js.Value, args []js.Value) interface{} {
	var ev engine.KeyEvent
	if !decodeArg(args, &ev) {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.HandleKey(ev))
}

func drop(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.Drop(engine.DropEvent{
		Type:   document.ElementType(args[0].String()),
		Screen: geometry.Point{X: args[1].Float(), Y: args[2].Float()},
	}))
}

func selectElements(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.ClearSelection()
		return nil
	}
	eng.Select(stringSlice(args[0])...)
	return nil
}

func updateElements(this js.Value, args []js.Value) interface{} {
	var updates []document.Update
	if !decodeArg(args, &updates) {
		return fail("invalid updates JSON")
	}
	return js.ValueOf(eng.UpdateElements(updates))
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(len(eng.DeleteSelected()))
}

func duplicate(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(len(eng.Duplicate()))
}

func togglePin(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.TogglePin(args[0].String()))
}

func alignSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing mode")
	}
	mode, err := align.ParseMode(args[0].String())
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(eng.Align(mode))
}

func distributeSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing axis")
	}
	axis, err := align.ParseAxis(args[0].String())
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(eng.Distribute(axis))
}

func layer(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	id := args[1].String()
	switch args[0].String() {
	case "raise":
		return js.ValueOf(eng.Raise(id))
	case "lower":
		return js.ValueOf(eng.Lower(id))
	case "front":
		return js.ValueOf(eng.BringToFront(id))
	case "back":
		return js.ValueOf(eng.SendToBack(id))
	}
	return js.ValueOf(false)
}

func setBackground(this js.Value, args []js.Value) interface{} {
	var bg document.Background
	if !decodeArg(args, &bg) {
		return fail("invalid background JSON")
	}
	eng.SetBackground(bg)
	return ok()
}

func setLayout(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetLayout(document.LayoutType(args[0].String()))
	return nil
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetZoom(args[0].Float())
	return nil
}

func setGrid(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetShowGrid(args[0].Bool())
	if len(args) > 1 {
		eng.SetGridSize(args[1].Float())
	}
	return nil
}

func setPreviewDevice(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetPreviewDevice(geometry.Device(args[0].String()))
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

// --- Query Handlers ---

func getFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.FrameJSON())
}

func getCanvas(this js.Value, args []js.Value) interface{} {
	data, err := eng.StateJSON()
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Selection())
	return js.ValueOf(string(data))
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(eng.ToLogical(geometry.Point{X: args[0].Float(), Y: args[1].Float()})))
}
