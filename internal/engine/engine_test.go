package engine

import (
	"fmt"
	"slices"
	"testing"

	"github.com/popcanvas/popcanvas/internal/align"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
)

// recorder captures listener callbacks.
type recorder struct {
	selections [][]string
	updates    [][]document.Update
	added      [][]document.Element
	deleted    [][]string
	restores   int
	scrolls    []geometry.Point
}

func (r *recorder) OnSelectElements(ids []string)              { r.selections = append(r.selections, ids) }
func (r *recorder) OnUpdateElements(updates []document.Update) { r.updates = append(r.updates, updates) }
func (r *recorder) OnAddElements(els []document.Element)       { r.added = append(r.added, els) }
func (r *recorder) OnDeleteElements(ids []string)              { r.deleted = append(r.deleted, ids) }
func (r *recorder) OnRestore(document.CanvasState)             { r.restores++ }
func (r *recorder) OnScroll(p geometry.Point)                  { r.scrolls = append(r.scrolls, p) }

func (r *recorder) lastSelection() []string {
	if len(r.selections) == 0 {
		return nil
	}
	return r.selections[len(r.selections)-1]
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new%d", n)
	}
}

func textEl(id string, x, y, w, h float64, z int) document.Element {
	el, _ := document.NewElement(id, document.ElementText)
	el.X, el.Y, el.Width, el.Height, el.ZIndex = x, y, w, h, z
	return el
}

func newTestEngine(t *testing.T, elements ...document.Element) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(WithListener(rec), WithIDGenerator(sequentialIDs()))
	state := *document.NewBlankCanvas(document.LayoutModal)
	state.Elements = elements
	e.Load(state)
	return e, rec
}

func TestNewStartsBlank(t *testing.T) {
	e := New()
	s := e.State()
	if s.Width != 500 || s.Height != 400 {
		t.Errorf("blank canvas = %vx%v, want 500x400", s.Width, s.Height)
	}
	if len(s.Elements) != 0 || e.CanUndo() || e.CanRedo() {
		t.Error("new engine should have no elements and no history")
	}
}

func TestAddElementSelectsAndStacksOnTop(t *testing.T) {
	e, rec := newTestEngine(t, textEl("a", 0, 0, 50, 50, 3))

	id := e.AddElement(textEl("", 10, 10, 5, 5, 0))
	if id != "new1" {
		t.Fatalf("id = %q, want new1", id)
	}
	el, ok := e.Element(id)
	if !ok {
		t.Fatal("added element missing")
	}
	if el.ZIndex != 4 {
		t.Errorf("zIndex = %d, want 4", el.ZIndex)
	}
	if el.Width != geometry.MinSize || el.Height != geometry.MinSize {
		t.Errorf("size = %vx%v, want floored to %v", el.Width, el.Height, geometry.MinSize)
	}
	if !slices.Equal(e.Selection(), []string{id}) {
		t.Errorf("selection = %v", e.Selection())
	}
	if len(rec.added) != 1 {
		t.Errorf("add callbacks = %d, want 1", len(rec.added))
	}

	if got := e.AddElement(textEl("a", 0, 0, 30, 30, 0)); got == "a" {
		t.Error("colliding id was kept")
	}
	if got := e.AddElement(document.Element{Base: document.Base{Type: "video"}}); got != "" {
		t.Errorf("unknown type added as %q", got)
	}
}

func TestDuplicateOffsetsClone(t *testing.T) {
	e, _ := newTestEngine(t, textEl("a1", 10, 10, 100, 40, 1))
	e.Select("a1")

	ids := e.Duplicate()
	if len(ids) != 1 {
		t.Fatalf("duplicate returned %v", ids)
	}
	clone, ok := e.Element(ids[0])
	if !ok {
		t.Fatal("clone missing")
	}
	if clone.ID == "a1" {
		t.Error("clone reused the source id")
	}
	if clone.X != 30 || clone.Y != 30 {
		t.Errorf("clone at (%v,%v), want (30,30)", clone.X, clone.Y)
	}
	if clone.Width != 100 || clone.Height != 40 {
		t.Errorf("clone size changed: %vx%v", clone.Width, clone.Height)
	}
	if clone.ZIndex != 2 {
		t.Errorf("clone zIndex = %d, want 2", clone.ZIndex)
	}
	if !slices.Equal(e.Selection(), ids) {
		t.Errorf("selection = %v, want %v", e.Selection(), ids)
	}
	if len(e.State().Elements) != 2 {
		t.Errorf("elements = %d, want 2", len(e.State().Elements))
	}
}

func TestDuplicateWithoutSelection(t *testing.T) {
	e, rec := newTestEngine(t, textEl("a", 0, 0, 50, 50, 1))
	if ids := e.Duplicate(); ids != nil {
		t.Errorf("duplicate with empty selection = %v", ids)
	}
	if len(rec.added) != 0 || e.CanUndo() {
		t.Error("empty duplicate should not mutate")
	}
}

func TestDeleteThenUndoRestoresElement(t *testing.T) {
	e, rec := newTestEngine(t)

	id := e.AddElement(textEl("x", 15, 25, 120, 60, 0))
	e.DeleteElements([]string{id})
	if _, ok := e.Element(id); ok {
		t.Fatal("element still present after delete")
	}
	if len(e.Selection()) != 0 {
		t.Errorf("deleted element still selected: %v", e.Selection())
	}
	if len(rec.deleted) != 1 || rec.deleted[0][0] != id {
		t.Errorf("delete callbacks = %v", rec.deleted)
	}

	if !e.Undo() {
		t.Fatal("undo failed")
	}
	el, ok := e.Element(id)
	if !ok {
		t.Fatal("undo did not restore the element")
	}
	if el.Rect() != (geometry.Rect{X: 15, Y: 25, Width: 120, Height: 60}) {
		t.Errorf("restored geometry = %+v", el.Rect())
	}

	if !e.Redo() {
		t.Fatal("redo failed")
	}
	if _, ok := e.Element(id); ok {
		t.Error("redo did not delete again")
	}
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	e, rec := newTestEngine(t, textEl("a", 0, 0, 50, 50, 1))
	if removed := e.DeleteElements([]string{"missing"}); removed != nil {
		t.Errorf("removed = %v", removed)
	}
	if e.CanUndo() || len(rec.deleted) != 0 {
		t.Error("no-op delete touched history or listener")
	}
}

func TestUpdateElementsIsOneHistoryStep(t *testing.T) {
	e, rec := newTestEngine(t,
		textEl("a", 0, 0, 50, 50, 1),
		textEl("b", 100, 100, 50, 50, 2),
	)
	ok := e.UpdateElements([]document.Update{
		{ID: "a", Patch: document.Patch{X: document.Float(5)}},
		{ID: "b", Patch: document.Patch{Width: document.Float(5)}},
		{ID: "ghost", Patch: document.Patch{X: document.Float(1)}},
	})
	if !ok {
		t.Fatal("update reported no change")
	}
	if e.history.Len() != 2 {
		t.Errorf("history entries = %d, want 2", e.history.Len())
	}
	if len(rec.updates) != 1 || len(rec.updates[0]) != 2 {
		t.Errorf("update callbacks = %v", rec.updates)
	}
	b, _ := e.Element("b")
	if b.Width != geometry.MinSize {
		t.Errorf("width = %v, want floored to %v", b.Width, geometry.MinSize)
	}

	e.Undo()
	a, _ := e.Element("a")
	if a.X != 0 {
		t.Errorf("undo left a.x = %v", a.X)
	}
}

func TestUndoKeepsViewSettings(t *testing.T) {
	e, _ := newTestEngine(t, textEl("a", 0, 0, 50, 50, 1))
	e.UpdateElement("a", document.Patch{X: document.Float(40)})
	e.SetZoom(2)
	e.SetShowGrid(false)
	e.SetPreviewDevice(geometry.DeviceMobile)

	e.Undo()
	s := e.State()
	if s.Zoom != 2 || s.ShowGrid || s.PreviewDevice != geometry.DeviceMobile {
		t.Errorf("view settings lost on undo: zoom=%v grid=%v device=%v", s.Zoom, s.ShowGrid, s.PreviewDevice)
	}
	if a, _ := e.Element("a"); a.X != 0 {
		t.Errorf("a.x = %v, want 0", a.X)
	}
}

func TestViewSettingsSkipHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetZoom(10)
	e.SetGridSize(25)
	e.SetGridSize(-1)
	e.SetShowGrid(false)
	if e.CanUndo() {
		t.Error("view settings created history")
	}
	s := e.State()
	if s.Zoom != MaxZoom {
		t.Errorf("zoom = %v, want clamped to %v", s.Zoom, MaxZoom)
	}
	if s.GridSize != 25 {
		t.Errorf("grid size = %v, want 25", s.GridSize)
	}
}

func TestUndoClearsSelection(t *testing.T) {
	e, _ := newTestEngine(t, textEl("a", 0, 0, 50, 50, 1))
	e.TogglePin("a")
	e.Select("a")
	e.Undo()
	if len(e.Selection()) != 0 {
		t.Errorf("selection after undo = %v", e.Selection())
	}
	if a, _ := e.Element("a"); a.IsPinned {
		t.Error("pin survived undo")
	}
}

func TestSetLayoutResizesCanvas(t *testing.T) {
	e, rec := newTestEngine(t)
	e.SetLayout(document.LayoutBanner)
	s := e.State()
	if s.Width != 1200 || s.Height != 120 {
		t.Errorf("banner = %vx%v, want 1200x120", s.Width, s.Height)
	}
	if !e.CanUndo() || rec.restores < 2 {
		t.Error("layout change should be undoable and reported")
	}
	e.SetLayout(document.LayoutBanner)
	if e.history.Len() != 2 {
		t.Errorf("repeated layout pushed history: %d entries", e.history.Len())
	}
}

func TestSelectionOps(t *testing.T) {
	e, rec := newTestEngine(t,
		textEl("a", 0, 0, 50, 50, 1),
		textEl("b", 100, 0, 50, 50, 2),
	)
	e.Select("a", "ghost", "a")
	if !slices.Equal(e.Selection(), []string{"a"}) {
		t.Errorf("select = %v", e.Selection())
	}
	e.ToggleSelect("b")
	if !slices.Equal(e.Selection(), []string{"a", "b"}) {
		t.Errorf("toggle on = %v", e.Selection())
	}
	e.ToggleSelect("a")
	if !slices.Equal(e.Selection(), []string{"b"}) {
		t.Errorf("toggle off = %v", e.Selection())
	}
	e.SelectAll()
	if !slices.Equal(e.Selection(), []string{"a", "b"}) {
		t.Errorf("select all = %v", e.Selection())
	}
	n := len(rec.selections)
	e.SelectAll()
	if len(rec.selections) != n {
		t.Error("unchanged selection was reported")
	}
	e.ClearSelection()
	if len(rec.lastSelection()) != 0 {
		t.Errorf("clear reported %v", rec.lastSelection())
	}
}

func TestAlignSelection(t *testing.T) {
	e, _ := newTestEngine(t,
		textEl("a", 30, 10, 50, 40, 1),
		textEl("b", 10, 70, 100, 20, 2),
	)
	e.Select("a")
	if e.Align(align.Left) {
		t.Error("align with one selected element should be a no-op")
	}
	e.Select("a", "b")
	if !e.Align(align.Left) {
		t.Fatal("align failed")
	}
	for _, id := range []string{"a", "b"} {
		if el, _ := e.Element(id); el.X != 10 {
			t.Errorf("%s.x = %v, want 10", id, el.X)
		}
	}
	if e.history.Len() != 2 {
		t.Errorf("history entries = %d, want 2", e.history.Len())
	}
}

func TestArrangeAlreadyArrangedSkipsHistory(t *testing.T) {
	e, rec := newTestEngine(t,
		textEl("a", 10, 0, 20, 20, 1),
		textEl("b", 10, 40, 40, 20, 2),
		textEl("c", 10, 80, 20, 20, 3),
	)
	n := len(rec.updates)
	if e.AlignElements([]string{"a", "b", "c"}, align.Left) {
		t.Error("aligning an aligned selection reported a change")
	}
	if e.DistributeElements([]string{"a", "b", "c"}, align.Vertical) {
		t.Error("distributing an evenly spaced selection reported a change")
	}
	if e.CanUndo() || len(rec.updates) != n {
		t.Error("no-op arrange recorded history or emitted updates")
	}

	if !e.AlignElements([]string{"a", "b"}, align.Right) {
		t.Fatal("right align failed")
	}
	if e.history.Len() != 2 {
		t.Errorf("history entries = %d, want 2", e.history.Len())
	}
	if got := rec.updates[len(rec.updates)-1]; len(got) != 1 || got[0].ID != "a" {
		t.Errorf("right align updates = %+v, want only a", got)
	}
}

func TestDistributeNeedsThree(t *testing.T) {
	e, _ := newTestEngine(t,
		textEl("a", 0, 0, 20, 20, 1),
		textEl("b", 30, 0, 20, 20, 2),
		textEl("c", 100, 0, 20, 20, 3),
	)
	if e.DistributeElements([]string{"a", "c"}, align.Horizontal) {
		t.Error("distribute with two elements should be a no-op")
	}
	if !e.DistributeElements([]string{"a", "b", "c"}, align.Horizontal) {
		t.Fatal("distribute failed")
	}
	if b, _ := e.Element("b"); b.X != 50 {
		t.Errorf("b.x = %v, want 50", b.X)
	}
}

func TestLayerOps(t *testing.T) {
	e, _ := newTestEngine(t,
		textEl("a", 0, 0, 20, 20, 1),
		textEl("b", 0, 0, 20, 20, 2),
		textEl("c", 0, 0, 20, 20, 3),
	)
	e.Raise("a")
	if a, _ := e.Element("a"); a.ZIndex != 2 {
		t.Errorf("raise: a.z = %d, want 2", a.ZIndex)
	}
	if e.Raise("c") {
		t.Error("raising the topmost element changed something")
	}
	e.BringToFront("b")
	if b, _ := e.Element("b"); b.ZIndex != 4 {
		t.Errorf("front: b.z = %d, want 4", b.ZIndex)
	}
	e.SendToBack("c")
	if c, _ := e.Element("c"); c.ZIndex != 1 {
		t.Errorf("back: c.z = %d, want 1", c.ZIndex)
	}
	order := e.PaintOrder()
	got := []string{order[0].ID, order[1].ID, order[2].ID}
	if !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("paint order = %v", got)
	}
}

func TestPaintOrderStableOnTies(t *testing.T) {
	e, _ := newTestEngine(t,
		textEl("a", 0, 0, 20, 20, 1),
		textEl("b", 0, 0, 20, 20, 1),
	)
	order := e.PaintOrder()
	if order[0].ID != "a" || order[1].ID != "b" {
		t.Errorf("tie order = %s,%s", order[0].ID, order[1].ID)
	}
	if hit := e.HitTest(geometry.Point{X: 5, Y: 5}); hit != "b" {
		t.Errorf("hit = %q, want b (painted last)", hit)
	}
	if hit := e.HitTest(geometry.Point{X: 300, Y: 300}); hit != "" {
		t.Errorf("background hit = %q", hit)
	}
}

func TestHistoryBounded(t *testing.T) {
	e := New(WithHistoryLimit(5))
	id := e.AddElement(textEl("a", 0, 0, 50, 50, 0))
	for i := range 10 {
		e.UpdateElement(id, document.Patch{X: document.Float(float64(i + 1))})
	}
	undos := 0
	for e.Undo() {
		undos++
	}
	if undos != 4 {
		t.Errorf("undos = %d, want 4", undos)
	}
}

type stubFactory struct{}

func (stubFactory) NewElement(t document.ElementType) (document.Element, error) {
	el, err := document.NewElement("", t)
	el.Width, el.Height = 100, 40
	return el, err
}

func TestDropSnapsToGrid(t *testing.T) {
	rec := &recorder{}
	e := New(WithListener(rec), WithFactory(stubFactory{}), WithIDGenerator(sequentialIDs()))
	e.SetViewport(geometry.Point{X: 100, Y: 50})

	id := e.Drop(DropEvent{Type: document.ElementTimer, Screen: geometry.Point{X: 147, Y: 83}})
	if id == "" {
		t.Fatal("drop failed")
	}
	el, _ := e.Element(id)
	if el.X != 50 || el.Y != 30 {
		t.Errorf("dropped at (%v,%v), want (50,30)", el.X, el.Y)
	}
	if el.Type != document.ElementTimer {
		t.Errorf("type = %s", el.Type)
	}
	if got := e.Drop(DropEvent{Type: "video"}); got != "" {
		t.Errorf("unknown drop produced %q", got)
	}

	bare := New()
	if got := bare.Drop(DropEvent{Type: document.ElementText}); got != "" {
		t.Error("drop without factory should be ignored")
	}
}

func TestLoadJSONRejectsGarbage(t *testing.T) {
	e := New()
	if err := e.LoadJSON([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
	if err := e.LoadJSON([]byte(`{"elements":[{"id":"a","type":"text","x":1,"y":2,"width":30,"height":30,"zIndex":1}]}`)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := e.Element("a"); !ok {
		t.Error("loaded element missing")
	}
}
