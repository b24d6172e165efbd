package document

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSetLayoutResizesCanvas(t *testing.T) {
	s := NewBlankCanvas(LayoutModal)
	for _, lt := range []LayoutType{LayoutBanner, LayoutSlideIn, LayoutFullscreen, LayoutModal} {
		s.SetLayout(lt)
		if s.Width != s.Layout.Dimensions.Width || s.Height != s.Layout.Dimensions.Height {
			t.Errorf("%s: canvas %vx%v does not match layout %+v", lt, s.Width, s.Height, s.Layout.Dimensions)
		}
	}
	s.SetLayout("unknown")
	if s.Layout.Type != LayoutModal {
		t.Errorf("expected fallback to modal, got %q", s.Layout.Type)
	}
}

func TestElementJSONRoundTrip(t *testing.T) {
	in := Element{
		Base: Base{ID: "a1", Type: ElementForm, X: 10, Y: 20, Width: 200, Height: 100, ZIndex: 3},
		Props: FormProps{
			Fields:      []FormField{{ID: "email", Type: "email", Label: "Email", Required: true}},
			SubmitLabel: "Go",
		},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"props":{"fields"`) {
		t.Errorf("expected nested props, got %s", data)
	}

	var out Element
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	form, ok := out.Props.(FormProps)
	if !ok {
		t.Fatalf("expected FormProps, got %T", out.Props)
	}
	if out.Base != in.Base || len(form.Fields) != 1 || form.SubmitLabel != "Go" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestElementUnknownType(t *testing.T) {
	var e Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"video"}`), &e)
	if !errors.Is(err, ErrUnknownElementType) {
		t.Fatalf("expected ErrUnknownElementType, got %v", err)
	}
}

func TestElementMalformedPropsDegrade(t *testing.T) {
	var e Element
	err := json.Unmarshal([]byte(`{"id":"f","type":"form","width":100,"height":50,"props":{"fields":"oops"}}`), &e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form, ok := e.Props.(FormProps)
	if !ok {
		t.Fatalf("expected FormProps, got %T", e.Props)
	}
	if len(form.Fields) != 0 {
		t.Errorf("expected empty field list, got %+v", form.Fields)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewBlankCanvas(LayoutModal)
	s.Elements = append(s.Elements, Element{
		Base:  Base{ID: "f", Type: ElementForm, Width: 100, Height: 100},
		Props: FormProps{Fields: []FormField{{ID: "a", Options: []string{"x"}}}},
	})

	c := s.Clone()
	c.Elements[0].X = 99
	c.Elements[0].Props.(FormProps).Fields[0].Options[0] = "changed"

	if s.Elements[0].X != 0 {
		t.Error("clone shares element slice")
	}
	if s.Elements[0].Props.(FormProps).Fields[0].Options[0] != "x" {
		t.Error("clone shares form field options")
	}
}

func TestPatchApply(t *testing.T) {
	e, err := NewElement("t", ElementText)
	if err != nil {
		t.Fatal(err)
	}
	Patch{X: Float(5), ZIndex: Int(7), IsPinned: Bool(true), Props: TextProps{Content: "hi"}}.Apply(&e)
	if e.X != 5 || e.ZIndex != 7 || !e.IsPinned {
		t.Errorf("patch not applied: %+v", e.Base)
	}
	if e.Props.(TextProps).Content != "hi" {
		t.Errorf("props not applied: %+v", e.Props)
	}

	// Props of another variant are ignored.
	Patch{Props: ImageProps{Src: "x.png"}}.Apply(&e)
	if _, ok := e.Props.(TextProps); !ok {
		t.Errorf("props variant changed to %T", e.Props)
	}
}

func TestUpdateJSONDefersProps(t *testing.T) {
	var u Update
	if err := json.Unmarshal([]byte(`{"id":"t","x":12,"props":{"content":"wire"}}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	e, _ := NewElement("t", ElementText)
	u.Apply(&e)
	if e.X != 12 || e.Props.(TextProps).Content != "wire" {
		t.Errorf("update not applied: %+v %+v", e.Base, e.Props)
	}
}

func TestZIndexBounds(t *testing.T) {
	s := CanvasState{}
	if s.MaxZIndex() != 0 || s.MinZIndex() != 0 {
		t.Error("empty canvas should report 0")
	}
	s.Elements = []Element{{Base: Base{ID: "a", ZIndex: 4}}, {Base: Base{ID: "b", ZIndex: -2}}}
	if s.MaxZIndex() != 4 || s.MinZIndex() != -2 {
		t.Errorf("got max %d min %d", s.MaxZIndex(), s.MinZIndex())
	}
}

func TestDecodeNormalizes(t *testing.T) {
	s, err := Decode([]byte(`{"elements":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 500 || s.Height != 400 || s.Zoom != 1 || s.GridSize != DefaultGridSize {
		t.Errorf("defaults not applied: %+v", s)
	}
	if s.Elements == nil {
		t.Error("elements should be an empty slice")
	}
}
