package document

import "testing"

func TestValidate(t *testing.T) {
	text := func(id string, x, y, w, h float64, z int) Element {
		return Element{Base: Base{ID: id, Type: ElementText, X: x, Y: y, Width: w, Height: h, ZIndex: z}, Props: TextProps{}}
	}

	s := NewBlankCanvas(LayoutModal)
	s.Elements = []Element{
		text("ok", 10, 10, 100, 40, 1),
		text("ok", 20, 20, 100, 40, 2),
		text("tiny", 10, 10, 5, 40, 3),
		text("edge", 450, 10, 100, 40, 4),
		text("away", 900, 900, 100, 40, 5),
		text("tie", 10, 200, 100, 40, 1),
		{Base: Base{ID: "mismatch", Type: ElementImage, Width: 50, Height: 50, ZIndex: 6}, Props: TextProps{}},
		{Base: Base{Type: ElementText, Width: 50, Height: 50}},
	}

	want := []Issue{
		{SeverityError, "ok", "duplicate id"},
		{SeverityError, "tiny", "size 5x40 is below the 20 minimum"},
		{SeverityWarning, "edge", "extends past the canvas edge"},
		{SeverityWarning, "away", "entirely outside the 500x400 canvas"},
		{SeverityWarning, "tie", "shares zIndex 1 with ok"},
		{SeverityError, "mismatch", "props do not match type image"},
		{SeverityError, "", "element 7 has no id"},
	}

	got := Validate(s)
	if len(got) != len(want) {
		t.Fatalf("got %d issues, want %d:\n%v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("issue %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !HasErrors(got) {
		t.Error("HasErrors = false")
	}
}

func TestValidateSample(t *testing.T) {
	if issues := Validate(NewSampleCanvas()); HasErrors(issues) {
		t.Errorf("sample canvas has errors: %v", issues)
	}
}
