package align

import (
	"math"
	"testing"

	"github.com/popcanvas/popcanvas/internal/document"
)

func el(id string, x, y, w, h float64) document.Element {
	return document.Element{Base: document.Base{ID: id, X: x, Y: y, Width: w, Height: h}}
}

func apply(elements []document.Element, updates []document.Update) []document.Element {
	out := make([]document.Element, len(elements))
	copy(out, elements)
	for _, u := range updates {
		for i := range out {
			if out[i].ID == u.ID {
				u.Apply(&out[i])
			}
		}
	}
	return out
}

func TestAlignEdges(t *testing.T) {
	elements := []document.Element{
		el("a", 30, 10, 50, 40),
		el("b", 10, 70, 100, 20),
		el("c", 80, 40, 20, 60),
	}

	left := apply(elements, Align(elements, Left))
	for _, e := range left {
		if e.X != 10 {
			t.Errorf("left: %s.x = %v, want 10", e.ID, e.X)
		}
	}

	right := apply(elements, Align(elements, Right))
	for _, e := range right {
		if e.X+e.Width != 110 {
			t.Errorf("right: %s far edge = %v, want 110", e.ID, e.X+e.Width)
		}
	}

	top := apply(elements, Align(elements, Top))
	for _, e := range top {
		if e.Y != 10 {
			t.Errorf("top: %s.y = %v, want 10", e.ID, e.Y)
		}
	}

	bottom := apply(elements, Align(elements, Bottom))
	for _, e := range bottom {
		if e.Y+e.Height != 100 {
			t.Errorf("bottom: %s far edge = %v, want 100", e.ID, e.Y+e.Height)
		}
	}
}

func TestAlignCenters(t *testing.T) {
	elements := []document.Element{el("a", 0, 0, 100, 10), el("b", 200, 50, 40, 30)}

	centered := apply(elements, Align(elements, Center))
	for _, e := range centered {
		if c := e.X + e.Width/2; c != 120 {
			t.Errorf("center: %s center = %v, want 120", e.ID, c)
		}
	}

	middle := apply(elements, Align(elements, Middle))
	for _, e := range middle {
		if c := e.Y + e.Height/2; c != 40 {
			t.Errorf("middle: %s center = %v, want 40", e.ID, c)
		}
	}
}

func TestAlignTooFew(t *testing.T) {
	if u := Align([]document.Element{el("a", 0, 0, 10, 10)}, Left); u != nil {
		t.Errorf("expected no-op, got %+v", u)
	}
	if u := Distribute([]document.Element{el("a", 0, 0, 10, 10), el("b", 50, 0, 10, 10)}, Horizontal); u != nil {
		t.Errorf("expected no-op, got %+v", u)
	}
}

func TestDistributeHorizontal(t *testing.T) {
	elements := []document.Element{
		el("right", 300, 0, 50, 10),
		el("left", 0, 0, 40, 10),
		el("mid1", 60, 0, 30, 10),
		el("mid2", 100, 0, 80, 10),
	}
	out := apply(elements, Distribute(elements, Horizontal))

	byID := map[string]document.Element{}
	for _, e := range out {
		byID[e.ID] = e
	}
	if byID["left"].X != 0 || byID["right"].X != 300 {
		t.Fatalf("endpoints moved: left=%v right=%v", byID["left"].X, byID["right"].X)
	}

	order := []document.Element{byID["left"], byID["mid1"], byID["mid2"], byID["right"]}
	gap := order[1].X - (order[0].X + order[0].Width)
	for i := 1; i < len(order)-1; i++ {
		g := order[i+1].X - (order[i].X + order[i].Width)
		if math.Abs(g-gap) > 1e-9 {
			t.Errorf("unequal gaps: %v vs %v", g, gap)
		}
	}
	if math.Abs(gap-(350-200)/3.0) > 1e-9 {
		t.Errorf("gap = %v", gap)
	}
}

func TestDistributeVerticalOnlyTouchesInterior(t *testing.T) {
	elements := []document.Element{el("a", 0, 0, 10, 10), el("b", 0, 15, 10, 10), el("c", 0, 100, 10, 10)}
	updates := Distribute(elements, Vertical)
	if len(updates) != 1 || updates[0].ID != "b" {
		t.Fatalf("expected a single update for b, got %+v", updates)
	}
	if *updates[0].Y != 50 {
		t.Errorf("b.y = %v, want 50", *updates[0].Y)
	}
	if updates[0].X != nil {
		t.Error("vertical distribution must not touch x")
	}
}

func TestParse(t *testing.T) {
	if _, err := ParseMode("diagonal"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if m, err := ParseMode("middle"); err != nil || m != Middle {
		t.Errorf("ParseMode(middle) = %v, %v", m, err)
	}
	if _, err := ParseAxis("z"); err == nil {
		t.Error("expected error for unknown axis")
	}
}
