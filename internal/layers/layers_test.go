package layers

import (
	"testing"

	"github.com/popcanvas/popcanvas/internal/document"
)

func stack(zs map[string]int, order ...string) []document.Element {
	out := make([]document.Element, 0, len(order))
	for _, id := range order {
		out = append(out, document.Element{Base: document.Base{ID: id, ZIndex: zs[id]}})
	}
	return out
}

func applyAll(elements []document.Element, updates []document.Update) {
	for _, u := range updates {
		for i := range elements {
			if elements[i].ID == u.ID {
				u.Apply(&elements[i])
			}
		}
	}
}

func zOf(elements []document.Element, id string) int {
	for _, e := range elements {
		if e.ID == id {
			return e.ZIndex
		}
	}
	return -999
}

func TestRaiseSwapsWithNearestAbove(t *testing.T) {
	// Sparse, unordered zIndex values.
	elements := stack(map[string]int{"a": 1, "b": 10, "c": 4, "d": 7}, "a", "b", "c", "d")

	applyAll(elements, Raise(elements, "c"))
	if zOf(elements, "c") != 7 || zOf(elements, "d") != 4 {
		t.Errorf("expected c=7 d=4, got c=%d d=%d", zOf(elements, "c"), zOf(elements, "d"))
	}
	if zOf(elements, "b") != 10 || zOf(elements, "a") != 1 {
		t.Error("unrelated elements changed")
	}
}

func TestLowerSwapsWithNearestBelow(t *testing.T) {
	elements := stack(map[string]int{"a": 1, "b": 10, "c": 4}, "a", "b", "c")
	applyAll(elements, Lower(elements, "b"))
	if zOf(elements, "b") != 4 || zOf(elements, "c") != 10 {
		t.Errorf("expected b=4 c=10, got b=%d c=%d", zOf(elements, "b"), zOf(elements, "c"))
	}
}

func TestRaiseLowerSymmetry(t *testing.T) {
	zs := map[string]int{"a": 2, "b": 5, "c": 9}
	elements := stack(zs, "a", "b", "c")

	applyAll(elements, Raise(elements, "b"))
	applyAll(elements, Lower(elements, "b"))

	for id, z := range zs {
		if zOf(elements, id) != z {
			t.Errorf("%s: zIndex %d, want %d", id, zOf(elements, id), z)
		}
	}
}

func TestBoundaryNoOps(t *testing.T) {
	elements := stack(map[string]int{"a": 1, "b": 2}, "a", "b")
	if u := Raise(elements, "b"); u != nil {
		t.Errorf("raise topmost: %+v", u)
	}
	if u := Lower(elements, "a"); u != nil {
		t.Errorf("lower bottommost: %+v", u)
	}
	if u := Raise(elements, "missing"); u != nil {
		t.Errorf("raise missing: %+v", u)
	}
	if u := BringToFront(elements, "b"); u != nil {
		t.Errorf("front of topmost: %+v", u)
	}
	if u := SendToBack(elements, "a"); u != nil {
		t.Errorf("back of bottommost: %+v", u)
	}
}

func TestFrontAndBack(t *testing.T) {
	elements := stack(map[string]int{"a": 1, "b": 2, "c": 3}, "a", "b", "c")

	applyAll(elements, BringToFront(elements, "a"))
	if zOf(elements, "a") != 4 {
		t.Errorf("front: a=%d, want 4", zOf(elements, "a"))
	}
	applyAll(elements, SendToBack(elements, "c"))
	if zOf(elements, "c") != 1 {
		t.Errorf("back: c=%d, want 1", zOf(elements, "c"))
	}
}
