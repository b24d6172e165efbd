package history

import (
	"testing"

	"github.com/popcanvas/popcanvas/internal/document"
)

func state(width float64) document.CanvasState {
	return document.CanvasState{Width: width, Elements: []document.Element{}}
}

func TestPushUndoRedo(t *testing.T) {
	s := New(0)
	s.Reset(state(0))
	s.Push(state(1))
	s.Push(state(2))

	if got, ok := s.Undo(); !ok || got.Width != 1 {
		t.Fatalf("undo: got %v ok=%v", got.Width, ok)
	}
	if got, ok := s.Undo(); !ok || got.Width != 0 {
		t.Fatalf("undo: got %v ok=%v", got.Width, ok)
	}
	if _, ok := s.Undo(); ok {
		t.Fatal("undo at the oldest entry must be a no-op")
	}
	if s.Index() != 0 {
		t.Fatalf("index moved past boundary: %d", s.Index())
	}
	if got, ok := s.Redo(); !ok || got.Width != 1 {
		t.Fatalf("redo: got %v ok=%v", got.Width, ok)
	}
}

func TestPushTruncatesFuture(t *testing.T) {
	s := New(0)
	s.Reset(state(0))
	s.Push(state(1))
	s.Push(state(2))
	s.Undo()
	s.Undo()
	s.Push(state(9))

	if s.Len() != 2 {
		t.Fatalf("expected 2 entries after truncation, got %d", s.Len())
	}
	if s.CanRedo() {
		t.Error("redo must be unavailable after a push")
	}
	cur, _ := s.Current()
	if cur.Width != 9 {
		t.Errorf("current = %v, want 9", cur.Width)
	}
}

func TestBoundedAtFifty(t *testing.T) {
	s := New(DefaultLimit)
	for i := 1; i <= 60; i++ {
		s.Push(state(float64(i)))
	}

	if s.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", s.Len())
	}
	if s.Index() != 49 {
		t.Fatalf("expected index 49, got %d", s.Index())
	}

	// Walk to the oldest retained entry, then redo to the end.
	for s.CanUndo() {
		s.Undo()
	}
	oldest, _ := s.Current()
	if oldest.Width != 11 {
		t.Errorf("oldest retained = %v, want 11", oldest.Width)
	}
	var last document.CanvasState
	for s.CanRedo() {
		last, _ = s.Redo()
	}
	if last.Width != 60 {
		t.Errorf("most recent = %v, want 60", last.Width)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := New(0)
	live := state(1)
	live.Elements = append(live.Elements, document.Element{Base: document.Base{ID: "a", X: 1}})
	s.Reset(live)

	live.Elements[0].X = 500
	cur, _ := s.Current()
	if cur.Elements[0].X != 1 {
		t.Error("history aliases the live state")
	}
}

func TestEmptyStack(t *testing.T) {
	s := New(3)
	if _, ok := s.Undo(); ok {
		t.Error("undo on empty stack")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo on empty stack")
	}
	if _, ok := s.Current(); ok {
		t.Error("current on empty stack")
	}
	s.Push(state(1))
	if s.Index() != 0 || s.Len() != 1 {
		t.Errorf("push on empty stack: index %d len %d", s.Index(), s.Len())
	}
}
