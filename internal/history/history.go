// Package history keeps a bounded, linear undo/redo stack of canvas snapshots.
package history

import "github.com/popcanvas/popcanvas/internal/document"

// DefaultLimit is the number of snapshots retained.
const DefaultLimit = 50

// Stack is a linear history of full canvas snapshots. While non-empty, index always
// points inside entries. Snapshots are cloned on the way in and on the way out.
type Stack struct {
	entries []document.CanvasState
	index   int
	limit   int
}

// New creates an empty stack. A non-positive limit uses DefaultLimit.
func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{index: -1, limit: limit}
}

// Reset discards all history and starts over from initial.
func (s *Stack) Reset(initial document.CanvasState) {
	s.entries = []document.CanvasState{initial.Clone()}
	s.index = 0
}

// Push records a new state. Any redo entries past the current index are discarded,
// and the oldest entries are dropped once the limit is exceeded.
func (s *Stack) Push(state document.CanvasState) {
	s.entries = append(s.entries[:s.index+1], state.Clone())
	s.index = len(s.entries) - 1

	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append([]document.CanvasState(nil), s.entries[over:]...)
		s.index -= over
	}
}

// Undo steps back one entry. At the oldest entry it is a no-op and returns false.
func (s *Stack) Undo() (document.CanvasState, bool) {
	if s.index <= 0 {
		return document.CanvasState{}, false
	}
	s.index--
	return s.entries[s.index].Clone(), true
}

// Redo steps forward one entry. At the newest entry it is a no-op and returns false.
func (s *Stack) Redo() (document.CanvasState, bool) {
	if s.index < 0 || s.index >= len(s.entries)-1 {
		return document.CanvasState{}, false
	}
	s.index++
	return s.entries[s.index].Clone(), true
}

// Current returns the snapshot at the current index.
func (s *Stack) Current() (document.CanvasState, bool) {
	if s.index < 0 {
		return document.CanvasState{}, false
	}
	return s.entries[s.index].Clone(), true
}

func (s *Stack) CanUndo() bool { return s.index > 0 }
func (s *Stack) CanRedo() bool { return s.index >= 0 && s.index < len(s.entries)-1 }
func (s *Stack) Len() int      { return len(s.entries) }
func (s *Stack) Index() int    { return s.index }
func (s *Stack) Limit() int    { return s.limit }
