package collab

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/popcanvas/popcanvas/internal/align"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/engine"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrElementNotFound  = errors.New("element not found")
	ErrDuplicateElement = errors.New("element already exists")
	ErrInvalidOperation = errors.New("invalid operation")
)

// DocumentState holds the authoritative canvas for a room. Operations are applied
// through an engine so they follow the same rules as local edits.
type DocumentState struct {
	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	dirty     bool
}

// NewDocumentState wraps an initial canvas.
func NewDocumentState(canvas *document.CanvasState, historyLimit int) *DocumentState {
	eng := engine.New(engine.WithHistoryLimit(historyLimit))
	eng.Load(*canvas)
	return &DocumentState{engine: eng}
}

// Snapshot returns a copy of the canvas and the sequence number it reflects.
func (ds *DocumentState) Snapshot() (document.CanvasState, int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.engine.State(), ds.serverSeq
}

// TakeDirty returns a copy of the canvas when it changed since the last call.
func (ds *DocumentState) TakeDirty() (document.CanvasState, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return document.CanvasState{}, false
	}
	ds.dirty = false
	return ds.engine.State(), true
}

// MarkDirty flags the canvas for the next save, used when a save fails.
func (ds *DocumentState) MarkDirty() {
	ds.mu.Lock()
	ds.dirty = true
	ds.mu.Unlock()
}

// ApplyOperation applies op and returns the new server sequence.
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyLocked(op); err != nil {
		return 0, err
	}
	ds.serverSeq++
	ds.dirty = true
	return ds.serverSeq, nil
}

func (ds *DocumentState) applyLocked(op Operation) error {
	e := ds.engine
	switch op.Type {
	case OpElementUpdate:
		if len(op.Updates) == 0 {
			return fmt.Errorf("%w: no updates", ErrInvalidOperation)
		}
		for _, u := range op.Updates {
			if err := ds.requireElement(u.ID); err != nil {
				return err
			}
		}
		if !e.UpdateElements(op.Updates) {
			return fmt.Errorf("%w: no changes", ErrInvalidOperation)
		}
	case OpElementAdd:
		if op.Element == nil || op.Element.ID == "" {
			return fmt.Errorf("%w: element with id required", ErrInvalidOperation)
		}
		if _, ok := e.Element(op.Element.ID); ok {
			return fmt.Errorf("%w: %s", ErrDuplicateElement, op.Element.ID)
		}
		if e.AddElement(*op.Element) == "" {
			return fmt.Errorf("%w: %q", document.ErrUnknownElementType, op.Element.Type)
		}
	case OpElementDelete:
		if len(e.DeleteElements(op.ElementIDs)) == 0 {
			return ErrElementNotFound
		}
	case OpElementPin:
		el, ok := e.Element(op.ElementID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrElementNotFound, op.ElementID)
		}
		pinned := !el.IsPinned
		if op.Pinned != nil {
			pinned = *op.Pinned
		}
		e.UpdateElement(el.ID, document.Patch{IsPinned: document.Bool(pinned)})
	case OpLayerRaise, OpLayerLower, OpLayerFront, OpLayerBack:
		if err := ds.requireElement(op.ElementID); err != nil {
			return err
		}
		switch op.Type {
		case OpLayerRaise:
			e.Raise(op.ElementID)
		case OpLayerLower:
			e.Lower(op.ElementID)
		case OpLayerFront:
			e.BringToFront(op.ElementID)
		default:
			e.SendToBack(op.ElementID)
		}
	case OpAlign:
		mode, err := align.ParseMode(op.Mode)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		if err := ds.requireElements(op.ElementIDs, align.MinAlign); err != nil {
			return err
		}
		e.AlignElements(op.ElementIDs, mode)
	case OpDistribute:
		axis, err := align.ParseAxis(op.Mode)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		if err := ds.requireElements(op.ElementIDs, align.MinDistribute); err != nil {
			return err
		}
		e.DistributeElements(op.ElementIDs, axis)
	case OpCanvasBackground:
		if op.Background == nil {
			return fmt.Errorf("%w: background required", ErrInvalidOperation)
		}
		e.SetBackground(*op.Background)
	case OpCanvasLayout:
		if document.LayoutFor(op.Layout).Type != op.Layout {
			return fmt.Errorf("%w: unknown layout %q", ErrInvalidOperation, op.Layout)
		}
		e.SetLayout(op.Layout)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
	return nil
}

func (ds *DocumentState) requireElement(id string) error {
	if _, ok := ds.engine.Element(id); !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	return nil
}

func (ds *DocumentState) requireElements(ids []string, minCount int) error {
	unique := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(unique) < minCount {
		return fmt.Errorf("%w: need at least %d elements", ErrInvalidOperation, minCount)
	}
	for _, id := range unique {
		if err := ds.requireElement(id); err != nil {
			return err
		}
	}
	return nil
}
