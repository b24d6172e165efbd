// Package design manages a user's popup designs and their saved canvas snapshots.
package design

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/store"
	"github.com/popcanvas/popcanvas/internal/typeid"
)

var (
	ErrNotFound      = errors.New("design not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidCanvas = errors.New("invalid canvas")
)

// PlaygroundID is the shared demo design. It lives in memory only and anyone may
// join it.
const PlaygroundID = "dsg_playground"

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

type Design struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	OwnerID   string              `json:"ownerId"`
	Layout    document.LayoutType `json:"layout"`
	CreatedAt string              `json:"createdAt"`
	UpdatedAt string              `json:"updatedAt"`
}

type Snapshot struct {
	Version int                  `json:"version"`
	Canvas  document.CanvasState `json:"canvas"`
}

// Create stores a new design and seeds version 1 with a blank canvas.
func (s *Service) Create(ctx context.Context, ownerID, name string, layout document.LayoutType) (*Design, error) {
	canvas := document.NewBlankCanvas(layout)
	d, err := s.store.CreateDesign(ctx, store.Design{
		ID:      typeid.NewDesignID(),
		OwnerID: ownerID,
		Name:    name,
		Layout:  string(canvas.Layout.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("create design: %w", err)
	}

	data, err := json.Marshal(canvas)
	if err != nil {
		return nil, fmt.Errorf("marshal blank canvas: %w", err)
	}
	if _, err := s.store.SaveSnapshot(ctx, d.ID, data); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}
	return toDesign(d), nil
}

func (s *Service) Get(ctx context.Context, designID, userID string) (*Design, error) {
	d, err := s.owned(ctx, designID, userID)
	if err != nil {
		return nil, err
	}
	return toDesign(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Design, error) {
	rows, err := s.store.ListDesigns(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	designs := make([]Design, len(rows))
	for i, d := range rows {
		designs[i] = *toDesign(d)
	}
	return designs, nil
}

func (s *Service) Rename(ctx context.Context, designID, userID, name string) (*Design, error) {
	if _, err := s.owned(ctx, designID, userID); err != nil {
		return nil, err
	}
	d, err := s.store.RenameDesign(ctx, designID, name)
	if err != nil {
		return nil, mapStoreError(err, "rename design")
	}
	return toDesign(d), nil
}

func (s *Service) Delete(ctx context.Context, designID, userID string) error {
	if _, err := s.owned(ctx, designID, userID); err != nil {
		return err
	}
	return mapStoreError(s.store.DeleteDesign(ctx, designID), "delete design")
}

// LatestSnapshot returns the newest saved canvas of a design the user owns.
func (s *Service) LatestSnapshot(ctx context.Context, designID, userID string) (*Snapshot, error) {
	if _, err := s.owned(ctx, designID, userID); err != nil {
		return nil, err
	}
	snap, err := s.store.LatestSnapshot(ctx, designID)
	if err != nil {
		return nil, mapStoreError(err, "get snapshot")
	}
	canvas, err := document.Decode(snap.Canvas)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.Version, err)
	}
	return &Snapshot{Version: snap.Version, Canvas: *canvas}, nil
}

// SaveSnapshot validates raw as a canvas and stores it as the next version.
func (s *Service) SaveSnapshot(ctx context.Context, designID, userID string, raw json.RawMessage) (*Snapshot, error) {
	if _, err := s.owned(ctx, designID, userID); err != nil {
		return nil, err
	}
	canvas, err := document.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCanvas, err)
	}
	version, err := s.saveCanvas(ctx, designID, canvas)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Version: version, Canvas: *canvas}, nil
}

// CanAccess reports whether userID may open a live session on the design.
func (s *Service) CanAccess(ctx context.Context, designID, userID string) error {
	if designID == PlaygroundID {
		return nil
	}
	_, err := s.owned(ctx, designID, userID)
	return err
}

// LoadCanvas returns the latest canvas of a design without an ownership check.
// The playground design is rebuilt from the sample canvas.
func (s *Service) LoadCanvas(ctx context.Context, designID string) (*document.CanvasState, error) {
	if designID == PlaygroundID {
		return document.NewSampleCanvas(), nil
	}
	snap, err := s.store.LatestSnapshot(ctx, designID)
	if err != nil {
		return nil, mapStoreError(err, "get snapshot")
	}
	return document.Decode(snap.Canvas)
}

// StoreCanvas saves a canvas from a live session. The playground is never saved.
func (s *Service) StoreCanvas(ctx context.Context, designID string, canvas *document.CanvasState) error {
	if designID == PlaygroundID {
		return nil
	}
	_, err := s.saveCanvas(ctx, designID, canvas)
	return err
}

func (s *Service) saveCanvas(ctx context.Context, designID string, canvas *document.CanvasState) (int, error) {
	data, err := json.Marshal(canvas)
	if err != nil {
		return 0, fmt.Errorf("marshal canvas: %w", err)
	}
	snap, err := s.store.SaveSnapshot(ctx, designID, data)
	if err != nil {
		return 0, mapStoreError(err, "save snapshot")
	}
	return snap.Version, nil
}

func (s *Service) owned(ctx context.Context, designID, userID string) (store.Design, error) {
	d, err := s.store.GetDesign(ctx, designID)
	if err != nil {
		return store.Design{}, mapStoreError(err, "get design")
	}
	if d.OwnerID != userID {
		return store.Design{}, ErrForbidden
	}
	return d, nil
}

func mapStoreError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func toDesign(d store.Design) *Design {
	return &Design{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		Layout:    document.LayoutType(d.Layout),
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
