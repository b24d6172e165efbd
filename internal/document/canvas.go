// Package document defines the canvas state of one popup or landing-page design and
// the tagged element variants placed on it.
package document

import (
	"encoding/json"

	"github.com/popcanvas/popcanvas/internal/geometry"
)

type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundImage    BackgroundType = "image"
	BackgroundGradient BackgroundType = "gradient"
)

// Background is the canvas fill; Value is a color, an image URL or a CSS gradient
// depending on Type.
type Background struct {
	Type  BackgroundType `json:"type"`
	Value string         `json:"value"`
}

type LayoutType string

const (
	LayoutModal      LayoutType = "modal"
	LayoutSlideIn    LayoutType = "slide-in"
	LayoutBanner     LayoutType = "banner"
	LayoutFullscreen LayoutType = "fullscreen"
)

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout is the container archetype. It controls chrome and canvas dimensions but
// never element geometry.
type Layout struct {
	Type       LayoutType `json:"type"`
	Dimensions Size       `json:"dimensions"`
	Position   string     `json:"position,omitempty"`
}

var layouts = map[LayoutType]Layout{
	LayoutModal:      {Type: LayoutModal, Dimensions: Size{500, 400}, Position: "center"},
	LayoutSlideIn:    {Type: LayoutSlideIn, Dimensions: Size{380, 300}, Position: "bottom-right"},
	LayoutBanner:     {Type: LayoutBanner, Dimensions: Size{1200, 120}, Position: "top"},
	LayoutFullscreen: {Type: LayoutFullscreen, Dimensions: Size{1280, 720}, Position: "center"},
}

// LayoutFor returns the preset for a layout type, falling back to modal.
func LayoutFor(t LayoutType) Layout {
	if l, ok := layouts[t]; ok {
		return l
	}
	return layouts[LayoutModal]
}

type Overlay struct {
	Show    bool    `json:"show"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type CloseButton struct {
	Show     bool   `json:"show"`
	Position string `json:"position"`
}

// CanvasState is the single source of truth for one design.
type CanvasState struct {
	Width         float64         `json:"width"`
	Height        float64         `json:"height"`
	Background    Background      `json:"background"`
	Elements      []Element       `json:"elements"`
	Zoom          float64         `json:"zoom"`
	ShowGrid      bool            `json:"showGrid"`
	GridSize      float64         `json:"gridSize"`
	Layout        Layout          `json:"layout"`
	PreviewDevice geometry.Device `json:"previewDevice"`
	Overlay       Overlay         `json:"overlay"`
	CloseButton   CloseButton     `json:"closeButton"`
}

// SnapEnabled reports whether interaction math quantizes to the grid.
func (s *CanvasState) SnapEnabled() bool {
	return s.ShowGrid
}

// SetLayout switches the layout and resizes the canvas to its dimensions.
func (s *CanvasState) SetLayout(t LayoutType) {
	s.Layout = LayoutFor(t)
	s.Width = s.Layout.Dimensions.Width
	s.Height = s.Layout.Dimensions.Height
}

// Index returns the position of the element in the sequence, or -1.
func (s *CanvasState) Index(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Element returns a pointer into the element list, or nil.
func (s *CanvasState) Element(id string) *Element {
	if i := s.Index(id); i >= 0 {
		return &s.Elements[i]
	}
	return nil
}

// MaxZIndex returns the highest zIndex, or 0 for an empty canvas.
func (s *CanvasState) MaxZIndex() int {
	if len(s.Elements) == 0 {
		return 0
	}
	m := s.Elements[0].ZIndex
	for _, e := range s.Elements[1:] {
		m = max(m, e.ZIndex)
	}
	return m
}

// MinZIndex returns the lowest zIndex, or 0 for an empty canvas.
func (s *CanvasState) MinZIndex() int {
	if len(s.Elements) == 0 {
		return 0
	}
	m := s.Elements[0].ZIndex
	for _, e := range s.Elements[1:] {
		m = min(m, e.ZIndex)
	}
	return m
}

// Clone returns a deep copy that shares nothing with s.
func (s CanvasState) Clone() CanvasState {
	out := s
	if s.Elements != nil {
		out.Elements = make([]Element, len(s.Elements))
		for i, e := range s.Elements {
			out.Elements[i] = e.Clone()
		}
	}
	return out
}

// Normalize fills zero-valued view settings with defaults after decoding.
func (s *CanvasState) Normalize() {
	if s.Layout.Type == "" {
		s.Layout = LayoutFor(LayoutModal)
	}
	if s.Width <= 0 || s.Height <= 0 {
		s.Width = s.Layout.Dimensions.Width
		s.Height = s.Layout.Dimensions.Height
	}
	if s.Zoom <= 0 {
		s.Zoom = 1
	}
	if s.GridSize <= 0 {
		s.GridSize = DefaultGridSize
	}
	if s.PreviewDevice == "" {
		s.PreviewDevice = geometry.DeviceDesktop
	}
	if s.Background.Type == "" {
		s.Background = Background{Type: BackgroundColor, Value: "#ffffff"}
	}
	if s.Elements == nil {
		s.Elements = []Element{}
	}
}

// Decode parses a persisted canvas state and normalizes it.
func Decode(data []byte) (*CanvasState, error) {
	var s CanvasState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

const DefaultGridSize = 10

// NewBlankCanvas creates an empty canvas for a layout.
func NewBlankCanvas(layout LayoutType) *CanvasState {
	s := &CanvasState{
		Background:    Background{Type: BackgroundColor, Value: "#ffffff"},
		Elements:      []Element{},
		Zoom:          1,
		ShowGrid:      true,
		GridSize:      DefaultGridSize,
		PreviewDevice: geometry.DeviceDesktop,
		Overlay:       Overlay{Show: true, Color: "#000000", Opacity: 0.5},
		CloseButton:   CloseButton{Show: true, Position: "top-right"},
	}
	s.SetLayout(layout)
	return s
}
