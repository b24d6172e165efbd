package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/popcanvas/popcanvas/internal/geometry"
)

var ErrUnknownElementType = errors.New("unknown element type")

type ElementType string

const (
	ElementText          ElementType = "text"
	ElementImage         ElementType = "image"
	ElementForm          ElementType = "form"
	ElementTimer         ElementType = "timer"
	ElementHTML          ElementType = "html"
	ElementMultiStepForm ElementType = "multi-step-form"
)

// ElementTypes lists every placeable variant in toolbox order.
var ElementTypes = []ElementType{
	ElementText, ElementImage, ElementForm, ElementTimer, ElementHTML, ElementMultiStepForm,
}

// Valid reports whether t names a known variant.
func (t ElementType) Valid() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Base holds the geometry shared by every element variant.
type Base struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	ZIndex   int         `json:"zIndex"`
	IsPinned bool        `json:"isPinned"`
}

// Rect returns the element's bounding box in logical units.
func (b Base) Rect() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Element is one placed object on the canvas. Props carries the variant payload and
// always matches Base.Type.
type Element struct {
	Base
	Props Props
}

// NewElement creates an element of the given type with empty props.
func NewElement(id string, t ElementType) (Element, error) {
	props, err := emptyProps(t)
	if err != nil {
		return Element{}, err
	}
	return Element{Base: Base{ID: id, Type: t}, Props: props}, nil
}

// Clone returns a deep copy.
func (e Element) Clone() Element {
	out := e
	if e.Props != nil {
		out.Props = e.Props.clone()
	}
	return out
}

type elementJSON struct {
	Base
	Props json.RawMessage `json:"props,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	props := e.Props
	if props == nil {
		var err error
		if props, err = emptyProps(e.Type); err != nil {
			return nil, err
		}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal %s props: %w", e.Type, err)
	}
	return json.Marshal(elementJSON{Base: e.Base, Props: raw})
}

// UnmarshalJSON decodes an element. Unknown types are rejected; malformed props
// degrade to the empty payload of the variant.
func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	props, err := emptyProps(in.Type)
	if err != nil {
		return fmt.Errorf("element %q: %w", in.ID, err)
	}
	if len(in.Props) > 0 {
		if decoded, err := decodeProps(in.Type, in.Props); err == nil {
			props = decoded
		}
	}
	e.Base = in.Base
	e.Props = props
	return nil
}

// Patch is a partial element update. Nil fields are left untouched.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`
	IsPinned *bool    `json:"isPinned,omitempty"`
	Props    Props    `json:"-"`
}

// Empty reports whether applying the patch would change nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.ZIndex == nil && p.IsPinned == nil && p.Props == nil
}

// GeometryPatch builds a patch that sets all four geometry fields.
func GeometryPatch(r geometry.Rect) Patch {
	return Patch{X: Float(r.X), Y: Float(r.Y), Width: Float(r.Width), Height: Float(r.Height)}
}

// Apply writes the set fields of p onto e. Props of a different variant are ignored.
func (p Patch) Apply(e *Element) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.IsPinned != nil {
		e.IsPinned = *p.IsPinned
	}
	if p.Props == nil {
		return
	}
	props := p.Props
	if raw, ok := props.(rawProps); ok {
		decoded, err := decodeProps(e.Type, raw)
		if err != nil {
			return
		}
		props = decoded
	}
	if props.Kind() == e.Type {
		e.Props = props.clone()
	}
}

// Update targets one element with a patch. Batched updates are slices of these.
type Update struct {
	ID string `json:"id"`
	Patch
}

type updateJSON struct {
	ID string `json:"id"`
	Patch
	Props json.RawMessage `json:"props,omitempty"`
}

func (u Update) MarshalJSON() ([]byte, error) {
	out := updateJSON{ID: u.ID, Patch: u.Patch}
	if u.Props != nil {
		raw, err := json.Marshal(u.Props)
		if err != nil {
			return nil, err
		}
		out.Props = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an update. Props are kept raw until the patch is applied and
// the target element type is known.
func (u *Update) UnmarshalJSON(data []byte) error {
	var in updateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	u.ID = in.ID
	u.Patch = in.Patch
	if len(in.Props) > 0 {
		u.Props = rawProps(in.Props)
	}
	return nil
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
