// Package toolbox supplies fully formed new elements with default sizes and props.
package toolbox

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/typeid"
)

// Preset is the default geometry and payload for one element type.
type Preset struct {
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Props  json.RawMessage `json:"props,omitempty"`
}

var builtin = map[document.ElementType]Preset{
	document.ElementText: {
		Width: 200, Height: 40,
		Props: json.RawMessage(`{"content":"Your text here","fontSize":16,"color":"#111111","align":"left"}`),
	},
	document.ElementImage: {
		Width: 200, Height: 150,
		Props: json.RawMessage(`{"src":"","fit":"cover"}`),
	},
	document.ElementForm: {
		Width: 300, Height: 160,
		Props: json.RawMessage(`{"fields":[{"id":"email","type":"email","label":"Email","placeholder":"you@example.com","required":true}],"submitLabel":"Subscribe"}`),
	},
	document.ElementTimer: {
		Width: 240, Height: 60,
		Props: json.RawMessage(`{"durationSeconds":600,"label":"Offer ends in"}`),
	},
	document.ElementHTML: {
		Width: 300, Height: 120,
		Props: json.RawMessage(`{"html":"<div></div>"}`),
	},
	document.ElementMultiStepForm: {
		Width: 320, Height: 240,
		Props: json.RawMessage(`{"steps":[{"title":"Step 1","fields":[{"id":"email","type":"email","label":"Email","required":true}]}],"submitLabel":"Next"}`),
	},
}

// Toolbox hands out new elements. Presets may be overridden from a JSON file.
type Toolbox struct {
	mu      sync.RWMutex
	presets map[document.ElementType]Preset
	newID   func() string
}

// New creates a toolbox with the built-in presets.
func New() *Toolbox {
	t := &Toolbox{newID: typeid.NewElementID}
	t.reset()
	return t
}

func (t *Toolbox) reset() {
	presets := make(map[document.ElementType]Preset, len(builtin))
	for k, v := range builtin {
		presets[k] = v
	}
	t.presets = presets
}

// NewElement returns a fresh element of the given type at the origin. The canvas
// assigns position and zIndex.
func (t *Toolbox) NewElement(et document.ElementType) (document.Element, error) {
	t.mu.RLock()
	preset, ok := t.presets[et]
	t.mu.RUnlock()
	if !ok {
		return document.Element{}, fmt.Errorf("%w: %q", document.ErrUnknownElementType, et)
	}

	el, err := document.NewElement(t.newID(), et)
	if err != nil {
		return document.Element{}, err
	}
	el.Width = preset.Width
	el.Height = preset.Height
	if len(preset.Props) > 0 {
		if props, err := document.DecodeProps(et, preset.Props); err == nil {
			el.Props = props
		} else {
			slog.Warn("invalid toolbox preset props", "type", et, "error", err)
		}
	}
	return el, nil
}

// Preset returns the current preset for a type.
func (t *Toolbox) Preset(et document.ElementType) (Preset, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.presets[et]
	return p, ok
}

// LoadFile merges presets from a JSON object keyed by element type over the
// built-ins. Entries for unknown types or with sizes under the minimum are skipped.
func (t *Toolbox) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read presets: %w", err)
	}
	var overrides map[document.ElementType]Preset
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse presets: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
	for et, p := range overrides {
		if !et.Valid() {
			slog.Warn("skipping preset for unknown element type", "type", et, "path", path)
			continue
		}
		base := t.presets[et]
		if p.Width > 0 {
			base.Width = p.Width
		}
		if p.Height > 0 {
			base.Height = p.Height
		}
		if len(p.Props) > 0 {
			base.Props = p.Props
		}
		t.presets[et] = base
	}
	slog.Info("loaded toolbox presets", "path", path, "overrides", len(overrides))
	return nil
}
