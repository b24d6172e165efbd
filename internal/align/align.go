// Package align computes batched geometry updates that align or evenly distribute
// a multi-selection. It never mutates its input.
package align

import (
	"fmt"
	"math"
	"slices"

	"github.com/popcanvas/popcanvas/internal/document"
)

type Mode string

const (
	Left   Mode = "left"
	Center Mode = "center"
	Right  Mode = "right"
	Top    Mode = "top"
	Middle Mode = "middle"
	Bottom Mode = "bottom"
)

type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

const (
	MinAlign      = 2
	MinDistribute = 3
)

// ParseMode validates a user supplied alignment mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Left, Center, Right, Top, Middle, Bottom:
		return m, nil
	}
	return "", fmt.Errorf("unknown alignment %q", s)
}

// ParseAxis validates a user supplied distribution axis.
func ParseAxis(s string) (Axis, error) {
	switch a := Axis(s); a {
	case Horizontal, Vertical:
		return a, nil
	}
	return "", fmt.Errorf("unknown axis %q", s)
}

// span is an element projected onto one axis.
type span struct {
	id   string
	pos  float64
	size float64
}

func project(elements []document.Element, horizontal bool) []span {
	out := make([]span, len(elements))
	for i, e := range elements {
		if horizontal {
			out[i] = span{id: e.ID, pos: e.X, size: e.Width}
		} else {
			out[i] = span{id: e.ID, pos: e.Y, size: e.Height}
		}
	}
	return out
}

func patchAxis(id string, horizontal bool, v float64) document.Update {
	if horizontal {
		return document.Update{ID: id, Patch: document.Patch{X: document.Float(v)}}
	}
	return document.Update{ID: id, Patch: document.Patch{Y: document.Float(v)}}
}

// Align returns one update per element moving it onto the shared edge or center.
// Fewer than MinAlign elements yields nil.
func Align(elements []document.Element, mode Mode) []document.Update {
	if len(elements) < MinAlign {
		return nil
	}
	horizontal := mode == Left || mode == Center || mode == Right
	spans := project(elements, horizontal)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spans {
		lo = min(lo, s.pos)
		hi = max(hi, s.pos+s.size)
	}
	mid := (lo + hi) / 2

	updates := make([]document.Update, 0, len(spans))
	for _, s := range spans {
		var v float64
		switch mode {
		case Left, Top:
			v = lo
		case Right, Bottom:
			v = hi - s.size
		case Center, Middle:
			v = mid - s.size/2
		default:
			return nil
		}
		updates = append(updates, patchAxis(s.id, horizontal, v))
	}
	return updates
}

// Distribute spaces elements evenly between the two outermost ones along axis. The
// endpoints keep their positions; only interior elements receive updates. Fewer
// than MinDistribute elements yields nil.
func Distribute(elements []document.Element, axis Axis) []document.Update {
	if len(elements) < MinDistribute {
		return nil
	}
	horizontal := axis == Horizontal
	spans := project(elements, horizontal)
	slices.SortStableFunc(spans, func(a, b span) int {
		switch {
		case a.pos < b.pos:
			return -1
		case a.pos > b.pos:
			return 1
		}
		return 0
	})

	first, last := spans[0], spans[len(spans)-1]
	total := 0.0
	for _, s := range spans {
		total += s.size
	}
	spacing := (last.pos + last.size - first.pos - total) / float64(len(spans)-1)

	updates := make([]document.Update, 0, len(spans)-2)
	current := first.pos + first.size + spacing
	for _, s := range spans[1 : len(spans)-1] {
		updates = append(updates, patchAxis(s.id, horizontal, current))
		current += s.size + spacing
	}
	return updates
}
