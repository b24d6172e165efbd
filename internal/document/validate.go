package document

import (
	"fmt"

	"github.com/popcanvas/popcanvas/internal/geometry"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a canvas.
type Issue struct {
	Severity  Severity `json:"severity"`
	ElementID string   `json:"elementId,omitempty"`
	Message   string   `json:"message"`
}

func (i Issue) String() string {
	if i.ElementID == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.ElementID, i.Message)
}

// Validate reports structural errors (missing or duplicate ids, unknown types,
// props of the wrong kind, undersized elements) and layout warnings (elements
// outside the canvas, shared zIndex).
func Validate(s *CanvasState) []Issue {
	var issues []Issue
	errorf := func(id, format string, args ...any) {
		issues = append(issues, Issue{SeverityError, id, fmt.Sprintf(format, args...)})
	}
	warnf := func(id, format string, args ...any) {
		issues = append(issues, Issue{SeverityWarning, id, fmt.Sprintf(format, args...)})
	}

	bounds := geometry.Rect{Width: s.Width, Height: s.Height}
	seen := make(map[string]bool, len(s.Elements))
	zOwner := make(map[int]string, len(s.Elements))
	for i, el := range s.Elements {
		if el.ID == "" {
			errorf("", "element %d has no id", i)
			continue
		}
		if seen[el.ID] {
			errorf(el.ID, "duplicate id")
		}
		seen[el.ID] = true

		if !el.Type.Valid() {
			errorf(el.ID, "unknown type %q", el.Type)
		} else if el.Props == nil || el.Props.Kind() != el.Type {
			errorf(el.ID, "props do not match type %s", el.Type)
		}
		if el.Width < geometry.MinSize || el.Height < geometry.MinSize {
			errorf(el.ID, "size %gx%g is below the %g minimum", el.Width, el.Height, geometry.MinSize)
		}

		r := el.Rect()
		if !bounds.Intersects(r) {
			warnf(el.ID, "entirely outside the %gx%g canvas", s.Width, s.Height)
		} else if r.X < 0 || r.Y < 0 || r.Right() > s.Width || r.Bottom() > s.Height {
			warnf(el.ID, "extends past the canvas edge")
		}
		if other, ok := zOwner[el.ZIndex]; ok {
			warnf(el.ID, "shares zIndex %d with %s", el.ZIndex, other)
		} else {
			zOwner[el.ZIndex] = el.ID
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
