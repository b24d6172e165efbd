// Package layers reorders elements by swapping zIndex values with their nearest
// neighbour, so a raise or lower touches at most two elements.
package layers

import "github.com/popcanvas/popcanvas/internal/document"

// Raise swaps the target's zIndex with the element holding the smallest zIndex
// strictly greater than it. Returns nil when the target is missing or topmost.
func Raise(elements []document.Element, id string) []document.Update {
	return swap(elements, id, true)
}

// Lower swaps the target's zIndex with the element holding the largest zIndex
// strictly less than it. Returns nil when the target is missing or bottommost.
func Lower(elements []document.Element, id string) []document.Update {
	return swap(elements, id, false)
}

func swap(elements []document.Element, id string, up bool) []document.Update {
	target := find(elements, id)
	if target < 0 {
		return nil
	}
	z := elements[target].ZIndex

	neighbour := -1
	for i, e := range elements {
		if i == target {
			continue
		}
		if up && e.ZIndex > z && (neighbour < 0 || e.ZIndex < elements[neighbour].ZIndex) {
			neighbour = i
		}
		if !up && e.ZIndex < z && (neighbour < 0 || e.ZIndex > elements[neighbour].ZIndex) {
			neighbour = i
		}
	}
	if neighbour < 0 {
		return nil
	}

	return []document.Update{
		{ID: elements[target].ID, Patch: document.Patch{ZIndex: document.Int(elements[neighbour].ZIndex)}},
		{ID: elements[neighbour].ID, Patch: document.Patch{ZIndex: document.Int(z)}},
	}
}

// BringToFront moves the target above every other element.
func BringToFront(elements []document.Element, id string) []document.Update {
	target := find(elements, id)
	if target < 0 {
		return nil
	}
	top := elements[target].ZIndex
	strictlyTop := true
	for i, e := range elements {
		if i != target && e.ZIndex >= top {
			top = max(top, e.ZIndex)
			strictlyTop = false
		}
	}
	if strictlyTop {
		return nil
	}
	return []document.Update{{ID: id, Patch: document.Patch{ZIndex: document.Int(top + 1)}}}
}

// SendToBack moves the target below every other element.
func SendToBack(elements []document.Element, id string) []document.Update {
	target := find(elements, id)
	if target < 0 {
		return nil
	}
	bottom := elements[target].ZIndex
	strictlyBottom := true
	for i, e := range elements {
		if i != target && e.ZIndex <= bottom {
			bottom = min(bottom, e.ZIndex)
			strictlyBottom = false
		}
	}
	if strictlyBottom {
		return nil
	}
	return []document.Update{{ID: id, Patch: document.Patch{ZIndex: document.Int(bottom - 1)}}}
}

func find(elements []document.Element, id string) int {
	for i := range elements {
		if elements[i].ID == id {
			return i
		}
	}
	return -1
}
