package toolbox

import (
	"encoding/json"
	"net/http"

	"github.com/popcanvas/popcanvas/internal/document"
)

// Entry is one palette slot as served to clients.
type Entry struct {
	Type document.ElementType `json:"type"`
	Preset
}

// Entries lists the current presets in palette order.
func (t *Toolbox) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, len(document.ElementTypes))
	for _, et := range document.ElementTypes {
		if p, ok := t.presets[et]; ok {
			out = append(out, Entry{Type: et, Preset: p})
		}
	}
	return out
}

// ServeHTTP handles GET /toolbox.
func (t *Toolbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(map[string]any{"elements": t.Entries()})
}
