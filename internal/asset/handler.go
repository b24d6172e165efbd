// Package asset stores uploaded images and turns them into image elements.
package asset

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/geometry"
	"github.com/popcanvas/popcanvas/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadResponse is returned from the upload endpoint. Element is an image element
// sized to fit the target canvas, centered, ready to be added.
type UploadResponse struct {
	ID      string           `json:"id"`
	URL     string           `json:"url"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Name    string           `json:"name"`
	Element document.Element `json:"element"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir string // directory to store asset files
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir}
}

// FitSize scales a natural image size down to fit within max while keeping its
// aspect ratio. Images that already fit keep their size. Both sides are floored at
// geometry.MinSize.
func FitSize(width, height, maxWidth, maxHeight float64) (float64, float64) {
	if width <= 0 || height <= 0 {
		return geometry.MinSize, geometry.MinSize
	}
	scale := 1.0
	if maxWidth > 0 && width > maxWidth {
		scale = maxWidth / width
	}
	if maxHeight > 0 && height*scale > maxHeight {
		scale = maxHeight / height
	}
	return max(geometry.MinSize, width*scale), max(geometry.MinSize, height*scale)
}

// Upload handles POST /assets/upload (multipart form with a "file" field and
// optional "canvasWidth"/"canvasHeight" fields).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}
	bounds := img.Bounds()

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	if err := h.writePNG(filename, img); err != nil {
		slog.Error("save asset", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	canvas := document.LayoutFor(document.LayoutModal).Dimensions
	canvasW := formFloat(r, "canvasWidth", canvas.Width)
	canvasH := formFloat(r, "canvasHeight", canvas.Height)

	url := fmt.Sprintf("/assets/%s", filename)
	el, _ := document.NewElement(typeid.NewElementID(), document.ElementImage)
	el.Width, el.Height = FitSize(float64(bounds.Dx()), float64(bounds.Dy()), canvasW, canvasH)
	el.X = max(0, (canvasW-el.Width)/2)
	el.Y = max(0, (canvasH-el.Height)/2)
	el.Props = document.ImageProps{Src: url, Alt: header.Filename, Fit: "contain"}

	resp := UploadResponse{
		ID:      assetID,
		URL:     url,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Name:    header.Filename,
		Element: el,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) writePNG(filename string, img image.Image) error {
	path := filepath.Join(h.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(r.FormValue(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(h.dir, assetID+".png")); err != nil {
		return fmt.Errorf("asset not found: %s", assetID)
	}
	return nil
}
