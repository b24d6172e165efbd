package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/popcanvas/popcanvas/internal/document"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		maxW, maxH   float64
		wantW, wantH float64
	}{
		{"fits already", 100, 50, 500, 400, 100, 50},
		{"too wide", 1000, 500, 500, 400, 500, 250},
		{"too tall", 200, 800, 500, 400, 100, 400},
		{"both", 2000, 2000, 500, 400, 400, 400},
		{"tiny floors", 4, 2, 500, 400, 20, 20},
		{"degenerate", 0, 10, 500, 400, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitSize = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="hero.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", pngBytes(t, 1000, 500), map[string]string{
		"canvasWidth":  "1200",
		"canvasHeight": "120",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 1000 || resp.Height != 500 {
		t.Errorf("natural size = %dx%d", resp.Width, resp.Height)
	}
	if _, err := os.Stat(filepath.Join(dir, resp.ID+".png")); err != nil {
		t.Errorf("asset not written: %v", err)
	}

	el := resp.Element
	if el.Type != document.ElementImage {
		t.Fatalf("element type = %s", el.Type)
	}
	if el.Width != 240 || el.Height != 120 {
		t.Errorf("element size = %vx%v, want 240x120", el.Width, el.Height)
	}
	if el.X != 480 || el.Y != 0 {
		t.Errorf("element at (%v,%v), want (480,0)", el.X, el.Y)
	}
	props, ok := el.Props.(document.ImageProps)
	if !ok || props.Src != resp.URL {
		t.Errorf("props = %#v", el.Props)
	}

	if err := h.Delete(resp.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := h.Delete(resp.ID); err == nil {
		t.Error("second delete succeeded")
	}
}

func TestUploadRejects(t *testing.T) {
	h := NewHandler(t.TempDir())

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/gif", []byte("GIF89a"), nil))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "PNG and JPEG") {
		t.Errorf("gif = %d %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", []byte("not a png"), nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("corrupt png status = %d", rec.Code)
	}
}
