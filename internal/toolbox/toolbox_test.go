package toolbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/popcanvas/popcanvas/internal/document"
)

func TestNewElementDefaults(t *testing.T) {
	tb := New()
	for _, et := range document.ElementTypes {
		el, err := tb.NewElement(et)
		if err != nil {
			t.Fatalf("%s: %v", et, err)
		}
		if el.ID == "" || el.Type != et {
			t.Errorf("%s: bad base %+v", et, el.Base)
		}
		if el.Width <= 0 || el.Height <= 0 {
			t.Errorf("%s: missing default size", et)
		}
		if el.Props == nil || el.Props.Kind() != et {
			t.Errorf("%s: props %T do not match type", et, el.Props)
		}
	}

	form, _ := tb.NewElement(document.ElementForm)
	if len(form.Props.(document.FormProps).Fields) == 0 {
		t.Error("form preset should include an email field")
	}
}

func TestNewElementUnknownType(t *testing.T) {
	_, err := New().NewElement("video")
	if !errors.Is(err, document.ErrUnknownElementType) {
		t.Fatalf("expected ErrUnknownElementType, got %v", err)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	content := `{"text":{"width":320,"props":{"content":"Hello","fontSize":20,"color":"#000"}},"video":{"width":1}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tb := New()
	if err := tb.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	el, _ := tb.NewElement(document.ElementText)
	if el.Width != 320 || el.Height != 40 {
		t.Errorf("expected 320x40, got %vx%v", el.Width, el.Height)
	}
	if el.Props.(document.TextProps).Content != "Hello" {
		t.Errorf("props override not applied: %+v", el.Props)
	}
	img, _ := tb.NewElement(document.ElementImage)
	if img.Width != 200 {
		t.Errorf("untouched preset changed: %v", img.Width)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tb := New()
	if err := tb.LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0644)
	if err := tb.LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	if err := os.WriteFile(path, []byte(`{"timer":{"width":111}}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tb := New()
	if err := tb.Watch(ctx, path); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if p, _ := tb.Preset(document.ElementTimer); p.Width != 111 {
		t.Fatalf("initial load: width %v", p.Width)
	}

	if err := os.WriteFile(path, []byte(`{"timer":{"width":222}}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if p, _ := tb.Preset(document.ElementTimer); p.Width == 222 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("presets were not reloaded")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
