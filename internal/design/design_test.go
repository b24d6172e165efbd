package design

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/popcanvas/popcanvas/internal/auth"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "designs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	for _, id := range []string{"user_owner", "user_other"} {
		if _, err := s.CreateUser(context.Background(), store.User{ID: id, Email: id + "@example.com", PasswordHash: "x", DisplayName: id}); err != nil {
			t.Fatal(err)
		}
	}
	return NewService(s)
}

func TestCreateSeedsBlankCanvas(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	d, err := svc.Create(ctx, "user_owner", "Exit intent", document.LayoutBanner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Layout != document.LayoutBanner {
		t.Errorf("layout = %q", d.Layout)
	}

	snap, err := svc.LatestSnapshot(ctx, d.ID, "user_owner")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1", snap.Version)
	}
	if snap.Canvas.Width != 1200 || snap.Canvas.Height != 120 || len(snap.Canvas.Elements) != 0 {
		t.Errorf("seed canvas = %vx%v with %d elements", snap.Canvas.Width, snap.Canvas.Height, len(snap.Canvas.Elements))
	}
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	d, _ := svc.Create(ctx, "user_owner", "Mine", document.LayoutModal)

	if _, err := svc.Get(ctx, d.ID, "user_other"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user get err = %v", err)
	}
	if err := svc.Delete(ctx, d.ID, "user_other"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user delete err = %v", err)
	}
	if _, err := svc.Get(ctx, "dsg_missing", "user_owner"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing design err = %v", err)
	}
	if err := svc.CanAccess(ctx, PlaygroundID, "anon"); err != nil {
		t.Errorf("playground access err = %v", err)
	}

	list, err := svc.List(ctx, "user_other")
	if err != nil || len(list) != 0 {
		t.Errorf("other list = %v, %v", list, err)
	}
}

func TestSaveSnapshotValidates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	d, _ := svc.Create(ctx, "user_owner", "Mine", document.LayoutModal)

	_, err := svc.SaveSnapshot(ctx, d.ID, "user_owner", json.RawMessage(`{"elements":[{"id":"a","type":"video"}]}`))
	if !errors.Is(err, ErrInvalidCanvas) {
		t.Errorf("unknown element type err = %v", err)
	}

	snap, err := svc.SaveSnapshot(ctx, d.ID, "user_owner",
		json.RawMessage(`{"elements":[{"id":"a","type":"text","x":10,"y":10,"width":100,"height":30,"zIndex":1,"props":{"content":"Hi"}}]}`))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("version = %d, want 2", snap.Version)
	}

	loaded, err := svc.LoadCanvas(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Elements) != 1 || loaded.Zoom != 1 {
		t.Errorf("loaded canvas = %+v", loaded)
	}
	if p, ok := loaded.Elements[0].Props.(document.TextProps); !ok || p.Content != "Hi" {
		t.Errorf("props = %#v", loaded.Elements[0].Props)
	}
}

func TestPlaygroundIsMemoryOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	c, err := svc.LoadCanvas(ctx, PlaygroundID)
	if err != nil || len(c.Elements) == 0 {
		t.Fatalf("playground = %v, %v", c, err)
	}
	if err := svc.StoreCanvas(ctx, PlaygroundID, c); err != nil {
		t.Errorf("store playground err = %v", err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	svc := newTestService(t)
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), req.Header.Get("X-User"))))
		})
	})
	NewHandler(svc).Routes(api)

	do := func(method, path, user, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("X-User", user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("POST", "/api/designs", "user_owner", `{"name":"Flash sale","layout":"slide-in"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var d Design
	json.NewDecoder(rec.Body).Decode(&d)

	if rec := do("POST", "/api/designs", "user_owner", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("nameless create status = %d", rec.Code)
	}
	if rec := do("GET", "/api/designs/"+d.ID, "user_other", ""); rec.Code != http.StatusForbidden {
		t.Errorf("foreign get status = %d", rec.Code)
	}
	if rec := do("PATCH", "/api/designs/"+d.ID, "user_owner", `{"name":"Renamed"}`); rec.Code != http.StatusOK {
		t.Errorf("rename status = %d", rec.Code)
	}
	if rec := do("POST", "/api/designs/"+d.ID+"/snapshots", "user_owner", `{"elements":[{"id":"x","type":"nope"}]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid snapshot status = %d", rec.Code)
	}
	if rec := do("POST", "/api/designs/"+d.ID+"/snapshots", "user_owner", `{"showGrid":false}`); rec.Code != http.StatusCreated {
		t.Errorf("save snapshot status = %d: %s", rec.Code, rec.Body)
	}

	rec = do("GET", "/api/designs/"+d.ID+"/snapshots/latest", "user_owner", "")
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil || snap.Version != 2 {
		t.Errorf("latest = %+v, %v", snap, err)
	}

	if rec := do("GET", "/api/designs", "user_owner", ""); rec.Code != http.StatusOK {
		t.Errorf("list status = %d", rec.Code)
	}
	if rec := do("DELETE", "/api/designs/"+d.ID, "user_owner", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do("GET", "/api/designs/"+d.ID, "user_owner", ""); rec.Code != http.StatusNotFound {
		t.Errorf("deleted get status = %d", rec.Code)
	}
}
