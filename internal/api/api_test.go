package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/erazemk/inventario/internal/auth"
	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/session"
	"github.com/erazemk/inventario/internal/store"
	"github.com/erazemk/inventario/internal/upload"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "password123"
)

type testServer struct {
	*httptest.Server
	token string
}

func newTestServer(t *testing.T, backends inventory.Backends, uploader inventory.Uploader) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := auth.SetPassword(ctx, database, testPassword); err != nil {
		t.Fatalf("setting password: %v", err)
	}
	if err := store.SeedLocations(ctx, database, model.DefaultCatalog()); err != nil {
		t.Fatalf("seeding locations: %v", err)
	}
	if backends == nil {
		backends = inventory.Shared{Backend: &store.Table{DB: database}}
	}
	if uploader == nil {
		uploader = &upload.DBUploader{DB: database}
	}

	services := inventory.NewServices(backends, inventory.Options{
		Uploader: uploader,
		Catalog:  store.Catalog{DB: database},
	})
	router := NewRouter(Deps{
		DB:         database,
		JWTSecret:  testJWTSecret,
		Services:   services,
		SessionTTL: time.Hour,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{Server: server, token: login(t, server.URL)}
}

func login(t *testing.T, baseURL string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": testPassword})
	resp, err := http.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader = bytes.NewReader(nil)
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) addItem(t *testing.T, token string, fields map[string]string, photo []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if photo != nil {
		fw, _ := mw.CreateFormFile("photo", "photo.png")
		fw.Write(photo)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/api/items", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) list(t *testing.T, token, query string) itemsResponse {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/items?"+query, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var out itemsResponse
	json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

var naveCaja1 = map[string]string{"location": "Nave", "furniture": "Estantería A", "container": "Caja 1"}

func withName(name string, key map[string]string) map[string]string {
	fields := map[string]string{"name": name}
	for k, v := range key {
		fields[k] = v
	}
	return fields
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body, _ := json.Marshal(map[string]string{"password": "wrong"})
	resp, err := http.Post(s.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	resp, _ = http.Post(s.URL+"/api/auth/login", "application/json", bytes.NewReader([]byte("{}")))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp, err := http.Get(s.URL + "/api/items?location=Nave&container=Caja+1")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/items?location=Nave&container=Caja+1", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestItemsFlow(t *testing.T) {
	s := newTestServer(t, nil, nil)
	query := url.Values{"location": {"Nave"}, "furniture": {"Estantería A"}, "container": {"Caja 1"}}.Encode()

	// Empty view.
	if out := s.list(t, s.token, query); len(out.Items) != 0 {
		t.Fatalf("expected empty view, got %d items", len(out.Items))
	}

	resp := s.addItem(t, s.token, withName("Drill", naveCaja1), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}
	var created model.Item
	json.NewDecoder(resp.Body).Decode(&created)
	if created.ID != 1 || created.Status != model.ItemStatusStored {
		t.Errorf("unexpected item: %+v", created)
	}

	other := map[string]string{"location": "Garaje", "furniture": "Suelo", "container": "Sin Caja"}
	if resp := s.addItem(t, s.token, withName("Hammer", other), nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add second: expected 201, got %d", resp.StatusCode)
	}

	out := s.list(t, s.token, query)
	if len(out.Items) != 1 || out.Items[0].Name != "Drill" {
		t.Fatalf("expected only Drill in view, got %+v", out.Items)
	}
	if out.Key.Location != "Nave" || out.Key.Container != "Caja 1" {
		t.Errorf("unexpected key echoed: %+v", out.Key)
	}

	resp = s.do(t, http.MethodPost, "/api/items/1/remove", s.token, nil)
	var removed map[string]bool
	json.NewDecoder(resp.Body).Decode(&removed)
	if resp.StatusCode != http.StatusOK || !removed["removed"] {
		t.Fatalf("remove: status %d, body %v", resp.StatusCode, removed)
	}

	out = s.list(t, s.token, query)
	if len(out.Items) != 1 || out.Items[0].Status != model.ItemStatusRemoved {
		t.Errorf("expected removed Drill still listed, got %+v", out.Items)
	}

	// Removing again or an unknown id changes nothing.
	for _, path := range []string{"/api/items/1/remove", "/api/items/99/remove"} {
		resp = s.do(t, http.MethodPost, path, s.token, nil)
		removed = nil
		json.NewDecoder(resp.Body).Decode(&removed)
		if resp.StatusCode != http.StatusOK || removed["removed"] {
			t.Errorf("%s: status %d, body %v", path, resp.StatusCode, removed)
		}
	}

	resp = s.do(t, http.MethodPost, "/api/items/abc/remove", s.token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", resp.StatusCode)
	}
}

func TestAddItemValidation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"blank name", withName("   ", naveCaja1)},
		{"missing container", map[string]string{"name": "Drill", "location": "Nave"}},
		{"unknown location", map[string]string{"name": "Drill", "location": "Luna", "container": "Caja 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.addItem(t, s.token, tt.fields, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}

	resp := s.addItem(t, s.token, withName("Drill", naveCaja1), []byte("not an image"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid photo, got %d", resp.StatusCode)
	}

	if out := s.list(t, s.token, "location=Nave&container=Caja+1"); len(out.Items) != 0 {
		t.Errorf("rejected adds must not create records, got %d", len(out.Items))
	}
}

func TestListRequiresKey(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := s.do(t, http.MethodGet, "/api/items?location=Nave", s.token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAddItemWithPhoto(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := s.addItem(t, s.token, withName("Lamp", naveCaja1), testPNG(t))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	if item.PhotoURL != "/photos/1" {
		t.Fatalf("expected photo URL /photos/1, got %q", item.PhotoURL)
	}

	resp = s.do(t, http.MethodGet, "/api/photos/1", s.token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("photo: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}

	resp = s.do(t, http.MethodGet, "/api/photos/42", s.token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing photo, got %d", resp.StatusCode)
	}
}

type failingUploader struct{}

func (failingUploader) Upload(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("bridge down")
}

func TestAddItemUploadFailure(t *testing.T) {
	s := newTestServer(t, nil, failingUploader{})

	resp := s.addItem(t, s.token, withName("Lamp", naveCaja1), testPNG(t))
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	if out := s.list(t, s.token, "location=Nave&container=Caja+1"); len(out.Items) != 0 {
		t.Errorf("failed upload must not create a record, got %d", len(out.Items))
	}
}

type brokenBackend struct{}

func (brokenBackend) Read(context.Context) ([]model.Item, error) {
	return nil, errors.New("connection refused")
}

func (brokenBackend) Write(context.Context, []model.Item) error {
	return errors.New("connection refused")
}

func TestBackingStoreUnavailable(t *testing.T) {
	s := newTestServer(t, inventory.Shared{Backend: brokenBackend{}}, nil)

	resp := s.do(t, http.MethodGet, "/api/items?location=Nave&container=Caja+1", s.token, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("list: expected 503, got %d", resp.StatusCode)
	}

	resp = s.addItem(t, s.token, withName("Drill", naveCaja1), nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("add: expected 503, got %d", resp.StatusCode)
	}
}

func TestSessionBackendsAreIsolated(t *testing.T) {
	s := newTestServer(t, session.NewManager(time.Hour), nil)
	other := login(t, s.URL)

	if resp := s.addItem(t, s.token, withName("Drill", naveCaja1), nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", resp.StatusCode)
	}

	query := "location=Nave&container=Caja+1"
	if out := s.list(t, s.token, query); len(out.Items) != 1 {
		t.Errorf("expected 1 item in own session, got %d", len(out.Items))
	}
	if out := s.list(t, other, query); len(out.Items) != 0 {
		t.Errorf("expected other session to be empty, got %d", len(out.Items))
	}
}

func TestEndedSessionGetsNoNewTable(t *testing.T) {
	manager := session.NewManager(time.Hour)
	s := newTestServer(t, manager, nil)

	claims, err := auth.ValidateToken(testJWTSecret, s.token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}

	// Logout finished between this request's auth check and its table lookup.
	manager.End(claims.SessionID())

	resp := s.do(t, http.MethodGet, "/api/items?location=Nave&container=Caja+1", s.token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	resp = s.addItem(t, s.token, withName("Drill", naveCaja1), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("add: expected 401, got %d", resp.StatusCode)
	}
	if manager.Len() != 0 {
		t.Errorf("expected no session tables, got %d", manager.Len())
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := s.do(t, http.MethodPost, "/api/auth/logout", s.token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/items?location=Nave&container=Caja+1", s.token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := s.do(t, http.MethodPut, "/api/auth/password", s.token, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "another-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPut, "/api/auth/password", s.token, map[string]string{
		"current_password": testPassword,
		"new_password":     "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPut, "/api/auth/password", s.token, map[string]string{
		"current_password": testPassword,
		"new_password":     "another-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(map[string]string{"password": "another-password"})
	resp, err := http.Post(s.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected login with new password to succeed, got %d", resp.StatusCode)
	}
}

func TestLocationsEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := s.do(t, http.MethodGet, "/api/locations?kind=container", s.token, nil)
	var containers []model.Location
	json.NewDecoder(resp.Body).Decode(&containers)
	if len(containers) != 3 || containers[0].Name != "Caja 1" {
		t.Fatalf("unexpected containers: %+v", containers)
	}

	resp = s.do(t, http.MethodPost, "/api/locations", s.token, map[string]string{"kind": "container", "name": "Caja 3"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created model.Location
	json.NewDecoder(resp.Body).Decode(&created)

	resp = s.do(t, http.MethodPost, "/api/locations", s.token, map[string]string{"kind": "container", "name": "Caja 3"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, "/api/locations", s.token, map[string]string{"kind": "planet", "name": "Mars"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad kind: expected 400, got %d", resp.StatusCode)
	}

	// The new container is accepted for items.
	fields := map[string]string{"name": "Tape", "location": "Nave", "container": "Caja 3"}
	if resp := s.addItem(t, s.token, fields, nil); resp.StatusCode != http.StatusCreated {
		t.Errorf("add into new container: expected 201, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodDelete, "/api/locations/"+itoa(created.ID), s.token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp = s.do(t, http.MethodDelete, "/api/locations/"+itoa(created.ID), s.token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete again: expected 404, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
