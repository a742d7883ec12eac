package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hifidac/dacbroker/internal/dac"
	"github.com/hifidac/dacbroker/internal/infrastructure/config"
	"github.com/hifidac/dacbroker/internal/infrastructure/logging"
	"github.com/hifidac/dacbroker/internal/propstore"
)

// mapStore is an in-memory propstore.Store for handler tests.
type mapStore struct {
	values map[string]string
}

func (m *mapStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", propstore.ErrNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

// newTestServer builds a server backed by a real controller over a fake
// hardware directory exposing both control files.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	base := filepath.Join(t.TempDir(), "9-0048")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"avc_volume", "hifi_mode"} {
		if err := os.WriteFile(filepath.Join(base, f), []byte("0"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	controller, err := dac.New(context.Background(), dac.Deps{
		BasePath: base,
		Props:    &mapStore{values: make(map[string]string)},
	})
	if err != nil {
		t.Fatalf("creating controller: %v", err)
	}

	server, err := New(Deps{
		Config:     config.APIConfig{Host: "127.0.0.1", Port: 8094},
		Logger:     logging.Default(),
		Controller: controller,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return server, server.buildRouter()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without controller, want error")
	}
	if _, err := New(Deps{Controller: &dac.Controller{}}); err == nil {
		t.Error("New() without logger, want error")
	}
}

func TestHandleHealth(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["features"] != float64(2) {
		t.Errorf("features = %v, want 2", body["features"])
	}
}

func TestHandleListFeatures(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/features", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	features, ok := body["features"].([]any)
	if !ok {
		t.Fatalf("features = %T, want array", body["features"])
	}
	if len(features) != 2 || features[0] != "avc_volume" || features[1] != "hifi_mode" {
		t.Errorf("features = %v, want [avc_volume hifi_mode]", features)
	}
}

func TestHandleGetValue(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/features/avc_volume", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["feature"] != "avc_volume" {
		t.Errorf("feature = %v, want avc_volume", body["feature"])
	}
	if body["value"] != float64(0) {
		t.Errorf("value = %v, want 0", body["value"])
	}
}

func TestHandleGetValue_UnknownFeature(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/features/bass_boost", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSetValue(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPut, "/api/v1/features/avc_volume", `{"value":-12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["value"] != float64(-12) {
		t.Errorf("value = %v, want -12", body["value"])
	}

	// Readback reflects the write
	rec = doRequest(t, handler, http.MethodGet, "/api/v1/features/avc_volume", "")
	body = decodeBody(t, rec)
	if body["value"] != float64(-12) {
		t.Errorf("readback value = %v, want -12", body["value"])
	}
}

func TestHandleSetValue_InvalidBody(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPut, "/api/v1/features/avc_volume", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSetValue_UnknownFeature(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPut, "/api/v1/features/bass_boost", `{"value":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleValueSpace(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/features/avc_volume/space", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	space, ok := body["space"].(map[string]any)
	if !ok {
		t.Fatalf("space = %T, want object", body["space"])
	}
	rng, ok := space["range"].(map[string]any)
	if !ok {
		t.Fatalf("range = %T, want object", space["range"])
	}
	if rng["min"] != float64(-24) || rng["max"] != float64(0) || rng["step"] != float64(1) {
		t.Errorf("range = %v, want min=-24 max=0 step=1", rng)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/features/hifi_mode/space", "")
	body = decodeBody(t, rec)
	space = body["space"].(map[string]any)
	modes, ok := space["modes"].([]any)
	if !ok {
		t.Fatalf("modes = %T, want array", space["modes"])
	}
	if len(modes) != 3 {
		t.Errorf("got %d modes, want 3", len(modes))
	}
}

func TestUnsupportedFeatureIs404(t *testing.T) {
	// Hardware directory exposing only avc_volume
	base := filepath.Join(t.TempDir(), "9-0048")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "avc_volume"), []byte("0"), 0o644); err != nil {
		t.Fatal(err)
	}

	controller, err := dac.New(context.Background(), dac.Deps{
		BasePath: base,
		Props:    &mapStore{values: make(map[string]string)},
	})
	if err != nil {
		t.Fatalf("creating controller: %v", err)
	}

	server, err := New(Deps{
		Logger:     logging.Default(),
		Controller: controller,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	handler := server.buildRouter()

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/features/hifi_mode", ""},
		{http.MethodPut, "/api/v1/features/hifi_mode", `{"value":1}`},
		{http.MethodGet, "/api/v1/features/hifi_mode/space", ""},
	} {
		rec := doRequest(t, handler, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}
}
