package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/molscope/molscope/internal/config"
	"github.com/molscope/molscope/internal/db"
	"github.com/molscope/molscope/internal/element"
)

const fixtureJSON = `{
	"meta": {"name": "test dataset", "description": "two *tiny* molecules"},
	"properties": {
		"energy":  {"target": "structure", "values": [-1.5, -2.25]},
		"density": {"target": "structure", "values": [1.0, 0.66]},
		"quality": {"target": "structure", "values": ["good", "bad"]}
	},
	"structures": [
		"3\n\nO 0 0 0\nH 0.76 0.59 0\nH -0.76 0.59 0\n",
		"5\n\nC 0 0 0\nH 0.63 0.63 0.63\nH -0.63 -0.63 0.63\nH -0.63 0.63 -0.63\nH 0.63 -0.63 -0.63\n"
	]
}`

func setupServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fixture.json"), []byte(fixtureJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	srv, err := New(cfg, database)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.LoadDataset("fixture.json"); err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestIndexRendersDataset(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	page := w.Body.String()
	if !bytes.Contains([]byte(page), []byte("test dataset")) {
		t.Error("page does not mention the dataset name")
	}
	// Markdown description rendered to HTML.
	if !bytes.Contains([]byte(page), []byte("<em>tiny</em>")) {
		t.Error("description markdown was not rendered")
	}
	if !bytes.Contains([]byte(page), []byte(PlotMountID)) {
		t.Error("page is missing the plot mount")
	}
}

func TestCurrentDataset(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "GET", "/api/dataset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp datasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Name != "test dataset" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Structures != 2 {
		t.Errorf("structures = %d, want 2", resp.Structures)
	}
	if resp.Path != "fixture.json" {
		t.Errorf("path = %q", resp.Path)
	}
}

func TestListDatasets(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "GET", "/api/datasets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Datasets []string `json:"datasets"`
		Current  string   `json:"current"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Datasets) != 1 || resp.Datasets[0] != "fixture.json" {
		t.Errorf("datasets = %v", resp.Datasets)
	}
	if resp.Current != "fixture.json" {
		t.Errorf("current = %q", resp.Current)
	}
}

func TestSelectEndpoint(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "POST", "/api/select", map[string]int{"index": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/select", map[string]int{"index": 99})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out of range select: expected 400, got %d", w.Code)
	}
}

// Client set messages and API select calls mutate the same options; both
// paths must hold the same lock or they race on the option values.
func TestConcurrentClientAndAPISelection(t *testing.T) {
	srv := setupServer(t)

	var selectedID string
	for _, id := range srv.reg.IDs() {
		if strings.Contains(id, "plot-selected") {
			selectedID = id
		}
	}
	if selectedID == "" {
		t.Fatal("plot selection element not found")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			srv.hub.Dispatch(selectedID, element.AttrValue, "1")
		}()
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/select", strings.NewReader(`{"index": 0}`))
			req.Header.Set("Content-Type", "application/json")
			srv.Router().ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	srv.mu.Lock()
	got := srv.viz.Plot().Selected()
	srv.mu.Unlock()
	if got != 0 && got != 1 {
		t.Errorf("selection = %d after concurrent updates, want 0 or 1", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "GET", "/api/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var tree map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := tree["plot"]; !ok {
		t.Fatalf("settings tree has no plot group: %v", tree)
	}

	w = doJSON(t, srv, "POST", "/api/settings", tree)
	if w.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// An invalid value is rejected.
	w = doJSON(t, srv, "POST", "/api/settings", map[string]any{
		"plot": map[string]any{"x": "not-a-property"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid apply: expected 400, got %d", w.Code)
	}
}

func TestSavedSettingsLifecycle(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, "POST", "/api/settings/saved", map[string]string{"name": "night-mode"})
	if w.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/settings/saved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var listed []savedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "night-mode" {
		t.Fatalf("listed = %v", listed)
	}

	w = doJSON(t, srv, "POST", "/api/settings/saved/night-mode/apply", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "DELETE", "/api/settings/saved/night-mode", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	w = doJSON(t, srv, "POST", "/api/settings/saved/night-mode/apply", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("apply after delete: expected 404, got %d", w.Code)
	}
}

func TestSwitchDataset(t *testing.T) {
	srv := setupServer(t)

	other := filepath.Join(srv.cfg.DataDir, "other.json")
	if err := os.WriteFile(other, []byte(fixtureJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, srv, "POST", "/api/dataset", map[string]string{"path": "other.json"})
	if w.Code != http.StatusOK {
		t.Fatalf("switch: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/dataset", nil)
	var resp datasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Path != "other.json" {
		t.Errorf("path = %q, want other.json", resp.Path)
	}

	w = doJSON(t, srv, "POST", "/api/dataset", map[string]string{"path": "missing.json"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing dataset: expected 400, got %d", w.Code)
	}
}

func TestSwitchDatasetRejectsEscapingPath(t *testing.T) {
	srv := setupServer(t)

	// A valid dataset one level above the data directory must still be
	// unreachable through the API.
	outside := filepath.Join(srv.cfg.DataDir, "..", "escape.json")
	if err := os.WriteFile(outside, []byte(fixtureJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"../escape.json", "/etc/passwd", "sub/../../escape.json"} {
		w := doJSON(t, srv, "POST", "/api/dataset", map[string]string{"path": path})
		if w.Code != http.StatusBadRequest {
			t.Errorf("path %q: expected 400, got %d", path, w.Code)
		}
	}

	w := doJSON(t, srv, "GET", "/api/dataset", nil)
	var resp datasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Path != "fixture.json" {
		t.Errorf("current dataset changed to %q", resp.Path)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}
