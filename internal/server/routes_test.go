package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cristal-orion/Reminor/internal/config"
	"github.com/cristal-orion/Reminor/internal/engine"
	"github.com/cristal-orion/Reminor/internal/index"
	"github.com/cristal-orion/Reminor/internal/journal"
	"github.com/cristal-orion/Reminor/internal/nlp"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	db, err := index.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := engine.New(journal.New(t.TempDir()), db, config.Default(), zerolog.Nop())
	e.SetEmbedder(nlp.NewTFIDFEmbedder([]string{"mare spiaggia maria", "montagna bosco luca"}, 32))
	return New(e, db, "test", zerolog.Nop())
}

func put(t *testing.T, srv *Server, owner, date, text string) {
	t.Helper()
	body := `{"date":"` + date + `","text":"` + text + `"}`
	req := httptest.NewRequest("POST", "/api/entries", strings.NewReader(body))
	req.Header.Set("X-Owner", owner)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("put entry status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestPutAndGetEntry(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Oggi sono andata al mare con Maria.")

	req := httptest.NewRequest("GET", "/api/entries/2024-06-01", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp["text"], "Maria") {
		t.Errorf("text = %q", resp["text"])
	}
}

func TestGetEntryNotFound(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/entries/2024-06-01", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPutEntryInvalidDate(t *testing.T) {
	srv := testServer(t)

	body := `{"date":"01/06/2024","text":"testo"}`
	req := httptest.NewRequest("POST", "/api/entries", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPutEntryMissingText(t *testing.T) {
	srv := testServer(t)

	body := `{"date":"2024-06-01"}`
	req := httptest.NewRequest("POST", "/api/entries", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListEntries(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Prima giornata.")
	put(t, srv, "anna", "2024-06-02", "Seconda giornata.")

	req := httptest.NewRequest("GET", "/api/entries?from=2024-06-02", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Count int      `json:"count"`
		Dates []string `json:"dates"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.Dates[0] != "2024-06-02" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Oggi sono andata al mare con Maria.")

	req := httptest.NewRequest("GET", "/api/search?q=Maria", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			Date    string  `json:"date"`
			Score   float64 `json:"score"`
			Snippet string  `json:"snippet"`
		} `json:"results"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.Results[0].Date != "2024-06-01" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/search", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchOwnerIsolation(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Oggi sono andata al mare con Maria.")

	req := httptest.NewRequest("GET", "/api/search?q=Maria", nil)
	req.Header.Set("X-Owner", "bruno")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0 for another owner", resp.Count)
	}
}

func TestContextEndpoint(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Oggi sono andata al mare con Maria.")

	req := httptest.NewRequest("GET", "/api/context?q=il+mare+con+Maria", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	ctx, _ := resp["context"].(string)
	if !strings.Contains(ctx, "2024-06-01") {
		t.Errorf("context = %q", ctx)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Oggi sono andata al mare con Maria.")

	req := httptest.NewRequest("POST", "/api/rebuild", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "rebuilt" {
		t.Errorf("resp = %v", resp)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t)

	put(t, srv, "anna", "2024-06-01", "Tre parole qui dentro.")

	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("X-Owner", "anna")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		TotalEntries int `json:"total_entries"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalEntries != 1 {
		t.Errorf("total_entries = %d, want 1", resp.TotalEntries)
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["db"] != true {
		t.Errorf("db = %v, want true", resp["db"])
	}
}
