package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ---------------------------------------------------------------------------
// Helper: create a test server with typical endpoints
// ---------------------------------------------------------------------------

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]string{{"id": "1"}, {"id": "2"}})
	})

	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
	})

	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "1"
		writeJSON(w, http.StatusCreated, body)
	})

	mux.HandleFunc("PUT /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		body["id"] = r.PathValue("id")
		writeJSON(w, http.StatusOK, body)
	})

	mux.HandleFunc("DELETE /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})

	// Admin-like endpoints
	mux.HandleFunc("GET /admin/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /admin/reset", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	})

	mux.HandleFunc("GET /admin/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"minions": map[string]any{}})
	})

	mux.HandleFunc("POST /admin/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
	})

	mux.HandleFunc("POST /admin/fault/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "injected", "path": r.URL.Path})
	})

	mux.HandleFunc("DELETE /admin/fault/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	})

	mux.HandleFunc("GET /admin/requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]string{{"method": "GET", "path": "/items"}})
	})

	mux.HandleFunc("POST /admin/time/advance", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]string{"status": "advanced", "duration": body["duration"]})
	})

	return httptest.NewServer(mux)
}

// ---------------------------------------------------------------------------
// Client tests
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	if c.BaseURL != srv.URL {
		t.Errorf("expected BaseURL=%s, got %s", srv.URL, c.BaseURL)
	}
}

func TestClientGet(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	resp := c.Get("/items")

	resp.AssertStatus(http.StatusOK)
	if items := resp.JSONSlice(); len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestClientPost(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	resp := c.Post("/items", map[string]string{"name": "test"})

	resp.AssertStatus(http.StatusCreated)
	m := resp.JSONMap()
	if m["id"] != "1" || m["name"] != "test" {
		t.Errorf("unexpected body %v", m)
	}
}

func TestClientPut(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	resp := c.Put("/items/42", map[string]string{"name": "updated"})

	resp.AssertStatus(http.StatusOK)
	m := resp.JSONMap()
	if m["id"] != "42" || m["name"] != "updated" {
		t.Errorf("unexpected body %v", m)
	}
}

func TestClientDelete(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	c.Delete("/items/42").
		AssertStatus(http.StatusNoContent).
		AssertEmptyBody()
}

func TestClientDoRaw(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := NewClient(t, srv)
	resp := c.DoRaw("POST", "/echo", `{"broken"`)

	resp.AssertStatus(http.StatusOK)
	if string(resp.Body) != `{"broken"` {
		t.Errorf("expected body to be sent verbatim, got %s", resp.Body)
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func TestResponseJSONMap(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	m := NewClient(t, srv).Get("/items/42").JSONMap()
	if m["id"] != "42" {
		t.Errorf("expected id=42, got %v", m["id"])
	}
}

func TestResponseAssertChaining(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := NewClient(t, srv).Get("/items")

	if chained := resp.AssertStatus(http.StatusOK); chained != resp {
		t.Error("expected AssertStatus to return the same Response for chaining")
	}
	if chained := resp.AssertBodyContains(`"id"`); chained != resp {
		t.Error("expected AssertBodyContains to return the same Response for chaining")
	}
}

// ---------------------------------------------------------------------------
// AdminClient tests
// ---------------------------------------------------------------------------

func TestAdminClientHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))
	resp := ac.Health()
	resp.AssertStatus(http.StatusOK)
	if m := resp.JSONMap(); m["status"] != "ok" {
		t.Errorf("expected status=ok, got %v", m["status"])
	}
}

func TestAdminClientReset(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))
	ac.Reset().AssertStatus(http.StatusOK).AssertBodyContains("reset")
}

func TestAdminClientState(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))
	ac.GetState().AssertStatus(http.StatusOK).AssertBodyContains("minions")
	ac.LoadState(map[string]any{"minions": map[string]any{}}).
		AssertStatus(http.StatusOK).
		AssertBodyContains("loaded")
}

func TestAdminClientFaults(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))

	resp := ac.InjectFault("/api/minions", map[string]any{"status_code": 503})
	resp.AssertStatus(http.StatusOK)
	if m := resp.JSONMap(); m["path"] != "/admin/fault/api/minions" {
		t.Errorf("expected leading slash to be folded, got %v", m["path"])
	}

	ac.RemoveFault("/api/minions").AssertStatus(http.StatusOK).AssertBodyContains("removed")
}

func TestAdminClientGetRequests(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))
	ac.GetRequests().AssertStatus(http.StatusOK).AssertBodyContains("method")
}

func TestAdminClientAdvanceTime(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	ac := NewAdminClient(NewClient(t, srv))
	resp := ac.AdvanceTime("24h")
	resp.AssertStatus(http.StatusOK)
	if m := resp.JSONMap(); m["duration"] != "24h" {
		t.Errorf("expected duration=24h, got %v", m["duration"])
	}
}
