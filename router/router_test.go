// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siemsene/newsvendor/models"
	"github.com/siemsene/newsvendor/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "newsvendor API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// Every route should be registered; none should come back 404 from
	// the mux itself. Handlers may still reject with 4xx for auth or
	// missing records.
	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/sessions"},
		{"GET", "/sessions/some-id/host"},
		{"POST", "/sessions/some-id/start"},
		{"POST", "/sessions/some-id/reveal"},
		{"POST", "/sessions/some-id/redraw"},
		{"POST", "/sessions/some-id/end"},
		{"POST", "/sessions/some-id/finish-week"},
		{"GET", "/sessions/some-id/analytics"},
		{"POST", "/sessions/some-id/players/some-player/kick"},
		{"POST", "/sessions/some-id/players/some-player/nudge"},
		{"POST", "/join"},
		{"POST", "/sessions/some-id/orders"},
		{"GET", "/codes/ABC234"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code == http.StatusNotFound && w.Body.String() == "404 page not found\n" {
				t.Errorf("Route %s %s is not registered", rt.method, rt.path)
			}
		})
	}
}

func TestCodeLookupAndHostViewResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	sess := testutil.CreateTestSession(t, db, cfg, models.StatusTraining, 1)

	// Both routes share a /sessions-shaped URL space; make sure each
	// reaches its handler through the mux, not just in isolation.
	req := httptest.NewRequest("GET", "/codes/"+sess.Code, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /codes/%s = %d, want 200. Body: %s", sess.Code, w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/sessions/"+sess.ID+"/host", nil)
	req.Header.Set("X-Host-Key", sess.HostKey)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /sessions/{id}/host = %d, want 200. Body: %s", w.Code, w.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("DELETE", "/sessions", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for DELETE /sessions, got %d", w.Code)
	}
}
