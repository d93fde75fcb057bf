// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"standpress/internal/handlers"
	"standpress/internal/session"
)

// staticSessions returns the same session for every request.
type staticSessions struct {
	data *session.Data
}

func (s staticSessions) Get(_ context.Context, _ *http.Request) (*session.Data, error) {
	return s.data, nil
}

func newTestRouter(sess *session.Data) http.Handler {
	api := handlers.NewAPI(handlers.Deps{}, nil)
	return New(staticSessions{data: sess}, api, []string{"https://app.standpress.test"}, nil)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthThroughRouter(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestAPIRequiresSession(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest("GET", "/api/variables", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestAPIWithSession(t *testing.T) {
	sess := &session.Data{UserID: uuid.New(), TenantID: uuid.New()}
	w := httptest.NewRecorder()
	newTestRouter(sess).ServeHTTP(w, httptest.NewRequest("GET", "/api/variables", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var vars []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&vars); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(vars) == 0 {
		t.Error("expected the variable catalogue")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := httptest.NewRequest("OPTIONS", "/api/variables", nil)
	r.Header.Set("Origin", "https://app.standpress.test")
	r.Header.Set("Access-Control-Request-Method", "PUT")
	r.Header.Set("Access-Control-Request-Headers", "Content-Type, "+session.HeaderName)
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.standpress.test" {
		t.Errorf("allow-origin: got %q", got)
	}
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	if !strings.Contains(allowed, strings.ToLower(session.HeaderName)) {
		t.Errorf("allow-headers: got %q, want %s", allowed, session.HeaderName)
	}
}
