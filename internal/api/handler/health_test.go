package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

func TestHealthHandler_AllOK(t *testing.T) {
	h := NewHealthHandler(&stubPinger{}, &stubPinger{})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	data := parseDataOK(t, rec)
	if data["status"] != "ok" {
		t.Errorf("unexpected status: %v", data["status"])
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(&stubPinger{err: errors.New("connection refused")}, &stubPinger{})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	code, errCode := parseErr(t, rec)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if errCode != "DEGRADED" {
		t.Errorf("unexpected error code: %s", errCode)
	}
}

func TestHealthHandler_CacheDown(t *testing.T) {
	h := NewHealthHandler(&stubPinger{}, &stubPinger{err: errors.New("redis down")})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
