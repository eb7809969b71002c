package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected ping deadline")
	}
	return f.err
}

func serveHealth(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/status/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return rec, body
}

func TestHealthHandler_MemoryBackend(t *testing.T) {
	rec, body := serveHealth(t, HealthHandler("memory", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "healthy" || body["backend"] != "memory" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestHealthHandler_Healthy(t *testing.T) {
	p := &fakePinger{}
	rec, body := serveHealth(t, HealthHandler("sqlite", p))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 ping, got %d", p.calls)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if _, ok := body["pool"]; ok {
		t.Error("expected no pool stats for non-postgres backend")
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	p := &fakePinger{err: errors.New("database is locked")}
	rec, body := serveHealth(t, HealthHandler("sqlite", p))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("expected unhealthy, got %v", body["status"])
	}
	if body["error"] != "database is locked" {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestPoolStats_JSONTags(t *testing.T) {
	b, err := json.Marshal(PoolStats{TotalConns: 2, MaxConns: 10, AcquireDuration: "250ms", Healthy: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"totalConns", "idleConns", "acquiredConns", "maxConns", "acquireCount", "acquireDuration", "healthy"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in %s", key, b)
		}
	}
}
