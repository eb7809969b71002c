package pathology

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(NewSource(func() time.Time { return fixedNow }))
	return h, echo.New()
}

func TestGetReport_Success(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("P12345")
	if err := h.GetReport(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["patientId"] != "P12345" {
		t.Errorf("expected patientId 'P12345', got %v", result["patientId"])
	}
	if result["status"] != "Cancer detected" {
		t.Errorf("expected status 'Cancer detected', got %v", result["status"])
	}
	if result["followUpRequired"] != true {
		t.Errorf("expected followUpRequired true, got %v", result["followUpRequired"])
	}
	if _, ok := result["findings"].(map[string]interface{}); !ok {
		t.Errorf("expected findings object, got %v", result["findings"])
	}
}

func TestGetReport_BlankID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("  ")
	if err := h.GetReport(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetReport_DecodesPathOnce(t *testing.T) {
	h, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))
	tests := map[string]string{
		"/api/report/A%2532": "A%32",
		"/api/report/A%252F": "A%2F",
		"/api/report/A%2F1":  "A/1",
		"/api/report/%20%20": "",
		"/api/report/P%201":  "P 1",
	}
	for path, want := range tests {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if want == "" {
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", path, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		var result map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("%s: invalid JSON: %v", path, err)
		}
		if result["patientId"] != want {
			t.Errorf("%s: expected patientId %q, got %v", path, want, result["patientId"])
		}
	}
}

func TestGetReport_ControlCharacters(t *testing.T) {
	h, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/P1%0D%0AX", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterRoutes_Alias(t *testing.T) {
	h, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))
	for _, path := range []string{"/api/report/P1", "/api/pathology/report/P1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
