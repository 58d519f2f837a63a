package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckReportsMode(t *testing.T) {
	h := NewHealthHandler("serve")
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
		Mode   string `json:"mode"`
		Uptime int    `json:"uptime_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "ok" || body.Mode != "serve" {
		t.Errorf("body = %+v", body)
	}
	if body.Uptime < 0 {
		t.Errorf("uptime = %d", body.Uptime)
	}
}
