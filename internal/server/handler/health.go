package handler

import (
	"net/http"
	"time"
)

// HealthHandler answers liveness probes with the running mode and uptime.
type HealthHandler struct {
	mode    string
	started time.Time
}

func NewHealthHandler(mode string) *HealthHandler {
	return &HealthHandler{mode: mode, started: time.Now().UTC()}
}

// HealthCheck reports the process as alive. It deliberately does not reach
// into postgres or redis, both of which are optional per mode.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"mode":           h.mode,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"time":           time.Now().UTC().Format(time.RFC3339),
	})
}
