package rest

import (
	"log/slog"
	"net/http"
	"time"
)

// storeUnavailable is the public reason for a store that failed to load.
// The underlying error is logged, not returned.
const storeUnavailable = "store unavailable"

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	engines engineProvider
	version string
	log     *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(engines engineProvider, version string, log *slog.Logger) *HealthHandler {
	return &HealthHandler{engines: engines, version: version, log: log}
}

// HealthResponse is the JSON response for /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status     string `json:"status"`
	Entries    int    `json:"entries,omitempty"`
	Generation string `json:"generation,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 once the store is loaded, 503 if the
// load failed.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engines.Engine(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. It reports the loaded generation and
// entry count along with the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, overall := http.StatusOK, "ok"
	var comp CompStatus

	e, err := h.engines.Engine()
	if err != nil {
		status, overall = http.StatusServiceUnavailable, "down"
		h.log.ErrorContext(r.Context(), "health check: store unavailable", slog.String("error", err.Error()))
		comp = CompStatus{Status: "down", Error: storeUnavailable}
	} else {
		comp = CompStatus{
			Status:     "ok",
			Entries:    e.Len(),
			Generation: e.Store().Manifest().Generation,
		}
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: map[string]CompStatus{"store": comp},
		Timestamp:  time.Now(),
	})
}
