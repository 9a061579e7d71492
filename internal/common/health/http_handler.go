package health

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Response is the body written by HealthCheckHttpHandler.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthCheckHttpHandler responds 200 if the checker passes and 503 otherwise.
type HealthCheckHttpHandler struct {
	checker Checker
}

func NewHealthCheckHttpHandler(checker Checker) *HealthCheckHttpHandler {
	return &HealthCheckHttpHandler{
		checker: checker,
	}
}

func (h *HealthCheckHttpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code, response := http.StatusOK, Response{Status: StatusHealthy}
	if err := h.checker.Check(); err != nil {
		log.WithError(err).Warn("Health check failed")
		code, response = http.StatusServiceUnavailable, Response{Status: StatusUnhealthy, Error: err.Error()}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("Failed to write health check response")
	}
}
