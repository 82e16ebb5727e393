package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"batchkit/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// handleHealth runs every registered check; any failure reports 503
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Info(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make(map[string]HealthCheck, len(names))
	for _, name := range names {
		checks[name] = s.checks[name]
	}
	s.mu.RUnlock()

	if len(names) > 0 {
		response.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = err.Error()
			s.logger.Warn("Health check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		response.Checks[name] = "ok"
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, response, status)
}
