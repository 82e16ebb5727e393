package api

import (
	"net/http"

	"batchkit/internal/version"
)

// registerRoutes registers the fixed routes; batch resources are added by Mount
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/", s.handleRoot)
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		NotFound(w, "no route for "+r.URL.Path)
		return
	}

	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	endpoints := []string{"GET /health - Health check"}
	for _, route := range s.Routes() {
		endpoints = append(endpoints,
			"GET "+route+" - Supported operations",
			"POST "+route+" - Run a batch",
		)
	}

	WriteJSON(w, map[string]interface{}{
		"name":      "batchkit HTTP API",
		"version":   version.Info(),
		"endpoints": endpoints,
	}, http.StatusOK)
}
