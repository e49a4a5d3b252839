// Package handler provides HTTP handlers for the REST API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	apierrors "github.com/Infisical/pki-issuance/internal/api/errors"
	"github.com/Infisical/pki-issuance/internal/api/middleware"
)

// HealthHandler handles health and readiness endpoints.
type HealthHandler struct {
	version string
	ready   func(ctx context.Context) bool
}

// NewHealthHandler creates a new HealthHandler. The ready func probes the
// storage backend; nil means always ready.
func NewHealthHandler(version string, ready func(ctx context.Context) bool) *HealthHandler {
	return &HealthHandler{version: version, ready: ready}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]bool{
		"server": true,
	}
	if h.ready != nil {
		checks["store"] = h.ready(r.Context())
	}

	allReady := true
	for _, ready := range checks {
		if !ready {
			allReady = false
			break
		}
	}

	status := http.StatusOK
	if !allReady {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, dto.ReadyResponse{
		Ready:  allReady,
		Checks: checks,
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, apiErr *dto.APIError) {
	respondJSON(w, status, map[string]*dto.APIError{"error": apiErr})
}

// handleServiceError maps a service error onto an HTTP error response.
func handleServiceError(w http.ResponseWriter, err error) {
	status, apiErr := apierrors.MapError(err)
	respondError(w, status, apiErr)
}

// projectID extracts the authenticated project scope from the request.
func projectID(r *http.Request) string {
	if claims := middleware.ClaimsFrom(r.Context()); claims != nil {
		return claims.ProjectID
	}
	return ""
}

// actor extracts the authenticated subject from the request.
func actor(r *http.Request) string {
	if claims := middleware.ClaimsFrom(r.Context()); claims != nil {
		return claims.Subject
	}
	return ""
}
