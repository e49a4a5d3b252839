package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	"github.com/Infisical/pki-issuance/internal/api/service"
)

// CAHandler handles certificate authority administration.
type CAHandler struct {
	service *service.CAService
}

// NewCAHandler creates a new CAHandler.
func NewCAHandler(caService *service.CAService) *CAHandler {
	return &CAHandler{service: caService}
}

// Create handles POST /api/v1/pki/ca
func (h *CAHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Create(r.Context(), projectID(r), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/v1/pki/ca
func (h *CAHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context(), projectID(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/pki/ca/{id}
func (h *CAHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), projectID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
