package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	"github.com/Infisical/pki-issuance/internal/api/service"
)

// CertHandler handles certificate-related HTTP requests.
type CertHandler struct {
	service *service.CertService
}

// NewCertHandler creates a new CertHandler.
func NewCertHandler(certService *service.CertService) *CertHandler {
	return &CertHandler{service: certService}
}

// Issue handles POST /api/v3/certificates/issue-certificate
func (h *CertHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Issue(r.Context(), projectID(r), actor(r), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Sign handles POST /api/v3/certificates/sign-certificate
func (h *CertHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req dto.SignCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Sign(r.Context(), projectID(r), actor(r), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Order handles POST /api/v3/certificates/order-certificate
func (h *CertHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Order(r.Context(), projectID(r), actor(r), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Renew handles POST /api/v3/certificates/{certificateId}/renew
func (h *CertHandler) Renew(w http.ResponseWriter, r *http.Request) {
	certID := chi.URLParam(r, "certificateId")
	if certID == "" {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Certificate id is required",
		})
		return
	}

	var req dto.RenewCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Renew(r.Context(), projectID(r), actor(r), certID, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v3/certificates/{certificateId}
func (h *CertHandler) Get(w http.ResponseWriter, r *http.Request) {
	certID := chi.URLParam(r, "certificateId")
	if certID == "" {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Certificate id is required",
		})
		return
	}

	resp, err := h.service.Get(r.Context(), projectID(r), certID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
