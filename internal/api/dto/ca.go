package dto

import (
	"time"

	"github.com/Infisical/pki-issuance/internal/model"
)

// CreateCARequest is the body of POST /pki/ca: it creates an internal
// self-signed root CA.
type CreateCARequest struct {
	Name         string `json:"name"`
	CommonName   string `json:"commonName"`
	Organization string `json:"organization,omitempty"`
	Country      string `json:"country,omitempty"`
	KeyAlgorithm string `json:"keyAlgorithm,omitempty"`
	ValidityDays int    `json:"validityDays,omitempty"`
}

// CAResponse is a certificate authority as returned by the API. The private
// key never leaves the service.
type CAResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	KeyAlgorithm string    `json:"keyAlgorithm"`
	Certificate  string    `json:"certificate"`
	NotBefore    time.Time `json:"notBefore"`
	NotAfter     time.Time `json:"notAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CAFromModel maps a CA row onto the response shape.
func CAFromModel(ca *model.CertificateAuthority) *CAResponse {
	return &CAResponse{
		ID:           ca.ID,
		ProjectID:    ca.ProjectID,
		Name:         ca.Name,
		Subject:      ca.Subject,
		Status:       ca.Status,
		KeyAlgorithm: ca.KeyAlgorithm,
		Certificate:  ca.CertificatePEM,
		NotBefore:    ca.NotBefore,
		NotAfter:     ca.NotAfter,
		CreatedAt:    ca.CreatedAt,
	}
}
