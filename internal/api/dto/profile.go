package dto

import (
	"time"

	"github.com/Infisical/pki-issuance/internal/model"
)

// CreateProfileRequest is the body of POST /pki/profiles.
type CreateProfileRequest struct {
	Name                   string `json:"name"`
	Slug                   string `json:"slug"`
	CertificateAuthorityID string `json:"certificateAuthorityId"`
	CertificateTemplateID  string `json:"certificateTemplateId,omitempty"`
	EnrollmentMethod       string `json:"enrollmentMethod,omitempty"`
	AutoRenew              bool   `json:"autoRenew,omitempty"`
	RenewBeforeDays        int    `json:"renewBeforeDays,omitempty"`
}

// UpdateProfileRequest is the body of PATCH /pki/profiles/{id}. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name                  *string `json:"name,omitempty"`
	CertificateTemplateID *string `json:"certificateTemplateId,omitempty"`
	EnrollmentMethod      *string `json:"enrollmentMethod,omitempty"`
	AutoRenew             *bool   `json:"autoRenew,omitempty"`
	RenewBeforeDays       *int    `json:"renewBeforeDays,omitempty"`
}

// ProfileResponse is a certificate profile as returned by the API.
type ProfileResponse struct {
	ID                     string    `json:"id"`
	ProjectID              string    `json:"projectId"`
	Name                   string    `json:"name"`
	Slug                   string    `json:"slug"`
	CertificateAuthorityID string    `json:"certificateAuthorityId"`
	CertificateTemplateID  string    `json:"certificateTemplateId,omitempty"`
	EnrollmentMethod       string    `json:"enrollmentMethod"`
	AutoRenew              bool      `json:"autoRenew"`
	RenewBeforeDays        int       `json:"renewBeforeDays"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// ProfileFromModel maps a profile row onto the response shape.
func ProfileFromModel(p *model.CertificateProfile) *ProfileResponse {
	return &ProfileResponse{
		ID:                     p.ID,
		ProjectID:              p.ProjectID,
		Name:                   p.Name,
		Slug:                   p.Slug,
		CertificateAuthorityID: p.CertificateAuthorityID,
		CertificateTemplateID:  p.CertificateTemplateID,
		EnrollmentMethod:       p.EnrollmentMethod,
		AutoRenew:              p.AutoRenew,
		RenewBeforeDays:        p.RenewBeforeDays,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}
