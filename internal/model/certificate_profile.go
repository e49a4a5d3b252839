package model

import "time"

// Enrollment methods for certificate profiles.
const (
	EnrollmentMethodAPI = "api"
	EnrollmentMethodEST = "est"
)

// CertificateProfile binds a certificate authority, an optional certificate
// template and an enrollment configuration. Clients pass the profile id to
// every issuance call.
type CertificateProfile struct {
	ID                     string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID              string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_profile_project_slug" json:"projectId"`
	Name                   string    `gorm:"type:varchar(64);not null" json:"name"`
	Slug                   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_profile_project_slug" json:"slug"`
	CertificateAuthorityID string    `gorm:"type:varchar(36);not null;index" json:"certificateAuthorityId"`
	CertificateTemplateID  string    `gorm:"type:varchar(36)" json:"certificateTemplateId,omitempty"`
	EnrollmentMethod       string    `gorm:"type:varchar(16);not null;default:api" json:"enrollmentMethod"`
	AutoRenew              bool      `gorm:"not null;default:false" json:"autoRenew"`
	RenewBeforeDays        int       `gorm:"not null;default:0" json:"renewBeforeDays"`
	CreatedAt              time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for CertificateProfile
func (CertificateProfile) TableName() string {
	return "certificate_profiles"
}
