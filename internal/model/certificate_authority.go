package model

import "time"

// CertificateAuthority statuses.
const (
	CAStatusActive   = "active"
	CAStatusDisabled = "disabled"
)

// CertificateAuthority is an internal root CA: its certificate in PEM and
// its private key sealed by the KMS layer.
type CertificateAuthority struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID        string    `gorm:"type:varchar(36);not null;index" json:"projectId"`
	Name             string    `gorm:"type:varchar(64);not null" json:"name"`
	Subject          string    `gorm:"type:varchar(255);not null" json:"subject"`
	Status           string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
	KeyAlgorithm     string    `gorm:"type:varchar(32);not null" json:"keyAlgorithm"`
	CertificatePEM   string    `gorm:"type:text;not null" json:"-"`
	SealedPrivateKey string    `gorm:"type:text;not null" json:"-"`
	NotBefore        time.Time `gorm:"not null" json:"notBefore"`
	NotAfter         time.Time `gorm:"not null" json:"notAfter"`
	CreatedAt        time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for CertificateAuthority
func (CertificateAuthority) TableName() string {
	return "certificate_authorities"
}
