package model

import "time"

// Certificate statuses.
const (
	CertStatusActive  = "active"
	CertStatusRevoked = "revoked"
)

// Certificate is an issued certificate record. The body is stored in PEM;
// the private key, present only for direct issuance, is sealed by the KMS
// layer. Records are never mutated after issuance apart from status and
// renewal linkage.
type Certificate struct {
	ID                       string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID                string    `gorm:"type:varchar(36);not null;index" json:"projectId"`
	ProfileID                string    `gorm:"type:varchar(36);index" json:"profileId,omitempty"`
	CertificateAuthorityID   string    `gorm:"type:varchar(36);not null;index" json:"certificateAuthorityId"`
	SerialNumber             string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"serialNumber"`
	CommonName               string    `gorm:"type:varchar(255)" json:"commonName"`
	AltNames                 string    `gorm:"type:text" json:"altNames,omitempty"`
	Status                   string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
	KeyUsages                string    `gorm:"type:text" json:"keyUsages,omitempty"`
	ExtendedKeyUsages        string    `gorm:"type:text" json:"extendedKeyUsages,omitempty"`
	SignatureAlgorithm       string    `gorm:"type:varchar(32)" json:"signatureAlgorithm,omitempty"`
	KeyAlgorithm             string    `gorm:"type:varchar(32)" json:"keyAlgorithm,omitempty"`
	CertificatePEM           string    `gorm:"type:text;not null" json:"-"`
	SealedPrivateKey         string    `gorm:"type:text" json:"-"`
	RenewedFromCertificateID string    `gorm:"type:varchar(36)" json:"renewedFromCertificateId,omitempty"`
	RenewBeforeDays          int       `gorm:"not null;default:0" json:"renewBeforeDays,omitempty"`
	NotBefore                time.Time `gorm:"not null" json:"notBefore"`
	NotAfter                 time.Time `gorm:"not null" json:"notAfter"`
	CreatedAt                time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt                time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for Certificate
func (Certificate) TableName() string {
	return "certificates"
}
