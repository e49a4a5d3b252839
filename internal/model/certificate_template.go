package model

import (
	"time"

	"gorm.io/datatypes"
)

// CertificateTemplate stores a template's policy document. The constraint
// sets are JSON columns deserialized into template.Template by the store.
type CertificateTemplate struct {
	ID                string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID         string         `gorm:"type:varchar(36);not null;index" json:"projectId"`
	Name              string         `gorm:"type:varchar(64);not null" json:"name"`
	Attributes        datatypes.JSON `gorm:"type:json" json:"attributes,omitempty"`
	SANs              datatypes.JSON `gorm:"type:json" json:"sans,omitempty"`
	KeyUsages         datatypes.JSON `gorm:"type:json" json:"keyUsages,omitempty"`
	ExtendedKeyUsages datatypes.JSON `gorm:"type:json" json:"extendedKeyUsages,omitempty"`
	Validity          datatypes.JSON `gorm:"type:json" json:"validity,omitempty"`

	SignatureAlgorithms datatypes.JSON `gorm:"type:json" json:"signatureAlgorithms,omitempty"`
	KeyAlgorithms       datatypes.JSON `gorm:"type:json" json:"keyAlgorithms,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for CertificateTemplate
func (CertificateTemplate) TableName() string {
	return "certificate_templates"
}
