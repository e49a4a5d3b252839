package dto

import (
	"github.com/Infisical/pki-issuance/internal/template"
)

// CreateTemplateRequest is the body of POST /pki/templates. The policy
// fields use the domain template's JSON shape directly.
type CreateTemplateRequest struct {
	Name                string                      `json:"name"`
	Attributes          []template.AttributePolicy  `json:"attributes,omitempty"`
	SANs                []template.SANPolicy        `json:"sans,omitempty"`
	KeyUsages           *template.KeyUsagePolicy    `json:"keyUsages,omitempty"`
	ExtendedKeyUsages   *template.ExtKeyUsagePolicy `json:"extendedKeyUsages,omitempty"`
	Validity            *template.ValidityPolicy    `json:"validity,omitempty"`
	SignatureAlgorithms []string                    `json:"signatureAlgorithms,omitempty"`
	KeyAlgorithms       []string                    `json:"keyAlgorithms,omitempty"`
}

// ToDomain maps the request onto a domain template. ID and ProjectID are
// assigned by the service.
func (d *CreateTemplateRequest) ToDomain() *template.Template {
	return &template.Template{
		Name:                d.Name,
		Attributes:          d.Attributes,
		SANs:                d.SANs,
		KeyUsages:           d.KeyUsages,
		ExtendedKeyUsages:   d.ExtendedKeyUsages,
		Validity:            d.Validity,
		SignatureAlgorithms: d.SignatureAlgorithms,
		KeyAlgorithms:       d.KeyAlgorithms,
	}
}
