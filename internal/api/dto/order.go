package dto

import (
	"github.com/Infisical/pki-issuance/internal/certreq"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusValid      = "valid"
	OrderStatusInvalid    = "invalid"
)

// IdentifierDTO is one typed order identifier.
type IdentifierDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CertificateOrderDTO is the inbound order shape: a list of identifiers plus
// optional subject and usage fields.
type CertificateOrderDTO struct {
	Identifiers        []IdentifierDTO `json:"identifiers"`
	Validity           ValidityDTO     `json:"validity"`
	CommonName         string          `json:"commonName,omitempty"`
	Organization       string          `json:"organization,omitempty"`
	KeyUsages          []string        `json:"keyUsages,omitempty"`
	ExtendedKeyUsages  []string        `json:"extendedKeyUsages,omitempty"`
	SignatureAlgorithm string          `json:"signatureAlgorithm,omitempty"`
	KeyAlgorithm       string          `json:"keyAlgorithm,omitempty"`
}

// ToDomain maps the DTO onto the domain order.
func (d *CertificateOrderDTO) ToDomain() certreq.Order {
	order := certreq.Order{
		Validity:           certreq.Validity{TTL: d.Validity.TTL},
		CommonName:         d.CommonName,
		Organization:       d.Organization,
		SignatureAlgorithm: d.SignatureAlgorithm,
		KeyAlgorithm:       d.KeyAlgorithm,
	}
	for _, ident := range d.Identifiers {
		order.Identifiers = append(order.Identifiers, certreq.Identifier{
			Type:  certreq.IdentifierType(ident.Type),
			Value: ident.Value,
		})
	}
	for _, ku := range d.KeyUsages {
		order.KeyUsages = append(order.KeyUsages, certreq.KeyUsage(ku))
	}
	for _, eku := range d.ExtendedKeyUsages {
		order.ExtendedKeyUsages = append(order.ExtendedKeyUsages, certreq.ExtKeyUsage(eku))
	}
	return order
}

// OrderCertificateRequest is the body of POST /certificates/order-certificate.
type OrderCertificateRequest struct {
	ProfileID        string              `json:"profileId"`
	CertificateOrder CertificateOrderDTO `json:"certificateOrder"`
}

// OrderCertificateResponse is the order success payload.
type OrderCertificateResponse struct {
	OrderID        string          `json:"orderId"`
	Status         string          `json:"status"`
	Identifiers    []IdentifierDTO `json:"identifiers"`
	Authorizations []string        `json:"authorizations"`
	Finalize       string          `json:"finalize"`

	// Certificate carries the issued bundle when the order completed
	// synchronously (status "valid").
	Certificate *CertificateBundleResponse `json:"certificate,omitempty"`
}
