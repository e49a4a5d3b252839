package dto

import (
	"time"

	"github.com/Infisical/pki-issuance/internal/certreq"
)

// SANDTO is one typed subject alternative name entry.
type SANDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CertificateRequestDTO is the inbound direct certificate request shape.
type CertificateRequestDTO struct {
	CommonName         string      `json:"commonName,omitempty"`
	Organization       string      `json:"organization,omitempty"`
	OrganizationalUnit string      `json:"organizationalUnit,omitempty"`
	Country            string      `json:"country,omitempty"`
	Province           string      `json:"province,omitempty"`
	Locality           string      `json:"locality,omitempty"`
	Email              string      `json:"email,omitempty"`
	SANs               []SANDTO    `json:"sans,omitempty"`
	KeyUsages          []string    `json:"keyUsages,omitempty"`
	ExtendedKeyUsages  []string    `json:"extendedKeyUsages,omitempty"`
	Validity           ValidityDTO `json:"validity"`
	SignatureAlgorithm string      `json:"signatureAlgorithm,omitempty"`
	KeyAlgorithm       string      `json:"keyAlgorithm,omitempty"`
}

// ToDomain maps the DTO onto the canonical certificate request.
func (d *CertificateRequestDTO) ToDomain() *certreq.Request {
	req := &certreq.Request{
		CommonName:         d.CommonName,
		Organization:       d.Organization,
		OrganizationalUnit: d.OrganizationalUnit,
		Country:            d.Country,
		Province:           d.Province,
		Locality:           d.Locality,
		Email:              d.Email,
		Validity:           certreq.Validity{TTL: d.Validity.TTL},
		SignatureAlgorithm: d.SignatureAlgorithm,
		KeyAlgorithm:       d.KeyAlgorithm,
	}
	for _, san := range d.SANs {
		req.SANs = append(req.SANs, certreq.SAN{
			Type:  certreq.SANType(san.Type),
			Value: san.Value,
		})
	}
	for _, ku := range d.KeyUsages {
		req.KeyUsages = append(req.KeyUsages, certreq.KeyUsage(ku))
	}
	for _, eku := range d.ExtendedKeyUsages {
		req.ExtendedKeyUsages = append(req.ExtendedKeyUsages, certreq.ExtKeyUsage(eku))
	}
	return req
}

// IssueCertificateRequest is the body of POST /certificates/issue-certificate.
type IssueCertificateRequest struct {
	ProfileID          string                `json:"profileId"`
	CertificateRequest CertificateRequestDTO `json:"certificateRequest"`
}

// SignCertificateRequest is the body of POST /certificates/sign-certificate.
type SignCertificateRequest struct {
	ProfileID string      `json:"profileId"`
	CSR       string      `json:"csr"`
	Validity  ValidityDTO `json:"validity"`
}

// RenewCertificateRequest is the body of POST /certificates/{id}/renew.
// Validity is optional; when absent the original certificate's lifetime
// is reused.
type RenewCertificateRequest struct {
	Validity *ValidityDTO `json:"validity,omitempty"`
}

// CertificateBundleResponse is the issuance success payload. PrivateKey is
// present for direct issuance only, never for CSR signing.
type CertificateBundleResponse struct {
	Certificate          string `json:"certificate"`
	CertificateChain     string `json:"certificateChain"`
	IssuingCaCertificate string `json:"issuingCaCertificate"`
	PrivateKey           string `json:"privateKey,omitempty"`
	SerialNumber         string `json:"serialNumber"`
	CertificateID        string `json:"certificateId"`
}

// CertificateResponse is the persisted certificate record returned by
// GET /certificates/{id}.
type CertificateResponse struct {
	ID                       string    `json:"id"`
	ProjectID                string    `json:"projectId"`
	ProfileID                string    `json:"profileId"`
	CAID                     string    `json:"caId"`
	Status                   string    `json:"status"`
	SerialNumber             string    `json:"serialNumber"`
	CommonName               string    `json:"commonName"`
	AltNames                 string    `json:"altNames,omitempty"`
	KeyUsages                string    `json:"keyUsages,omitempty"`
	ExtendedKeyUsages        string    `json:"extendedKeyUsages,omitempty"`
	KeyAlgorithm             string    `json:"keyAlgorithm,omitempty"`
	Certificate              string    `json:"certificate"`
	NotBefore                time.Time `json:"notBefore"`
	NotAfter                 time.Time `json:"notAfter"`
	RenewedFromCertificateID string    `json:"renewedFromCertificateId,omitempty"`
	CreatedAt                time.Time `json:"createdAt"`
}
