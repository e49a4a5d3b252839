package certreq

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrEmptyCSR is returned when a CSR payload is empty or whitespace.
var ErrEmptyCSR = errors.New("csr is empty")

// ErrInvalidCSR is returned when a CSR payload cannot be parsed or its
// signature does not verify.
var ErrInvalidCSR = errors.New("invalid csr")

// ErrNoIdentifiers is returned for an order with an empty identifiers list.
var ErrNoIdentifiers = errors.New("certificate order must contain at least one identifier")

// IdentifierType is the identifier type of a certificate order entry.
type IdentifierType string

const (
	IdentifierTypeDNS IdentifierType = "dns"
	IdentifierTypeIP  IdentifierType = "ip"
)

// Identifier is one typed entry of a certificate order.
type Identifier struct {
	Type  IdentifierType `json:"type"`
	Value string         `json:"value"`
}

// Order is a certificate order: a non-empty identifiers list plus optional
// subject and usage fields.
type Order struct {
	Identifiers        []Identifier
	Validity           Validity
	CommonName         string
	Organization       string
	KeyUsages          []KeyUsage
	ExtendedKeyUsages  []ExtKeyUsage
	SignatureAlgorithm string
	KeyAlgorithm       string
}

// ParseCSR decodes and parses a PEM-encoded certificate signing request and
// verifies its self-signature. An empty string or malformed PEM fails before
// any signer involvement.
func ParseCSR(csrPEM string) (*x509.CertificateRequest, error) {
	if strings.TrimSpace(csrPEM) == "" {
		return nil, ErrEmptyCSR
	}

	block, _ := pem.Decode([]byte(csrPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: not PEM encoded", ErrInvalidCSR)
	}

	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSR, err)
	}

	if err := csr.CheckSignature(); err != nil {
		return nil, fmt.Errorf("%w: signature verification failed: %v", ErrInvalidCSR, err)
	}

	return csr, nil
}

// FromCSR maps a parsed CSR onto the canonical request. The validity is
// supplied separately since CSRs carry no TTL.
func FromCSR(csr *x509.CertificateRequest, validity Validity) *Request {
	req := &Request{
		CommonName: csr.Subject.CommonName,
		Validity:   validity,
	}

	if len(csr.Subject.Organization) > 0 {
		req.Organization = csr.Subject.Organization[0]
	}
	if len(csr.Subject.OrganizationalUnit) > 0 {
		req.OrganizationalUnit = csr.Subject.OrganizationalUnit[0]
	}
	if len(csr.Subject.Country) > 0 {
		req.Country = csr.Subject.Country[0]
	}
	if len(csr.Subject.Province) > 0 {
		req.Province = csr.Subject.Province[0]
	}
	if len(csr.Subject.Locality) > 0 {
		req.Locality = csr.Subject.Locality[0]
	}

	for _, name := range csr.DNSNames {
		req.SANs = append(req.SANs, SAN{Type: SANTypeDNS, Value: name})
	}
	for _, ip := range csr.IPAddresses {
		req.SANs = append(req.SANs, SAN{Type: SANTypeIP, Value: ip.String()})
	}
	for _, email := range csr.EmailAddresses {
		req.SANs = append(req.SANs, SAN{Type: SANTypeEmail, Value: email})
	}
	if len(csr.EmailAddresses) > 0 {
		req.Email = csr.EmailAddresses[0]
	}
	for _, uri := range csr.URIs {
		req.SANs = append(req.SANs, SAN{Type: SANTypeURI, Value: uri.String()})
	}

	return req
}

// FromOrder maps a certificate order onto the canonical request. Each
// identifier becomes one SAN entry; when the order has no common name it is
// derived from the first dns identifier.
func FromOrder(order Order) (*Request, error) {
	if len(order.Identifiers) == 0 {
		return nil, ErrNoIdentifiers
	}

	req := &Request{
		CommonName:         order.CommonName,
		Organization:       order.Organization,
		KeyUsages:          order.KeyUsages,
		ExtendedKeyUsages:  order.ExtendedKeyUsages,
		Validity:           order.Validity,
		SignatureAlgorithm: order.SignatureAlgorithm,
		KeyAlgorithm:       order.KeyAlgorithm,
	}

	for _, ident := range order.Identifiers {
		switch ident.Type {
		case IdentifierTypeDNS:
			req.SANs = append(req.SANs, SAN{Type: SANTypeDNS, Value: ident.Value})
		case IdentifierTypeIP:
			if net.ParseIP(ident.Value) == nil {
				return nil, fmt.Errorf("invalid ip identifier %q", ident.Value)
			}
			req.SANs = append(req.SANs, SAN{Type: SANTypeIP, Value: ident.Value})
		default:
			return nil, fmt.Errorf("unsupported identifier type %q", ident.Type)
		}
	}

	if req.CommonName == "" {
		for _, ident := range order.Identifiers {
			if ident.Type == IdentifierTypeDNS {
				req.CommonName = ident.Value
				break
			}
		}
	}

	return req, nil
}
