// Package certreq defines the canonical certificate request and the
// normalizers that map the inbound API shapes (direct request, PEM CSR,
// certificate order) onto it.
package certreq

import (
	"strings"
)

// SANType identifies the kind of a subject alternative name entry.
type SANType string

const (
	SANTypeDNS   SANType = "dns_name"
	SANTypeIP    SANType = "ip_address"
	SANTypeEmail SANType = "email"
	SANTypeURI   SANType = "uri"
)

// IsValid reports whether t is a known SAN type.
func (t SANType) IsValid() bool {
	switch t {
	case SANTypeDNS, SANTypeIP, SANTypeEmail, SANTypeURI:
		return true
	}
	return false
}

// SAN is a typed subject alternative name entry.
type SAN struct {
	Type  SANType `json:"type"`
	Value string  `json:"value"`
}

// KeyUsage is an X.509 key usage in its string form.
type KeyUsage string

const (
	KeyUsageDigitalSignature  KeyUsage = "digitalSignature"
	KeyUsageContentCommitment KeyUsage = "contentCommitment"
	KeyUsageKeyEncipherment   KeyUsage = "keyEncipherment"
	KeyUsageDataEncipherment  KeyUsage = "dataEncipherment"
	KeyUsageKeyAgreement      KeyUsage = "keyAgreement"
	KeyUsageCertSign          KeyUsage = "keyCertSign"
	KeyUsageCRLSign           KeyUsage = "cRLSign"
	KeyUsageEncipherOnly      KeyUsage = "encipherOnly"
	KeyUsageDecipherOnly      KeyUsage = "decipherOnly"
)

// IsValid reports whether u is a known key usage.
func (u KeyUsage) IsValid() bool {
	switch u {
	case KeyUsageDigitalSignature, KeyUsageContentCommitment,
		KeyUsageKeyEncipherment, KeyUsageDataEncipherment,
		KeyUsageKeyAgreement, KeyUsageCertSign, KeyUsageCRLSign,
		KeyUsageEncipherOnly, KeyUsageDecipherOnly:
		return true
	}
	return false
}

// ExtKeyUsage is an X.509 extended key usage in its string form.
type ExtKeyUsage string

const (
	ExtKeyUsageServerAuth      ExtKeyUsage = "serverAuth"
	ExtKeyUsageClientAuth      ExtKeyUsage = "clientAuth"
	ExtKeyUsageCodeSigning     ExtKeyUsage = "codeSigning"
	ExtKeyUsageEmailProtection ExtKeyUsage = "emailProtection"
	ExtKeyUsageTimeStamping    ExtKeyUsage = "timeStamping"
	ExtKeyUsageOCSPSigning     ExtKeyUsage = "ocspSigning"
)

// IsValid reports whether u is a known extended key usage.
func (u ExtKeyUsage) IsValid() bool {
	switch u {
	case ExtKeyUsageServerAuth, ExtKeyUsageClientAuth,
		ExtKeyUsageCodeSigning, ExtKeyUsageEmailProtection,
		ExtKeyUsageTimeStamping, ExtKeyUsageOCSPSigning:
		return true
	}
	return false
}

// Validity is the requested certificate validity window. TTL uses the
// duration grammar "<n><unit>" with unit h, d, m or y (e.g. "24h", "90d").
type Validity struct {
	TTL string `json:"ttl"`
}

// Request is the canonical subject+extensions representation consumed by the
// policy validator and the issuance delegate. All three inbound shapes reduce
// to this.
type Request struct {
	CommonName         string
	Organization       string
	OrganizationalUnit string
	Country            string
	Province           string
	Locality           string
	Email              string

	SANs              []SAN
	KeyUsages         []KeyUsage
	ExtendedKeyUsages []ExtKeyUsage

	Validity Validity

	SignatureAlgorithm string
	KeyAlgorithm       string
}

// IsEmpty reports whether the request carries no subject, SANs or usages at
// all. Empty requests are rejected before policy evaluation.
func (r *Request) IsEmpty() bool {
	return r.CommonName == "" &&
		r.Organization == "" &&
		r.OrganizationalUnit == "" &&
		r.Country == "" &&
		r.Province == "" &&
		r.Locality == "" &&
		r.Email == "" &&
		len(r.SANs) == 0 &&
		len(r.KeyUsages) == 0 &&
		len(r.ExtendedKeyUsages) == 0
}

// DNSNames returns the values of all dns_name SAN entries.
func (r *Request) DNSNames() []string {
	var names []string
	for _, san := range r.SANs {
		if san.Type == SANTypeDNS {
			names = append(names, san.Value)
		}
	}
	return names
}

// AltNamesString renders the SAN list as "type:value" pairs joined by commas,
// the form persisted on certificate records.
func (r *Request) AltNamesString() string {
	if len(r.SANs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.SANs))
	for _, san := range r.SANs {
		parts = append(parts, string(san.Type)+":"+san.Value)
	}
	return strings.Join(parts, ",")
}
