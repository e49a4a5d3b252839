package ca

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Infisical/pki-issuance/internal/certreq"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/store"
)

// InternalIssuer signs with root CAs persisted in the store. Private keys
// are unsealed through the KMS layer for the duration of one signing call.
type InternalIssuer struct {
	cas store.CAStore
	kms *kms.Encryptor
}

// NewInternalIssuer creates an InternalIssuer.
func NewInternalIssuer(cas store.CAStore, enc *kms.Encryptor) *InternalIssuer {
	return &InternalIssuer{cas: cas, kms: enc}
}

// Issue signs one certificate. The request is assumed policy-approved; this
// layer only resolves the CA, builds the X.509 template and signs.
func (i *InternalIssuer) Issue(ctx context.Context, req IssueRequest) (*Bundle, error) {
	caRecord, err := i.cas.GetCA(ctx, req.CAID)
	if err != nil {
		return nil, err
	}
	if caRecord.Status != model.CAStatusActive {
		return nil, ErrCADisabled
	}

	caCert, caKey, err := i.loadSigner(caRecord)
	if err != nil {
		return nil, err
	}

	template, err := buildTemplate(req.Request, req.Validity)
	if err != nil {
		return nil, err
	}
	template.Issuer = caCert.Subject

	if template.SignatureAlgorithm, err = signatureAlgorithmFor(req.Request.SignatureAlgorithm, caKey.Public()); err != nil {
		return nil, err
	}

	pubKey := req.PublicKey
	var keyPEM string
	if pubKey == nil {
		leafKey, err := GenerateKey(req.Request.KeyAlgorithm)
		if err != nil {
			return nil, err
		}
		pubKey = leafKey.Public()
		if keyPEM, err = EncodeKeyPEM(leafKey); err != nil {
			return nil, err
		}
	}

	if err := setKeyIdentifiers(template, caCert, pubKey); err != nil {
		return nil, err
	}

	der, err := x509.CreateCertificate(rand.Reader, template, caCert, pubKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signed certificate: %w", err)
	}

	return &Bundle{
		Certificate:             cert,
		CertificatePEM:          EncodeCertPEM(der),
		CertificateChainPEM:     caRecord.CertificatePEM,
		IssuingCACertificatePEM: caRecord.CertificatePEM,
		PrivateKeyPEM:           keyPEM,
		SerialNumber:            hex.EncodeToString(cert.SerialNumber.Bytes()),
	}, nil
}

func (i *InternalIssuer) loadSigner(record *model.CertificateAuthority) (*x509.Certificate, crypto.Signer, error) {
	caCert, err := ParseCertPEM([]byte(record.CertificatePEM))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}

	keyPEM, err := i.kms.Open(record.SealedPrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unseal CA private key: %w", err)
	}
	caKey, err := ParseKeyPEM(keyPEM)
	if err != nil {
		return nil, nil, err
	}

	return caCert, caKey, nil
}

// buildTemplate maps the canonical request onto an x509 leaf template.
func buildTemplate(req *certreq.Request, validity time.Duration) (*x509.Certificate, error) {
	serial, err := newSerialNumber()
	if err != nil {
		return nil, err
	}

	notBefore := time.Now().UTC()
	if validity <= 0 {
		validity = 24 * time.Hour
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: req.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validity),
		KeyUsage:              KeyUsagesToX509(req.KeyUsages),
		ExtKeyUsage:           ExtKeyUsagesToX509(req.ExtendedKeyUsages),
		BasicConstraintsValid: true,
	}

	if req.Organization != "" {
		template.Subject.Organization = []string{req.Organization}
	}
	if req.OrganizationalUnit != "" {
		template.Subject.OrganizationalUnit = []string{req.OrganizationalUnit}
	}
	if req.Country != "" {
		template.Subject.Country = []string{req.Country}
	}
	if req.Province != "" {
		template.Subject.Province = []string{req.Province}
	}
	if req.Locality != "" {
		template.Subject.Locality = []string{req.Locality}
	}

	for _, san := range req.SANs {
		switch san.Type {
		case certreq.SANTypeDNS:
			template.DNSNames = append(template.DNSNames, san.Value)
		case certreq.SANTypeIP:
			ip := net.ParseIP(san.Value)
			if ip == nil {
				return nil, fmt.Errorf("invalid ip SAN %q", san.Value)
			}
			template.IPAddresses = append(template.IPAddresses, ip)
		case certreq.SANTypeEmail:
			template.EmailAddresses = append(template.EmailAddresses, san.Value)
		case certreq.SANTypeURI:
			uri, err := url.Parse(san.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid uri SAN %q", san.Value)
			}
			template.URIs = append(template.URIs, uri)
		default:
			return nil, fmt.Errorf("unknown SAN type %q", san.Type)
		}
	}

	return template, nil
}

// signatureAlgorithmFor maps a requested algorithm name to its x509 value,
// checking family compatibility with the signing CA key. An empty name lets
// the x509 library pick its default for the key type.
func signatureAlgorithmFor(name string, caPub crypto.PublicKey) (x509.SignatureAlgorithm, error) {
	if name == "" {
		return x509.UnknownSignatureAlgorithm, nil
	}
	alg, ok := signatureAlgorithms[name]
	if !ok {
		return x509.UnknownSignatureAlgorithm, fmt.Errorf("%w: %s", ErrUnsupportedSignatureAlgorithm, name)
	}
	switch caPub.(type) {
	case *rsa.PublicKey:
		if !strings.HasPrefix(name, "RSA_") {
			return x509.UnknownSignatureAlgorithm, fmt.Errorf("%w: %s does not match the RSA issuing key", ErrUnsupportedSignatureAlgorithm, name)
		}
	case *ecdsa.PublicKey:
		if !strings.HasPrefix(name, "ECDSA_") {
			return x509.UnknownSignatureAlgorithm, fmt.Errorf("%w: %s does not match the ECDSA issuing key", ErrUnsupportedSignatureAlgorithm, name)
		}
	}
	return alg, nil
}

func setKeyIdentifiers(template, caCert *x509.Certificate, pubKey crypto.PublicKey) error {
	template.AuthorityKeyId = caCert.SubjectKeyId

	skid, err := subjectKeyID(pubKey)
	if err != nil {
		return err
	}
	template.SubjectKeyId = skid
	return nil
}

// subjectKeyID computes the RFC 5280 key identifier: SHA-1 of the
// subjectPublicKey bits.
func subjectKeyID(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

// newSerialNumber draws a random 128-bit serial.
func newSerialNumber() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}
	return serial, nil
}
