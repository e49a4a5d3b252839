// Package ca implements the issuance delegate: the subsystem that turns a
// normalized, policy-approved certificate request into a signed certificate.
// The internal issuer signs with store-backed root CAs; alternative issuer
// implementations can satisfy the same interface.
package ca

import (
	"context"
	"crypto"
	"crypto/x509"
	"errors"
	"time"

	"github.com/Infisical/pki-issuance/internal/certreq"
)

var (
	// ErrCADisabled is returned when the resolved CA is not active.
	ErrCADisabled = errors.New("certificate authority is disabled")

	// ErrUnsupportedKeyAlgorithm is returned for a key algorithm outside the
	// supported set.
	ErrUnsupportedKeyAlgorithm = errors.New("unsupported key algorithm")

	// ErrUnsupportedSignatureAlgorithm is returned for a signature algorithm
	// outside the supported set or incompatible with the subject key type.
	ErrUnsupportedSignatureAlgorithm = errors.New("unsupported signature algorithm")
)

// Supported key algorithms.
const (
	KeyAlgorithmRSA2048 = "RSA_2048"
	KeyAlgorithmRSA4096 = "RSA_4096"
	KeyAlgorithmECP256  = "EC_prime256v1"
	KeyAlgorithmECP384  = "EC_secp384r1"
)

// Supported signature algorithms.
const (
	SignatureAlgorithmRSASHA256   = "RSA_SHA256"
	SignatureAlgorithmRSASHA384   = "RSA_SHA384"
	SignatureAlgorithmRSASHA512   = "RSA_SHA512"
	SignatureAlgorithmECDSASHA256 = "ECDSA_SHA256"
	SignatureAlgorithmECDSASHA384 = "ECDSA_SHA384"
	SignatureAlgorithmECDSASHA512 = "ECDSA_SHA512"
)

// IsSupportedKeyAlgorithm reports whether name is a supported key algorithm.
func IsSupportedKeyAlgorithm(name string) bool {
	switch name {
	case KeyAlgorithmRSA2048, KeyAlgorithmRSA4096, KeyAlgorithmECP256, KeyAlgorithmECP384:
		return true
	}
	return false
}

// IsSupportedSignatureAlgorithm reports whether name is a supported signature
// algorithm.
func IsSupportedSignatureAlgorithm(name string) bool {
	_, ok := signatureAlgorithms[name]
	return ok
}

var signatureAlgorithms = map[string]x509.SignatureAlgorithm{
	SignatureAlgorithmRSASHA256:   x509.SHA256WithRSA,
	SignatureAlgorithmRSASHA384:   x509.SHA384WithRSA,
	SignatureAlgorithmRSASHA512:   x509.SHA512WithRSA,
	SignatureAlgorithmECDSASHA256: x509.ECDSAWithSHA256,
	SignatureAlgorithmECDSASHA384: x509.ECDSAWithSHA384,
	SignatureAlgorithmECDSASHA512: x509.ECDSAWithSHA512,
}

// IssueRequest carries a normalized request to the issuer. When PublicKey is
// nil the issuer generates a key pair and returns the private key in the
// bundle; when set (CSR signing) no key material is returned.
type IssueRequest struct {
	CAID      string
	Request   *certreq.Request
	PublicKey crypto.PublicKey
	Validity  time.Duration
}

// Bundle is the signing output: the leaf, its chain and the issuing CA
// certificate in PEM, plus the serial number and optional private key.
type Bundle struct {
	Certificate             *x509.Certificate
	CertificatePEM          string
	CertificateChainPEM     string
	IssuingCACertificatePEM string
	PrivateKeyPEM           string
	SerialNumber            string
}

// Issuer signs policy-approved certificate requests.
type Issuer interface {
	Issue(ctx context.Context, req IssueRequest) (*Bundle, error)
}
