package ca

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"time"
)

// RootConfig describes a self-signed root CA to create.
type RootConfig struct {
	CommonName   string
	Organization string
	Country      string
	KeyAlgorithm string
	ValidityDays int
}

// Root is a freshly generated root CA, key in PEM, not yet sealed.
type Root struct {
	Certificate    *x509.Certificate
	CertificatePEM string
	PrivateKeyPEM  string
	KeyAlgorithm   string
}

// GenerateRoot creates a self-signed root CA certificate and key.
func GenerateRoot(cfg RootConfig) (*Root, error) {
	if cfg.CommonName == "" {
		return nil, fmt.Errorf("root CA common name is required")
	}
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = 3650
	}

	key, err := GenerateKey(cfg.KeyAlgorithm)
	if err != nil {
		return nil, err
	}

	serial, err := newSerialNumber()
	if err != nil {
		return nil, err
	}

	subject := pkix.Name{CommonName: cfg.CommonName}
	if cfg.Organization != "" {
		subject.Organization = []string{cfg.Organization}
	}
	if cfg.Country != "" {
		subject.Country = []string{cfg.Country}
	}

	skid, err := subjectKeyID(key.Public())
	if err != nil {
		return nil, err
	}

	notBefore := time.Now().UTC()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(0, 0, cfg.ValidityDays),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          skid,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to create root certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse root certificate: %w", err)
	}

	keyPEM, err := EncodeKeyPEM(key)
	if err != nil {
		return nil, err
	}

	algorithm := cfg.KeyAlgorithm
	if algorithm == "" {
		algorithm = KeyAlgorithmRSA2048
	}

	return &Root{
		Certificate:    cert,
		CertificatePEM: EncodeCertPEM(der),
		PrivateKeyPEM:  keyPEM,
		KeyAlgorithm:   algorithm,
	}, nil
}
