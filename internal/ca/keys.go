package ca

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// GenerateKey creates a key pair for the given algorithm. An empty algorithm
// defaults to RSA 2048.
func GenerateKey(algorithm string) (crypto.Signer, error) {
	switch algorithm {
	case "", KeyAlgorithmRSA2048:
		return rsa.GenerateKey(rand.Reader, 2048)
	case KeyAlgorithmRSA4096:
		return rsa.GenerateKey(rand.Reader, 4096)
	case KeyAlgorithmECP256:
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case KeyAlgorithmECP384:
		return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyAlgorithm, algorithm)
	}
}

// KeyAlgorithmOf returns the algorithm name for a public key, or an empty
// string for unrecognized key types.
func KeyAlgorithmOf(pub crypto.PublicKey) string {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		if key.N.BitLen() >= 4096 {
			return KeyAlgorithmRSA4096
		}
		return KeyAlgorithmRSA2048
	case *ecdsa.PublicKey:
		if key.Curve == elliptic.P384() {
			return KeyAlgorithmECP384
		}
		return KeyAlgorithmECP256
	}
	return ""
}

// EncodeKeyPEM serializes a private key as a PKCS#8 PEM block.
func EncodeKeyPEM(key crypto.Signer) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to encode private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// ParseKeyPEM parses a PKCS#8 PEM private key.
func ParseKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("private key is not PEM encoded")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key type %T cannot sign", key)
	}
	return signer, nil
}

// EncodeCertPEM serializes a certificate as a PEM block.
func EncodeCertPEM(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

// ParseCertPEM parses a PEM-encoded certificate.
func ParseCertPEM(certPEM []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("certificate is not PEM encoded")
	}
	return x509.ParseCertificate(block.Bytes)
}
