package ca

import (
	"crypto/x509"

	"github.com/Infisical/pki-issuance/internal/certreq"
)

var keyUsageBits = map[certreq.KeyUsage]x509.KeyUsage{
	certreq.KeyUsageDigitalSignature:  x509.KeyUsageDigitalSignature,
	certreq.KeyUsageContentCommitment: x509.KeyUsageContentCommitment,
	certreq.KeyUsageKeyEncipherment:   x509.KeyUsageKeyEncipherment,
	certreq.KeyUsageDataEncipherment:  x509.KeyUsageDataEncipherment,
	certreq.KeyUsageKeyAgreement:      x509.KeyUsageKeyAgreement,
	certreq.KeyUsageCertSign:          x509.KeyUsageCertSign,
	certreq.KeyUsageCRLSign:           x509.KeyUsageCRLSign,
	certreq.KeyUsageEncipherOnly:      x509.KeyUsageEncipherOnly,
	certreq.KeyUsageDecipherOnly:      x509.KeyUsageDecipherOnly,
}

var extKeyUsageIDs = map[certreq.ExtKeyUsage]x509.ExtKeyUsage{
	certreq.ExtKeyUsageServerAuth:      x509.ExtKeyUsageServerAuth,
	certreq.ExtKeyUsageClientAuth:      x509.ExtKeyUsageClientAuth,
	certreq.ExtKeyUsageCodeSigning:     x509.ExtKeyUsageCodeSigning,
	certreq.ExtKeyUsageEmailProtection: x509.ExtKeyUsageEmailProtection,
	certreq.ExtKeyUsageTimeStamping:    x509.ExtKeyUsageTimeStamping,
	certreq.ExtKeyUsageOCSPSigning:     x509.ExtKeyUsageOCSPSigning,
}

// KeyUsagesToX509 folds string key usages into the x509 bitmask. Unknown
// usages are ignored; the policy layer has already rejected them.
func KeyUsagesToX509(usages []certreq.KeyUsage) x509.KeyUsage {
	var ku x509.KeyUsage
	for _, u := range usages {
		ku |= keyUsageBits[u]
	}
	return ku
}

// ExtKeyUsagesToX509 maps string extended key usages to their x509 values.
func ExtKeyUsagesToX509(usages []certreq.ExtKeyUsage) []x509.ExtKeyUsage {
	var ekus []x509.ExtKeyUsage
	for _, u := range usages {
		if eku, ok := extKeyUsageIDs[u]; ok {
			ekus = append(ekus, eku)
		}
	}
	return ekus
}
