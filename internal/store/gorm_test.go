package store

import (
	"testing"

	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/template"
)

func TestProfileUpdates_IncludesZeroValues(t *testing.T) {
	profile := &model.CertificateProfile{
		ID:                    "profile-1",
		Name:                  "web-server",
		CertificateTemplateID: "",
		EnrollmentMethod:      model.EnrollmentMethodAPI,
		AutoRenew:             false,
		RenewBeforeDays:       0,
	}

	updates := profileUpdates(profile)

	for column, want := range map[string]any{
		"name":                    "web-server",
		"certificate_template_id": "",
		"enrollment_method":       model.EnrollmentMethodAPI,
		"auto_renew":              false,
		"renew_before_days":       0,
	} {
		got, ok := updates[column]
		if !ok {
			t.Errorf("column %s missing from update set", column)
			continue
		}
		if got != want {
			t.Errorf("column %s = %v, want %v", column, got, want)
		}
	}
}

func TestCertificateUpdates_IncludesZeroValues(t *testing.T) {
	cert := &model.Certificate{
		ID:                       "cert-1",
		Status:                   model.CertStatusActive,
		RenewedFromCertificateID: "",
	}

	updates := certificateUpdates(cert)

	if got, ok := updates["status"]; !ok || got != model.CertStatusActive {
		t.Errorf("status = %v (present=%v), want %q", got, ok, model.CertStatusActive)
	}
	if got, ok := updates["renewed_from_certificate_id"]; !ok || got != "" {
		t.Errorf("renewed_from_certificate_id = %v (present=%v), want empty", got, ok)
	}
}

func TestTemplateCodec_RoundTripsAlgorithmLists(t *testing.T) {
	tmpl := &template.Template{
		ID:                  "tmpl-1",
		ProjectID:           "project-1",
		Name:                "web-server",
		SignatureAlgorithms: []string{"ECDSA_SHA256", "ECDSA_SHA384"},
		KeyAlgorithms:       []string{"EC_prime256v1"},
	}

	row, err := encodeTemplate(tmpl)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeTemplate(row)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded.SignatureAlgorithms) != 2 || decoded.SignatureAlgorithms[0] != "ECDSA_SHA256" {
		t.Errorf("signature algorithms = %v", decoded.SignatureAlgorithms)
	}
	if len(decoded.KeyAlgorithms) != 1 || decoded.KeyAlgorithms[0] != "EC_prime256v1" {
		t.Errorf("key algorithms = %v", decoded.KeyAlgorithms)
	}
}
