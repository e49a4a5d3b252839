package router

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	"github.com/Infisical/pki-issuance/internal/auth"
	"github.com/Infisical/pki-issuance/internal/certreq"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/store"
	"github.com/Infisical/pki-issuance/internal/template"
)

type testEnv struct {
	handler http.Handler
	token   string

	// profileID references a permissive template; strictProfileID one with
	// required key usages.
	caID            string
	profileID       string
	strictProfileID string
}

type errorEnvelope struct {
	Error dto.APIError `json:"error"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	auth.InitJWT("test-secret")

	enc, err := kms.New("test-master-key")
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		handler: New(&Config{
			Version: "test",
			Store:   store.NewMemoryStore(),
			KMS:     enc,
			Logger:  log,
		}),
	}

	env.token, err = auth.GenerateToken("tester", "project-1", "admin", time.Now().Add(time.Hour), "test")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	env.seed(t)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/pki/ca", e.token, dto.CreateCARequest{
		Name:         "test-root",
		CommonName:   "Test Root CA",
		KeyAlgorithm: "EC_prime256v1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create CA: status %d, body %s", rec.Code, rec.Body.String())
	}
	var caResp dto.CAResponse
	decodeInto(t, rec, &caResp)

	permissive := dto.CreateTemplateRequest{
		Name: "web-server",
		Attributes: []template.AttributePolicy{
			{Type: template.AttrCommonName, Include: template.IncludeMandatory, Values: []string{"*.example.com"}},
			{Type: template.AttrOrganization, Include: template.IncludeOptional, Values: []string{"Example Corp"}},
		},
		SANs: []template.SANPolicy{
			{Type: certreq.SANTypeDNS, Include: template.IncludeOptional, Values: []string{"*.example.com"}},
		},
		KeyUsages: &template.KeyUsagePolicy{
			Optional: []certreq.KeyUsage{certreq.KeyUsageDigitalSignature, certreq.KeyUsageKeyEncipherment},
		},
		ExtendedKeyUsages: &template.ExtKeyUsagePolicy{
			Optional: []certreq.ExtKeyUsage{certreq.ExtKeyUsageServerAuth, certreq.ExtKeyUsageClientAuth},
		},
		Validity:      &template.ValidityPolicy{MaxTTL: "90d"},
		KeyAlgorithms: []string{"EC_prime256v1"},
	}
	strict := dto.CreateTemplateRequest{
		Name: "strict-server",
		Attributes: []template.AttributePolicy{
			{Type: template.AttrCommonName, Include: template.IncludeMandatory, Values: []string{"*.example.com"}},
		},
		KeyUsages: &template.KeyUsagePolicy{
			Required: []certreq.KeyUsage{certreq.KeyUsageDigitalSignature},
		},
		ExtendedKeyUsages: &template.ExtKeyUsagePolicy{
			Required: []certreq.ExtKeyUsage{certreq.ExtKeyUsageServerAuth},
		},
		Validity:      &template.ValidityPolicy{MaxTTL: "90d"},
		KeyAlgorithms: []string{"EC_prime256v1"},
	}

	e.caID = caResp.ID
	e.profileID = e.createProfile(t, caResp.ID, "web-server", permissive)
	e.strictProfileID = e.createProfile(t, caResp.ID, "strict-server", strict)
}

func (e *testEnv) createProfile(t *testing.T, caID, slug string, tmpl dto.CreateTemplateRequest) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/pki/templates", e.token, tmpl)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template: status %d, body %s", rec.Code, rec.Body.String())
	}
	var tmplResp template.Template
	decodeInto(t, rec, &tmplResp)

	rec = e.do(t, http.MethodPost, "/api/v1/pki/profiles", e.token, dto.CreateProfileRequest{
		Name:                   slug,
		Slug:                   slug,
		CertificateAuthorityID: caID,
		CertificateTemplateID:  tmplResp.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create profile: status %d, body %s", rec.Code, rec.Body.String())
	}
	var profResp dto.ProfileResponse
	decodeInto(t, rec, &profResp)
	return profResp.ID
}

func issueBody(profileID string) dto.IssueCertificateRequest {
	return dto.IssueCertificateRequest{
		ProfileID: profileID,
		CertificateRequest: dto.CertificateRequestDTO{
			CommonName:        "app.example.com",
			SANs:              []dto.SANDTO{{Type: "dns_name", Value: "app.example.com"}},
			KeyUsages:         []string{"digitalSignature"},
			ExtendedKeyUsages: []string{"serverAuth"},
			Validity:          dto.ValidityDTO{TTL: "24h"},
			KeyAlgorithm:      "EC_prime256v1",
		},
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp dto.HealthResponse
	decodeInto(t, rec, &resp)
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected health response: %+v", resp)
	}

	rec = env.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	paths := []string{
		"/api/v3/certificates/issue-certificate",
		"/api/v3/certificates/sign-certificate",
		"/api/v3/certificates/order-certificate",
	}
	for _, path := range paths {
		rec := env.do(t, http.MethodPost, path, "", issueBody(env.profileID))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status %d, want 401", path, rec.Code)
		}
		var envlp errorEnvelope
		decodeInto(t, rec, &envlp)
		if envlp.Error.Code != "UNAUTHORIZED" {
			t.Errorf("%s without token: code = %q, want UNAUTHORIZED", path, envlp.Error.Code)
		}
		rec = env.do(t, http.MethodPost, path, "garbage-token", issueBody(env.profileID))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with invalid token: status %d, want 401", path, rec.Code)
		}
	}
}

func TestIssueCertificate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, issueBody(env.profileID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var bundle dto.CertificateBundleResponse
	decodeInto(t, rec, &bundle)
	if !strings.Contains(bundle.Certificate, "BEGIN CERTIFICATE") {
		t.Error("certificate is not PEM")
	}
	if bundle.CertificateChain == "" || bundle.IssuingCaCertificate == "" {
		t.Error("chain or issuing CA certificate missing")
	}
	if !strings.Contains(bundle.PrivateKey, "PRIVATE KEY") {
		t.Error("private key missing for direct issuance")
	}
	if bundle.SerialNumber == "" || bundle.CertificateID == "" {
		t.Error("serial number or certificate id missing")
	}

	// The record is retrievable afterwards.
	rec = env.do(t, http.MethodGet, "/api/v3/certificates/"+bundle.CertificateID, env.token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get certificate: status %d", rec.Code)
	}
	var certResp dto.CertificateResponse
	decodeInto(t, rec, &certResp)
	if certResp.CommonName != "app.example.com" {
		t.Errorf("common name = %q", certResp.CommonName)
	}
	if certResp.SerialNumber != bundle.SerialNumber {
		t.Errorf("serial mismatch: %q vs %q", certResp.SerialNumber, bundle.SerialNumber)
	}
}

func TestIssueCertificate_DistinctSerials(t *testing.T) {
	env := newTestEnv(t)

	var first, second dto.CertificateBundleResponse
	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, issueBody(env.profileID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	decodeInto(t, rec, &first)
	rec = env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, issueBody(env.profileID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	decodeInto(t, rec, &second)

	if first.SerialNumber == second.SerialNumber {
		t.Error("serial numbers repeat")
	}
	if first.CertificateID == second.CertificateID {
		t.Error("certificate ids repeat")
	}
}

func TestIssueCertificate_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, issueBody("missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "PROFILE_NOT_FOUND" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func TestIssueCertificate_CrossProjectProfile(t *testing.T) {
	env := newTestEnv(t)

	otherToken, err := auth.GenerateToken("tester", "project-2", "", time.Now().Add(time.Hour), "test")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", otherToken, issueBody(env.profileID))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestIssueCertificate_InvalidTTL(t *testing.T) {
	env := newTestEnv(t)

	for _, ttl := range []string{"0h", "invalid-ttl", ""} {
		body := issueBody(env.profileID)
		body.CertificateRequest.Validity.TTL = ttl
		rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("ttl %q: status %d, want 400", ttl, rec.Code)
		}
	}
}

func TestIssueCertificate_DisallowedCommonName(t *testing.T) {
	env := newTestEnv(t)

	body := issueBody(env.profileID)
	body.CertificateRequest.CommonName = "test.notallowed.com"
	body.CertificateRequest.SANs = nil

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func TestIssueCertificate_MissingRequiredUsages(t *testing.T) {
	env := newTestEnv(t)

	body := issueBody(env.strictProfileID)
	body.CertificateRequest.KeyUsages = nil
	body.CertificateRequest.ExtendedKeyUsages = nil
	body.CertificateRequest.SANs = nil

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func TestIssueCertificate_UnknownSANType(t *testing.T) {
	env := newTestEnv(t)

	// A profile without a template still goes through the syntactic checks.
	rec := env.do(t, http.MethodPost, "/api/v1/pki/profiles", env.token, dto.CreateProfileRequest{
		Name:                   "raw",
		Slug:                   "raw",
		CertificateAuthorityID: env.caID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create profile: status %d, body %s", rec.Code, rec.Body.String())
	}
	var profResp dto.ProfileResponse
	decodeInto(t, rec, &profResp)

	body := issueBody(profResp.ID)
	body.CertificateRequest.SANs = append(body.CertificateRequest.SANs, dto.SANDTO{Type: "bogus_type", Value: "app.example.com"})

	rec = env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func TestIssueCertificate_SignatureAlgorithmNotInTemplate(t *testing.T) {
	env := newTestEnv(t)

	body := issueBody(env.profileID)
	body.CertificateRequest.SignatureAlgorithm = "ECDSA_SHA256"

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func testCSR(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: "app.example.com"},
		DNSNames: []string{"app.example.com"},
	}, key)
	if err != nil {
		t.Fatalf("failed to create CSR: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der}))
}

func TestSignCertificate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/sign-certificate", env.token, dto.SignCertificateRequest{
		ProfileID: env.profileID,
		CSR:       testCSR(t),
		Validity:  dto.ValidityDTO{TTL: "24h"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var bundle dto.CertificateBundleResponse
	decodeInto(t, rec, &bundle)
	if bundle.PrivateKey != "" {
		t.Error("no private key should be returned for CSR signing")
	}
	if !strings.Contains(bundle.Certificate, "BEGIN CERTIFICATE") {
		t.Error("certificate is not PEM")
	}
}

func TestSignCertificate_InvalidCSR(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/sign-certificate", env.token, dto.SignCertificateRequest{
		ProfileID: env.profileID,
		CSR:       "not a csr",
		Validity:  dto.ValidityDTO{TTL: "24h"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var envlp errorEnvelope
	decodeInto(t, rec, &envlp)
	if envlp.Error.Code != "INVALID_CSR" {
		t.Errorf("code = %q", envlp.Error.Code)
	}
}

func TestOrderCertificate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/order-certificate", env.token, dto.OrderCertificateRequest{
		ProfileID: env.profileID,
		CertificateOrder: dto.CertificateOrderDTO{
			Identifiers: []dto.IdentifierDTO{
				{Type: "dns", Value: "a.example.com"},
				{Type: "dns", Value: "b.example.com"},
			},
			Validity:     dto.ValidityDTO{TTL: "24h"},
			KeyAlgorithm: "EC_prime256v1",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp dto.OrderCertificateResponse
	decodeInto(t, rec, &resp)
	if resp.Status != dto.OrderStatusValid {
		t.Errorf("status = %q, want valid", resp.Status)
	}
	if len(resp.Identifiers) != 2 {
		t.Errorf("identifiers = %d, want 2", len(resp.Identifiers))
	}
	if len(resp.Authorizations) != 2 {
		t.Errorf("authorizations = %d, want 2", len(resp.Authorizations))
	}
	if resp.OrderID == "" || resp.Finalize == "" {
		t.Error("order id or finalize url missing")
	}
	if resp.Certificate == nil || !strings.Contains(resp.Certificate.Certificate, "BEGIN CERTIFICATE") {
		t.Error("completed order should embed the certificate bundle")
	}
}

func TestOrderCertificate_EmptyIdentifiers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/order-certificate", env.token, dto.OrderCertificateRequest{
		ProfileID: env.profileID,
		CertificateOrder: dto.CertificateOrderDTO{
			Validity: dto.ValidityDTO{TTL: "24h"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestRenewCertificate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/issue-certificate", env.token, issueBody(env.profileID))
	if rec.Code != http.StatusOK {
		t.Fatalf("issue status %d", rec.Code)
	}
	var issued dto.CertificateBundleResponse
	decodeInto(t, rec, &issued)

	rec = env.do(t, http.MethodPost, "/api/v3/certificates/"+issued.CertificateID+"/renew", env.token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("renew status %d, body %s", rec.Code, rec.Body.String())
	}
	var renewed dto.CertificateBundleResponse
	decodeInto(t, rec, &renewed)

	if renewed.SerialNumber == issued.SerialNumber {
		t.Error("renewal reused the serial number")
	}
	if renewed.CertificateID == issued.CertificateID {
		t.Error("renewal reused the certificate id")
	}

	rec = env.do(t, http.MethodGet, "/api/v3/certificates/"+renewed.CertificateID, env.token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	var certResp dto.CertificateResponse
	decodeInto(t, rec, &certResp)
	if certResp.RenewedFromCertificateID != issued.CertificateID {
		t.Errorf("renewal link = %q, want %q", certResp.RenewedFromCertificateID, issued.CertificateID)
	}
}

func TestRenewCertificate_Unknown(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v3/certificates/missing/renew", env.token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/pki/profiles/", env.token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	var profiles []dto.ProfileResponse
	decodeInto(t, rec, &profiles)
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}

	newName := "renamed"
	rec = env.do(t, http.MethodPatch, "/api/v1/pki/profiles/"+env.profileID, env.token, dto.UpdateProfileRequest{Name: &newName})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated dto.ProfileResponse
	decodeInto(t, rec, &updated)
	if updated.Name != "renamed" {
		t.Errorf("name = %q", updated.Name)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/pki/profiles/"+env.profileID, env.token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/pki/profiles/"+env.profileID, env.token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", rec.Code)
	}
}
