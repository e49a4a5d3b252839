// Package service provides business logic for the REST API.
package service

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	apierrors "github.com/Infisical/pki-issuance/internal/api/errors"
	"github.com/Infisical/pki-issuance/internal/audit"
	"github.com/Infisical/pki-issuance/internal/ca"
	"github.com/Infisical/pki-issuance/internal/certreq"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/policy"
	"github.com/Infisical/pki-issuance/internal/store"
	"github.com/Infisical/pki-issuance/internal/template"
)

// CertService runs the issuance pipeline: resolve profile, resolve template,
// normalize, validate, delegate to the issuer, assemble the response and
// persist the record.
type CertService struct {
	store  store.Store
	issuer ca.Issuer
	kms    *kms.Encryptor
	audit  *audit.Logger
}

// NewCertService creates a new CertService.
func NewCertService(st store.Store, issuer ca.Issuer, enc *kms.Encryptor, auditLog *audit.Logger) *CertService {
	return &CertService{
		store:  st,
		issuer: issuer,
		kms:    enc,
		audit:  auditLog,
	}
}

// Issue handles direct issuance: the service generates the key pair and the
// response carries the private key.
func (s *CertService) Issue(ctx context.Context, projectID, actor string, req *dto.IssueCertificateRequest) (*dto.CertificateBundleResponse, error) {
	profile, tmpl, err := s.resolveProfile(ctx, projectID, req.ProfileID)
	if err != nil {
		return nil, err
	}

	certReq := req.CertificateRequest.ToDomain()
	if err := policy.Validate(tmpl, certReq); err != nil {
		return nil, err
	}

	bundle, record, err := s.issueAndPersist(ctx, profile, certReq, nil, true)
	if err != nil {
		return nil, err
	}

	s.audit.Log(audit.Record{
		Event:        audit.EventCertificateIssued,
		ProjectID:    projectID,
		ProfileID:    profile.ID,
		CAID:         profile.CertificateAuthorityID,
		CertID:       record.ID,
		SerialNumber: record.SerialNumber,
		CommonName:   record.CommonName,
		Actor:        actor,
	})

	return bundleResponse(bundle, record.ID, true), nil
}

// Sign handles CSR signing: the CSR's public key is certified and no private
// key is returned.
func (s *CertService) Sign(ctx context.Context, projectID, actor string, req *dto.SignCertificateRequest) (*dto.CertificateBundleResponse, error) {
	profile, tmpl, err := s.resolveProfile(ctx, projectID, req.ProfileID)
	if err != nil {
		return nil, err
	}

	csr, err := certreq.ParseCSR(req.CSR)
	if err != nil {
		return nil, err
	}

	certReq := certreq.FromCSR(csr, certreq.Validity{TTL: req.Validity.TTL})
	if err := policy.Validate(tmpl, certReq); err != nil {
		return nil, err
	}

	bundle, record, err := s.issueAndPersist(ctx, profile, certReq, csr.PublicKey, false)
	if err != nil {
		return nil, err
	}

	s.audit.Log(audit.Record{
		Event:        audit.EventCertificateSigned,
		ProjectID:    projectID,
		ProfileID:    profile.ID,
		CAID:         profile.CertificateAuthorityID,
		CertID:       record.ID,
		SerialNumber: record.SerialNumber,
		CommonName:   record.CommonName,
		Actor:        actor,
	})

	return bundleResponse(bundle, record.ID, false), nil
}

// Order handles a certificate order. The internal CA issues synchronously,
// so a policy-compliant order completes as "valid" with its bundle attached;
// validation failures surface as 400 before any signing.
func (s *CertService) Order(ctx context.Context, projectID, actor string, req *dto.OrderCertificateRequest) (*dto.OrderCertificateResponse, error) {
	profile, tmpl, err := s.resolveProfile(ctx, projectID, req.ProfileID)
	if err != nil {
		return nil, err
	}

	certReq, err := certreq.FromOrder(req.CertificateOrder.ToDomain())
	if err != nil {
		if errors.Is(err, certreq.ErrNoIdentifiers) {
			return nil, err
		}
		return nil, apierrors.NewBadRequest(err.Error())
	}
	if err := policy.Validate(tmpl, certReq); err != nil {
		return nil, err
	}

	bundle, record, err := s.issueAndPersist(ctx, profile, certReq, nil, true)
	if err != nil {
		return nil, err
	}

	s.audit.Log(audit.Record{
		Event:        audit.EventOrderCompleted,
		ProjectID:    projectID,
		ProfileID:    profile.ID,
		CAID:         profile.CertificateAuthorityID,
		CertID:       record.ID,
		SerialNumber: record.SerialNumber,
		CommonName:   record.CommonName,
		Actor:        actor,
	})

	orderID := uuid.NewString()
	resp := &dto.OrderCertificateResponse{
		OrderID:     orderID,
		Status:      dto.OrderStatusValid,
		Identifiers: req.CertificateOrder.Identifiers,
		Finalize:    fmt.Sprintf("/api/v3/certificates/orders/%s/finalize", orderID),
		Certificate: bundleResponse(bundle, record.ID, true),
	}
	resp.Authorizations = make([]string, 0, len(resp.Identifiers))
	for i := range resp.Identifiers {
		resp.Authorizations = append(resp.Authorizations,
			fmt.Sprintf("/api/v3/certificates/orders/%s/authorizations/%d", orderID, i))
	}
	return resp, nil
}

// Renew reissues an existing certificate with a fresh key pair and serial.
// The new record links back to the renewed one.
func (s *CertService) Renew(ctx context.Context, projectID, actor, certID string, req *dto.RenewCertificateRequest) (*dto.CertificateBundleResponse, error) {
	existing, err := s.getOwned(ctx, projectID, certID)
	if err != nil {
		return nil, err
	}

	certReq, err := requestFromRecord(existing)
	if err != nil {
		return nil, err
	}
	if req != nil && req.Validity != nil && req.Validity.TTL != "" {
		certReq.Validity = certreq.Validity{TTL: req.Validity.TTL}
	}

	profile := &model.CertificateProfile{
		ID:                     existing.ProfileID,
		ProjectID:              projectID,
		CertificateAuthorityID: existing.CertificateAuthorityID,
		RenewBeforeDays:        existing.RenewBeforeDays,
	}
	var tmpl *template.Template
	if existing.ProfileID != "" {
		if resolved, resolvedTmpl, rerr := s.resolveProfile(ctx, projectID, existing.ProfileID); rerr == nil {
			profile, tmpl = resolved, resolvedTmpl
		}
	}

	if err := policy.Validate(tmpl, certReq); err != nil {
		return nil, err
	}

	bundle, record, err := s.issueAndPersist(ctx, profile, certReq, nil, true)
	if err != nil {
		return nil, err
	}

	record.RenewedFromCertificateID = existing.ID
	if err := s.store.UpdateCertificate(ctx, record); err != nil {
		return nil, err
	}

	s.audit.Log(audit.Record{
		Event:        audit.EventCertificateRenewed,
		ProjectID:    projectID,
		ProfileID:    profile.ID,
		CAID:         profile.CertificateAuthorityID,
		CertID:       record.ID,
		SerialNumber: record.SerialNumber,
		CommonName:   record.CommonName,
		Actor:        actor,
	})

	return bundleResponse(bundle, record.ID, true), nil
}

// Get returns one persisted certificate record.
func (s *CertService) Get(ctx context.Context, projectID, certID string) (*dto.CertificateResponse, error) {
	record, err := s.getOwned(ctx, projectID, certID)
	if err != nil {
		return nil, err
	}

	return &dto.CertificateResponse{
		ID:                       record.ID,
		ProjectID:                record.ProjectID,
		ProfileID:                record.ProfileID,
		CAID:                     record.CertificateAuthorityID,
		Status:                   record.Status,
		SerialNumber:             record.SerialNumber,
		CommonName:               record.CommonName,
		AltNames:                 record.AltNames,
		KeyUsages:                record.KeyUsages,
		ExtendedKeyUsages:        record.ExtendedKeyUsages,
		KeyAlgorithm:             record.KeyAlgorithm,
		Certificate:              record.CertificatePEM,
		NotBefore:                record.NotBefore,
		NotAfter:                 record.NotAfter,
		RenewedFromCertificateID: record.RenewedFromCertificateID,
		CreatedAt:                record.CreatedAt,
	}, nil
}

// resolveProfile loads a profile scoped to the caller's project, plus its
// bound template when one is set. Cross-project ids resolve as not found.
func (s *CertService) resolveProfile(ctx context.Context, projectID, profileID string) (*model.CertificateProfile, *template.Template, error) {
	if profileID == "" {
		return nil, nil, apierrors.NewBadRequest("profileId is required")
	}

	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if profile.ProjectID != projectID {
		return nil, nil, store.ErrProfileNotFound
	}

	var tmpl *template.Template
	if profile.CertificateTemplateID != "" {
		tmpl, err = s.store.GetTemplate(ctx, profile.CertificateTemplateID)
		if err != nil {
			return nil, nil, err
		}
	}

	return profile, tmpl, nil
}

// issueAndPersist delegates to the issuer and writes the certificate record.
// The request must already be policy-approved.
func (s *CertService) issueAndPersist(ctx context.Context, profile *model.CertificateProfile, certReq *certreq.Request, pubKey crypto.PublicKey, generateKey bool) (*ca.Bundle, *model.Certificate, error) {
	validity, err := policy.ParseTTL(certReq.Validity.TTL)
	if err != nil {
		return nil, nil, &policy.ValidationError{Violations: []string{err.Error()}}
	}

	issueReq := ca.IssueRequest{
		CAID:     profile.CertificateAuthorityID,
		Request:  certReq,
		Validity: validity,
	}
	if !generateKey {
		issueReq.PublicKey = pubKey
	}

	bundle, err := s.issuer.Issue(ctx, issueReq)
	if err != nil {
		return nil, nil, err
	}

	record := &model.Certificate{
		ID:                     uuid.NewString(),
		ProjectID:              profile.ProjectID,
		ProfileID:              profile.ID,
		CertificateAuthorityID: profile.CertificateAuthorityID,
		SerialNumber:           bundle.SerialNumber,
		CommonName:             certReq.CommonName,
		AltNames:               certReq.AltNamesString(),
		Status:                 model.CertStatusActive,
		KeyUsages:              joinKeyUsages(certReq.KeyUsages),
		ExtendedKeyUsages:      joinExtKeyUsages(certReq.ExtendedKeyUsages),
		SignatureAlgorithm:     certReq.SignatureAlgorithm,
		KeyAlgorithm:           certReq.KeyAlgorithm,
		CertificatePEM:         bundle.CertificatePEM,
		RenewBeforeDays:        profile.RenewBeforeDays,
		NotBefore:              bundle.Certificate.NotBefore,
		NotAfter:               bundle.Certificate.NotAfter,
	}

	if bundle.PrivateKeyPEM != "" {
		sealed, err := s.kms.Seal([]byte(bundle.PrivateKeyPEM))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seal private key: %w", err)
		}
		record.SealedPrivateKey = sealed
	}

	if err := s.store.CreateCertificate(ctx, record); err != nil {
		return nil, nil, err
	}

	return bundle, record, nil
}

func (s *CertService) getOwned(ctx context.Context, projectID, certID string) (*model.Certificate, error) {
	record, err := s.store.GetCertificate(ctx, certID)
	if err != nil {
		return nil, err
	}
	if record.ProjectID != projectID {
		return nil, store.ErrCertificateNotFound
	}
	return record, nil
}

// requestFromRecord rebuilds a canonical request from a persisted record,
// used for renewal. The TTL defaults to the record's original lifetime.
func requestFromRecord(record *model.Certificate) (*certreq.Request, error) {
	cert, err := ca.ParseCertPEM([]byte(record.CertificatePEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored certificate: %w", err)
	}

	req := &certreq.Request{
		CommonName:         cert.Subject.CommonName,
		SignatureAlgorithm: record.SignatureAlgorithm,
		KeyAlgorithm:       record.KeyAlgorithm,
	}
	if len(cert.Subject.Organization) > 0 {
		req.Organization = cert.Subject.Organization[0]
	}
	if len(cert.Subject.OrganizationalUnit) > 0 {
		req.OrganizationalUnit = cert.Subject.OrganizationalUnit[0]
	}
	if len(cert.Subject.Country) > 0 {
		req.Country = cert.Subject.Country[0]
	}
	if len(cert.Subject.Province) > 0 {
		req.Province = cert.Subject.Province[0]
	}
	if len(cert.Subject.Locality) > 0 {
		req.Locality = cert.Subject.Locality[0]
	}

	for _, name := range cert.DNSNames {
		req.SANs = append(req.SANs, certreq.SAN{Type: certreq.SANTypeDNS, Value: name})
	}
	for _, ip := range cert.IPAddresses {
		req.SANs = append(req.SANs, certreq.SAN{Type: certreq.SANTypeIP, Value: ip.String()})
	}
	for _, email := range cert.EmailAddresses {
		req.SANs = append(req.SANs, certreq.SAN{Type: certreq.SANTypeEmail, Value: email})
	}
	for _, uri := range cert.URIs {
		req.SANs = append(req.SANs, certreq.SAN{Type: certreq.SANTypeURI, Value: uri.String()})
	}

	for _, ku := range splitList(record.KeyUsages) {
		req.KeyUsages = append(req.KeyUsages, certreq.KeyUsage(ku))
	}
	for _, eku := range splitList(record.ExtendedKeyUsages) {
		req.ExtendedKeyUsages = append(req.ExtendedKeyUsages, certreq.ExtKeyUsage(eku))
	}

	req.Validity = certreq.Validity{TTL: ttlFromLifetime(cert.NotBefore, cert.NotAfter)}
	return req, nil
}

// ttlFromLifetime renders a certificate lifetime back into the TTL grammar,
// rounded up to whole hours.
func ttlFromLifetime(notBefore, notAfter time.Time) string {
	hours := int((notAfter.Sub(notBefore) + time.Hour - 1) / time.Hour)
	if hours < 1 {
		hours = 1
	}
	return fmt.Sprintf("%dh", hours)
}

func joinKeyUsages(usages []certreq.KeyUsage) string {
	parts := make([]string, 0, len(usages))
	for _, u := range usages {
		parts = append(parts, string(u))
	}
	return strings.Join(parts, ",")
}

func joinExtKeyUsages(usages []certreq.ExtKeyUsage) string {
	parts := make([]string, 0, len(usages))
	for _, u := range usages {
		parts = append(parts, string(u))
	}
	return strings.Join(parts, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func bundleResponse(bundle *ca.Bundle, certID string, withKey bool) *dto.CertificateBundleResponse {
	resp := &dto.CertificateBundleResponse{
		Certificate:          bundle.CertificatePEM,
		CertificateChain:     bundle.CertificateChainPEM,
		IssuingCaCertificate: bundle.IssuingCACertificatePEM,
		SerialNumber:         bundle.SerialNumber,
		CertificateID:        certID,
	}
	if withKey {
		resp.PrivateKey = bundle.PrivateKeyPEM
	}
	return resp
}
