package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	apierrors "github.com/Infisical/pki-issuance/internal/api/errors"
	"github.com/Infisical/pki-issuance/internal/ca"
	"github.com/Infisical/pki-issuance/internal/kms"
	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/store"
)

// CAService manages internal root certificate authorities.
type CAService struct {
	store store.Store
	kms   *kms.Encryptor
}

// NewCAService creates a new CAService.
func NewCAService(st store.Store, enc *kms.Encryptor) *CAService {
	return &CAService{store: st, kms: enc}
}

// Create generates a self-signed root CA, seals its key and persists it.
func (s *CAService) Create(ctx context.Context, projectID string, req *dto.CreateCARequest) (*dto.CAResponse, error) {
	if req.Name == "" {
		return nil, apierrors.NewBadRequest("name is required")
	}
	if req.CommonName == "" {
		return nil, apierrors.NewBadRequest("commonName is required")
	}

	root, err := ca.GenerateRoot(ca.RootConfig{
		CommonName:   req.CommonName,
		Organization: req.Organization,
		Country:      req.Country,
		KeyAlgorithm: req.KeyAlgorithm,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		return nil, err
	}

	sealed, err := s.kms.Seal([]byte(root.PrivateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to seal CA private key: %w", err)
	}

	record := &model.CertificateAuthority{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		Name:             req.Name,
		Subject:          root.Certificate.Subject.String(),
		Status:           model.CAStatusActive,
		KeyAlgorithm:     root.KeyAlgorithm,
		CertificatePEM:   root.CertificatePEM,
		SealedPrivateKey: sealed,
		NotBefore:        root.Certificate.NotBefore,
		NotAfter:         root.Certificate.NotAfter,
	}
	if err := s.store.CreateCA(ctx, record); err != nil {
		return nil, err
	}

	return dto.CAFromModel(record), nil
}

// Get returns one CA scoped to the caller's project.
func (s *CAService) Get(ctx context.Context, projectID, id string) (*dto.CAResponse, error) {
	record, err := s.store.GetCA(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.ProjectID != projectID {
		return nil, store.ErrCANotFound
	}
	return dto.CAFromModel(record), nil
}

// List returns all CAs of the caller's project.
func (s *CAService) List(ctx context.Context, projectID string) ([]dto.CAResponse, error) {
	records, err := s.store.ListCAs(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.CAResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *dto.CAFromModel(&records[i]))
	}
	return resp, nil
}
