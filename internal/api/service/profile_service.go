package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	apierrors "github.com/Infisical/pki-issuance/internal/api/errors"
	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/store"
)

// ProfileService manages certificate profiles.
type ProfileService struct {
	store store.Store
}

// NewProfileService creates a new ProfileService.
func NewProfileService(st store.Store) *ProfileService {
	return &ProfileService{store: st}
}

// Create creates a profile. The referenced CA and template must exist in
// the caller's project.
func (s *ProfileService) Create(ctx context.Context, projectID string, req *dto.CreateProfileRequest) (*dto.ProfileResponse, error) {
	if req.Name == "" {
		return nil, apierrors.NewBadRequest("name is required")
	}
	if req.Slug == "" {
		return nil, apierrors.NewBadRequest("slug is required")
	}
	if req.CertificateAuthorityID == "" {
		return nil, apierrors.NewBadRequest("certificateAuthorityId is required")
	}

	method := req.EnrollmentMethod
	if method == "" {
		method = model.EnrollmentMethodAPI
	}
	if method != model.EnrollmentMethodAPI && method != model.EnrollmentMethodEST {
		return nil, apierrors.NewBadRequest("enrollmentMethod must be api or est")
	}

	caRecord, err := s.store.GetCA(ctx, req.CertificateAuthorityID)
	if err != nil {
		return nil, err
	}
	if caRecord.ProjectID != projectID {
		return nil, store.ErrCANotFound
	}

	if req.CertificateTemplateID != "" {
		tmpl, err := s.store.GetTemplate(ctx, req.CertificateTemplateID)
		if err != nil {
			return nil, err
		}
		if tmpl.ProjectID != projectID {
			return nil, store.ErrTemplateNotFound
		}
	}

	profile := &model.CertificateProfile{
		ID:                     uuid.NewString(),
		ProjectID:              projectID,
		Name:                   req.Name,
		Slug:                   req.Slug,
		CertificateAuthorityID: req.CertificateAuthorityID,
		CertificateTemplateID:  req.CertificateTemplateID,
		EnrollmentMethod:       method,
		AutoRenew:              req.AutoRenew,
		RenewBeforeDays:        req.RenewBeforeDays,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return dto.ProfileFromModel(profile), nil
}

// Get returns one profile scoped to the caller's project.
func (s *ProfileService) Get(ctx context.Context, projectID, id string) (*dto.ProfileResponse, error) {
	profile, err := s.getOwned(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	return dto.ProfileFromModel(profile), nil
}

// List returns all profiles of the caller's project.
func (s *ProfileService) List(ctx context.Context, projectID string) ([]dto.ProfileResponse, error) {
	profiles, err := s.store.ListProfiles(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, *dto.ProfileFromModel(&profiles[i]))
	}
	return resp, nil
}

// Update applies a partial update to a profile.
func (s *ProfileService) Update(ctx context.Context, projectID, id string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.getOwned(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.CertificateTemplateID != nil {
		if *req.CertificateTemplateID != "" {
			tmpl, err := s.store.GetTemplate(ctx, *req.CertificateTemplateID)
			if err != nil {
				return nil, err
			}
			if tmpl.ProjectID != projectID {
				return nil, store.ErrTemplateNotFound
			}
		}
		profile.CertificateTemplateID = *req.CertificateTemplateID
	}
	if req.EnrollmentMethod != nil {
		if *req.EnrollmentMethod != model.EnrollmentMethodAPI && *req.EnrollmentMethod != model.EnrollmentMethodEST {
			return nil, apierrors.NewBadRequest("enrollmentMethod must be api or est")
		}
		profile.EnrollmentMethod = *req.EnrollmentMethod
	}
	if req.AutoRenew != nil {
		profile.AutoRenew = *req.AutoRenew
	}
	if req.RenewBeforeDays != nil {
		profile.RenewBeforeDays = *req.RenewBeforeDays
	}

	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return dto.ProfileFromModel(profile), nil
}

// Delete removes a profile.
func (s *ProfileService) Delete(ctx context.Context, projectID, id string) error {
	if _, err := s.getOwned(ctx, projectID, id); err != nil {
		return err
	}
	return s.store.DeleteProfile(ctx, id)
}

func (s *ProfileService) getOwned(ctx context.Context, projectID, id string) (*model.CertificateProfile, error) {
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.ProjectID != projectID {
		return nil, store.ErrProfileNotFound
	}
	return profile, nil
}
