package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	apierrors "github.com/Infisical/pki-issuance/internal/api/errors"
	"github.com/Infisical/pki-issuance/internal/store"
	"github.com/Infisical/pki-issuance/internal/template"
)

// TemplateService manages certificate templates.
type TemplateService struct {
	store store.Store
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(st store.Store) *TemplateService {
	return &TemplateService{store: st}
}

// Create validates and persists a template.
func (s *TemplateService) Create(ctx context.Context, projectID string, req *dto.CreateTemplateRequest) (*template.Template, error) {
	tmpl := req.ToDomain()
	tmpl.ID = uuid.NewString()
	tmpl.ProjectID = projectID

	if err := tmpl.Validate(); err != nil {
		return nil, apierrors.NewBadRequest(err.Error())
	}

	if err := s.store.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Get returns one template scoped to the caller's project.
func (s *TemplateService) Get(ctx context.Context, projectID, id string) (*template.Template, error) {
	tmpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.ProjectID != projectID {
		return nil, store.ErrTemplateNotFound
	}
	return tmpl, nil
}

// List returns all templates of the caller's project.
func (s *TemplateService) List(ctx context.Context, projectID string) ([]template.Template, error) {
	return s.store.ListTemplates(ctx, projectID)
}

// Delete removes a template.
func (s *TemplateService) Delete(ctx context.Context, projectID, id string) error {
	if _, err := s.Get(ctx, projectID, id); err != nil {
		return err
	}
	return s.store.DeleteTemplate(ctx, id)
}
