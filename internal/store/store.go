// Package store provides persistence for profiles, templates, certificate
// authorities and issued certificates. Two implementations exist: a
// gorm/MySQL store for production and an in-memory store for development
// and tests.
package store

import (
	"context"
	"errors"

	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/template"
)

// Sentinel lookup errors, mapped to 404 by the API layer.
var (
	ErrProfileNotFound     = errors.New("certificate profile not found")
	ErrTemplateNotFound    = errors.New("certificate template not found")
	ErrCANotFound          = errors.New("certificate authority not found")
	ErrCertificateNotFound = errors.New("certificate not found")
)

// ProfileStore persists certificate profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *model.CertificateProfile) error
	GetProfile(ctx context.Context, id string) (*model.CertificateProfile, error)
	ListProfiles(ctx context.Context, projectID string) ([]model.CertificateProfile, error)
	UpdateProfile(ctx context.Context, profile *model.CertificateProfile) error
	DeleteProfile(ctx context.Context, id string) error
}

// TemplateStore persists certificate templates. Templates cross this
// boundary as domain values; the JSON row encoding stays internal.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tmpl *template.Template) error
	GetTemplate(ctx context.Context, id string) (*template.Template, error)
	ListTemplates(ctx context.Context, projectID string) ([]template.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// CAStore persists certificate authorities.
type CAStore interface {
	CreateCA(ctx context.Context, ca *model.CertificateAuthority) error
	GetCA(ctx context.Context, id string) (*model.CertificateAuthority, error)
	ListCAs(ctx context.Context, projectID string) ([]model.CertificateAuthority, error)
}

// CertificateStore persists issued certificates.
type CertificateStore interface {
	CreateCertificate(ctx context.Context, cert *model.Certificate) error
	GetCertificate(ctx context.Context, id string) (*model.Certificate, error)
	GetCertificateBySerial(ctx context.Context, serial string) (*model.Certificate, error)
	UpdateCertificate(ctx context.Context, cert *model.Certificate) error
	ListCertificates(ctx context.Context, projectID string) ([]model.Certificate, error)
}

// Store is the full persistence surface the services depend on.
type Store interface {
	ProfileStore
	TemplateStore
	CAStore
	CertificateStore
}
