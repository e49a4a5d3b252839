package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/template"
)

// MemoryStore is an in-process Store used in development mode and tests.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]model.CertificateProfile
	templates map[string]template.Template
	cas       map[string]model.CertificateAuthority
	certs     map[string]model.Certificate
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]model.CertificateProfile),
		templates: make(map[string]template.Template),
		cas:       make(map[string]model.CertificateAuthority),
		certs:     make(map[string]model.Certificate),
	}
}

func (s *MemoryStore) CreateProfile(ctx context.Context, profile *model.CertificateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, id string) (*model.CertificateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (s *MemoryStore) ListProfiles(ctx context.Context, projectID string) ([]model.CertificateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var profiles []model.CertificateProfile
	for _, p := range s.profiles {
		if p.ProjectID == projectID {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })
	return profiles, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, profile *model.CertificateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return ErrProfileNotFound
	}
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *MemoryStore) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ErrProfileNotFound
	}
	delete(s.profiles, id)
	return nil
}

func (s *MemoryStore) CreateTemplate(ctx context.Context, tmpl *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tmpl.ID] = *tmpl
	return nil
}

func (s *MemoryStore) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tmpl, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return &tmpl, nil
}

func (s *MemoryStore) ListTemplates(ctx context.Context, projectID string) ([]template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var templates []template.Template
	for _, t := range s.templates {
		if t.ProjectID == projectID {
			templates = append(templates, t)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (s *MemoryStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *MemoryStore) CreateCA(ctx context.Context, ca *model.CertificateAuthority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cas[ca.ID] = *ca
	return nil
}

func (s *MemoryStore) GetCA(ctx context.Context, id string) (*model.CertificateAuthority, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ca, ok := s.cas[id]
	if !ok {
		return nil, ErrCANotFound
	}
	return &ca, nil
}

func (s *MemoryStore) ListCAs(ctx context.Context, projectID string) ([]model.CertificateAuthority, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cas []model.CertificateAuthority
	for _, ca := range s.cas {
		if ca.ProjectID == projectID {
			cas = append(cas, ca)
		}
	}
	sort.Slice(cas, func(i, j int) bool { return cas[i].CreatedAt.Before(cas[j].CreatedAt) })
	return cas, nil
}

func (s *MemoryStore) CreateCertificate(ctx context.Context, cert *model.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs[cert.ID] = *cert
	return nil
}

func (s *MemoryStore) GetCertificate(ctx context.Context, id string) (*model.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certs[id]
	if !ok {
		return nil, ErrCertificateNotFound
	}
	return &cert, nil
}

func (s *MemoryStore) GetCertificateBySerial(ctx context.Context, serial string) (*model.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cert := range s.certs {
		if cert.SerialNumber == serial {
			c := cert
			return &c, nil
		}
	}
	return nil, ErrCertificateNotFound
}

func (s *MemoryStore) UpdateCertificate(ctx context.Context, cert *model.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[cert.ID]; !ok {
		return ErrCertificateNotFound
	}
	s.certs[cert.ID] = *cert
	return nil
}

func (s *MemoryStore) ListCertificates(ctx context.Context, projectID string) ([]model.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var certs []model.Certificate
	for _, c := range s.certs {
		if c.ProjectID == projectID {
			certs = append(certs, c)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].CreatedAt.Before(certs[j].CreatedAt) })
	return certs, nil
}
