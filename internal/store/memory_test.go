package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/template"
)

func TestMemoryStore_ProfileCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	profile := &model.CertificateProfile{
		ID:                     "profile-1",
		ProjectID:              "project-1",
		Name:                   "web-server",
		Slug:                   "web-server",
		CertificateAuthorityID: "ca-1",
		EnrollmentMethod:       model.EnrollmentMethodAPI,
		CreatedAt:              time.Now(),
	}
	if err := s.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.GetProfile(ctx, "profile-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "web-server" {
		t.Errorf("name = %q", got.Name)
	}

	// Stored copies are isolated from caller mutation.
	got.Name = "mutated"
	again, err := s.GetProfile(ctx, "profile-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.Name != "web-server" {
		t.Errorf("stored record mutated through returned pointer")
	}

	profile.Name = "web-server-v2"
	if err := s.UpdateProfile(ctx, profile); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err = s.GetProfile(ctx, "profile-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "web-server-v2" {
		t.Errorf("name after update = %q", got.Name)
	}

	if err := s.DeleteProfile(ctx, "profile-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetProfile(ctx, "profile-1"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestMemoryStore_ProfileNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("get: expected ErrProfileNotFound, got %v", err)
	}
	if err := s.UpdateProfile(ctx, &model.CertificateProfile{ID: "missing"}); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("update: expected ErrProfileNotFound, got %v", err)
	}
	if err := s.DeleteProfile(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("delete: expected ErrProfileNotFound, got %v", err)
	}
}

func TestMemoryStore_ListProfilesScopedByProject(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i, projectID := range []string{"project-1", "project-1", "project-2"} {
		profile := &model.CertificateProfile{
			ID:        string(rune('a' + i)),
			ProjectID: projectID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateProfile(ctx, profile); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	profiles, err := s.ListProfiles(ctx, "project-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len = %d, want 2", len(profiles))
	}
	if profiles[0].ID != "a" || profiles[1].ID != "b" {
		t.Errorf("profiles not ordered by creation time: %s, %s", profiles[0].ID, profiles[1].ID)
	}

	empty, err := s.ListProfiles(ctx, "project-3")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no profiles for unknown project, got %d", len(empty))
	}
}

func TestMemoryStore_TemplateCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tmpl := &template.Template{ID: "tmpl-1", ProjectID: "project-1", Name: "web-server"}
	if err := s.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.GetTemplate(ctx, "tmpl-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "web-server" {
		t.Errorf("name = %q", got.Name)
	}

	templates, err := s.ListTemplates(ctx, "project-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(templates) != 1 {
		t.Errorf("len = %d, want 1", len(templates))
	}

	if err := s.DeleteTemplate(ctx, "tmpl-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetTemplate(ctx, "tmpl-1"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
	if err := s.DeleteTemplate(ctx, "tmpl-1"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestMemoryStore_CAs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ca := &model.CertificateAuthority{ID: "ca-1", ProjectID: "project-1", Name: "root", Status: model.CAStatusActive}
	if err := s.CreateCA(ctx, ca); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.GetCA(ctx, "ca-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "root" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := s.GetCA(ctx, "missing"); !errors.Is(err, ErrCANotFound) {
		t.Errorf("expected ErrCANotFound, got %v", err)
	}

	cas, err := s.ListCAs(ctx, "project-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(cas) != 1 {
		t.Errorf("len = %d, want 1", len(cas))
	}
}

func TestMemoryStore_Certificates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	cert := &model.Certificate{
		ID:           "cert-1",
		ProjectID:    "project-1",
		SerialNumber: "0a1b2c",
		CommonName:   "app.example.com",
		Status:       model.CertStatusActive,
	}
	if err := s.CreateCertificate(ctx, cert); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.GetCertificate(ctx, "cert-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.CommonName != "app.example.com" {
		t.Errorf("common name = %q", got.CommonName)
	}

	bySerial, err := s.GetCertificateBySerial(ctx, "0a1b2c")
	if err != nil {
		t.Fatalf("get by serial failed: %v", err)
	}
	if bySerial.ID != "cert-1" {
		t.Errorf("id = %q", bySerial.ID)
	}
	if _, err := s.GetCertificateBySerial(ctx, "ffff"); !errors.Is(err, ErrCertificateNotFound) {
		t.Errorf("expected ErrCertificateNotFound, got %v", err)
	}

	cert.RenewedFromCertificateID = "cert-0"
	if err := s.UpdateCertificate(ctx, cert); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err = s.GetCertificate(ctx, "cert-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.RenewedFromCertificateID != "cert-0" {
		t.Errorf("renewal link = %q", got.RenewedFromCertificateID)
	}

	if err := s.UpdateCertificate(ctx, &model.Certificate{ID: "missing"}); !errors.Is(err, ErrCertificateNotFound) {
		t.Errorf("expected ErrCertificateNotFound, got %v", err)
	}

	certs, err := s.ListCertificates(ctx, "project-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(certs) != 1 {
		t.Errorf("len = %d, want 1", len(certs))
	}
}
