package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Infisical/pki-issuance/internal/model"
	"github.com/Infisical/pki-issuance/internal/template"
)

// GormStore is the MySQL-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to MySQL with the given DSN and runs migrations.
func OpenGorm(dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.CertificateProfile{},
		&model.CertificateTemplate{},
		&model.CertificateAuthority{},
		&model.Certificate{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Ping probes the underlying database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *model.CertificateProfile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*model.CertificateProfile, error) {
	var profile model.CertificateProfile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) ListProfiles(ctx context.Context, projectID string) ([]model.CertificateProfile, error) {
	var profiles []model.CertificateProfile
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&profiles).Error
	return profiles, err
}

func (s *GormStore) UpdateProfile(ctx context.Context, profile *model.CertificateProfile) error {
	result := s.db.WithContext(ctx).Model(&model.CertificateProfile{}).Where("id = ?", profile.ID).Updates(profileUpdates(profile))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// profileUpdates lists the updatable profile columns explicitly. Updates with
// a struct skips zero-valued fields, which would drop autoRenew=false,
// renewBeforeDays=0 and cleared template bindings.
func profileUpdates(profile *model.CertificateProfile) map[string]any {
	return map[string]any{
		"name":                    profile.Name,
		"certificate_template_id": profile.CertificateTemplateID,
		"enrollment_method":       profile.EnrollmentMethod,
		"auto_renew":              profile.AutoRenew,
		"renew_before_days":       profile.RenewBeforeDays,
	}
}

func (s *GormStore) DeleteProfile(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&model.CertificateProfile{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *GormStore) CreateTemplate(ctx context.Context, tmpl *template.Template) error {
	row, err := encodeTemplate(tmpl)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *GormStore) GetTemplate(ctx context.Context, id string) (*template.Template, error) {
	var row model.CertificateTemplate
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeTemplate(&row)
}

func (s *GormStore) ListTemplates(ctx context.Context, projectID string) ([]template.Template, error) {
	var rows []model.CertificateTemplate
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	templates := make([]template.Template, 0, len(rows))
	for i := range rows {
		tmpl, err := decodeTemplate(&rows[i])
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tmpl)
	}
	return templates, nil
}

func (s *GormStore) DeleteTemplate(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&model.CertificateTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *GormStore) CreateCA(ctx context.Context, ca *model.CertificateAuthority) error {
	return s.db.WithContext(ctx).Create(ca).Error
}

func (s *GormStore) GetCA(ctx context.Context, id string) (*model.CertificateAuthority, error) {
	var ca model.CertificateAuthority
	err := s.db.WithContext(ctx).First(&ca, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCANotFound
	}
	if err != nil {
		return nil, err
	}
	return &ca, nil
}

func (s *GormStore) ListCAs(ctx context.Context, projectID string) ([]model.CertificateAuthority, error) {
	var cas []model.CertificateAuthority
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&cas).Error
	return cas, err
}

func (s *GormStore) CreateCertificate(ctx context.Context, cert *model.Certificate) error {
	return s.db.WithContext(ctx).Create(cert).Error
}

func (s *GormStore) GetCertificate(ctx context.Context, id string) (*model.Certificate, error) {
	var cert model.Certificate
	err := s.db.WithContext(ctx).First(&cert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *GormStore) GetCertificateBySerial(ctx context.Context, serial string) (*model.Certificate, error) {
	var cert model.Certificate
	err := s.db.WithContext(ctx).First(&cert, "serial_number = ?", serial).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *GormStore) UpdateCertificate(ctx context.Context, cert *model.Certificate) error {
	result := s.db.WithContext(ctx).Model(&model.Certificate{}).Where("id = ?", cert.ID).Updates(certificateUpdates(cert))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

// certificateUpdates lists the mutable certificate columns: status and the
// renewal linkage. The explicit map keeps a zero value (a cleared linkage)
// from being skipped the way a struct update would.
func certificateUpdates(cert *model.Certificate) map[string]any {
	return map[string]any{
		"status":                      cert.Status,
		"renewed_from_certificate_id": cert.RenewedFromCertificateID,
	}
}

func (s *GormStore) ListCertificates(ctx context.Context, projectID string) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&certs).Error
	return certs, err
}

func encodeTemplate(tmpl *template.Template) (*model.CertificateTemplate, error) {
	row := &model.CertificateTemplate{
		ID:        tmpl.ID,
		ProjectID: tmpl.ProjectID,
		Name:      tmpl.Name,
	}

	var err error
	if row.Attributes, err = marshalJSON(tmpl.Attributes); err != nil {
		return nil, err
	}
	if row.SANs, err = marshalJSON(tmpl.SANs); err != nil {
		return nil, err
	}
	if row.KeyUsages, err = marshalJSON(tmpl.KeyUsages); err != nil {
		return nil, err
	}
	if row.ExtendedKeyUsages, err = marshalJSON(tmpl.ExtendedKeyUsages); err != nil {
		return nil, err
	}
	if row.Validity, err = marshalJSON(tmpl.Validity); err != nil {
		return nil, err
	}
	if row.SignatureAlgorithms, err = marshalJSON(tmpl.SignatureAlgorithms); err != nil {
		return nil, err
	}
	if row.KeyAlgorithms, err = marshalJSON(tmpl.KeyAlgorithms); err != nil {
		return nil, err
	}
	return row, nil
}

func decodeTemplate(row *model.CertificateTemplate) (*template.Template, error) {
	tmpl := &template.Template{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Name:      row.Name,
	}

	if err := unmarshalJSON(row.Attributes, &tmpl.Attributes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.SANs, &tmpl.SANs); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.KeyUsages, &tmpl.KeyUsages); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.ExtendedKeyUsages, &tmpl.ExtendedKeyUsages); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.Validity, &tmpl.Validity); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.SignatureAlgorithms, &tmpl.SignatureAlgorithms); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.KeyAlgorithms, &tmpl.KeyAlgorithms); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template column: %w", err)
	}
	return datatypes.JSON(data), nil
}

func unmarshalJSON(data datatypes.JSON, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode template column: %w", err)
	}
	return nil
}
