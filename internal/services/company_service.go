package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/models"
	"github.com/theoribbi/tenantly/internal/repositories"
	"github.com/theoribbi/tenantly/internal/schema"
)

// SchemaProvisioner creates a tenant schema and brings it to the
// latest migration version. *schema.Provisioner satisfies it.
type SchemaProvisioner interface {
	Provision(ctx context.Context, schemaName string) error
}

// CompanyService owns the tenant registry and the provisioning flow:
// registry insert, schema creation, migration.
type CompanyService interface {
	Create(ctx context.Context, req *CreateCompanyRequest) (*models.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	MigrateAll(ctx context.Context) (int, error)
	UploadLogo(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) error
	LogoURL(ctx context.Context, id uuid.UUID) (string, error)
}

type companyService struct {
	companyRepo repositories.CompanyRepository
	provisioner SchemaProvisioner
	storage     StorageService
}

func NewCompanyService(companyRepo repositories.CompanyRepository, provisioner SchemaProvisioner, storage StorageService) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		provisioner: provisioner,
		storage:     storage,
	}
}

type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// Create registers the company and provisions its schema. The schema
// name is derived from the slug here, once, and persisted; it is never
// recomputed for an existing tenant.
func (s *companyService) Create(ctx context.Context, req *CreateCompanyRequest) (*models.Company, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	schemaName, err := schema.NameForSlug(slug)
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Slug:       slug,
		SchemaName: schemaName.String(),
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	if err := s.provisioner.Provision(ctx, company.SchemaName); err != nil {
		return nil, fmt.Errorf("provision tenant %q: %w", slug, err)
	}

	logrus.WithFields(logrus.Fields{"slug": slug, "schema": company.SchemaName}).Info("company created")
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

func (s *companyService) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return s.companyRepo.GetBySlug(ctx, slug)
}

func (s *companyService) List(ctx context.Context) ([]*models.Company, error) {
	return s.companyRepo.List(ctx)
}

// MigrateAll re-provisions every registered schema. Idempotent per
// schema; used after deploying new changesets. Returns how many
// schemas were brought up to date before any failure.
func (s *companyService) MigrateAll(ctx context.Context) (int, error) {
	schemaNames, err := s.companyRepo.ListSchemaNames(ctx)
	if err != nil {
		return 0, err
	}

	for i, schemaName := range schemaNames {
		if err := s.provisioner.Provision(ctx, schemaName); err != nil {
			return i, fmt.Errorf("migrate schema %q: %w", schemaName, err)
		}
	}

	logrus.WithField("schemas", len(schemaNames)).Info("all tenant schemas migrated")
	return len(schemaNames), nil
}

func (s *companyService) UploadLogo(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) error {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("company %s not found", id)
	}

	objectName := fmt.Sprintf("logos/%s", company.ID)
	if err := s.storage.UploadLogo(ctx, objectName, reader, size, contentType); err != nil {
		return fmt.Errorf("upload logo for %q: %w", company.Slug, err)
	}
	return s.companyRepo.SetLogoURL(ctx, id, objectName)
}

func (s *companyService) LogoURL(ctx context.Context, id uuid.UUID) (string, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if company == nil || company.LogoURL == nil {
		return "", fmt.Errorf("company %s has no logo", id)
	}
	return s.storage.LogoURL(ctx, *company.LogoURL, 15*time.Minute)
}
