package repositories

import (
	"context"
	"errors"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface shared by *pgxpool.Pool and the pgxmock
// pool used in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CompanyRepository is the tenant registry: the durable slug to
// schema-name mapping in the shared public schema. Rows are never
// updated after creation except for the logo object reference.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	ListSchemaNames(ctx context.Context) ([]string, error)
	SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error
}

type companyRepo struct {
	db DB
}

func NewCompanyRepo(db DB) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = "id, name, slug, schema_name, logo_url, created_at"

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO public.companies (id, name, slug, schema_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name, company.Slug, company.SchemaName)
	if common.IsUniqueViolation(err) {
		return &common.ConflictError{Resource: "Company", Field: "slug"}
	}
	return err
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM public.companies WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM public.companies WHERE slug = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, slug))
}

func (r *companyRepo) List(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM public.companies ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.ID, &company.Name, &company.Slug, &company.SchemaName, &company.LogoURL, &company.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *companyRepo) ListSchemaNames(ctx context.Context) ([]string, error) {
	query := `SELECT schema_name FROM public.companies ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *companyRepo) SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	query := `UPDATE public.companies SET logo_url = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, logoURL, id)
	return err
}

func (r *companyRepo) scanOne(row pgx.Row) (*models.Company, error) {
	company := &models.Company{}
	err := row.Scan(&company.ID, &company.Name, &company.Slug, &company.SchemaName, &company.LogoURL, &company.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}
