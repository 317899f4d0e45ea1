package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/database"
	"github.com/theoribbi/tenantly/internal/models"
	"github.com/theoribbi/tenantly/internal/repositories"
)

// UserService runs user CRUD against one tenant schema at a time.
// Schema-addressed methods serve the subdomain surface; the ForCompany
// variants serve the admin surface and resolve the schema through the
// registry first.
type UserService interface {
	List(ctx context.Context, schemaName string) ([]*models.User, error)
	Get(ctx context.Context, schemaName string, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, schemaName string, req *CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, schemaName string, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, schemaName string, id uuid.UUID) error

	ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error)
	GetForCompany(ctx context.Context, companyID, userID uuid.UUID) (*models.User, error)
	CreateForCompany(ctx context.Context, companyID uuid.UUID, req *CreateUserRequest) (*models.User, error)
	UpdateForCompany(ctx context.Context, companyID, userID uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	DeleteForCompany(ctx context.Context, companyID, userID uuid.UUID) error
}

type userService struct {
	runner      database.TxRunner
	userRepo    repositories.UserRepository
	companyRepo repositories.CompanyRepository
}

func NewUserService(runner database.TxRunner, userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository) UserService {
	return &userService{
		runner:      runner,
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *userService) List(ctx context.Context, schemaName string) ([]*models.User, error) {
	var users []*models.User
	err := s.runner.WithSchema(ctx, schemaName, func(tx pgx.Tx) error {
		var err error
		users, err = s.userRepo.List(ctx, tx)
		return err
	})
	return users, err
}

func (s *userService) Get(ctx context.Context, schemaName string, id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := s.runner.WithSchema(ctx, schemaName, func(tx pgx.Tx) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, tx, id)
		return err
	})
	return user, err
}

func (s *userService) Create(ctx context.Context, schemaName string, req *CreateUserRequest) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	err := s.runner.WithSchema(ctx, schemaName, func(tx pgx.Tx) error {
		return s.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, schemaName string, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.runner.WithSchema(ctx, schemaName, func(tx pgx.Tx) error {
		existing, err := s.userRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if req.Email != nil {
			existing.Email = *req.Email
		}
		if req.FirstName != nil {
			existing.FirstName = req.FirstName
		}
		if req.LastName != nil {
			existing.LastName = req.LastName
		}
		if err := s.userRepo.Update(ctx, tx, existing); err != nil {
			return err
		}
		user = existing
		return nil
	})
	return user, err
}

func (s *userService) Delete(ctx context.Context, schemaName string, id uuid.UUID) error {
	return s.runner.WithSchema(ctx, schemaName, func(tx pgx.Tx) error {
		return s.userRepo.Delete(ctx, tx, id)
	})
}

func (s *userService) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	schemaName, err := s.schemaForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, schemaName)
}

func (s *userService) GetForCompany(ctx context.Context, companyID, userID uuid.UUID) (*models.User, error) {
	schemaName, err := s.schemaForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, schemaName, userID)
}

func (s *userService) CreateForCompany(ctx context.Context, companyID uuid.UUID, req *CreateUserRequest) (*models.User, error) {
	schemaName, err := s.schemaForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, schemaName, req)
}

func (s *userService) UpdateForCompany(ctx context.Context, companyID, userID uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	schemaName, err := s.schemaForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, schemaName, userID, req)
}

func (s *userService) DeleteForCompany(ctx context.Context, companyID, userID uuid.UUID) error {
	schemaName, err := s.schemaForCompany(ctx, companyID)
	if err != nil {
		return err
	}
	return s.Delete(ctx, schemaName, userID)
}

func (s *userService) schemaForCompany(ctx context.Context, companyID uuid.UUID) (string, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", &common.TenantNotFoundError{Slug: companyID.String()}
	}
	return company.SchemaName, nil
}
