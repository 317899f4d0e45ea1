package repositories

import (
	"context"
	"errors"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository works against a tenant schema's users table. Every
// method takes the schema-bound transaction handed out by the
// execution gateway; table names stay unqualified so they resolve
// through the transaction's search_path. Handles must not be kept
// past the gateway callback.
type UserRepository interface {
	List(ctx context.Context, tx pgx.Tx) ([]*models.User, error)
	GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, tx pgx.Tx, user *models.User) error
	Update(ctx context.Context, tx pgx.Tx, user *models.User) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type userRepo struct{}

func NewUserRepo() UserRepository {
	return &userRepo{}
}

const userColumns = "id, email, first_name, last_name, created_at"

func (r *userRepo) List(ctx context.Context, tx pgx.Tx) ([]*models.User, error) {
	rows, err := tx.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) GetByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, tx pgx.Tx, user *models.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := tx.Exec(ctx, query, user.ID, user.Email, user.FirstName, user.LastName)
	if common.IsUniqueViolation(err) {
		return &common.ConflictError{Resource: "User", Field: "email"}
	}
	return err
}

func (r *userRepo) Update(ctx context.Context, tx pgx.Tx, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3
		WHERE id = $4
	`
	_, err := tx.Exec(ctx, query, user.Email, user.FirstName, user.LastName, user.ID)
	if common.IsUniqueViolation(err) {
		return &common.ConflictError{Resource: "User", Field: "email"}
	}
	return err
}

func (r *userRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
