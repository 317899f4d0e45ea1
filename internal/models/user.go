package models

import (
	"time"

	"github.com/google/uuid"
)

// User lives in a tenant schema's users table. Email is unique per
// tenant, not globally.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName *string   `json:"first_name,omitempty" db:"first_name"`
	LastName  *string   `json:"last_name,omitempty" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
