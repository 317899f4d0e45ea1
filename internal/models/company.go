package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is one tenant in the shared registry. Slug and SchemaName
// are both unique and immutable after creation; SchemaName is derived
// from the slug once and persisted.
type Company struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	SchemaName string    `json:"schema_name" db:"schema_name"`
	LogoURL    *string   `json:"logo_url,omitempty" db:"logo_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
