package common

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPoolExhausted is returned when a connection could not be acquired
// from the pool within the configured wait. Transient; callers may retry
// with backoff.
var ErrPoolExhausted = errors.New("connection pool exhausted")

// InvalidNameError reports a slug or schema name that fails the strict
// identifier grammar. It is raised before any statement reaches the
// database and is never retried.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid identifier %q: must start with a letter and contain only letters, digits, underscores and hyphens", e.Name)
}

// ConflictError reports a unique-constraint violation surfaced to the
// caller as "already exists".
type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

// TenantNotFoundError reports a subdomain that matched no registered
// tenant. The request terminates here; it must never fall through to
// the shared surface.
type TenantNotFoundError struct {
	Slug string
}

func (e *TenantNotFoundError) Error() string {
	return fmt.Sprintf("tenant %q not found", e.Slug)
}

// SchemaNotProvisionedError reports a registry entry whose schema is
// missing or only partially migrated. Not auto-repaired.
type SchemaNotProvisionedError struct {
	SchemaName string
}

func (e *SchemaNotProvisionedError) Error() string {
	return fmt.Sprintf("schema %q is not provisioned: run provisioning for this tenant", e.SchemaName)
}

// DriftError reports a changeset whose content no longer matches the
// checksum recorded when it was applied. Fatal; requires operator
// intervention.
type DriftError struct {
	SchemaName  string
	ChangesetID string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("changeset %s checksum mismatch in schema %q: migration content changed after being applied", e.ChangesetID, e.SchemaName)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsUndefinedTable reports whether err is a Postgres undefined-table
// error (SQLSTATE 42P01), which the gateway treats as a sign the tenant
// schema was never provisioned.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
