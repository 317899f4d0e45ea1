package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// registryDDL defines the shared tenant registry. It lives in public
// and is the only table the service owns outside tenant schemas.
const registryDDL = `
	CREATE TABLE IF NOT EXISTS public.companies (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		schema_name TEXT NOT NULL UNIQUE,
		logo_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureRegistry creates the tenant registry table if missing.
// Idempotent; runs at startup.
func EnsureRegistry(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, registryDDL)
	return err
}
