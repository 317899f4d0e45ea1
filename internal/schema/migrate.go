package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/common"
)

// Conn is the subset of a pooled connection the migration machinery
// needs. *pgxpool.Conn satisfies it.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnAcquirer hands out one dedicated connection at a time. The
// returned release func must be called on every exit path.
type ConnAcquirer interface {
	Acquire(ctx context.Context) (Conn, func(), error)
}

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Runner applies pending changesets to one tenant schema, tracking
// applied ids in a per-schema schema_migrations ledger.
type Runner struct {
	db ConnAcquirer
}

func NewRunner(db ConnAcquirer) *Runner {
	return &Runner{db: db}
}

// Migrate brings schemaName up to the latest changeset and returns how
// many changesets it newly applied. Each changeset runs in its own
// transaction with its ledger row, so a run killed midway resumes from
// the first unrecorded changeset. Concurrent runs against the same
// schema are serialized by a schema-keyed advisory lock.
func (r *Runner) Migrate(ctx context.Context, name Name, changesets []Changeset) (int, error) {
	conn, release, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	// Session-level binding: the ledger DDL and every changeset run
	// with unqualified names resolving into the target schema. Reset
	// before the connection goes back to the pool.
	if _, err := conn.Exec(ctx, "SET search_path TO "+name.Quoted()+", public"); err != nil {
		return 0, fmt.Errorf("bind search_path to %s: %w", name, err)
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SET search_path TO DEFAULT")
	}()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtext($1))", name.String()); err != nil {
		return 0, fmt.Errorf("acquire migration lock for %s: %w", name, err)
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock(hashtext($1))", name.String())
	}()

	if _, err := conn.Exec(ctx, ledgerDDL); err != nil {
		return 0, fmt.Errorf("ensure migration ledger in %s: %w", name, err)
	}

	applied, err := readLedger(ctx, conn)
	if err != nil {
		return 0, fmt.Errorf("read migration ledger in %s: %w", name, err)
	}

	count := 0
	for _, cs := range changesets {
		checksum, ok := applied[cs.ID]
		if ok {
			if checksum != cs.Checksum {
				return count, &common.DriftError{SchemaName: name.String(), ChangesetID: fmt.Sprintf("%04d_%s", cs.ID, cs.Name)}
			}
			continue
		}
		if err := r.applyOne(ctx, conn, cs); err != nil {
			return count, fmt.Errorf("apply changeset %04d_%s to %s: %w", cs.ID, cs.Name, name, err)
		}
		count++
	}

	if count > 0 {
		logrus.WithFields(logrus.Fields{"schema": name.String(), "applied": count}).Info("migrations applied")
	}
	return count, nil
}

// applyOne runs one changeset and its ledger insert atomically. The
// ledger primary key makes the loser of a lock-free race fail instead
// of double-applying.
func (r *Runner) applyOne(ctx context.Context, conn Conn, cs Changeset) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, cs.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (id, name, checksum) VALUES ($1, $2, $3)",
		cs.ID, cs.Name, cs.Checksum,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func readLedger(ctx context.Context, conn Conn) (map[int]string, error) {
	rows, err := conn.Query(ctx, "SELECT id, checksum FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var id int
		var checksum string
		if err := rows.Scan(&id, &checksum); err != nil {
			return nil, err
		}
		applied[id] = checksum
	}
	return applied, rows.Err()
}
