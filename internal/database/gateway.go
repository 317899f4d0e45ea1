package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/schema"
)

// DefaultAcquireTimeout bounds the wait for a pooled connection so a
// saturated pool surfaces ErrPoolExhausted instead of hanging.
const DefaultAcquireTimeout = 5 * time.Second

// TxRunner executes a unit of work inside a transaction bound to one
// tenant schema. The pgx.Tx handle is only valid inside the callback
// and must not be retained.
type TxRunner interface {
	WithSchema(ctx context.Context, schemaName string, fn func(tx pgx.Tx) error) error
}

// Gateway binds one pooled connection to one tenant schema for exactly
// one transaction, then returns the connection to the pool in a
// neutral state. All tenant-scoped reads and writes go through here.
type Gateway struct {
	db             schema.ConnAcquirer
	acquireTimeout time.Duration
	verifySchema   bool
}

type GatewayOption func(*Gateway)

// WithAcquireTimeout overrides the pool acquisition wait bound.
func WithAcquireTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.acquireTimeout = d }
}

// WithSchemaVerification enables an existence check before the
// transaction begins, turning a stale registry entry into a
// SchemaNotProvisionedError instead of an undefined-table failure
// mid-operation.
func WithSchemaVerification() GatewayOption {
	return func(g *Gateway) { g.verifySchema = true }
}

func NewGateway(db schema.ConnAcquirer, opts ...GatewayOption) *Gateway {
	g := &Gateway{db: db, acquireTimeout: DefaultAcquireTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithSchema runs fn against a transaction whose search_path resolves
// into schemaName first, then public. The binding is SET LOCAL, so it
// dies with the transaction; the explicit reset before release covers
// drivers that reuse raw sessions across logical transactions.
// Cancellation of ctx rolls the transaction back.
func (g *Gateway) WithSchema(ctx context.Context, schemaName string, fn func(tx pgx.Tx) error) error {
	name, err := schema.NewName(schemaName)
	if err != nil {
		return err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()
	conn, release, err := g.db.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("acquire connection for %s: %w", name, common.ErrPoolExhausted)
		}
		return fmt.Errorf("acquire connection for %s: %w", name, err)
	}
	defer release()

	if g.verifySchema {
		var exists bool
		err := conn.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
			name.String(),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("verify schema %s: %w", name, err)
		}
		if !exists {
			return &common.SchemaNotProvisionedError{SchemaName: name.String()}
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", name, err)
	}

	// The reset runs on every exit path, after commit or rollback and
	// outside the transaction, so the session is neutral before the
	// next caller sees this connection. WithoutCancel keeps it running
	// when the request context is already dead.
	defer func() {
		if _, err := conn.Exec(context.WithoutCancel(ctx), "SET search_path TO DEFAULT"); err != nil {
			logrus.WithError(err).WithField("schema", name.String()).Warn("failed to reset search_path before release")
		}
	}()

	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+name.Quoted()+", public"); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("bind search_path to %s: %w", name, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		if common.IsUndefinedTable(err) {
			return &common.SchemaNotProvisionedError{SchemaName: name.String()}
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("commit transaction for %s: %w", name, err)
	}
	return nil
}
