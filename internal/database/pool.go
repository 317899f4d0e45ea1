package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/schema"
)

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logrus.Info("database connected")
	return pool, nil
}

// PoolAcquirer adapts *pgxpool.Pool to the connection-acquisition
// seam the schema machinery and the gateway run on.
type PoolAcquirer struct {
	Pool *pgxpool.Pool
}

func (a PoolAcquirer) Acquire(ctx context.Context) (schema.Conn, func(), error) {
	conn, err := a.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Release, nil
}
