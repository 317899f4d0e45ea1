package schema

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Provisioner creates a tenant schema and brings it to the latest
// migration version. Safe to run repeatedly against the same schema.
type Provisioner struct {
	db         ConnAcquirer
	runner     *Runner
	changesets []Changeset
}

func NewProvisioner(db ConnAcquirer, changesets []Changeset) *Provisioner {
	return &Provisioner{
		db:         db,
		runner:     NewRunner(db),
		changesets: changesets,
	}
}

// Provision validates schemaName, creates the schema if it does not
// exist, and applies pending migrations. Validation happens before any
// DDL is issued. Other schemas, including public, are never touched.
func (p *Provisioner) Provision(ctx context.Context, schemaName string) error {
	name, err := NewName(schemaName)
	if err != nil {
		return err
	}

	conn, release, err := p.db.Acquire(ctx)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+name.Quoted()); err != nil {
		release()
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	release()

	applied, err := p.runner.Migrate(ctx, name, p.changesets)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"schema": name.String(), "applied": applied}).Debug("schema provisioned")
	return nil
}
