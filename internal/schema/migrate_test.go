package schema

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/theoribbi/tenantly/internal/common"
)

type fakeAcquirer struct {
	conn     Conn
	err      error
	released bool
}

func (f *fakeAcquirer) Acquire(ctx context.Context) (Conn, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.conn, func() { f.released = true }, nil
}

type MigrateTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxConnIface
	acquirer   *fakeAcquirer
	runner     *Runner
	name       Name
	changesets []Changeset
	ctx        context.Context
}

func (suite *MigrateTestSuite) SetupTest() {
	mock, err := pgxmock.NewConn()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.acquirer = &fakeAcquirer{conn: mock}
	suite.runner = NewRunner(suite.acquirer)
	suite.name = Name("c_acme")
	suite.changesets = []Changeset{
		{ID: 1, Name: "create_users", SQL: "CREATE TABLE users", Checksum: "sum-1"},
		{ID: 2, Name: "add_index", SQL: "CREATE INDEX idx_users ON users", Checksum: "sum-2"},
	}
	suite.ctx = context.Background()
}

func (suite *MigrateTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	assert.True(suite.T(), suite.acquirer.released)
}

func TestMigrateTestSuite(t *testing.T) {
	suite.Run(t, new(MigrateTestSuite))
}

// expectPreamble covers the fixed steps before pending changesets run:
// session search_path bind, advisory lock, ledger DDL, ledger read.
func (suite *MigrateTestSuite) expectPreamble(ledger *pgxmock.Rows) {
	suite.mock.ExpectExec(`SET search_path TO "c_acme", public`).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	suite.mock.ExpectExec(`SELECT pg_advisory_lock`).
		WithArgs("c_acme").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	suite.mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	suite.mock.ExpectQuery(`SELECT id, checksum FROM schema_migrations`).
		WillReturnRows(ledger)
}

// expectEpilogue covers the deferred advisory unlock and search_path
// reset that run on every exit path.
func (suite *MigrateTestSuite) expectEpilogue() {
	suite.mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WithArgs("c_acme").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	suite.mock.ExpectExec(`SET search_path TO DEFAULT`).
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func (suite *MigrateTestSuite) expectApply(cs Changeset) {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(cs.SQL).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	suite.mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs(cs.ID, cs.Name, cs.Checksum).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
}

func (suite *MigrateTestSuite) TestMigrate_FreshSchemaAppliesAllInOrder() {
	suite.expectPreamble(pgxmock.NewRows([]string{"id", "checksum"}))
	suite.expectApply(suite.changesets[0])
	suite.expectApply(suite.changesets[1])
	suite.expectEpilogue()

	count, err := suite.runner.Migrate(suite.ctx, suite.name, suite.changesets)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func (suite *MigrateTestSuite) TestMigrate_SecondRunIsNoop() {
	suite.expectPreamble(pgxmock.NewRows([]string{"id", "checksum"}).
		AddRow(1, "sum-1").
		AddRow(2, "sum-2"))
	suite.expectEpilogue()

	count, err := suite.runner.Migrate(suite.ctx, suite.name, suite.changesets)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, count)
}

func (suite *MigrateTestSuite) TestMigrate_ResumesAfterPartialRun() {
	// Process died after changeset 1 committed; only 2 is pending.
	suite.expectPreamble(pgxmock.NewRows([]string{"id", "checksum"}).
		AddRow(1, "sum-1"))
	suite.expectApply(suite.changesets[1])
	suite.expectEpilogue()

	count, err := suite.runner.Migrate(suite.ctx, suite.name, suite.changesets)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *MigrateTestSuite) TestMigrate_ChecksumMismatchIsDrift() {
	suite.expectPreamble(pgxmock.NewRows([]string{"id", "checksum"}).
		AddRow(1, "tampered"))
	suite.expectEpilogue()

	count, err := suite.runner.Migrate(suite.ctx, suite.name, suite.changesets)
	var drift *common.DriftError
	assert.ErrorAs(suite.T(), err, &drift)
	assert.Equal(suite.T(), "c_acme", drift.SchemaName)
	assert.Equal(suite.T(), 0, count)
}

func (suite *MigrateTestSuite) TestMigrate_FailureMidRunKeepsAppliedCount() {
	suite.expectPreamble(pgxmock.NewRows([]string{"id", "checksum"}))
	suite.expectApply(suite.changesets[0])
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(suite.changesets[1].SQL).
		WillReturnError(errors.New("syntax error"))
	suite.mock.ExpectRollback()
	suite.expectEpilogue()

	count, err := suite.runner.Migrate(suite.ctx, suite.name, suite.changesets)
	assert.ErrorContains(suite.T(), err, "0002_add_index")
	assert.Equal(suite.T(), 1, count)
}
