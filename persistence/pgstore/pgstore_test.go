package pgstore_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/persistence/pgstore"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx   context.Context
	mock  sqlmock.Sqlmock
	store *pgstore.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &testFixture{ctx: context.Background(), mock: mock, store: pgstore.New(db)}
}

type lead struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestStore_ReadSegment verifies a stored row decodes into out.
func TestStore_ReadSegment(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tenant_segments WHERE tenant_id = $1 AND segment = $2")).
		WithArgs("acme", "leads").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`[{"id":"1","name":"Ana"}]`)))

	var out []lead
	found, err := f.store.ReadSegment(f.ctx, "acme", persistence.SegmentLeads, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []lead{{ID: "1", Name: "Ana"}}, out)
}

// TestStore_ReadSegment_Missing verifies no row reads as absent.
func TestStore_ReadSegment_Missing(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectQuery("SELECT data FROM tenant_segments").
		WithArgs("acme", "terms").
		WillReturnError(sql.ErrNoRows)

	var out []lead
	found, err := f.store.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.NoError(t, err)
	require.False(t, found)
}

// TestStore_ReadSegment_Malformed verifies bad JSON reads as absent.
func TestStore_ReadSegment_Malformed(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectQuery("SELECT data FROM tenant_segments").
		WithArgs("acme", "terms").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"id":`)))

	var out []lead
	found, err := f.store.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.NoError(t, err)
	require.False(t, found)
}

// TestStore_ReadSegment_Error verifies driver failures are returned.
func TestStore_ReadSegment_Error(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectQuery("SELECT data FROM tenant_segments").
		WithArgs("acme", "terms").
		WillReturnError(sql.ErrConnDone)

	var out []lead
	_, err := f.store.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.ErrorIs(t, err, sql.ErrConnDone)
}

// TestStore_WriteSegment verifies the upsert statement and its arguments.
func TestStore_WriteSegment(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (tenant_id, segment) DO UPDATE")).
		WithArgs("acme", "leads", `[{"id":"1","name":"Ana"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, f.store.WriteSegment(f.ctx, "acme", persistence.SegmentLeads, []lead{{ID: "1", Name: "Ana"}}))
}

// TestStore_WriteSegment_BadSegment verifies validation happens before any query.
func TestStore_WriteSegment_BadSegment(t *testing.T) {
	f := setupTestFixture(t)
	require.ErrorIs(t, f.store.WriteSegment(f.ctx, "acme", "users", nil), errors.ErrInvalidSegment)
}

// TestStore_PurgeTenant verifies every row of the tenant is deleted.
func TestStore_PurgeTenant(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tenant_segments WHERE tenant_id = $1")).
		WithArgs("acme").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, f.store.PurgeTenant(f.ctx, "acme"))
}

// TestStore_EnsureSchema verifies the table is created.
func TestStore_EnsureSchema(t *testing.T) {
	f := setupTestFixture(t)
	f.mock.ExpectExec("CREATE TABLE IF NOT EXISTS tenant_segments").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, f.store.EnsureSchema(f.ctx))
}
