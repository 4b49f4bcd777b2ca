// Package pgstore keeps tenant segments in a Postgres table, one JSONB row per
// tenant and segment.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/rs/zerolog/log"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS tenant_segments (
	tenant_id  TEXT NOT NULL,
	segment    TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, segment)
)`
	selectSQL = `SELECT data FROM tenant_segments WHERE tenant_id = $1 AND segment = $2`
	upsertSQL = `INSERT INTO tenant_segments (tenant_id, segment, data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (tenant_id, segment) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	purgeSQL = `DELETE FROM tenant_segments WHERE tenant_id = $1`
)

var (
	_ persistence.Adapter = (*Store)(nil)
	_ persistence.Purger  = (*Store)(nil)
)

type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "[pgstore Open] failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "[pgstore Open] failed to ping database")
	}
	return db, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the segment table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrapf(err, "[Store EnsureSchema] failed to create tenant_segments")
	}
	return nil
}

func (s *Store) ReadSegment(ctx context.Context, tenantID string, segment persistence.Segment, out any) (bool, error) {
	if err := persistence.Check(tenantID, segment); err != nil {
		return false, err
	}
	var raw []byte
	err := s.db.QueryRowContext(ctx, selectSQL, tenantID, string(segment)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrapf(err, "[Store ReadSegment] failed to read %s/%s", tenantID, segment)
	}
	return persistence.Decode(tenantID, segment, raw, out), nil
}

func (s *Store) WriteSegment(ctx context.Context, tenantID string, segment persistence.Segment, data any) error {
	if err := persistence.Check(tenantID, segment); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "[Store WriteSegment] failed to encode %s/%s", tenantID, segment)
	}
	// lib/pq wants JSONB parameters as text.
	if _, err := s.db.ExecContext(ctx, upsertSQL, tenantID, string(segment), string(raw)); err != nil {
		return errors.Wrapf(err, "[Store WriteSegment] failed to write %s/%s", tenantID, segment)
	}
	return nil
}

func (s *Store) PurgeTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return errors.ErrInvalidTenant
	}
	res, err := s.db.ExecContext(ctx, purgeSQL, tenantID)
	if err != nil {
		return errors.Wrapf(err, "[Store PurgeTenant] failed to delete %s", tenantID)
	}
	n, _ := res.RowsAffected()
	log.Info().Str("tenant", tenantID).Int64("rows", n).Msg("purged tenant data")
	return nil
}
