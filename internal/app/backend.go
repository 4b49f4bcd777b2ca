package app

import (
	"context"
	"fmt"

	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/persistence/kvstore"
	"github.com/matteuzdev/VerbAI-Studio/persistence/pgstore"
	"github.com/matteuzdev/VerbAI-Studio/persistence/remote"
	"github.com/rs/zerolog/log"
)

// OpenKV opens the key-value store holding the tenant list, the session and,
// for the local backend, the segments.
func OpenKV(ctx context.Context, cfg config.StorageConfig) (kvstore.KV, func() error, error) {
	switch cfg.GetCache() {
	case config.CacheMemory:
		return kvstore.NewMemoryKV(), noClose, nil
	case config.CacheRedis, "":
		kv, err := kvstore.DialRedis(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
		if err != nil {
			return nil, nil, fmt.Errorf("[app OpenKV] failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
		}
		return kv, kv.Close, nil
	}
	return nil, nil, fmt.Errorf("[app OpenKV] unknown cache %q", cfg.GetCache())
}

// NewAdapter builds the segment persistence backend selected by config.
// token supplies the bearer token sent to the remote document service.
func NewAdapter(ctx context.Context, cfg config.StorageConfig, kv kvstore.KV, token func() string) (persistence.Adapter, func() error, error) {
	switch cfg.GetBackend() {
	case config.BackendLocal, "":
		return kvstore.NewAdapter(kv, cfg.GetStoragePrefix()), noClose, nil

	case config.BackendRemote:
		client := remote.NewClient(cfg.GetRemoteURL(), cfg.GetRemoteTimeout(), remote.WithTokenSource(token))
		if err := client.Ping(ctx); err != nil {
			// Reads fail per segment and the store degrades to defaults.
			log.Warn().Err(err).Str("url", cfg.GetRemoteURL()).Msg("document service is not reachable")
		}
		return client, noClose, nil

	case config.BackendPostgres:
		db, err := pgstore.Open(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("[app NewAdapter] %w", err)
		}
		pg := pgstore.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("[app NewAdapter] %w", err)
		}
		return pg, db.Close, nil
	}
	return nil, nil, fmt.Errorf("[app NewAdapter] unknown backend %q", cfg.GetBackend())
}

func noClose() error { return nil }
