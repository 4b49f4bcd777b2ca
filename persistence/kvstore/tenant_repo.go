package kvstore

import (
	"context"
	"encoding/json"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/rs/zerolog/log"
)

var _ tenants.Repo = (*TenantRepo)(nil)

// TenantRepo keeps the process-wide tenant list under a global key.
type TenantRepo struct {
	kv KV
}

func NewTenantRepo(kv KV) *TenantRepo { return &TenantRepo{kv: kv} }

func (r *TenantRepo) List(ctx context.Context) ([]*tenants.Tenant, error) {
	raw, err := r.kv.Get(ctx, TenantsKey)
	if err != nil {
		if errors.Is(err, errors.ErrCacheMiss) {
			return []*tenants.Tenant{}, nil
		}
		return nil, errors.Wrapf(err, "[TenantRepo List] failed to read tenants")
	}
	var list []*tenants.Tenant
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Warn().Err(err).Msg("discarding malformed tenant list")
		return []*tenants.Tenant{}, nil
	}
	return list, nil
}

func (r *TenantRepo) SaveAll(ctx context.Context, list []*tenants.Tenant) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return errors.Wrapf(err, "[TenantRepo SaveAll] failed to encode tenants")
	}
	if err := r.kv.Set(ctx, TenantsKey, string(raw), 0); err != nil {
		return errors.Wrapf(err, "[TenantRepo SaveAll] failed to write tenants")
	}
	return nil
}

func (r *TenantRepo) ActiveID(ctx context.Context) (string, error) {
	id, err := r.kv.Get(ctx, ActiveTenantKey)
	if err != nil {
		if errors.Is(err, errors.ErrCacheMiss) {
			return "", nil
		}
		return "", errors.Wrapf(err, "[TenantRepo ActiveID] failed to read active tenant")
	}
	return id, nil
}

func (r *TenantRepo) SetActiveID(ctx context.Context, id string) error {
	if err := r.kv.Set(ctx, ActiveTenantKey, id, 0); err != nil {
		return errors.Wrapf(err, "[TenantRepo SetActiveID] failed to write active tenant")
	}
	return nil
}
