package kvstore

import (
	"context"
	"encoding/json"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/rs/zerolog/log"
)

var (
	_ persistence.Adapter = (*Adapter)(nil)
	_ persistence.Purger  = (*Adapter)(nil)
)

// Adapter stores each segment as a JSON string under its own key.
type Adapter struct {
	kv     KV
	prefix string
}

func NewAdapter(kv KV, prefix string) *Adapter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Adapter{kv: kv, prefix: prefix}
}

func (a *Adapter) ReadSegment(ctx context.Context, tenantID string, segment persistence.Segment, out any) (bool, error) {
	if err := persistence.Check(tenantID, segment); err != nil {
		return false, err
	}
	raw, err := a.kv.Get(ctx, SegmentKey(a.prefix, tenantID, segment))
	if err != nil {
		if errors.Is(err, errors.ErrCacheMiss) {
			return false, nil
		}
		return false, errors.Wrapf(err, "[Adapter ReadSegment] failed to read %s/%s", tenantID, segment)
	}
	return persistence.Decode(tenantID, segment, []byte(raw), out), nil
}

func (a *Adapter) WriteSegment(ctx context.Context, tenantID string, segment persistence.Segment, data any) error {
	if err := persistence.Check(tenantID, segment); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "[Adapter WriteSegment] failed to encode %s/%s", tenantID, segment)
	}
	if err := a.kv.Set(ctx, SegmentKey(a.prefix, tenantID, segment), string(raw), 0); err != nil {
		return errors.Wrapf(err, "[Adapter WriteSegment] failed to write %s/%s", tenantID, segment)
	}
	return nil
}

// PurgeTenant removes every key stored for tenantID.
func (a *Adapter) PurgeTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return errors.ErrInvalidTenant
	}
	keys, err := a.kv.ScanKeys(ctx, tenantPattern(a.prefix, tenantID))
	if err != nil {
		return errors.Wrapf(err, "[Adapter PurgeTenant] failed to list keys of %s", tenantID)
	}
	// A prefix scan of "acme_*" also matches "acme_eu_settings".
	owned := keys[:0]
	for _, k := range keys {
		for _, s := range persistence.Segments {
			if k == SegmentKey(a.prefix, tenantID, s) {
				owned = append(owned, k)
			}
		}
	}
	if err := a.kv.Del(ctx, owned...); err != nil {
		return errors.Wrapf(err, "[Adapter PurgeTenant] failed to delete keys of %s", tenantID)
	}
	log.Info().Str("tenant", tenantID).Int("keys", len(owned)).Msg("purged tenant data")
	return nil
}
