package kvstore

import (
	"context"
	"encoding/json"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/sessions"
	"github.com/rs/zerolog/log"
)

var _ sessions.RecordRepo = (*SessionRepo)(nil)

type SessionRepo struct {
	kv KV
}

func NewSessionRepo(kv KV) *SessionRepo { return &SessionRepo{kv: kv} }

func (r *SessionRepo) Load(ctx context.Context) (*sessions.Session, error) {
	raw, err := r.kv.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, errors.ErrCacheMiss) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "[SessionRepo Load] failed to read session")
	}
	var s sessions.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Msg("discarding malformed session record")
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *sessions.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "[SessionRepo Save] failed to encode session")
	}
	if err := r.kv.Set(ctx, SessionKey, string(raw), 0); err != nil {
		return errors.Wrapf(err, "[SessionRepo Save] failed to write session")
	}
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.kv.Del(ctx, SessionKey); err != nil {
		return errors.Wrapf(err, "[SessionRepo Clear] failed to delete session")
	}
	return nil
}
