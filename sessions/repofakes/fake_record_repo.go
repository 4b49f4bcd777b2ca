package sessionrepofakes

import (
	"context"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/sessions"
)

var _ sessions.RecordRepo = (*FakeRecordRepo)(nil)

type FakeRecordRepo struct {
	session *sessions.Session
	err     error
	lock    sync.RWMutex
}

func NewFakeRecordRepo(seed *sessions.Session) *FakeRecordRepo {
	return &FakeRecordRepo{session: seed.Clone()}
}

// FailWith makes every subsequent write return err.
func (r *FakeRecordRepo) FailWith(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

func (r *FakeRecordRepo) Load(_ context.Context) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.session.Clone(), nil
}

func (r *FakeRecordRepo) Save(_ context.Context, s *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.err != nil {
		return r.err
	}
	r.session = s.Clone()
	return nil
}

func (r *FakeRecordRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.err != nil {
		return r.err
	}
	r.session = nil
	return nil
}

// Stored returns the persisted record.
func (r *FakeRecordRepo) Stored() *sessions.Session {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.session.Clone()
}
