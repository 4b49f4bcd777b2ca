package adapterfakes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/persistence"
)

var (
	_ persistence.Adapter = (*FakeAdapter)(nil)
	_ persistence.Purger  = (*FakeAdapter)(nil)
)

// FakeAdapter keeps segments as raw JSON and can be told to fail.
type FakeAdapter struct {
	docs     map[string][]byte
	writes   int
	readErr  error
	writeErr error
	lock     sync.RWMutex
}

func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{docs: make(map[string][]byte)}
}

func key(tenantID string, segment persistence.Segment) string {
	return tenantID + "/" + string(segment)
}

func (a *FakeAdapter) ReadSegment(_ context.Context, tenantID string, segment persistence.Segment, out any) (bool, error) {
	if err := persistence.Check(tenantID, segment); err != nil {
		return false, err
	}
	a.lock.RLock()
	defer a.lock.RUnlock()
	if a.readErr != nil {
		return false, a.readErr
	}
	raw, ok := a.docs[key(tenantID, segment)]
	if !ok {
		return false, nil
	}
	return persistence.Decode(tenantID, segment, raw, out), nil
}

func (a *FakeAdapter) WriteSegment(_ context.Context, tenantID string, segment persistence.Segment, data any) error {
	if err := persistence.Check(tenantID, segment); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.writeErr != nil {
		return a.writeErr
	}
	a.docs[key(tenantID, segment)] = raw
	a.writes++
	return nil
}

func (a *FakeAdapter) PurgeTenant(_ context.Context, tenantID string) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	for _, s := range persistence.Segments {
		delete(a.docs, key(tenantID, s))
	}
	return nil
}

// FailReads makes every read return err until called with nil.
func (a *FakeAdapter) FailReads(err error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.readErr = err
}

// FailWrites makes every write return err until called with nil.
func (a *FakeAdapter) FailWrites(err error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.writeErr = err
}

// Put stores raw bytes for a segment, bypassing encoding.
func (a *FakeAdapter) Put(tenantID string, segment persistence.Segment, raw []byte) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.docs[key(tenantID, segment)] = raw
}

// Raw returns the stored bytes of a segment.
func (a *FakeAdapter) Raw(tenantID string, segment persistence.Segment) ([]byte, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	raw, ok := a.docs[key(tenantID, segment)]
	return raw, ok
}

// Writes reports how many writes succeeded.
func (a *FakeAdapter) Writes() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.writes
}
