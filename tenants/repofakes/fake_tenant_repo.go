package tenantrepofakes

import (
	"context"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants  []*tenants.Tenant
	activeID string
	saves    int
	lock     sync.RWMutex
}

func NewFakeTenantRepo(seed ...*tenants.Tenant) *FakeTenantRepo {
	return &FakeTenantRepo{tenants: copyTenants(seed)}
}

func (tr *FakeTenantRepo) List(_ context.Context) ([]*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return copyTenants(tr.tenants), nil
}

func (tr *FakeTenantRepo) SaveAll(_ context.Context, list []*tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.tenants = copyTenants(list)
	tr.saves++
	return nil
}

func (tr *FakeTenantRepo) ActiveID(_ context.Context) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.activeID, nil
}

func (tr *FakeTenantRepo) SetActiveID(_ context.Context, id string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.activeID = id
	return nil
}

// Saves reports how many times the list was persisted.
func (tr *FakeTenantRepo) Saves() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.saves
}

func copyTenants(in []*tenants.Tenant) []*tenants.Tenant {
	out := make([]*tenants.Tenant, 0, len(in))
	for _, t := range in {
		c := *t
		out = append(out, &c)
	}
	return out
}
