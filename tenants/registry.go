package tenants

import (
	"context"
	"slices"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/rs/zerolog/log"
)

// LifecycleFunc is invoked when a tenant is added to or removed from the registry.
type LifecycleFunc func(ctx context.Context, t Tenant) error

type RegistryOption func(*Registry)

// WithDefaultTenantID changes the id of the seeded install tenant.
func WithDefaultTenantID(id string) RegistryOption {
	return func(r *Registry) {
		if id != "" {
			r.defaultID = id
		}
	}
}

// WithOnboarding seeds the data of newly added tenants.
func WithOnboarding(fn LifecycleFunc) RegistryOption {
	return func(r *Registry) {
		r.onboard = fn
	}
}

// WithRemoval runs after a tenant is removed, typically to purge its segments.
func WithRemoval(fn LifecycleFunc) RegistryOption {
	return func(r *Registry) {
		r.remove = fn
	}
}

// Registry is the process-wide tenant list with the active selection. It is
// loaded once and written through Repo on every change.
type Registry struct {
	repo      Repo
	defaultID string
	onboard   LifecycleFunc
	remove    LifecycleFunc

	lock     sync.RWMutex
	tenants  []*Tenant
	activeID string
}

func NewRegistry(repo Repo, opts ...RegistryOption) (*Registry, error) {
	if repo == nil {
		return nil, errors.New("[NewRegistry] tenant repo is required")
	}
	r := &Registry{repo: repo, defaultID: DefaultTenantID}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Load reads the tenant list, seeding the install tenant when nothing is stored,
// and restores the active selection.
func (r *Registry) Load(ctx context.Context) error {
	list, err := r.repo.List(ctx)
	if err != nil {
		return errors.Wrapf(err, "[Registry Load] failed to list tenants")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.tenants = list
	if r.indexOf(r.defaultID) < 0 {
		d := Default()
		d.ID = r.defaultID
		r.tenants = append([]*Tenant{d}, r.tenants...)
		if err := r.repo.SaveAll(ctx, r.tenants); err != nil {
			return errors.Wrapf(err, "[Registry Load] failed to seed default tenant")
		}
	}

	active, err := r.repo.ActiveID(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read active tenant, using default")
	}
	if active == "" || r.indexOf(active) < 0 {
		active = r.defaultID
	}
	r.activeID = active
	return nil
}

func (r *Registry) DefaultID() string {
	return r.defaultID
}

// List returns copies of all tenants in insertion order.
func (r *Registry) List() []Tenant {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, *t)
	}
	return out
}

func (r *Registry) Get(id string) (*Tenant, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, errors.Wrapf(errors.ErrTenantNotFound, "[Registry Get] %s", id)
	}
	t := *r.tenants[i]
	return &t, nil
}

// Active returns the selected tenant.
func (r *Registry) Active() Tenant {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if i := r.indexOf(r.activeID); i >= 0 {
		return *r.tenants[i]
	}
	d := Default()
	d.ID = r.defaultID
	return *d
}

// Select makes id the active tenant and remembers the choice.
func (r *Registry) Select(ctx context.Context, id string) (Tenant, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return Tenant{}, errors.Wrapf(errors.ErrTenantNotFound, "[Registry Select] %s", id)
	}
	r.activeID = id
	if err := r.repo.SetActiveID(ctx, id); err != nil {
		log.Err(err).Str("tenant", id).Msg("failed to persist active tenant")
	}
	return *r.tenants[i], nil
}

// Add appends t, persists the list and seeds the tenant's data. A failed
// onboarding is logged; the tenant is bootstrapped on first load instead.
func (r *Registry) Add(ctx context.Context, t Tenant) (Tenant, error) {
	built, err := New(t.ID, t.Name, t.Domain)
	if err != nil {
		return Tenant{}, err
	}
	built.LogoURL = t.LogoURL
	if t.Plan != "" {
		built.Plan = t.Plan
	}
	if t.Status != "" {
		built.Status = t.Status
	}
	t = *built

	r.lock.Lock()
	if r.indexOf(t.ID) >= 0 {
		r.lock.Unlock()
		return Tenant{}, errors.Wrapf(errors.ErrTenantExists, "[Registry Add] %s", t.ID)
	}
	added := t
	r.tenants = append(r.tenants, &added)
	err = r.repo.SaveAll(ctx, r.tenants)
	r.lock.Unlock()
	if err != nil {
		return t, errors.Wrapf(err, "[Registry Add] failed to persist tenant list")
	}

	if r.onboard != nil {
		if err := r.onboard(ctx, t); err != nil {
			log.Err(err).Str("tenant", t.ID).Msg("failed to seed tenant data")
		}
	}
	return t, nil
}

// Update replaces the stored record of an existing tenant.
func (r *Registry) Update(ctx context.Context, t Tenant) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	i := r.indexOf(t.ID)
	if i < 0 {
		return errors.Wrapf(errors.ErrTenantNotFound, "[Registry Update] %s", t.ID)
	}
	updated := t
	r.tenants[i] = &updated
	return errors.Wrapf(r.repo.SaveAll(ctx, r.tenants), "[Registry Update] failed to persist tenant list")
}

// Remove drops a tenant. The install tenant cannot be removed. Removing the
// active tenant selects the install tenant.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if id == r.defaultID {
		return errors.Wrapf(errors.ErrUnsupported, "[Registry Remove] the default tenant cannot be removed")
	}

	r.lock.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.lock.Unlock()
		return errors.Wrapf(errors.ErrTenantNotFound, "[Registry Remove] %s", id)
	}
	removed := *r.tenants[i]
	r.tenants = slices.Delete(r.tenants, i, i+1)
	err := r.repo.SaveAll(ctx, r.tenants)
	if r.activeID == id {
		r.activeID = r.defaultID
		if serr := r.repo.SetActiveID(ctx, r.defaultID); serr != nil {
			log.Err(serr).Msg("failed to persist active tenant")
		}
	}
	r.lock.Unlock()
	if err != nil {
		return errors.Wrapf(err, "[Registry Remove] failed to persist tenant list")
	}

	if r.remove != nil {
		if err := r.remove(ctx, removed); err != nil {
			log.Err(err).Str("tenant", id).Msg("failed to purge tenant data")
		}
	}
	return nil
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.tenants, func(t *Tenant) bool { return t.ID == id })
}
