// Package app wires configuration, persistence, tenants, sessions and the
// tenant data store into one object for the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/matteuzdev/VerbAI-Studio/assistant"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/persistence/kvstore"
	"github.com/matteuzdev/VerbAI-Studio/sessions"
	"github.com/matteuzdev/VerbAI-Studio/store"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/matteuzdev/VerbAI-Studio/token"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config    config.Config
	KV        kvstore.KV
	Adapter   persistence.Adapter
	Users     *users.Table
	Sessions  *sessions.Manager
	Tenants   *tenants.Registry
	Store     *store.Store
	Assistant *assistant.Assistant

	closers []func() error
}

// New opens every dependency and loads the active tenant.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.open(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	kv, closeKV, err := OpenKV(ctx, a.Config)
	if err != nil {
		return err
	}
	a.KV = kv
	a.closers = append(a.closers, closeKV)

	if err := a.openSessions(ctx); err != nil {
		return err
	}

	adapter, closeAdapter, err := NewAdapter(ctx, a.Config, a.KV, a.sessionToken)
	if err != nil {
		return err
	}
	a.Adapter = adapter
	a.closers = append(a.closers, closeAdapter)

	if err := a.openStore(ctx); err != nil {
		return err
	}
	a.Assistant = NewAssistant(a.Config)
	return nil
}

func (a *App) openSessions(ctx context.Context) error {
	table, generated, err := users.EnsureTable(a.Config.GetCredentialsFile(), a.Config.GetSystemAdminEmail(), a.Config.GetSystemAdminPassword())
	if err != nil {
		return err
	}
	if generated != "" {
		log.Warn().
			Str("email", a.Config.GetSystemAdminEmail()).
			Str("password", generated).
			Str("file", a.Config.GetCredentialsFile()).
			Msg("created super admin, store this password now; it is not shown again")
	}
	a.Users = table

	var opts []sessions.ManagerOption
	if secret := a.Config.GetAPISecret(); secret != "" {
		opts = append(opts, sessions.WithTokenIssuer(token.NewIssuer(token.NewHMACSigner(secret), a.Config.GetTokenTTL())))
	}
	if a.Sessions, err = sessions.NewManager(table, kvstore.NewSessionRepo(a.KV), opts...); err != nil {
		return err
	}
	return a.Sessions.Load(ctx)
}

func (a *App) openStore(ctx context.Context) error {
	var st *store.Store
	registry, err := tenants.NewRegistry(kvstore.NewTenantRepo(a.KV),
		tenants.WithDefaultTenantID(a.Config.GetDefaultTenantID()),
		tenants.WithOnboarding(func(ctx context.Context, t tenants.Tenant) error { return st.Onboard(ctx, t) }),
		tenants.WithRemoval(func(ctx context.Context, t tenants.Tenant) error { return st.Purge(ctx, t) }),
	)
	if err != nil {
		return err
	}
	st, err = store.New(a.Adapter,
		store.WithTenantDirectory(registry),
		store.WithDefaultTenantID(a.Config.GetDefaultTenantID()),
	)
	if err != nil {
		return err
	}
	if err := registry.Load(ctx); err != nil {
		return err
	}
	a.Tenants, a.Store = registry, st

	active := registry.Active()
	if err := st.LoadTenant(ctx, active.ID); err != nil {
		// The store serves defaults; each failed segment is read again before its first write.
		log.Err(err).Str("tenant", active.ID).Msg("loaded tenant with defaults")
	}
	return nil
}

// SwitchTenant selects id and reloads the store with its data.
func (a *App) SwitchTenant(ctx context.Context, id string) (tenants.Tenant, error) {
	t, err := a.Tenants.Select(ctx, id)
	if err != nil {
		return tenants.Tenant{}, err
	}
	if err := a.Store.LoadTenant(ctx, t.ID); err != nil {
		return t, fmt.Errorf("[App SwitchTenant] %w", err)
	}
	return t, nil
}

// RemoveTenant drops a tenant and reloads the store when it was active.
func (a *App) RemoveTenant(ctx context.Context, id string) error {
	wasActive := a.Tenants.Active().ID == id
	if err := a.Tenants.Remove(ctx, id); err != nil {
		return err
	}
	if wasActive {
		return a.Store.LoadTenant(ctx, a.Tenants.Active().ID)
	}
	return nil
}

func (a *App) sessionToken() string {
	if a.Sessions == nil {
		return ""
	}
	if s := a.Sessions.Current(); s != nil {
		return s.Token
	}
	return ""
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewAssistant builds the generative assistant. Without an API key text
// features return neutral results and images use the public fallback.
func NewAssistant(cfg config.AssistantConfig) *assistant.Assistant {
	key := cfg.GetGeminiAPIKey()
	if key == "" {
		return assistant.New(nil)
	}
	client := assistant.NewGeminiClient(cfg.GetGeminiBaseURL(), key, cfg.GetAssistantTimeout(),
		assistant.WithTextModel(cfg.GetGeminiModel()))
	return assistant.New(client, assistant.WithImageBackend())
}
