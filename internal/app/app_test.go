package app_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/internal/app"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/server"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Adm1nPassword"

func loadConfig(t *testing.T, extra string) config.Config {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "verbai.yaml")
	body := fmt.Sprintf("cache: memory\ndata_folder: %s\nadmin_password: %s\n%s", dir, adminPassword, extra)
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	cfg, err := config.Load(file)
	require.NoError(t, err)
	return cfg
}

func newApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// TestNew_LocalBackend verifies startup loads the agency tenant and that
// tenants can be added, switched to and removed.
func TestNew_LocalBackend(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, loadConfig(t, ""))

	require.Equal(t, tenants.DefaultTenantID, a.Store.TenantID())
	require.False(t, a.Store.Degraded())
	require.Len(t, a.Tenants.List(), 1)
	require.NotEmpty(t, a.Store.Sections())

	_, err := a.Tenants.Add(ctx, tenants.Tenant{ID: "acme", Name: "Acme", Domain: "acme.test"})
	require.NoError(t, err)
	var settings map[string]any
	found, err := a.Adapter.ReadSegment(ctx, "acme", persistence.SegmentSettings, &settings)
	require.NoError(t, err)
	require.True(t, found, "onboarding seeds the new tenant")

	_, err = a.SwitchTenant(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "acme", a.Store.TenantID())
	require.Equal(t, "Acme", a.Store.SiteConfig().Header.LogoText)

	require.NoError(t, a.RemoveTenant(ctx, "acme"))
	require.Equal(t, tenants.DefaultTenantID, a.Store.TenantID())
	found, err = a.Adapter.ReadSegment(ctx, "acme", persistence.SegmentSettings, &settings)
	require.NoError(t, err)
	require.False(t, found, "removal purges the tenant's segments")

	_, err = a.SwitchTenant(ctx, "ghost")
	require.ErrorIs(t, err, errors.ErrTenantNotFound)
}

// TestNew_SessionBootstrap verifies the credential table is created with the
// configured admin password.
func TestNew_SessionBootstrap(t *testing.T) {
	cfg := loadConfig(t, "")
	a := newApp(t, cfg)

	_, err := os.Stat(cfg.GetCredentialsFile())
	require.NoError(t, err)

	session, err := a.Sessions.Authenticate(context.Background(), cfg.GetSystemAdminEmail(), adminPassword)
	require.NoError(t, err)
	require.Equal(t, "System Administrator", session.Name)
	require.Empty(t, session.Token, "no API secret configured")
}

// TestNew_RemoteBackend verifies the store persists through the document service.
func TestNew_RemoteBackend(t *testing.T) {
	docs, err := docstore.Open(t.TempDir(), docstore.WithoutWatcher())
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	serverCfg := loadConfig(t, "")
	srv, err := server.New(serverCfg, docs, nil)
	require.NoError(t, err)
	httpServer := httptest.NewServer(srv)
	t.Cleanup(httpServer.Close)

	a := newApp(t, loadConfig(t, fmt.Sprintf("backend: remote\nremote_url: %s\n", httpServer.URL)))
	require.False(t, a.Store.Degraded())

	settings, found, err := docs.Settings(tenants.DefaultTenantID)
	require.NoError(t, err)
	require.True(t, found, "bootstrap writes the settings segment")
	require.NotEmpty(t, settings.Sections)

	saved, err := a.Store.UpsertContent(context.Background(), content.Content{Type: content.TypePost, Title: "Hello World"})
	require.NoError(t, err)

	posts, err := docs.Posts(tenants.DefaultTenantID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, saved.ID, posts[0].ID)
	require.Equal(t, "hello-world", posts[0].Slug)
}

// TestNew_UnknownBackend verifies configuration errors stop startup.
func TestNew_UnknownBackend(t *testing.T) {
	_, err := app.New(context.Background(), loadConfig(t, "backend: floppy\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "floppy")
}

// TestNewAssistant_NoKey verifies the assistant works without an API key.
func TestNewAssistant_NoKey(t *testing.T) {
	a := app.NewAssistant(loadConfig(t, ""))
	require.Empty(t, a.GenerateText(context.Background(), "x", "", ""))
}
