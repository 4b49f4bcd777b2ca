package cli_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/cli"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Adm1nPassword"

type testFixture struct {
	ctx   context.Context
	cfg   config.Config
	redis *miniredis.Miniredis
	dir   string
}

// setupTestFixture points the CLI at a miniredis instance, so state survives
// between command invocations like it does against a real server.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "verbai.yaml")
	body := fmt.Sprintf("env: TEST\nlog_level: error\ncache: redis\nredis_addr: %s\ndata_folder: %s\nadmin_password: %s\n", mr.Addr(), dir, adminPassword)
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	cfg, err := config.Load(file)
	require.NoError(t, err)
	return &testFixture{ctx: context.Background(), cfg: cfg, redis: mr, dir: dir}
}

func (f *testFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.WithConfig(f.cfg))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(f.ctx)
	return out.String(), err
}

func (f *testFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := f.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// TestTenants_AddUseRemove verifies tenant switching persists between runs.
func TestTenants_AddUseRemove(t *testing.T) {
	f := setupTestFixture(t)

	out := f.mustRun(t, "tenants", "add", "Acme Corp", "--id", "acme", "--domain", "acme.test")
	require.Contains(t, out, "Added tenant Acme Corp (acme)")

	f.mustRun(t, "tenants", "use", "acme")
	out = f.mustRun(t, "tenants", "current")
	require.Equal(t, "Acme Corp (acme)\n", out)

	var list []tenants.Tenant
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "--json", "tenants", "list")), &list))
	require.Len(t, list, 2)

	f.mustRun(t, "tenants", "remove", "acme")
	out = f.mustRun(t, "tenants", "current")
	require.Contains(t, out, "("+tenants.DefaultTenantID+")")

	_, err := f.run(t, "tenants", "use", "acme")
	require.Error(t, err)
}

// TestContent_SaveAndUpdate verifies partial updates keep the fields that
// were not given on the command line.
func TestContent_SaveAndUpdate(t *testing.T) {
	f := setupTestFixture(t)

	var saved content.Content
	out := f.mustRun(t, "--json", "content", "save", "--title", "Hello World", "--body", "<p>Hi</p>", "--status", "published")
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.Equal(t, "hello-world", saved.Slug)
	require.NotEmpty(t, saved.ID)

	f.mustRun(t, "content", "save", "--id", saved.ID, "--excerpt", "Short")

	var shown content.Content
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "content", "show", "hello-world")), &shown))
	require.Equal(t, "Short", shown.Excerpt)
	require.Equal(t, "<p>Hi</p>", shown.Body)
	require.Equal(t, content.StatusPublished, shown.Status)

	out = f.mustRun(t, "sitemap", "--domain", "acme.test")
	require.Contains(t, out, "<loc>https://acme.test/blog/hello-world</loc>")

	f.mustRun(t, "content", "delete", saved.ID)
	_, err := f.run(t, "content", "show", saved.ID)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = f.run(t, "content", "save", "--body", "no title")
	require.True(t, errors.Is(err, errors.ErrInvalidContent))
}

// TestSettings_SectionsBrandSeo verifies settings edits are stored.
func TestSettings_SectionsBrandSeo(t *testing.T) {
	f := setupTestFixture(t)

	f.mustRun(t, "sections", "toggle", "cta")
	f.mustRun(t, "sections", "set", "hero", "headline_1=Grow faster", "badge=New")
	f.mustRun(t, "brand", "set", "--primary-color", "#ff0000")
	f.mustRun(t, "seo", "set", "--title", "Acme")

	var sections []site.Section
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "--json", "sections", "list")), &sections))
	i := site.FindSection(sections, "cta")
	require.GreaterOrEqual(t, i, 0)
	require.False(t, sections[i].IsEnabled)
	hero := sections[site.FindSection(sections, "hero")].Content.(*site.HeroContent)
	require.Equal(t, "Grow faster", hero.Headline1)
	require.Equal(t, "New", hero.Badge)

	var brand site.BrandConfig
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "brand")), &brand))
	require.Equal(t, "#ff0000", brand.PrimaryColor)
	require.Equal(t, "Inter", brand.FontBody)

	var seo site.PageSeoConfig
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "seo")), &seo))
	require.Equal(t, "Acme", seo.Title)

	_, err := f.run(t, "sections", "set", "hero", "novalue")
	require.Error(t, err)
}

// TestLeads_SaveAndExport verifies the pipeline and CSV export.
func TestLeads_SaveAndExport(t *testing.T) {
	f := setupTestFixture(t)

	f.mustRun(t, "leads", "save", "--name", "Ana", "--email", "ana@acme.test")
	f.mustRun(t, "leads", "save", "--name", "Bo", "--email", "bo@acme.test", "--status", "won")

	var list []leads.Lead
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "--json", "leads", "list")), &list))
	require.Len(t, list, 2)

	out := f.mustRun(t, "leads", "export")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, leads.ExportHeader, records[0])

	xlsx := filepath.Join(f.dir, "leads.xlsx")
	f.mustRun(t, "leads", "export", "--format", "xlsx", "-o", xlsx)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	_, err = f.run(t, "leads", "export", "--format", "pdf")
	require.Error(t, err)
}

// TestSession_LoginWhoamiLogout verifies the session is kept in the store.
func TestSession_LoginWhoamiLogout(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.run(t, "login", "--email", "admin@verbai.com", "--password", "wrong")
	require.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	_, err = f.run(t, "whoami")
	require.True(t, errors.Is(err, errors.ErrSessionNotFound))

	f.mustRun(t, "login", "--email", "admin@verbai.com", "--password", adminPassword)
	out := f.mustRun(t, "whoami")
	require.Contains(t, out, "<admin@verbai.com>")

	f.mustRun(t, "profile", "--name", "Ada Lovelace")
	out = f.mustRun(t, "whoami")
	require.Contains(t, out, "Ada Lovelace")

	f.mustRun(t, "logout")
	_, err = f.run(t, "whoami")
	require.True(t, errors.Is(err, errors.ErrSessionNotFound))
}

// TestUsers_Add verifies new users are written to the credentials file and
// can sign in.
func TestUsers_Add(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.run(t, "users", "add", "ed@verbai.com", "--password", "weak")
	require.True(t, errors.Is(err, errors.ErrWeakPassword))

	f.mustRun(t, "users", "add", "ed@verbai.com", "--name", "Ed Itor", "--password", "Edit0rPassword")
	out := f.mustRun(t, "users", "list")
	require.Contains(t, out, "ed@verbai.com")
	require.Contains(t, out, "editor")

	f.mustRun(t, "login", "--email", "ed@verbai.com", "--password", "Edit0rPassword")
}

// TestAssist_WithoutKey verifies the assistant degrades to neutral output.
func TestAssist_WithoutKey(t *testing.T) {
	f := setupTestFixture(t)

	out := f.mustRun(t, "assist", "image", "a", "city")
	require.True(t, strings.HasPrefix(out, "https://image.pollinations.ai/prompt/"), out)

	f.mustRun(t, "content", "save", "--title", "Hello")
	var audit struct {
		Score   int    `json:"score"`
		Verdict string `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal([]byte(f.mustRun(t, "--json", "assist", "audit", "hello")), &audit))
	require.Equal(t, "Critical", audit.Verdict)
	require.Zero(t, audit.Score)
}
