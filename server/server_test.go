package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/internal/config"
	"github.com/matteuzdev/VerbAI-Studio/server"
	"github.com/matteuzdev/VerbAI-Studio/socket"
	"github.com/matteuzdev/VerbAI-Studio/users"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@verbai.com"
	adminPassword = "Adm1nPassword"
)

type testFixture struct {
	now    time.Time
	seq    int
	docs   *docstore.Store
	hub    *socket.Hub
	server *server.Server
}

func setupTestFixture(t *testing.T, settings map[string]any) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), hub: socket.NewHub()}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Run(ctx)

	v := viper.New()
	v.Set("allowed_origins", "*")
	v.Set("base_url", "https://agency.test")
	v.Set("token_ttl", "24h")
	for k, val := range settings {
		v.Set(k, val)
	}

	var err error
	f.docs, err = docstore.Open(t.TempDir(),
		docstore.WithoutWatcher(),
		docstore.WithNowTime(func() time.Time { return f.now }),
		docstore.WithIDGenerator(func() string {
			f.seq++
			return fmt.Sprintf("gen-%d", f.seq)
		}),
		docstore.WithChangeHook(f.hub.Notify),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.docs.Close() })

	hash, err := users.HashPassword(adminPassword)
	require.NoError(t, err)
	table := users.NewTable()
	require.NoError(t, table.Upsert(&users.User{Email: adminEmail, Name: "Ada Admin", Role: users.RoleAdmin, PasswordHash: hash}))

	f.server, err = server.New(config.FromViper(v), f.docs, table,
		server.WithHub(f.hub),
		server.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	return f
}

func (f *testFixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) login(t *testing.T) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin, map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email    string `json:"email"`
			Initials string `json:"initials"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, adminEmail, resp.User.Email)
	require.Equal(t, "AA", resp.User.Initials)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// TestHealth verifies the health probe needs no tenant or token.
func TestHealth(t *testing.T) {
	f := setupTestFixture(t, map[string]any{"api_secret": "s3cret"})

	rec := f.do(t, http.MethodGet, server.RouteHealth, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

// TestLogin_WrongPassword verifies bad credentials are a 401.
func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t, map[string]any{"api_secret": "s3cret"})

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin, map[string]string{"email": adminEmail, "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestContents_Lifecycle verifies create, update, list and delete of contents
// behind bearer auth.
func TestContents_Lifecycle(t *testing.T) {
	f := setupTestFixture(t, map[string]any{"api_secret": "s3cret"})
	post := map[string]any{"type": "post", "title": "Hello World", "slug": "hello-world", "status": "draft"}

	rec := f.do(t, http.MethodPost, server.RouteContents, post, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := "Bearer " + f.login(t)
	rec = f.do(t, http.MethodPost, server.RouteContents, post, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[map[string]string](t, rec)
	require.Equal(t, map[string]string{"message": "Created", "id": "gen-1"}, saved)

	f.now = f.now.Add(time.Hour)
	rec = f.do(t, http.MethodPost, server.RouteContents, map[string]any{"id": "gen-1", "status": "published"},
		"X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Updated", decode[map[string]string](t, rec)["message"])

	rec = f.do(t, http.MethodGet, server.RouteContents+"?type=post", nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	require.Equal(t, "Hello World", items[0]["title"])
	require.Equal(t, "published", items[0]["status"])
	require.NotEqual(t, items[0]["createdAt"], items[0]["updatedAt"])

	rec = f.do(t, http.MethodGet, server.RouteContents+"?type=page", nil, "X-Tenant-ID", "acme")
	require.Empty(t, decode[[]map[string]any](t, rec))

	rec = f.do(t, http.MethodDelete, "/api/contents/gen-1", nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/contents/gen-1", nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// TestLeads_PublicSubmitAndExport verifies contact forms can post leads
// without a token while listing and export stay protected.
func TestLeads_PublicSubmitAndExport(t *testing.T) {
	f := setupTestFixture(t, map[string]any{"api_secret": "s3cret"})

	for _, name := range []string{"First", "Second"} {
		rec := f.do(t, http.MethodPost, server.RouteLeads, map[string]any{"name": name, "email": strings.ToLower(name) + "@x.com"},
			"X-Tenant-ID", "acme")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "Lead Saved", decode[map[string]string](t, rec)["message"])
	}

	rec := f.do(t, http.MethodGet, server.RouteLeads, nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := "Bearer " + f.login(t)
	rec = f.do(t, http.MethodGet, server.RouteLeads, nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 2)
	require.Equal(t, "Second", list[0]["name"])
	require.Equal(t, "new", list[0]["status"])
	require.Equal(t, "Website", list[0]["source"])

	rec = f.do(t, http.MethodGet, server.RouteLeadsExport+"?format=csv", nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "leads-acme.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "ID,Name,Email"))

	rec = f.do(t, http.MethodGet, server.RouteLeadsExport+"?format=pdf", nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/leads/missing", nil, "X-Tenant-ID", "acme", "Authorization", auth)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// TestSegments verifies whole segment reads and writes used by the remote adapter.
func TestSegments(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/segments/settings", nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusNotFound, rec.Code)

	settings := `{"brandKit":{"primaryColor":"#111111"},"pageSeo":{"title":"Acme"},"sections":[],"siteConfig":{"header":{"logoText":"Acme"}}}`
	rec = f.do(t, http.MethodPut, "/api/segments/settings", settings, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/segments/settings", nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	require.Equal(t, "#111111", got["brandKit"].(map[string]any)["primaryColor"])

	rec = f.do(t, http.MethodPut, "/api/segments/terms", `[{"id":"t1","name":"News"}]`, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, server.RouteTerms, nil, "X-Tenant-ID", "acme")
	require.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/segments/bogus", nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/segments/leads", `{"not":"a list"}`, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestTenantResolution verifies tenant isolation, the default tenant and
// rejection of unsafe tenant ids.
func TestTenantResolution(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(t, http.MethodPost, server.RouteTerms, map[string]any{"id": "t1", "name": "News"}, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteTerms+"?tenant=acme", nil)
	require.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = f.do(t, http.MethodGet, server.RouteTerms, nil, "X-Tenant-ID", "globex")
	require.Empty(t, decode[[]map[string]any](t, rec))
	rec = f.do(t, http.MethodGet, server.RouteTerms, nil)
	require.Empty(t, decode[[]map[string]any](t, rec))

	rec = f.do(t, http.MethodGet, server.RouteTerms, nil, "X-Tenant-ID", "../etc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestConfig_Merge verifies posted keys merge into the site config.
func TestConfig_Merge(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(t, http.MethodPost, server.RouteConfig, map[string]any{"robotsTxt": "User-agent: *\nDisallow: /admin"}, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, server.RouteConfig, nil, "X-Tenant-ID", "acme")
	cfg := decode[map[string]any](t, rec)
	require.Equal(t, "User-agent: *\nDisallow: /admin", cfg["robotsTxt"])
	require.Equal(t, "My Agency", cfg["header"].(map[string]any)["logoText"])

	rec = f.do(t, http.MethodGet, server.RouteRobots, nil, "X-Tenant-ID", "acme")
	require.Equal(t, "User-agent: *\nDisallow: /admin", rec.Body.String())

	rec = f.do(t, http.MethodPost, server.RouteConfig, `{"header": 5}`, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestSitemap verifies only published posts are listed, under the requested domain.
func TestSitemap(t *testing.T) {
	f := setupTestFixture(t, nil)

	for _, p := range []map[string]any{
		{"type": "post", "title": "Live", "slug": "live", "status": "published"},
		{"type": "post", "title": "Draft", "slug": "draft", "status": "draft"},
		{"type": "page", "title": "About", "slug": "about", "status": "published"},
	} {
		rec := f.do(t, http.MethodPost, server.RouteContents, p, "X-Tenant-ID", "acme")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(t, http.MethodGet, server.RouteSitemap+"?domain=acme.test", nil, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<loc>https://acme.test/</loc>")
	require.Contains(t, body, "<loc>https://acme.test/blog/live</loc>")
	require.NotContains(t, body, "draft")
	require.NotContains(t, body, "about")

	rec = f.do(t, http.MethodGet, server.RouteSitemap, nil, "X-Tenant-ID", "acme")
	require.Contains(t, rec.Body.String(), "<loc>https://agency.test/</loc>")
}

// TestCorsPreflight verifies OPTIONS requests are answered by the CORS layer.
func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t, map[string]any{"api_secret": "s3cret"})

	rec := f.do(t, http.MethodOptions, server.RouteContents, nil, "Origin", "https://acme.test")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Tenant-ID")
}

// TestWebsocket_ChangeFeed verifies writes are pushed to subscribers of the tenant.
func TestWebsocket_ChangeFeed(t *testing.T) {
	f := setupTestFixture(t, nil)
	httpServer := httptest.NewServer(f.server)
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + server.RouteWebsocket + "?tenant=acme"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	read := func() socket.WSMessage {
		var msg socket.WSMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}
	require.Equal(t, socket.HelloType, read().Type)

	rec := f.do(t, http.MethodPost, server.RouteTerms, map[string]any{"name": "News"}, "X-Tenant-ID", "acme")
	require.Equal(t, http.StatusOK, rec.Code)

	msg := read()
	require.Equal(t, socket.ChangeType, msg.Type)
	require.Equal(t, "acme", msg.TenantID)
	require.JSONEq(t, `{"tenantId":"acme","segment":"terms"}`, string(msg.Payload))
}
