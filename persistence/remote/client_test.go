package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/persistence/remote"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx    context.Context
	server *httptest.Server
	client *remote.Client

	lock    sync.Mutex
	docs    map[string]string // tenant/segment -> body
	headers []http.Header
	status  int
}

func setupTestFixture(t *testing.T, options ...remote.Option) *testFixture {
	t.Helper()

	f := &testFixture{ctx: context.Background(), docs: make(map[string]string)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/segments/{segment}", func(w http.ResponseWriter, r *http.Request) {
		f.lock.Lock()
		defer f.lock.Unlock()
		f.headers = append(f.headers, r.Header.Clone())
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		body, ok := f.docs[r.Header.Get(remote.TenantHeader)+"/"+r.PathValue("segment")]
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("PUT /api/segments/{segment}", func(w http.ResponseWriter, r *http.Request) {
		f.lock.Lock()
		defer f.lock.Unlock()
		f.headers = append(f.headers, r.Header.Clone())
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.docs[r.Header.Get(remote.TenantHeader)+"/"+r.PathValue("segment")] = string(body)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.client = remote.NewClient(f.server.URL, 5*time.Second, options...)
	return f
}

type term struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TestClient_RoundTrip verifies a segment written remotely reads back for the same tenant only.
func TestClient_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	in := []term{{ID: "1", Name: "News"}}
	require.NoError(t, f.client.WriteSegment(f.ctx, "acme", persistence.SegmentTerms, in))

	var out []term
	found, err := f.client.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)

	found, err = f.client.ReadSegment(f.ctx, "globex", persistence.SegmentTerms, &out)
	require.NoError(t, err)
	require.False(t, found)
}

// TestClient_MalformedIsAbsent verifies an unparseable body reads as absent.
func TestClient_MalformedIsAbsent(t *testing.T) {
	f := setupTestFixture(t)
	f.docs["acme/leads"] = "<html>"

	var out []term
	found, err := f.client.ReadSegment(f.ctx, "acme", persistence.SegmentLeads, &out)
	require.NoError(t, err)
	require.False(t, found)
}

// TestClient_ServerError verifies non-404 failures surface as errors.
func TestClient_ServerError(t *testing.T) {
	f := setupTestFixture(t)
	f.status = http.StatusInternalServerError

	var out []term
	_, err := f.client.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.ErrorIs(t, err, errors.ErrInternal)

	err = f.client.WriteSegment(f.ctx, "acme", persistence.SegmentTerms, out)
	require.ErrorIs(t, err, errors.ErrInternal)

	f.status = http.StatusUnauthorized
	err = f.client.WriteSegment(f.ctx, "acme", persistence.SegmentTerms, out)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

// TestClient_BearerToken verifies the token source is sent on each request.
func TestClient_BearerToken(t *testing.T) {
	f := setupTestFixture(t, remote.WithTokenSource(func() string { return "abc" }))

	require.NoError(t, f.client.WriteSegment(f.ctx, "acme", persistence.SegmentSettings, map[string]any{}))
	require.Len(t, f.headers, 1)
	require.Equal(t, "Bearer abc", f.headers[0].Get("Authorization"))
	require.Equal(t, "acme", f.headers[0].Get(remote.TenantHeader))
}

// TestClient_Unreachable verifies transport failures are errors.
func TestClient_Unreachable(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Close()

	var out []term
	_, err := f.client.ReadSegment(f.ctx, "acme", persistence.SegmentTerms, &out)
	require.Error(t, err)
	require.Error(t, f.client.Ping(f.ctx))
}

// TestClient_Ping verifies the health check.
func TestClient_Ping(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.client.Ping(f.ctx))
}
