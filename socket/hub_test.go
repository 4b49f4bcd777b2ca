package socket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readMessage reads one message with a deadline so a broken hub fails fast.
func readMessage(t *testing.T, conn *websocket.Conn) socket.WSMessage {
	t.Helper()

	var msg socket.WSMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &msg))
	return msg
}

func dial(t *testing.T, wsURL, tenantID string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?tenant="+tenantID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// TestHubIntegration verifies changes reach only the clients of the same tenant.
func TestHubIntegration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := socket.NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r, r.URL.Query().Get("tenant"))
	}))
	t.Cleanup(server.Close)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	acme := dial(t, wsURL, "acme")
	hello := readMessage(t, acme)
	assert.Equal(t, socket.HelloType, hello.Type)
	assert.Equal(t, "acme", hello.TenantID)
	assert.NotEmpty(t, hello.ClientID)

	globex := dial(t, wsURL, "globex")
	_ = readMessage(t, globex)
	require.Eventually(t, func() bool { return hub.Clients("acme") == 1 && hub.Clients("globex") == 1 },
		time.Second, 10*time.Millisecond)

	hub.Notify(docstore.Change{TenantID: "acme", Segment: persistence.SegmentLeads})

	msg := readMessage(t, acme)
	assert.Equal(t, socket.ChangeType, msg.Type)
	assert.JSONEq(t, `{"tenantId":"acme","segment":"leads"}`, string(msg.Payload))

	require.NoError(t, globex.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := globex.ReadMessage()
	require.Error(t, err, "globex must not see acme changes")

	require.NoError(t, acme.Close())
	require.Eventually(t, func() bool { return hub.Clients("acme") == 0 }, time.Second, 10*time.Millisecond)
}
