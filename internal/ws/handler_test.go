package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/doc-scanner/internal/events"
	"github.com/docuflow/doc-scanner/internal/ws"
)

func dialTestServer(t *testing.T, hub *ws.Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(ws.Handler(hub))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func waitForSubscribers(t *testing.T, hub *ws.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPingIsAnsweredWithPong(t *testing.T) {
	hub := ws.NewHub()
	conn := dialTestServer(t, hub)
	waitForSubscribers(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply events.PongReply
	require.NoError(t, json.Unmarshal(payload, &reply))
	assert.Equal(t, events.TypePong, reply.Type)
}

func TestBroadcastReachesConnectedClient(t *testing.T) {
	hub := ws.NewHub()
	conn := dialTestServer(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.Broadcast(events.NewFileStatus(42, "completed", map[string]any{"filename": "report.pdf"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event events.FileStatusEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, events.TypeFileStatus, event.Type)
	assert.Equal(t, uint(42), event.FileID)
	assert.Equal(t, "completed", event.Status)
	assert.Equal(t, "report.pdf", event.Data["filename"])
}

func TestNonPingClientInputIsIgnored(t *testing.T) {
	hub := ws.NewHub()
	conn := dialTestServer(t, hub)
	waitForSubscribers(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"whatever"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	// The only reply is the pong for the second message.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply events.PongReply
	require.NoError(t, json.Unmarshal(payload, &reply))
	assert.Equal(t, events.TypePong, reply.Type)
}

func TestDisconnectedClientIsUnregistered(t *testing.T) {
	hub := ws.NewHub()
	conn := dialTestServer(t, hub)
	waitForSubscribers(t, hub, 1)

	require.NoError(t, conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	waitForSubscribers(t, hub, 0)
}
