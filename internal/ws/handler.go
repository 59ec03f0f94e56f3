package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin; access control is
	// out of scope for the push channel.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the request to a websocket connection, registers it with
// the hub and serves the read side until the client goes away. The literal
// text "ping" gets an immediate pong on the same connection; any other
// client input is ignored.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zap.S().Named("ws_hub").Warnw("upgrade failed", "error", err)
			return
		}

		subscriber := NewSubscriber(conn)
		hub.Register(subscriber)
		go subscriber.writePump()

		readLoop(hub, subscriber, conn)
	}
}

func readLoop(hub *Hub, subscriber *Subscriber, conn *websocket.Conn) {
	defer hub.Unregister(subscriber)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Named("ws_hub").Debugw("read failed", "error", err)
			}
			return
		}

		if strings.TrimSpace(string(message)) == "ping" {
			// Liveness probe, answered on this subscriber only.
			reply, _ := json.Marshal(events.NewPong())
			if !subscriber.enqueue(reply) {
				return
			}
		}
	}
}
