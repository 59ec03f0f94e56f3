package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send protocol-level pings to the peer with this period. Must be less
	// than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	sendBufferSize = 64
)

// Subscriber is one live push-channel connection. Events are queued on the
// buffered send channel and written by a single pump goroutine, which keeps
// delivery FIFO per connection without ever blocking a hub broadcast.
type Subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a serialized event to the write pump. Returns false when
// the subscriber's buffer is full or its send side is already closed; the
// hub treats both as a dead connection.
func (s *Subscriber) enqueue(payload []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.send)
	})
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with protocol pings. One pump per subscriber.
func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.S().Named("ws_hub").Debugw("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
