package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/pkg/metrics"
)

// Hub owns the live subscriber set. It is the only writer to the set;
// register, unregister and the post-broadcast sweep are mutually exclusive.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Register adds a subscriber to the live set. Idempotent per subscriber.
func (h *Hub) Register(s *Subscriber) {
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.UpdateWsSubscribersMetric(count)
	zap.S().Named("ws_hub").Infow("subscriber connected", "total", count)
}

// Unregister removes a subscriber and closes its send side. Safe to call
// multiple times or on a subscriber that was never registered.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[s]
	if ok {
		delete(h.subscribers, s)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}

	s.close()
	metrics.UpdateWsSubscribersMetric(count)
	zap.S().Named("ws_hub").Infow("subscriber disconnected", "total", count)
}

// Broadcast serializes the event once and delivers it to every live
// subscriber. Delivery is best-effort: a subscriber that cannot accept the
// message is dropped after the sweep, never during iteration, and its
// failure is not surfaced to the caller.
func (h *Hub) Broadcast(event any) {
	h.mu.Lock()
	if len(h.subscribers) == 0 {
		h.mu.Unlock()
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.mu.Unlock()
		zap.S().Named("ws_hub").Errorw("failed to serialize event", "error", err)
		return
	}

	var dead []*Subscriber
	for s := range h.subscribers {
		if !s.enqueue(payload) {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		delete(h.subscribers, s)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	for _, s := range dead {
		s.close()
		zap.S().Named("ws_hub").Warnw("dropped unresponsive subscriber", "total", count)
	}
	if len(dead) > 0 {
		metrics.UpdateWsSubscribersMetric(count)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
