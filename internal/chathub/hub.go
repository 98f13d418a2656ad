package chathub

import (
	"log"
	"sync"

	"supportchat/backend/internal/models"
)

// Subscriber observes every broadcast after fan-out to live connections. It
// receives the delivery payload and the number of live admin connections at
// broadcast time. Used by side listeners such as the Telegram notifier.
type Subscriber func(msg models.OutboundMessage, liveAdmins int)

// Hub fans newly persisted messages out to the live connections entitled to
// them. It owns no persistence: by the time Broadcast runs, the message is
// already durable, and a failed delivery is never an error — the transcript is
// the recovery path, not a retry queue.
type Hub struct {
	registry *Registry

	mu          sync.Mutex
	subscribers map[int]Subscriber
	subSeq      int
}

// NewHub constructs a hub over the given registry.
func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry:    registry,
		subscribers: make(map[int]Subscriber),
	}
}

// Broadcast delivers a just-persisted message to every connection bound to its
// conversation plus every admin connection, exactly once each. The payload is
// built once from the durable record. Delivery per connection is best-effort: a
// connection whose send buffer is full is skipped, which neither aborts delivery
// to the rest nor rolls back the persisted message.
func (h *Hub) Broadcast(msg *models.Message) {
	payload := models.NewOutboundMessage(msg)

	targets := h.registry.Matching(msg.ConversationID)
	for _, client := range targets {
		select {
		case client.GetSendChannel() <- payload:
		default:
			log.Printf("WARNING: connection %s not writable, skipping message %d", client.GetID(), msg.ID)
		}
	}

	h.notifySubscribers(payload)
}

// Subscribe registers a side listener and returns its disposal func. The
// returned func is safe to call more than once.
func (h *Hub) Subscribe(fn Subscriber) (unsubscribe func()) {
	h.mu.Lock()
	h.subSeq++
	id := h.subSeq
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

func (h *Hub) notifySubscribers(payload models.OutboundMessage) {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	liveAdmins := h.registry.AdminCount()
	for _, fn := range subs {
		fn(payload, liveAdmins)
	}
}
