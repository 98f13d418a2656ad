package chathub_test

import (
	"testing"
	"time"

	"supportchat/backend/internal/chathub"
	"supportchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHub_BroadcastFanout(t *testing.T) {
	registry := chathub.NewRegistry()
	hub := chathub.NewHub(registry)

	visitor1 := newMockClient("v1")
	visitor2 := newMockClient("v2")
	other := newMockClient("other")
	admin := newMockClient("admin")
	unbound := newMockClient("unbound")

	registry.BindVisitor(registry.Register(visitor1), 1)
	registry.BindVisitor(registry.Register(visitor2), 1)
	registry.BindVisitor(registry.Register(other), 2)
	registry.BindAdmin(registry.Register(admin))
	registry.Register(unbound)

	msg := &models.Message{
		ID:             42,
		ConversationID: 1,
		Body:           "hello",
		IsAdminReply:   false,
		CreatedAt:      time.Now(),
	}
	hub.Broadcast(msg)

	assert.Len(t, visitor1.received(), 1)
	assert.Len(t, visitor2.received(), 1)
	assert.Len(t, admin.received(), 1, "admins see every conversation")
	assert.Empty(t, other.received(), "other conversations must not leak")
	assert.Empty(t, unbound.received(), "unbound connections receive nothing")
}

func TestHub_PayloadBuiltFromPersistedRecord(t *testing.T) {
	registry := chathub.NewRegistry()
	hub := chathub.NewHub(registry)

	admin := newMockClient("admin")
	registry.BindAdmin(registry.Register(admin))

	created := time.Now()
	hub.Broadcast(&models.Message{
		ID:             7,
		ConversationID: 3,
		Body:           "reply text",
		IsAdminReply:   true,
		CreatedAt:      created,
	})

	got := admin.received()
	if assert.Len(t, got, 1) {
		payload := got[0]
		assert.Equal(t, models.EventMessage, payload.Type)
		assert.Equal(t, uint(7), payload.ID)
		assert.Equal(t, uint(3), payload.ConversationID)
		assert.Equal(t, "reply text", payload.Content)
		assert.True(t, payload.IsAdminReply)
		assert.Equal(t, created, payload.CreatedAt)
	}
}

func TestHub_SlowConnectionSkippedNotFatal(t *testing.T) {
	registry := chathub.NewRegistry()
	hub := chathub.NewHub(registry)

	slow := newSlowMockClient("slow")
	healthy := newMockClient("healthy")
	registry.BindVisitor(registry.Register(slow), 1)
	registry.BindVisitor(registry.Register(healthy), 1)

	hub.Broadcast(&models.Message{ID: 1, ConversationID: 1, Body: "x"})

	assert.Len(t, healthy.received(), 1, "one stalled connection must not block the rest")
	assert.Empty(t, slow.received())
}

func TestHub_SubscribeObservesBroadcasts(t *testing.T) {
	registry := chathub.NewRegistry()
	hub := chathub.NewHub(registry)
	registry.BindAdmin(registry.Register(newMockClient("admin")))

	var gotPayload models.OutboundMessage
	var gotAdmins int
	calls := 0
	unsubscribe := hub.Subscribe(func(msg models.OutboundMessage, liveAdmins int) {
		gotPayload = msg
		gotAdmins = liveAdmins
		calls++
	})

	hub.Broadcast(&models.Message{ID: 5, ConversationID: 2, Body: "hi"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint(5), gotPayload.ID)
	assert.Equal(t, 1, gotAdmins)

	unsubscribe()
	unsubscribe() // safe to call twice
	hub.Broadcast(&models.Message{ID: 6, ConversationID: 2, Body: "again"})
	assert.Equal(t, 1, calls, "unsubscribed listeners must not be called")
}
