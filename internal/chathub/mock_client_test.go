package chathub_test

import (
	"supportchat/backend/internal/models"
)

// MockClient is a channel-backed Client used to observe hub deliveries.
type MockClient struct {
	name        string
	RecvChannel chan models.OutboundMessage
}

func newMockClient(name string) *MockClient {
	return &MockClient{
		name:        name,
		RecvChannel: make(chan models.OutboundMessage, 10),
	}
}

// newSlowMockClient has no buffer and no reader, so every delivery attempt
// finds it non-writable.
func newSlowMockClient(name string) *MockClient {
	return &MockClient{
		name:        name,
		RecvChannel: make(chan models.OutboundMessage),
	}
}

func (c *MockClient) GetID() string {
	return c.name
}

func (c *MockClient) GetSendChannel() chan<- models.OutboundMessage {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	// Not needed for testing
}

// received drains and returns everything delivered so far.
func (c *MockClient) received() []models.OutboundMessage {
	var msgs []models.OutboundMessage
	for {
		select {
		case msg := <-c.RecvChannel:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}
