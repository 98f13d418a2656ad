package chathub

import "supportchat/backend/internal/models"

// Client is the interface for any type of real-time connection. It abstracts the
// underlying transport, allowing the hub to deliver to different client types
// uniformly (the WebSocket client in production, channel-backed mocks in tests).
type Client interface {
	// GetID returns the unique identifier of this connection. It is discarded
	// when the connection closes.
	GetID() string

	// GetSendChannel returns the channel the hub pushes outbound payloads into.
	// Delivery through it is best-effort: the hub never blocks on a slow client.
	GetSendChannel() chan<- models.OutboundMessage

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection. Safe to call more than once.
	Close()
}
