package models

import "time"

// Event types carried in the WebSocket envelope.
const (
	EventJoin    = "join"
	EventMessage = "message"
)

// Envelope is the inbound WebSocket frame. "join" carries SessionID (and the
// IsAdmin claim, which the server cross-checks against the session's capability);
// "message" carries Content, plus ConversationID when sent by an admin connection.
type Envelope struct {
	Type           string `json:"type"`
	SessionID      string `json:"sessionId,omitempty"`
	IsAdmin        bool   `json:"isAdmin,omitempty"`
	Content        string `json:"content,omitempty"`
	ConversationID uint   `json:"conversationId,omitempty"`
}

// OutboundMessage is the frame pushed to live connections when a message has been
// persisted. It is always built from the durable record, so anything broadcast is
// also retrievable from the transcript.
type OutboundMessage struct {
	Type           string    `json:"type"`
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	IsAdminReply   bool      `json:"isAdminReply"`
	CreatedAt      time.Time `json:"createdAt"`
	ConversationID uint      `json:"conversationId"`
}

// NewOutboundMessage builds the delivery payload from a persisted message.
func NewOutboundMessage(m *Message) OutboundMessage {
	return OutboundMessage{
		Type:           EventMessage,
		ID:             m.ID,
		Content:        m.Body,
		IsAdminReply:   m.IsAdminReply,
		CreatedAt:      m.CreatedAt,
		ConversationID: m.ConversationID,
	}
}
