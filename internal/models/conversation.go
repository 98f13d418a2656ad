package models

import "time"

// Conversation represents one anonymous visitor's ongoing dialogue with the admin.
// A visitor is correlated to a conversation only through an opaque session token;
// the row carries no personal identity.
type Conversation struct {
	// ID is the stable, server-assigned conversation identity.
	ID uint `gorm:"primaryKey" json:"id"`
	// SessionID is the opaque session token issued by the web layer. At most one
	// conversation exists per token.
	SessionID string `gorm:"type:varchar(255);uniqueIndex;not null" json:"sessionId"`
	// CreatedAt is set once when the conversation is first created.
	CreatedAt time.Time `json:"createdAt"`
	// LastActivity advances on every appended message. CreatedAt <= LastActivity.
	LastActivity time.Time `gorm:"not null" json:"lastActivity"`
}

// ConversationSummary is the admin-facing listing shape: the conversation plus
// message count and the most recent message.
type ConversationSummary struct {
	Conversation
	MessageCount int      `json:"messageCount"`
	LastMessage  *Message `json:"lastMessage,omitempty"`
}
