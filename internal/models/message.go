package models

import "time"

// Message represents one utterance, from either the visitor or the admin, within
// exactly one conversation. Messages are never edited or deleted; deleting a
// conversation cascades to its messages at the database level.
type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// ConversationID references the owning conversation.
	ConversationID uint `gorm:"not null;index:idx_conv_msg" json:"conversationId"`
	// Conversation declares the foreign key so migrations emit ON DELETE CASCADE.
	Conversation Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	// Body is the message text. Never empty or whitespace-only once persisted.
	Body string `gorm:"column:message;type:text;not null" json:"message"`
	// IsAdminReply marks the origin: false for the visitor, true for the admin.
	IsAdminReply bool `gorm:"not null;default:false" json:"isAdminReply"`
	CreatedAt    time.Time `json:"createdAt"`
}
