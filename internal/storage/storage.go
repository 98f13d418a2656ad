package storage

import (
	"errors"

	"supportchat/backend/internal/models"
)

var (
	// ErrConversationNotFound is returned when a conversation id or session token
	// does not reference an existing conversation.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrAdminNotFound is returned when no admin user exists for a username.
	ErrAdminNotFound = errors.New("admin user not found")
)

// Storage is the persistence port for conversations, messages and admin
// credentials, plus the session-scoped admin capability flags. Two
// implementations exist: Service (PostgreSQL + Redis) for production and
// Memory for tests.
type Storage interface {
	// Conversations
	GetConversation(id uint) (*models.Conversation, error)
	GetConversationBySessionID(sessionID string) (*models.Conversation, error)
	// CreateConversation creates a conversation for the token, or returns the
	// existing one when a concurrent caller won the race. Never creates
	// duplicates for the same token.
	CreateConversation(sessionID string) (*models.Conversation, error)
	// TouchConversation advances last_activity to now. Silent no-op when the
	// conversation no longer exists.
	TouchConversation(id uint) error
	// ListConversations returns all conversations, most recently active first.
	ListConversations() ([]models.Conversation, error)

	// Messages
	// CreateMessage persists a message and advances the parent conversation's
	// last_activity in the same logical operation. The body is stored as given;
	// validation happens before this call.
	CreateMessage(conversationID uint, body string, isAdminReply bool) (*models.Message, error)
	// GetMessagesByConversationID returns the full ordered transcript, ascending
	// by creation order. Empty slice, not an error, when nothing exists.
	GetMessagesByConversationID(conversationID uint) ([]models.Message, error)
	// GetLatestMessages returns the last limit messages, still in ascending order.
	GetLatestMessages(conversationID uint, limit int) ([]models.Message, error)

	// Admin credentials
	GetAdminByUsername(username string) (*models.AdminUser, error)
	CreateAdmin(username, password string) (*models.AdminUser, error)
	UpdateAdminPassword(username, password string) error
	ListAdmins() ([]models.AdminUser, error)

	// Admin capability, keyed by session token
	SetAdminSession(sessionID string) error
	IsAdminSession(sessionID string) (bool, error)
	ClearAdminSession(sessionID string) error
}
