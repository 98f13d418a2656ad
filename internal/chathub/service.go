package chathub

import (
	"log"
	"strings"
	"sync"

	"supportchat/backend/internal/models"
	"supportchat/backend/internal/storage"
)

// Service carries the conversation-state operations shared by the HTTP surface
// and the WebSocket bridge: resolving session tokens to conversations, appending
// to the ordered message log, and handing each successful append to the hub.
//
// Appends for one conversation are serialized with a per-conversation mutex held
// across append+broadcast, so live connections receive a conversation's messages
// in exactly the order they entered the log.
type Service struct {
	Storage storage.Storage
	Hub     *Hub

	mu        sync.Mutex
	convLocks map[uint]*sync.Mutex
}

// NewService constructs the conversation service.
func NewService(s storage.Storage, hub *Hub) *Service {
	return &Service{
		Storage:   s,
		Hub:       hub,
		convLocks: make(map[uint]*sync.Mutex),
	}
}

// ResolveOrCreate maps a session token to its conversation, creating one on
// first contact. Idempotent per token: repeated and concurrent calls converge on
// the same conversation.
func (s *Service) ResolveOrCreate(sessionToken string) (*models.Conversation, error) {
	conv, err := s.Storage.GetConversationBySessionID(sessionToken)
	if err == nil {
		return conv, nil
	}
	if err != storage.ErrConversationNotFound {
		return nil, err
	}
	return s.Storage.CreateConversation(sessionToken)
}

// Append validates the body, persists the message and broadcasts it. The append
// is the durability boundary: when persistence fails, no broadcast happens and
// the error propagates; when persistence succeeds, broadcast failures are not
// errors.
func (s *Service) Append(conversationID uint, body string, isAdminReply bool) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	unlock := s.lockConversation(conversationID)
	defer unlock()

	msg, err := s.Storage.CreateMessage(conversationID, body, isAdminReply)
	if err != nil {
		return nil, err
	}
	s.Hub.Broadcast(msg)
	return msg, nil
}

// SendVisitorMessage appends a visitor-origin message for the given session
// token, creating the conversation on first contact.
func (s *Service) SendVisitorMessage(sessionToken, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	conv, err := s.ResolveOrCreate(sessionToken)
	if err != nil {
		return nil, err
	}
	return s.Append(conv.ID, body, false)
}

// SendAdminReply appends an admin-origin message to an existing conversation.
// Returns storage.ErrConversationNotFound when the id references nothing.
func (s *Service) SendAdminReply(conversationID uint, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.Storage.GetConversation(conversationID); err != nil {
		return nil, err
	}
	return s.Append(conversationID, body, true)
}

// Transcript returns the full ordered log for a session token. A token with no
// conversation yields an empty transcript, not an error.
func (s *Service) Transcript(sessionToken string) ([]models.Message, error) {
	conv, err := s.Storage.GetConversationBySessionID(sessionToken)
	if err == storage.ErrConversationNotFound {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Storage.GetMessagesByConversationID(conv.ID)
}

// TranscriptByID returns a conversation and its full ordered log.
func (s *Service) TranscriptByID(conversationID uint) (*models.Conversation, []models.Message, error) {
	conv, err := s.Storage.GetConversation(conversationID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.Storage.GetMessagesByConversationID(conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conv, history, nil
}

// ListConversations returns all conversations, most recently active first, each
// annotated with its message count and last message.
func (s *Service) ListConversations() ([]models.ConversationSummary, error) {
	convs, err := s.Storage.ListConversations()
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		history, err := s.Storage.GetMessagesByConversationID(conv.ID)
		if err != nil {
			log.Printf("ERROR: Failed to load messages for conversation %d: %v", conv.ID, err)
			return nil, err
		}
		summary := models.ConversationSummary{
			Conversation: conv,
			MessageCount: len(history),
		}
		if len(history) > 0 {
			last := history[len(history)-1]
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// lockConversation acquires the append lock for one conversation. Locks are
// created on demand and kept for the process lifetime; the key space is small
// (one mutex per conversation ever touched).
func (s *Service) lockConversation(id uint) (unlock func()) {
	s.mu.Lock()
	l, ok := s.convLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.convLocks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
