package storage

import (
	"sort"
	"sync"
	"time"

	"supportchat/backend/internal/models"
)

// Memory is the in-memory Storage implementation: the reference used in tests
// and a drop-in backend when no database is configured. All operations are
// guarded by a single mutex, which gives the same per-key atomicity the durable
// implementation gets from transactions and unique indexes.
type Memory struct {
	mu            sync.Mutex
	conversations map[uint]models.Conversation
	messages      map[uint]models.Message
	admins        map[uint]models.AdminUser
	adminSessions map[string]struct{}

	convSeq  uint
	msgSeq   uint
	adminSeq uint
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[uint]models.Conversation),
		messages:      make(map[uint]models.Message),
		admins:        make(map[uint]models.AdminUser),
		adminSessions: make(map[string]struct{}),
	}
}

func (m *Memory) GetConversation(id uint) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return &conv, nil
}

func (m *Memory) GetConversationBySessionID(sessionID string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findBySessionLocked(sessionID)
}

func (m *Memory) findBySessionLocked(sessionID string) (*models.Conversation, error) {
	for _, conv := range m.conversations {
		if conv.SessionID == sessionID {
			c := conv
			return &c, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (m *Memory) CreateConversation(sessionID string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, err := m.findBySessionLocked(sessionID); err == nil {
		return existing, nil
	}
	m.convSeq++
	now := time.Now()
	conv := models.Conversation{
		ID:           m.convSeq,
		SessionID:    sessionID,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.conversations[conv.ID] = conv
	return &conv, nil
}

func (m *Memory) TouchConversation(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchLocked(id)
	return nil
}

func (m *Memory) touchLocked(id uint) {
	conv, ok := m.conversations[id]
	if !ok {
		return
	}
	conv.LastActivity = time.Now()
	m.conversations[id] = conv
}

func (m *Memory) ListConversations() ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	convs := make([]models.Conversation, 0, len(m.conversations))
	for _, conv := range m.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastActivity.After(convs[j].LastActivity)
	})
	return convs, nil
}

func (m *Memory) CreateMessage(conversationID uint, body string, isAdminReply bool) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[conversationID]; !ok {
		return nil, ErrConversationNotFound
	}
	m.msgSeq++
	msg := models.Message{
		ID:             m.msgSeq,
		ConversationID: conversationID,
		Body:           body,
		IsAdminReply:   isAdminReply,
		CreatedAt:      time.Now(),
	}
	m.messages[msg.ID] = msg
	m.touchLocked(conversationID)
	return &msg, nil
}

func (m *Memory) GetMessagesByConversationID(conversationID uint) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcriptLocked(conversationID), nil
}

func (m *Memory) transcriptLocked(conversationID uint) []models.Message {
	history := make([]models.Message, 0)
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			history = append(history, msg)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		if history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].ID < history[j].ID
		}
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})
	return history
}

func (m *Memory) GetLatestMessages(conversationID uint, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.transcriptLocked(conversationID)
	if limit >= 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (m *Memory) GetAdminByUsername(username string) (*models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.Username == username {
			a := admin
			return &a, nil
		}
	}
	return nil, ErrAdminNotFound
}

func (m *Memory) CreateAdmin(username, password string) (*models.AdminUser, error) {
	admin := models.AdminUser{Username: username, CreatedAt: time.Now()}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminSeq++
	admin.ID = m.adminSeq
	m.admins[admin.ID] = admin
	return &admin, nil
}

func (m *Memory) UpdateAdminPassword(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, admin := range m.admins {
		if admin.Username == username {
			if err := admin.SetPassword(password); err != nil {
				return err
			}
			m.admins[id] = admin
			return nil
		}
	}
	return ErrAdminNotFound
}

func (m *Memory) ListAdmins() ([]models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admins := make([]models.AdminUser, 0, len(m.admins))
	for _, admin := range m.admins {
		admins = append(admins, admin)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Username < admins[j].Username })
	return admins, nil
}

func (m *Memory) SetAdminSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminSessions[sessionID] = struct{}{}
	return nil
}

func (m *Memory) IsAdminSession(sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.adminSessions[sessionID]
	return ok, nil
}

func (m *Memory) ClearAdminSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.adminSessions, sessionID)
	return nil
}
