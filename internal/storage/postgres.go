package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"supportchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const adminSessionPrefix = "admin_session:"

// Service is the durable Storage implementation: PostgreSQL (via gorm) for
// conversations, messages and admin users, Redis for the session-scoped admin
// capability keys. The *gorm.DB must be opened with TranslateError enabled so
// unique violations surface as gorm.ErrDuplicatedKey.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	adminSessionTTL time.Duration
}

// NewStorageService constructs a Service. rdb may be nil for callers that never
// touch admin sessions (the admin CLI).
func NewStorageService(db *gorm.DB, rdb *redis.Client, adminSessionTTL time.Duration) *Service {
	return &Service{
		DB:              db,
		Redis:           rdb,
		Ctx:             context.Background(),
		adminSessionTTL: adminSessionTTL,
	}
}

func (s *Service) GetConversation(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Service) GetConversationBySessionID(sessionID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Where("session_id = ?", sessionID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation inserts a fresh conversation for the token. When a
// concurrent caller with the same token wins the insert, the unique index
// rejects ours and we return the winner's row, so both callers converge on a
// single conversation.
func (s *Service) CreateConversation(sessionID string) (*models.Conversation, error) {
	conv := models.Conversation{
		SessionID:    sessionID,
		LastActivity: time.Now(),
	}
	err := s.DB.Create(&conv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.GetConversationBySessionID(sessionID)
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Service) TouchConversation(id uint) error {
	return s.DB.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_activity", time.Now()).Error
}

func (s *Service) ListConversations() ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := s.DB.Order("last_activity desc").Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// CreateMessage persists the message and advances the parent conversation's
// last_activity inside one transaction, so readers never observe one effect
// without the other.
func (s *Service) CreateMessage(conversationID uint, body string, isAdminReply bool) (*models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		Body:           body,
		IsAdminReply:   isAdminReply,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}
		if err := tx.Omit("Conversation").Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_activity", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) GetMessagesByConversationID(conversationID uint) ([]models.Message, error) {
	var history []models.Message
	err := s.DB.Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&history).Error
	if err != nil {
		log.Printf("ERROR: Failed to get transcript for conversation %d: %v", conversationID, err)
		return nil, err
	}
	return history, nil
}

func (s *Service) GetLatestMessages(conversationID uint, limit int) ([]models.Message, error) {
	var tail []models.Message
	err := s.DB.Where("conversation_id = ?", conversationID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&tail).Error
	if err != nil {
		return nil, err
	}
	// The query returns newest-first; callers get ascending order.
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}
	return tail, nil
}

func (s *Service) GetAdminByUsername(username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := s.DB.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *Service) CreateAdmin(username, password string) (*models.AdminUser, error) {
	admin := models.AdminUser{Username: username}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *Service) UpdateAdminPassword(username, password string) error {
	admin, err := s.GetAdminByUsername(username)
	if err != nil {
		return err
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	return s.DB.Model(admin).Update("password_hash", admin.PasswordHash).Error
}

func (s *Service) ListAdmins() ([]models.AdminUser, error) {
	var admins []models.AdminUser
	if err := s.DB.Order("username asc").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (s *Service) SetAdminSession(sessionID string) error {
	return s.Redis.Set(s.Ctx, adminSessionPrefix+sessionID, "1", s.adminSessionTTL).Err()
}

func (s *Service) IsAdminSession(sessionID string) (bool, error) {
	_, err := s.Redis.Get(s.Ctx, adminSessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) ClearAdminSession(sessionID string) error {
	return s.Redis.Del(s.Ctx, adminSessionPrefix+sessionID).Err()
}
