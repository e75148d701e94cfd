package repositories

import (
	"errors"

	"gorm.io/gorm"

	"socialspace-api/models"
)

// ChatStore persists direct chats and their messages.
type ChatStore interface {
	GetChat(id uint) (*models.Chat, error)
	GetOrCreateDirectChat(userA, userB string) (*models.Chat, bool, error)
	ListChatsForUser(userID string) ([]models.Chat, error)
	SetLastMessage(chatID uint, messageID *uint) error
	UnreadCount(chatID uint, userID string) (int64, error)

	CreateMessage(m *models.Message) error
	GetMessage(id uint) (*models.Message, error)
	SaveMessage(m *models.Message) error
	DeleteMessage(m *models.Message) error
	ListMessages(chatID uint, offset, limit int) ([]models.Message, error)
	LatestMessageID(chatID uint) (*uint, error)
	MarkChatRead(chatID uint, readerID string) (int64, error)
}

type gormChatStore struct {
	db *gorm.DB
}

func (r *gormChatStore) GetChat(id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.First(&chat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *gormChatStore) GetOrCreateDirectChat(userA, userB string) (*models.Chat, bool, error) {
	low, high := models.CanonicalPair(userA, userB)

	var chat models.Chat
	err := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&chat).Error
	if err == nil {
		return &chat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat = models.Chat{UserLowID: low, UserHighID: high}
	if err := r.db.Create(&chat).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, err
		}
		// A concurrent caller created the chat first; both callers get the
		// same row.
		var existing models.Chat
		if lookupErr := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).
			First(&existing).Error; lookupErr != nil {
			return nil, false, lookupErr
		}
		return &existing, false, nil
	}
	return &chat, true, nil
}

func (r *gormChatStore) ListChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.Preload("UserLow").Preload("UserHigh").
		Preload("LastMessage").Preload("LastMessage.Sender").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("created_at DESC").Find(&chats).Error
	return chats, err
}

func (r *gormChatStore) SetLastMessage(chatID uint, messageID *uint) error {
	return r.db.Model(&models.Chat{}).Where("id = ?", chatID).
		Update("last_message_id", messageID).Error
}

func (r *gormChatStore) UnreadCount(chatID uint, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id <> ?", chatID, false, userID).
		Count(&count).Error
	return count, err
}

func (r *gormChatStore) CreateMessage(m *models.Message) error {
	return r.db.Create(m).Error
}

func (r *gormChatStore) GetMessage(id uint) (*models.Message, error) {
	var m models.Message
	if err := r.db.Preload("Sender").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormChatStore) SaveMessage(m *models.Message) error {
	return r.db.Save(m).Error
}

func (r *gormChatStore) DeleteMessage(m *models.Message) error {
	return r.db.Delete(m).Error
}

func (r *gormChatStore) ListMessages(chatID uint, offset, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, err
}

func (r *gormChatStore) LatestMessageID(chatID uint) (*uint, error) {
	var m models.Message
	err := r.db.Where("chat_id = ?", chatID).Order("created_at DESC, id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m.ID, nil
}

func (r *gormChatStore) MarkChatRead(chatID uint, readerID string) (int64, error) {
	res := r.db.Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id <> ?", chatID, false, readerID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
