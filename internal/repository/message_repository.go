package repository

import (
	"github.com/yukikurage/nanban-api/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create creates a new message
func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByChat lists messages of a chat by send time, then id
func (r *GormMessageRepository) ListByChat(chatID uint64, preload ...string) ([]models.Message, error) {
	messages := []models.Message{}
	if err := withPreload(r.db, preload).
		Where("chat_id = ?", chatID).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
