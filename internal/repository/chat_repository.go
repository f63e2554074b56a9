package repository

import (
	"github.com/yukikurage/nanban-api/internal/models"
	"gorm.io/gorm"
)

// GormChatRepository is a GORM implementation of ChatRepository
type GormChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &GormChatRepository{db: db}
}

// FindByID finds a chat by ID
func (r *GormChatRepository) FindByID(id uint64) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.First(&chat, id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListByOrganization lists the chats of an organization
func (r *GormChatRepository) ListByOrganization(organizationID uint64) ([]models.Chat, error) {
	chats := []models.Chat{}
	if err := r.db.Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// GetOrCreate returns the chat keyed by (organization, type, lookup key)
func (r *GormChatRepository) GetOrCreate(chat *models.Chat) (*models.Chat, bool, error) {
	return firstOrInsert(r.db, map[string]interface{}{
		"organization_id": chat.OrganizationID,
		"type":            chat.Type,
		"lookup_key":      chat.LookupKey,
	}, chat)
}

// AddParticipant adds a user to a chat
func (r *GormChatRepository) AddParticipant(chatID, userID uint64) (*models.ChatParticipant, bool, error) {
	return firstOrInsert(r.db,
		map[string]interface{}{"chat_id": chatID, "user_id": userID},
		&models.ChatParticipant{ChatID: chatID, UserID: userID},
	)
}

// ClaimDM sets the typed pair of a chat and removes every participant not in
// the pair, in one transaction.
func (r *GormChatRepository) ClaimDM(chatID uint64, pair models.DMPair) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Chat{}).Where("id = ?", chatID).Updates(map[string]interface{}{
			"dm_low_user_id":  pair.Low,
			"dm_high_user_id": pair.High,
		}).Error
		if err != nil {
			return err
		}
		return tx.Where("chat_id = ? AND user_id NOT IN ?", chatID, []uint64{pair.Low, pair.High}).
			Delete(&models.ChatParticipant{}).Error
	})
}

// ListParticipations lists a user's participations restricted to chats of one organization
func (r *GormChatRepository) ListParticipations(userID, organizationID uint64) ([]models.ChatParticipant, error) {
	participations := []models.ChatParticipant{}
	err := r.db.Preload("Chat").
		Joins("JOIN chats ON chats.id = chat_participants.chat_id").
		Where("chat_participants.user_id = ? AND chats.organization_id = ?", userID, organizationID).
		Find(&participations).Error
	if err != nil {
		return nil, err
	}
	return participations, nil
}
