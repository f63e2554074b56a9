package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/repository"
)

// MessagingService handles chats, participants and messages
type MessagingService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	orgRepo     repository.OrganizationRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, opts ...Option) *MessagingService {
	o := buildOptions(opts)
	return &MessagingService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		now:         o.now,
	}
}

// ListByOrg lists the chats of an organization
func (s *MessagingService) ListByOrg(orgID uint64) ([]models.Chat, error) {
	chats, err := s.chatRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// CreateChat returns the group or ai chat with this (organization, type, name),
// creating it when absent. Direct messages only come from GetOrCreateDM.
func (s *MessagingService) CreateChat(orgID uint64, name string, chatType models.ChatType) (*models.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("chat name is required")
	}
	if !chatType.Valid() {
		return nil, validationError("unknown chat type %q", chatType)
	}
	if chatType == models.ChatTypeDM {
		return nil, ErrNamedDirectMessage
	}

	org, err := s.orgRepo.FindByID(orgID)
	if _, err = lookup(org, err, ErrOrganizationNotFound, "organization"); err != nil {
		return nil, err
	}

	chat, _, err := s.chatRepo.GetOrCreate(&models.Chat{
		OrganizationID: orgID,
		Type:           chatType,
		Name:           name,
		LookupKey:      name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// AddParticipant adds a user to a chat; adding an existing participant is a no-op.
func (s *MessagingService) AddParticipant(chatID, userID uint64) (*models.ChatParticipant, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if _, err = lookup(chat, err, ErrChatNotFound, "chat"); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if _, err = lookup(user, err, ErrUserNotFound, "user"); err != nil {
		return nil, err
	}

	participant, _, err := s.chatRepo.AddParticipant(chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	return participant, nil
}

// GetOrCreateDM returns the direct-message chat between two users in an
// organization, creating it and both participations when missing. Argument
// order doesn't matter.
func (s *MessagingService) GetOrCreateDM(orgSlug string, userA, userB uint64) (*models.Chat, error) {
	if userA == userB {
		return nil, ErrSelfDirectMessage
	}

	org, err := s.orgRepo.FindBySlug(orgSlug)
	if org, err = lookup(org, err, ErrOrganizationNotFound, "organization"); err != nil {
		return nil, err
	}

	pair := models.NewDMPair(userA, userB)
	users, err := s.userRepo.FindByIDs([]uint64{pair.Low, pair.High})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	if len(users) != 2 {
		return nil, ErrUserNotFound
	}

	chat, _, err := s.chatRepo.GetOrCreate(&models.Chat{
		OrganizationID: org.ID,
		Type:           models.ChatTypeDM,
		Name:           pair.Key(),
		LookupKey:      pair.Key(),
		DMLowUserID:    &pair.Low,
		DMHighUserID:   &pair.High,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create direct message: %w", err)
	}
	if _, ok := chat.DMPair(); !ok {
		// A dm row holding this key without the typed pair predates the pair
		// columns. Claim it for the pair and drop anyone else in it.
		if err := s.chatRepo.ClaimDM(chat.ID, pair); err != nil {
			return nil, fmt.Errorf("failed to claim direct message: %w", err)
		}
		chat.DMLowUserID, chat.DMHighUserID = &pair.Low, &pair.High
	}

	for _, userID := range []uint64{pair.Low, pair.High} {
		if _, _, err := s.chatRepo.AddParticipant(chat.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to add participant: %w", err)
		}
	}
	return chat, nil
}

// InboxEntry is one chat as shown in a user's sidebar.
type InboxEntry struct {
	ChatID      uint64          `json:"chat_id"`
	Type        models.ChatType `json:"type"`
	DisplayName string          `json:"display_name"`
}

// Inbox lists the chats userID takes part in within an organization, sorted by
// display name. A DM shows the other participant's name. Unknown organizations
// give an empty inbox.
func (s *MessagingService) Inbox(orgSlug string, userID uint64) ([]InboxEntry, error) {
	entries := []InboxEntry{}

	org, err := s.orgRepo.FindBySlug(orgSlug)
	if org, err = optional(org, err, "organization"); err != nil || org == nil {
		return entries, err
	}

	participations, err := s.chatRepo.ListParticipations(userID, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	var others []uint64
	for _, p := range participations {
		if p.Chat == nil || p.Chat.Type != models.ChatTypeDM {
			continue
		}
		if pair, ok := p.Chat.DMPair(); ok {
			if other, ok := pair.Other(userID); ok {
				others = append(others, other)
			}
		}
	}
	users, err := s.userRepo.FindByIDs(others)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	names := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	for _, p := range participations {
		// The join already filters by organization; this guards against a missing row.
		if p.Chat == nil || p.Chat.OrganizationID != org.ID {
			continue
		}
		entries = append(entries, InboxEntry{
			ChatID:      p.Chat.ID,
			Type:        p.Chat.Type,
			DisplayName: displayName(*p.Chat, userID, names),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DisplayName != entries[j].DisplayName {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].ChatID < entries[j].ChatID
	})
	return entries, nil
}

func displayName(chat models.Chat, viewerID uint64, names map[uint64]string) string {
	if chat.Type != models.ChatTypeDM {
		return chat.Name
	}
	pair, ok := chat.DMPair()
	if !ok {
		return constants.DirectMessageLabel
	}
	other, ok := pair.Other(viewerID)
	if !ok {
		return constants.DirectMessageLabel
	}
	name, ok := names[other]
	if !ok || name == "" {
		return constants.DirectMessageLabel
	}
	return name
}

// ListMessages lists a chat's messages by send time with senders loaded.
func (s *MessagingService) ListMessages(chatID uint64) ([]models.Message, error) {
	messages, err := s.messageRepo.ListByChat(chatID, "Sender")
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Send stores a message stamped with the current time.
func (s *MessagingService) Send(chatID, senderID uint64, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, validationError("message body is required")
	}
	chat, err := s.chatRepo.FindByID(chatID)
	if _, err = lookup(chat, err, ErrChatNotFound, "chat"); err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Body:     body,
		SentAt:   s.now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return message, nil
}
