package dto

import (
	"time"

	"github.com/yukikurage/nanban-api/internal/models"
)

// WikiPageDTO represents a full wiki page
type WikiPageDTO struct {
	ID           uint64    `json:"id"`
	ProjectID    uint64    `json:"project_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Thumbnail    *string   `json:"thumbnail"`
	LastEditedAt time.Time `json:"last_edited_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// WikiSummaryDTO represents a page in listings, without its content
type WikiSummaryDTO struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Thumbnail    *string   `json:"thumbnail"`
	LastEditedAt time.Time `json:"last_edited_at"`
}

// WikiListingDTO lists a project's pages, most recently edited first
type WikiListingDTO struct {
	Project *ProjectDTO      `json:"project"`
	Pages   []WikiSummaryDTO `json:"pages"`
}

// ChatDTO represents a chat in API responses
type ChatDTO struct {
	ID             uint64          `json:"id"`
	OrganizationID uint64          `json:"organization_id"`
	Type           models.ChatType `json:"type"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MessageDTO represents a chat message
type MessageDTO struct {
	ID       uint64          `json:"id"`
	ChatID   uint64          `json:"chat_id"`
	SenderID uint64          `json:"sender_id"`
	Sender   *UserSummaryDTO `json:"sender,omitempty"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
}

func ToWikiPageDTO(page models.WikiPage) WikiPageDTO {
	return WikiPageDTO{
		ID:           page.ID,
		ProjectID:    page.ProjectID,
		Title:        page.Title,
		Content:      page.Content,
		Thumbnail:    page.Thumbnail,
		LastEditedAt: page.LastEditedAt,
		CreatedAt:    page.CreatedAt,
	}
}

func ToWikiSummaryDTOs(pages []models.WikiPage) []WikiSummaryDTO {
	out := make([]WikiSummaryDTO, len(pages))
	for i, p := range pages {
		out[i] = WikiSummaryDTO{
			ID:           p.ID,
			Title:        p.Title,
			Thumbnail:    p.Thumbnail,
			LastEditedAt: p.LastEditedAt,
		}
	}
	return out
}

func ToWikiListingDTO(project *models.Project, pages []models.WikiPage) WikiListingDTO {
	return WikiListingDTO{
		Project: optionalProject(project),
		Pages:   ToWikiSummaryDTOs(pages),
	}
}

func ToChatDTO(chat models.Chat) ChatDTO {
	return ChatDTO{
		ID:             chat.ID,
		OrganizationID: chat.OrganizationID,
		Type:           chat.Type,
		Name:           chat.Name,
		CreatedAt:      chat.CreatedAt,
	}
}

func ToChatDTOs(chats []models.Chat) []ChatDTO {
	out := make([]ChatDTO, len(chats))
	for i, c := range chats {
		out[i] = ToChatDTO(c)
	}
	return out
}

func ToMessageDTO(message models.Message) MessageDTO {
	return MessageDTO{
		ID:       message.ID,
		ChatID:   message.ChatID,
		SenderID: message.SenderID,
		Sender:   ToUserSummaryDTO(message.Sender),
		Body:     message.Body,
		SentAt:   message.SentAt,
	}
}

func ToMessageDTOs(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, len(messages))
	for i, m := range messages {
		out[i] = ToMessageDTO(m)
	}
	return out
}
