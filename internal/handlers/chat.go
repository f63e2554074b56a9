package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/services"
)

type ChatHandler struct {
	messaging *services.MessagingService
}

func NewChatHandler(messaging *services.MessagingService) *ChatHandler {
	return &ChatHandler{messaging: messaging}
}

// ListChats lists the chats of ?organization_id=.
func (h *ChatHandler) ListChats(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	if orgID == nil {
		apierrors.BadRequest(c, "organization_id is required")
		return
	}

	chats, err := h.messaging.ListByOrg(*orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": dto.ToChatDTOs(chats)})
}

// CreateChat returns the chat with this organization, type and name, creating
// it and adding the current user when absent.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateChatRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		Name           string `json:"name" binding:"required,max=255"`
		Type           string `json:"type" binding:"required"`
	}
	var req CreateChatRequest
	if !bindJSON(c, &req) {
		return
	}

	chat, err := h.messaging.CreateChat(req.OrganizationID, req.Name, models.ChatType(req.Type))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if _, err := h.messaging.AddParticipant(chat.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*chat))
}

func (h *ChatHandler) AddParticipant(c *gin.Context) {
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	type AddParticipantRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	var req AddParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	participant, err := h.messaging.AddParticipant(chatID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chat_id": participant.ChatID,
		"user_id": participant.UserID,
	})
}

// ListMessages lists a chat's messages oldest first.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messages, err := h.messaging.ListMessages(chatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageDTOs(messages)})
}

// SendMessage posts a message from the current user.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	chatID, ok := paramID(c, "id")
	if !ok {
		return
	}

	type SendMessageRequest struct {
		Body string `json:"body" binding:"required"`
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messaging.Send(chatID, userID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}
