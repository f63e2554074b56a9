package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/services"
)

type UserHandler struct {
	directory *services.DirectoryService
}

func NewUserHandler(directory *services.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

// CreateUser registers a new user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Name      string  `json:"name" binding:"required,max=255"`
		Email     string  `json:"email" binding:"required,max=255"`
		Password  string  `json:"password" binding:"required"`
		AvatarURL *string `json:"avatar_url" binding:"omitempty,max=1024"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.directory.CreateUser(services.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns every user sorted by name.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.directory.ListUsers()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// GetUserByEmail answers 404 when no user has the email.
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		apierrors.BadRequest(c, "email is required")
		return
	}

	user, err := h.directory.GetUserByEmail(email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user == nil {
		apierrors.NotFound(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial update; absent fields are left untouched.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name      *string `json:"name" binding:"omitempty,max=255"`
		AvatarURL *string `json:"avatar_url" binding:"omitempty,max=1024"`
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.directory.UpdateUser(id, services.UserPatch{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
