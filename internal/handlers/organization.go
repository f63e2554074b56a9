package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/services"
)

// OrganizationHandler serves organization lookups and the org-scoped views
// (dashboard, inbox, direct messages).
type OrganizationHandler struct {
	directory *services.DirectoryService
	dashboard *services.DashboardService
	messaging *services.MessagingService
}

func NewOrganizationHandler(directory *services.DirectoryService, dashboard *services.DashboardService, messaging *services.MessagingService) *OrganizationHandler {
	return &OrganizationHandler{
		directory: directory,
		dashboard: dashboard,
		messaging: messaging,
	}
}

// CreateOrganization creates an organization; the slug defaults to the slugified name.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	type CreateOrganizationRequest struct {
		Name string `json:"name" binding:"required,max=255"`
		Slug string `json:"slug" binding:"omitempty,max=100"`
	}

	var req CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.directory.CreateOrg(services.CreateOrgInput{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

// GetOrganization returns an organization by slug
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.directory.GetOrgBySlug(c.Param("orgSlug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if org == nil {
		apierrors.NotFound(c, "Organization not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// GetDashboard returns the per-project rollup of an organization. An unknown
// slug yields a null organization and no projects.
func (h *OrganizationHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Company(c.Request.Context(), c.Param("orgSlug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetInbox lists the current user's chats in the organization.
func (h *OrganizationHandler) GetInbox(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	inbox, err := h.messaging.Inbox(c.Param("orgSlug"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": inbox})
}

// OpenDirectMessage returns the DM between the current user and another user,
// creating it on first use.
func (h *OrganizationHandler) OpenDirectMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type OpenDirectMessageRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	var req OpenDirectMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	chat, err := h.messaging.GetOrCreateDM(c.Param("orgSlug"), userID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatDTO(*chat))
}
