package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/services"
)

type ProjectHandler struct {
	directory *services.DirectoryService
}

func NewProjectHandler(directory *services.DirectoryService) *ProjectHandler {
	return &ProjectHandler{directory: directory}
}

// CreateProject creates a project; the current user becomes its first member.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		Name           string `json:"name" binding:"required,max=255"`
		Slug           string `json:"slug" binding:"omitempty,max=100"`
		Description    string `json:"description"`
	}
	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.directory.CreateProject(services.CreateProjectInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		CreatedByID:    userID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects lists the projects of ?organization_id= sorted by name.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	orgID, ok := queryID(c, "organization_id")
	if !ok {
		return
	}
	if orgID == nil {
		apierrors.BadRequest(c, "organization_id is required")
		return
	}

	projects, err := h.directory.ListProjectsByOrg(*orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// DeleteProject removes a project with its tasks, wiki pages and memberships.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.RemoveProject(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.directory.AddProjectMember(id, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectMemberDTO(*member))
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.directory.RemoveProjectMember(id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
