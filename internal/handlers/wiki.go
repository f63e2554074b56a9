package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/services"
)

type WikiHandler struct {
	wiki *services.WikiService
}

func NewWikiHandler(wiki *services.WikiService) *WikiHandler {
	return &WikiHandler{wiki: wiki}
}

// ListBySlug lists a project's pages, most recently edited first.
func (h *WikiHandler) ListBySlug(c *gin.Context) {
	listing, err := h.wiki.ListByProject(c.Param("orgSlug"), c.Param("projectSlug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWikiListingDTO(listing.Project, listing.Pages))
}

// CreateBySlug creates a page, answering 409 when the title is taken.
func (h *WikiHandler) CreateBySlug(c *gin.Context) {
	type CreateWikiRequest struct {
		Title     string  `json:"title" binding:"required,max=255"`
		Content   string  `json:"content"`
		Thumbnail *string `json:"thumbnail" binding:"omitempty,max=1024"`
	}
	var req CreateWikiRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.wiki.Create(c.Param("orgSlug"), c.Param("projectSlug"), services.CreateWikiInput{
		Title:     req.Title,
		Content:   req.Content,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToWikiPageDTO(*page))
}

// ListByProject is ListBySlug addressed by project id.
func (h *WikiHandler) ListByProject(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	pages, err := h.wiki.ListByProjectLatest(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": dto.ToWikiSummaryDTOs(pages)})
}

// Upsert writes content to the page with the given title, creating it when absent.
func (h *WikiHandler) Upsert(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpsertWikiRequest struct {
		Title   string `json:"title" binding:"required,max=255"`
		Content string `json:"content"`
	}
	var req UpsertWikiRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.wiki.Upsert(projectID, req.Title, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWikiPageDTO(*page))
}

func (h *WikiHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.wiki.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if page == nil {
		apierrors.NotFound(c, "Wiki page not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToWikiPageDTO(*page))
}

// Update applies a partial update and refreshes the edit time. A blank
// thumbnail clears it.
func (h *WikiHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateWikiRequest struct {
		Title     *string `json:"title" binding:"omitempty,max=255"`
		Content   *string `json:"content"`
		Thumbnail *string `json:"thumbnail" binding:"omitempty,max=1024"`
	}
	var req UpdateWikiRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.wiki.Update(id, services.WikiPatch{
		Title:     req.Title,
		Content:   req.Content,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWikiPageDTO(*page))
}

func (h *WikiHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.wiki.Remove(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
