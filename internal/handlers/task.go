package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/services"
	"github.com/yukikurage/nanban-api/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	AssigneeID  uint64     `json:"assignee_id"`
	Status      string     `json:"status"`
	IsImportant bool       `json:"is_important"`
	IsUrgent    bool       `json:"is_urgent"`
	DueAt       *time.Time `json:"due_at"`
}

// input builds the service input; the assignee defaults to the reporter.
func (r createTaskRequest) input(projectID, reporterID uint64) services.CreateTaskInput {
	assignee := r.AssigneeID
	if assignee == 0 {
		assignee = reporterID
	}
	return services.CreateTaskInput{
		ProjectID:   projectID,
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  assignee,
		ReporterID:  reporterID,
		Status:      models.TaskStatus(r.Status),
		IsImportant: r.IsImportant,
		IsUrgent:    r.IsUrgent,
		DueAt:       r.DueAt,
	}
}

// taskQuery reads the status, quadrant, assignee_id and reporter_id filters.
func taskQuery(c *gin.Context) (services.TaskQuery, bool) {
	var q services.TaskQuery
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		q.Status = &status
	}

	quadrant, ok := quadrantParam(c)
	if !ok {
		return q, false
	}
	q.Quadrant = quadrant

	if q.AssigneeID, ok = queryID(c, "assignee_id"); !ok {
		return q, false
	}
	if q.ReporterID, ok = queryID(c, "reporter_id"); !ok {
		return q, false
	}
	return q, true
}

func quadrantParam(c *gin.Context) (models.Quadrant, bool) {
	quadrant, err := models.ParseQuadrant(c.Query("quadrant"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return "", false
	}
	return quadrant, true
}

func respondProjectTasks(c *gin.Context, result *services.ProjectTasks, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectTasksDTO(result.Organization, result.Project, result.Tasks))
}

func respondTaskPage(c *gin.Context, page *services.TaskPage, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskPageDTO(page.Project, page.Tasks, page.IsDone, page.ContinueCursor))
}

// Kanban lists a project's tasks with assignee and reporter loaded.
func (h *TaskHandler) Kanban(c *gin.Context) {
	result, err := h.tasks.ListForKanban(c.Param("orgSlug"), c.Param("projectSlug"))
	respondProjectTasks(c, result, err)
}

// Table lists a project's tasks by status rank, then by title.
func (h *TaskHandler) Table(c *gin.Context) {
	result, err := h.tasks.ListForTable(c.Param("orgSlug"), c.Param("projectSlug"))
	respondProjectTasks(c, result, err)
}

func (h *TaskHandler) Count(c *gin.Context) {
	q, ok := taskQuery(c)
	if !ok {
		return
	}
	count, err := h.tasks.CountForProject(c.Param("orgSlug"), c.Param("projectSlug"), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Page returns one page of a filtered task listing. Pass continue_cursor
// back as ?cursor= with the same filters for the next page.
func (h *TaskHandler) Page(c *gin.Context) {
	q, ok := taskQuery(c)
	if !ok {
		return
	}
	params := utils.GetCursorParams(c)
	page, err := h.tasks.ListForTablePaginated(c.Param("orgSlug"), c.Param("projectSlug"), q, params.Cursor, params.Limit)
	respondTaskPage(c, page, err)
}

// Mine lists the current user's tasks in ?quadrant= (default all).
func (h *TaskHandler) Mine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	quadrant, ok := quadrantParam(c)
	if !ok {
		return
	}
	result, err := h.tasks.ListMineByQuadrant(c.Param("orgSlug"), c.Param("projectSlug"), userID, quadrant)
	respondProjectTasks(c, result, err)
}

func (h *TaskHandler) MinePage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	quadrant, ok := quadrantParam(c)
	if !ok {
		return
	}
	params := utils.GetCursorParams(c)
	page, err := h.tasks.ListMineByQuadrantPaginated(c.Param("orgSlug"), c.Param("projectSlug"), userID, quadrant, params.Cursor, params.Limit)
	respondTaskPage(c, page, err)
}

// CreateBySlug creates a todo task reported by the current user.
func (h *TaskHandler) CreateBySlug(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.CreateBySlug(c.Param("orgSlug"), c.Param("projectSlug"), req.input(0, userID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListByProject lists a project's tasks, newest first.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.tasks.ListByProject(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// CreateInProject creates a task reported by the current user.
func (h *TaskHandler) CreateInProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(req.input(projectID, userID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// Update applies a partial update; absent fields are left untouched.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Status      *models.TaskStatus `json:"status"`
		IsImportant *bool              `json:"is_important"`
		IsUrgent    *bool              `json:"is_urgent"`
		AssigneeID  *uint64            `json:"assignee_id"`
	}
	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Update(id, services.TaskPatch{
		Status:      req.Status,
		IsImportant: req.IsImportant,
		IsUrgent:    req.IsUrgent,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type SetStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	var req SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.SetStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Delete removes a task. Deleting a missing task succeeds.
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Remove(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveOverdueToBacklog runs the overdue sweep on demand.
func (h *TaskHandler) MoveOverdueToBacklog(c *gin.Context) {
	moved, err := h.tasks.MoveOverdueToBacklog()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}

// Suggest extracts task suggestions from free text. With project_id set the
// suggestions are also created in that project.
func (h *TaskHandler) Suggest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SuggestRequest struct {
		Text      string `json:"text" binding:"required"`
		ProjectID uint64 `json:"project_id"`
	}
	var req SuggestRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.ProjectID == 0 {
		suggestions, err := h.tasks.SuggestTasks(c.Request.Context(), req.Text)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
		return
	}

	tasks, err := h.tasks.GenerateTasks(c.Request.Context(), req.ProjectID, userID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}
