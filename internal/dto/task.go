package dto

import (
	"time"

	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	ProjectID   uint64            `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	IsImportant bool              `json:"is_important"`
	IsUrgent    bool              `json:"is_urgent"`
	Quadrant    models.Quadrant   `json:"quadrant"`
	DueAt       *time.Time        `json:"due_at"`
	AssigneeID  uint64            `json:"assignee_id"`
	ReporterID  uint64            `json:"reporter_id"`
	Assignee    *UserSummaryDTO   `json:"assignee,omitempty"`
	Reporter    *UserSummaryDTO   `json:"reporter,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProjectTasksDTO is a project's task list addressed by slugs. Project is
// nil when the slugs are unknown.
type ProjectTasksDTO struct {
	Organization *OrganizationDTO `json:"organization"`
	Project      *ProjectDTO      `json:"project"`
	Tasks        []TaskDTO        `json:"tasks"`
}

// TaskPageDTO is one page of a cursor-paginated task listing
type TaskPageDTO struct {
	Project *ProjectDTO `json:"project"`
	utils.PageResponse[TaskDTO]
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		IsImportant: task.IsImportant,
		IsUrgent:    task.IsUrgent,
		Quadrant:    task.Quadrant(),
		DueAt:       task.DueAt,
		AssigneeID:  task.AssigneeID,
		ReporterID:  task.ReporterID,
		Assignee:    ToUserSummaryDTO(task.Assignee),
		Reporter:    ToUserSummaryDTO(task.Reporter),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs never returns nil so empty lists encode as [].
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

func optionalOrganization(org *models.Organization) *OrganizationDTO {
	if org == nil {
		return nil
	}
	out := ToOrganizationDTO(*org)
	return &out
}

func optionalProject(project *models.Project) *ProjectDTO {
	if project == nil {
		return nil
	}
	out := ToProjectDTO(*project)
	return &out
}

func ToProjectTasksDTO(org *models.Organization, project *models.Project, tasks []models.Task) ProjectTasksDTO {
	return ProjectTasksDTO{
		Organization: optionalOrganization(org),
		Project:      optionalProject(project),
		Tasks:        ToTaskDTOs(tasks),
	}
}

func ToTaskPageDTO(project *models.Project, tasks []models.Task, isDone bool, cursor string) TaskPageDTO {
	return TaskPageDTO{
		Project: optionalProject(project),
		PageResponse: utils.PageResponse[TaskDTO]{
			Page:           ToTaskDTOs(tasks),
			IsDone:         isDone,
			ContinueCursor: cursor,
		},
	}
}
