package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
	"github.com/yukikurage/nanban-api/internal/repository"
	"github.com/yukikurage/nanban-api/internal/utils"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
	userRepo    repository.UserRepository
	cursors     *utils.CursorCodec
	suggester   TaskSuggester
	now         func() time.Time
	changed     func()
}

// NewTaskService creates a new TaskService. suggester may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	cursors *utils.CursorCodec,
	suggester TaskSuggester,
	opts ...Option,
) *TaskService {
	o := buildOptions(opts)
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		cursors:     cursors,
		suggester:   suggester,
		now:         o.now,
		changed:     o.changed,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	AssigneeID  uint64
	ReporterID  uint64
	// Status defaults to todo.
	Status      models.TaskStatus
	IsImportant bool
	IsUrgent    bool
	DueAt       *time.Time
}

// Create inserts a task. Identical tasks are allowed.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	task, err := s.newTask(input)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.changed()
	return task, nil
}

// newTask validates input against the stored project and users and builds the row.
func (s *TaskService) newTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if _, err = lookup(project, err, ErrProjectNotFound, "project"); err != nil {
		return nil, err
	}
	if err := s.ensureUsersExist(input.AssigneeID, input.ReporterID); err != nil {
		return nil, err
	}

	return &models.Task{
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		ReporterID:  input.ReporterID,
		Status:      status,
		IsImportant: input.IsImportant,
		IsUrgent:    input.IsUrgent,
		DueAt:       input.DueAt,
	}, nil
}

// CreateBySlug creates a todo task in the project addressed by slugs.
func (s *TaskService) CreateBySlug(orgSlug, projectSlug string, input CreateTaskInput) (*models.Task, error) {
	org, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	input.ProjectID = project.ID
	input.Status = models.TaskStatusTodo
	return s.Create(input)
}

// GetTask retrieves a task with assignee and reporter
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee", "Reporter")
	return lookup(task, err, ErrTaskNotFound, "task")
}

// SetStatus moves a task to any status; transitions are not restricted.
func (s *TaskService) SetStatus(taskID uint64, status models.TaskStatus) (*models.Task, error) {
	return s.Update(taskID, TaskPatch{Status: &status})
}

// TaskPatch holds the task fields that may be changed. Nil fields are left untouched.
type TaskPatch struct {
	Status      *models.TaskStatus
	IsImportant *bool
	IsUrgent    *bool
	AssigneeID  *uint64
}

func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return validationError("unknown status %q", *p.Status)
	}
	return nil
}

func (p TaskPatch) Fields() patch.Fields {
	f := patch.Fields{}
	patch.Set(f, "status", p.Status)
	patch.Set(f, "is_important", p.IsImportant)
	patch.Set(f, "is_urgent", p.IsUrgent)
	patch.Set(f, "assignee_id", p.AssigneeID)
	return f
}

// Update applies p to a task and returns the updated task
func (s *TaskService) Update(taskID uint64, p TaskPatch) (*models.Task, error) {
	fields, err := patch.Prepare(p)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(taskID)
	if _, err = lookup(task, err, ErrTaskNotFound, "task"); err != nil {
		return nil, err
	}
	if p.AssigneeID != nil {
		if err := s.ensureUsersExist(*p.AssigneeID); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Update(taskID, fields); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.changed()
	return s.GetTask(taskID)
}

// Remove deletes a task. Removing a missing task succeeds.
func (s *TaskService) Remove(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.changed()
	return nil
}

// ListByProject lists all tasks of a project, newest first
func (s *TaskService) ListByProject(projectID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ProjectTasks is a task listing for a project addressed by slugs.
// Project is nil, and Tasks empty, when the slugs don't resolve.
type ProjectTasks struct {
	Organization *models.Organization
	Project      *models.Project
	Tasks        []models.Task
}

// ListForKanban lists a project's tasks with assignee and reporter loaded
func (s *TaskService) ListForKanban(orgSlug, projectSlug string) (*ProjectTasks, error) {
	return s.listBySlug(orgSlug, projectSlug, "Assignee", "Reporter")
}

// ListForTable lists a project's tasks ordered by status rank, then title
func (s *TaskService) ListForTable(orgSlug, projectSlug string) (*ProjectTasks, error) {
	result, err := s.listBySlug(orgSlug, projectSlug, "Assignee")
	if err != nil {
		return nil, err
	}
	SortForTable(result.Tasks)
	return result, nil
}

// SortForTable orders tasks by status rank (backlog first), then by title.
func SortForTable(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Status.Rank(), tasks[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return tasks[i].Title < tasks[j].Title
	})
}

func (s *TaskService) listBySlug(orgSlug, projectSlug string, preload ...string) (*ProjectTasks, error) {
	org, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil {
		return nil, err
	}
	result := &ProjectTasks{Organization: org, Project: project, Tasks: []models.Task{}}
	if project == nil {
		return result, nil
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{ProjectID: project.ID}, preload...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	result.Tasks = tasks
	return result, nil
}

// TaskQuery is the optional, conjunctive filter for counts and pages.
type TaskQuery struct {
	Status     *models.TaskStatus
	Quadrant   models.Quadrant
	AssigneeID *uint64
	ReporterID *uint64
}

func (q TaskQuery) validate() error {
	if q.Status != nil && !q.Status.Valid() {
		return validationError("unknown status %q", *q.Status)
	}
	if q.Quadrant != "" {
		if _, err := models.ParseQuadrant(string(q.Quadrant)); err != nil {
			return validationError("%s", err.Error())
		}
	}
	return nil
}

func (q TaskQuery) filter(projectID uint64) repository.TaskFilter {
	quadrant := q.Quadrant
	if quadrant == "" {
		quadrant = models.QuadrantAll
	}
	return repository.TaskFilter{
		ProjectID:  projectID,
		Status:     q.Status,
		Quadrant:   quadrant,
		AssigneeID: q.AssigneeID,
		ReporterID: q.ReporterID,
	}
}

// CountForProject counts a project's tasks matching q. Unknown slugs count zero.
func (s *TaskService) CountForProject(orgSlug, projectSlug string, q TaskQuery) (int64, error) {
	if err := q.validate(); err != nil {
		return 0, err
	}
	_, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil || project == nil {
		return 0, err
	}

	total, err := s.taskRepo.Count(q.filter(project.ID))
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// TaskPage is one page of a cursor-paginated task listing, newest first.
// ContinueCursor is empty once IsDone is true.
type TaskPage struct {
	Project        *models.Project
	Tasks          []models.Task
	IsDone         bool
	ContinueCursor string
}

// ListForTablePaginated pages through a project's tasks matching q.
// cursor must be empty or a ContinueCursor returned for the same query.
func (s *TaskService) ListForTablePaginated(orgSlug, projectSlug string, q TaskQuery, cursor string, limit int) (*TaskPage, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	_, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return &TaskPage{Tasks: []models.Task{}, IsDone: true}, nil
	}
	return s.page(project, q.filter(project.ID), cursor, limit)
}

// ListMineByQuadrant lists the tasks assigned to userID in a quadrant, newest first.
func (s *TaskService) ListMineByQuadrant(orgSlug, projectSlug string, userID uint64, quadrant models.Quadrant) (*ProjectTasks, error) {
	q := TaskQuery{Quadrant: quadrant, AssigneeID: &userID}
	if err := q.validate(); err != nil {
		return nil, err
	}
	org, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil {
		return nil, err
	}
	result := &ProjectTasks{Organization: org, Project: project, Tasks: []models.Task{}}
	if project == nil {
		return result, nil
	}

	tasks, err := s.taskRepo.List(q.filter(project.ID), "Reporter")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	result.Tasks = tasks
	return result, nil
}

// ListMineByQuadrantPaginated is the paginated form of ListMineByQuadrant.
func (s *TaskService) ListMineByQuadrantPaginated(orgSlug, projectSlug string, userID uint64, quadrant models.Quadrant, cursor string, limit int) (*TaskPage, error) {
	return s.ListForTablePaginated(orgSlug, projectSlug, TaskQuery{Quadrant: quadrant, AssigneeID: &userID}, cursor, limit)
}

func (s *TaskService) page(project *models.Project, filter repository.TaskFilter, cursor string, limit int) (*TaskPage, error) {
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	scope := filter.Scope()
	afterID, err := s.cursors.Decode(scope, cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	tasks, err := s.taskRepo.ListPage(filter, afterID, limit, "Assignee", "Reporter")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	page := &TaskPage{Project: project, Tasks: tasks, IsDone: len(tasks) <= limit}
	if !page.IsDone {
		page.Tasks = tasks[:limit]
		page.ContinueCursor, err = s.cursors.Encode(scope, page.Tasks[limit-1].ID)
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}

// MoveOverdueToBacklog moves every todo task whose due time has passed to backlog
// and returns how many moved. Running it again right away moves nothing.
func (s *TaskService) MoveOverdueToBacklog() (int64, error) {
	moved, err := s.taskRepo.MoveOverdue(s.now(), models.TaskStatusTodo, models.TaskStatusBacklog)
	if err != nil {
		return 0, fmt.Errorf("failed to move overdue tasks: %w", err)
	}
	if moved > 0 {
		s.changed()
	}
	return moved, nil
}

// SuggestTasks asks the configured suggester for tasks found in text.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationError("text is required")
	}

	suggestions, err := s.suggester.SuggestTasks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}

	valid := make([]SuggestedTask, 0, len(suggestions))
	for _, suggestion := range suggestions {
		suggestion.Title = strings.TrimSpace(suggestion.Title)
		if suggestion.Title == "" {
			continue
		}
		valid = append(valid, suggestion)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return valid, nil
}

// GenerateTasks creates todo tasks in a project from suggestions found in text.
// The acting user is both reporter and assignee. Either every task is created
// or none is.
func (s *TaskService) GenerateTasks(ctx context.Context, projectID, userID uint64, text string) ([]models.Task, error) {
	suggestions, err := s.SuggestTasks(ctx, text)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(suggestions))
	for _, suggestion := range suggestions {
		task, err := s.newTask(CreateTaskInput{
			ProjectID:   projectID,
			Title:       suggestion.Title,
			Description: suggestion.Description,
			AssigneeID:  userID,
			ReporterID:  userID,
			IsImportant: suggestion.IsImportant,
			IsUrgent:    suggestion.IsUrgent,
			DueAt:       suggestion.DueAt,
		})
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	if err := s.taskRepo.CreateAll(tasks); err != nil {
		return nil, fmt.Errorf("failed to create generated tasks: %w", err)
	}
	s.changed()
	return tasks, nil
}

func (s *TaskService) ensureUsersExist(ids ...uint64) error {
	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	users, err := s.userRepo.FindByIDs(unique)
	if err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if len(users) != len(unique) {
		return ErrUserNotFound
	}
	return nil
}
