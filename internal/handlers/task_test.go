package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/dto"
	apierrors "github.com/yukikurage/nanban-api/internal/errors"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/services"
)

func (s *apiSuite) createBoardTask(title string, extra gin.H) dto.TaskDTO {
	body := gin.H{"title": title}
	for k, v := range extra {
		body[k] = v
	}
	w := s.request(http.MethodPost, "/api/orgs/acme/projects/ops/tasks", body)
	s.requireStatus(w, http.StatusCreated)
	var task dto.TaskDTO
	s.decode(w, &task)
	return task
}

func (s *apiSuite) TestBoardViews() {
	alice, _, _ := s.setupBoard()

	first := s.createBoardTask("first", gin.H{"is_important": true})
	s.Equal(models.TaskStatusTodo, first.Status)
	s.Equal(alice.ID, first.AssigneeID, "assignee defaults to the reporter")
	s.Equal(models.QuadrantDecide, first.Quadrant)
	s.createBoardTask("second", gin.H{"is_important": true})
	s.createBoardTask("third", gin.H{"is_important": true, "is_urgent": true, "status": "done"})

	w := s.request(http.MethodGet, "/api/orgs/acme/projects/ops/kanban", nil)
	s.requireStatus(w, http.StatusOK)
	var kanban dto.ProjectTasksDTO
	s.decode(w, &kanban)
	s.Require().NotNil(kanban.Project)
	s.Equal("ops", kanban.Project.Slug)
	s.Len(kanban.Tasks, 3)
	for _, task := range kanban.Tasks {
		s.Equal(models.TaskStatusTodo, task.Status, "board-created tasks always start in todo")
		s.Require().NotNil(task.Assignee)
		s.Equal("alice", task.Assignee.Name)
	}

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/table", nil)
	s.requireStatus(w, http.StatusOK)
	var table dto.ProjectTasksDTO
	s.decode(w, &table)
	s.Equal([]string{"first", "second", "third"}, titles(table.Tasks), "same status sorts by title")

	w = s.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", first.ID), gin.H{"status": "done"})
	s.requireStatus(w, http.StatusOK)
	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/table", nil)
	s.requireStatus(w, http.StatusOK)
	s.decode(w, &table)
	s.Equal([]string{"second", "third", "first"}, titles(table.Tasks), "status rank comes before title")
	w = s.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", first.ID), gin.H{"status": "todo"})
	s.requireStatus(w, http.StatusOK)

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/count?quadrant=decide", nil)
	s.requireStatus(w, http.StatusOK)
	s.JSONEq(`{"count":2}`, w.Body.String())

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/mine?quadrant=do", nil)
	s.requireStatus(w, http.StatusOK)
	var mine dto.ProjectTasksDTO
	s.decode(w, &mine)
	s.Equal([]string{"third"}, titles(mine.Tasks))

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/count?quadrant=someday", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/count?status=blocked", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/nope/kanban", nil)
	s.requireStatus(w, http.StatusOK)
	var missing dto.ProjectTasksDTO
	s.decode(w, &missing)
	s.NotNil(missing.Organization)
	s.Nil(missing.Project)
	s.Contains(w.Body.String(), `"tasks":[]`)
}

func (s *apiSuite) TestTaskPagination() {
	s.setupBoard()
	for i := 1; i <= 5; i++ {
		s.createBoardTask(fmt.Sprintf("task %d", i), nil)
	}

	var seen []string
	cursor := ""
	for pages := 0; ; pages++ {
		s.Require().Less(pages, 5, "pagination did not terminate")
		path := "/api/orgs/acme/projects/ops/tasks/page?limit=2"
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}
		w := s.request(http.MethodGet, path, nil)
		s.requireStatus(w, http.StatusOK)

		var page dto.TaskPageDTO
		s.decode(w, &page)
		seen = append(seen, titles(page.Page)...)
		if page.IsDone {
			s.Empty(page.ContinueCursor)
			break
		}
		cursor = page.ContinueCursor
	}
	s.Equal([]string{"task 5", "task 4", "task 3", "task 2", "task 1"}, seen)

	w := s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/page?limit=2", nil)
	var first dto.TaskPageDTO
	s.decode(w, &first)

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/page?limit=2&quadrant=do&cursor="+url.QueryEscape(first.ContinueCursor), nil)
	s.Equal(http.StatusBadRequest, w.Code, "a cursor only continues the query that produced it")
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))

	w = s.request(http.MethodGet, "/api/orgs/acme/projects/ops/tasks/mine/page?limit=10", nil)
	s.requireStatus(w, http.StatusOK)
	var mine dto.TaskPageDTO
	s.decode(w, &mine)
	s.Len(mine.Page, 5)
	s.True(mine.IsDone)
}

func (s *apiSuite) TestTaskMutations() {
	_, _, project := s.setupBoard()
	bob := s.signUp("bob")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", project.ID), gin.H{
		"title": "Write report", "is_important": true, "assignee_id": bob.ID, "status": "in-progress",
	})
	s.requireStatus(w, http.StatusCreated)
	var task dto.TaskDTO
	s.decode(w, &task)
	s.Equal(models.TaskStatusInProgress, task.Status)
	s.Equal(bob.ID, task.AssigneeID)

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), gin.H{"is_urgent": true})
	s.requireStatus(w, http.StatusOK)
	var patched dto.TaskDTO
	s.decode(w, &patched)
	s.True(patched.IsImportant, "absent fields are left untouched")
	s.True(patched.IsUrgent)
	s.Equal(models.QuadrantDo, patched.Quadrant)
	s.Equal(models.TaskStatusInProgress, patched.Status)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", task.ID), gin.H{"status": "done"})
	s.requireStatus(w, http.StatusOK)
	var done dto.TaskDTO
	s.decode(w, &done)
	s.Equal(models.TaskStatusDone, done.Status)

	w = s.request(http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", task.ID), gin.H{"status": "blocked"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationFailed, s.errorCode(w))

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), gin.H{"assignee_id": 999})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPatch, "/api/tasks/999", gin.H{"is_urgent": false})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPatch, "/api/tasks/abc", gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/tasks", project.ID), nil)
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), "Write report")

	for i := 0; i < 2; i++ {
		w = s.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
		s.Equal(http.StatusNoContent, w.Code, "deleting twice succeeds")
	}
	w = s.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/tasks", project.ID), nil)
	s.JSONEq(`{"tasks":[]}`, w.Body.String())
}

func (s *apiSuite) TestCreateTaskInUnknownProject() {
	s.setupBoard()

	w := s.request(http.MethodPost, "/api/orgs/acme/projects/nope/tasks", gin.H{"title": "x"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/projects/999/tasks", gin.H{"title": "x"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/orgs/acme/projects/ops/tasks", gin.H{"title": ""})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *apiSuite) TestOverdueSweepAndSuggestions() {
	_, _, project := s.setupBoard()
	s.createBoardTask("late", gin.H{"due_at": "2000-01-01T00:00:00Z"})
	s.createBoardTask("on time", gin.H{"due_at": "2999-01-01T00:00:00Z"})

	w := s.request(http.MethodPost, "/api/tasks/overdue/backlog", nil)
	s.requireStatus(w, http.StatusOK)
	s.JSONEq(`{"moved":1}`, w.Body.String())

	s.suggester.suggestions = []services.SuggestedTask{
		{Title: "Book venue", IsImportant: true},
		{Title: "  "},
	}
	w = s.request(http.MethodPost, "/api/tasks/suggest", gin.H{"text": "we need a venue"})
	s.requireStatus(w, http.StatusOK)
	s.Contains(w.Body.String(), "Book venue")

	w = s.request(http.MethodPost, "/api/tasks/suggest", gin.H{"text": "we need a venue", "project_id": project.ID})
	s.requireStatus(w, http.StatusCreated)
	var created struct {
		Tasks []dto.TaskDTO `json:"tasks"`
	}
	s.decode(w, &created)
	s.Equal([]string{"Book venue"}, titles(created.Tasks))
	s.Equal(models.QuadrantDecide, created.Tasks[0].Quadrant)
}

func titles(tasks []dto.TaskDTO) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
