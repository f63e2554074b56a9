// Package testutil provides in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/nanban-api/internal/database"
	"github.com/yukikurage/nanban-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that lives for the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig(nil)
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	// Each connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// FixedClock returns a clock that starts at start and only moves when advanced.
type FixedClock struct {
	now time.Time
}

func NewFixedClock(start time.Time) *FixedClock {
	return &FixedClock{now: start}
}

func (c *FixedClock) Now() time.Time {
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func CreateOrganization(t *testing.T, db *gorm.DB, slug string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: "Org " + slug, Slug: slug}
	require.NoError(t, db.Create(org).Error)
	return org
}

func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateProject(t *testing.T, db *gorm.DB, orgID uint64, slug string, createdBy uint64) *models.Project {
	t.Helper()
	project := &models.Project{
		OrganizationID: orgID,
		Name:           "Project " + slug,
		Slug:           slug,
		CreatedByID:    createdBy,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// TaskOption customizes a fixture task.
type TaskOption func(*models.Task)

func WithStatus(status models.TaskStatus) TaskOption {
	return func(t *models.Task) { t.Status = status }
}

func WithFlags(important, urgent bool) TaskOption {
	return func(t *models.Task) {
		t.IsImportant = important
		t.IsUrgent = urgent
	}
}

func WithDueAt(due time.Time) TaskOption {
	return func(t *models.Task) { t.DueAt = &due }
}

func WithAssignee(userID uint64) TaskOption {
	return func(t *models.Task) { t.AssigneeID = userID }
}

func CreateTask(t *testing.T, db *gorm.DB, projectID, userID uint64, title string, opts ...TaskOption) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID:  projectID,
		Title:      title,
		AssigneeID: userID,
		ReporterID: userID,
		Status:     models.TaskStatusTodo,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func CreateWikiPage(t *testing.T, db *gorm.DB, projectID uint64, title string, editedAt time.Time) *models.WikiPage {
	t.Helper()
	page := &models.WikiPage{
		ProjectID:    projectID,
		Title:        title,
		Content:      "content of " + title,
		LastEditedAt: editedAt,
	}
	require.NoError(t, db.Create(page).Error)
	return page
}
