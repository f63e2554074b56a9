package repository

import (
	"time"

	"github.com/yukikurage/nanban-api/internal/database"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// CreateAll creates tasks in a transaction, filling in their IDs
func (r *GormTaskRepository) CreateAll(tasks []models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	if err := withPreload(r.db, preload).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial patch to a task
func (r *GormTaskRepository) Update(id uint64, fields patch.Fields) error {
	if fields.Empty() {
		return nil
	}
	return r.db.Model(&models.Task{ID: id}).Updates(map[string]interface{}(fields)).Error
}

// Delete hard deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// List returns every task matching filter, newest first
func (r *GormTaskRepository) List(filter TaskFilter, preload ...string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := withPreload(r.db, preload).
		Scopes(filter.apply).
		Order("tasks.id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPage returns one keyset page, plus one extra row when more remain
func (r *GormTaskRepository) ListPage(filter TaskFilter, afterID uint64, limit int, preload ...string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := withPreload(r.db, preload).
		Scopes(filter.apply, database.KeysetDesc("tasks", afterID, limit)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts tasks matching filter
func (r *GormTaskRepository) Count(filter TaskFilter) (int64, error) {
	var total int64
	if err := r.db.Model(&models.Task{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountByStatus groups task counts by project and status
func (r *GormTaskRepository) CountByStatus(projectIDs []uint64) (map[uint64]map[models.TaskStatus]int64, error) {
	counts := make(map[uint64]map[models.TaskStatus]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ProjectID uint64
		Status    models.TaskStatus
		Total     int64
	}
	err := r.db.Model(&models.Task{}).
		Select("project_id, status, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if counts[row.ProjectID] == nil {
			counts[row.ProjectID] = make(map[models.TaskStatus]int64)
		}
		counts[row.ProjectID][row.Status] = row.Total
	}
	return counts, nil
}

// MoveOverdue moves every task in status from whose due time is before now.
// Tasks without a due time are never touched.
func (r *GormTaskRepository) MoveOverdue(now time.Time, from, to models.TaskStatus) (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", from, now).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (f TaskFilter) apply(db *gorm.DB) *gorm.DB {
	db = db.Where("tasks.project_id = ?", f.ProjectID)
	if f.Status != nil {
		db = db.Where("tasks.status = ?", *f.Status)
	}
	if important, urgent, ok := f.Quadrant.Flags(); ok {
		db = db.Where("tasks.is_important = ? AND tasks.is_urgent = ?", important, urgent)
	}
	if f.AssigneeID != nil {
		db = db.Where("tasks.assignee_id = ?", *f.AssigneeID)
	}
	if f.ReporterID != nil {
		db = db.Where("tasks.reporter_id = ?", *f.ReporterID)
	}
	return db
}

func withPreload(db *gorm.DB, preload []string) *gorm.DB {
	for _, p := range preload {
		db = db.Preload(p)
	}
	return db
}
