package repository

import (
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWikiRepository is a GORM implementation of WikiRepository
type GormWikiRepository struct {
	db *gorm.DB
}

// NewWikiRepository creates a new WikiRepository
func NewWikiRepository(db *gorm.DB) WikiRepository {
	return &GormWikiRepository{db: db}
}

// Create creates a new page
func (r *GormWikiRepository) Create(page *models.WikiPage) error {
	return r.db.Create(page).Error
}

// FindByID finds a page by ID
func (r *GormWikiRepository) FindByID(id uint64) (*models.WikiPage, error) {
	var page models.WikiPage
	if err := r.db.First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// FindByTitle finds a page by exact title within a project
func (r *GormWikiRepository) FindByTitle(projectID uint64, title string) (*models.WikiPage, error) {
	var page models.WikiPage
	if err := r.db.Where("project_id = ? AND title = ?", projectID, title).
		First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// UpsertByTitle inserts page or, when (project, title) exists, overwrites its
// content and last-edited time. The stored row is re-read so the returned id is
// the surviving one on every driver.
func (r *GormWikiRepository) UpsertByTitle(page *models.WikiPage) (*models.WikiPage, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "last_edited_at"}),
	}).Create(page).Error
	if err != nil {
		return nil, err
	}
	return r.FindByTitle(page.ProjectID, page.Title)
}

// Update applies a partial patch to a page
func (r *GormWikiRepository) Update(id uint64, fields patch.Fields) error {
	if fields.Empty() {
		return nil
	}
	return r.db.Model(&models.WikiPage{ID: id}).Updates(map[string]interface{}(fields)).Error
}

// Delete hard deletes a page
func (r *GormWikiRepository) Delete(id uint64) error {
	return r.db.Delete(&models.WikiPage{}, id).Error
}

// ListByProjectLatest lists pages by last-edited time, newest first; ties fall back to id
func (r *GormWikiRepository) ListByProjectLatest(projectID uint64) ([]models.WikiPage, error) {
	pages := []models.WikiPage{}
	if err := r.db.Where("project_id = ?", projectID).
		Order("last_edited_at DESC, id DESC").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}
