package repository

import (
	"github.com/yukikurage/nanban-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindBySlug finds a project by slug within an organization
func (r *GormProjectRepository) FindBySlug(organizationID uint64, slug string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("organization_id = ? AND slug = ?", organizationID, slug).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOrganization lists all projects of an organization
func (r *GormProjectRepository) ListByOrganization(organizationID uint64) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.db.Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete deletes a project and all related data in a transaction.
// Every step is a conditional delete, so re-running it after a partial
// failure or on an already-deleted project succeeds.
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete all wiki pages
		if err := tx.Where("project_id = ?", id).Delete(&models.WikiPage{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		// Delete project
		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(projectID, userID uint64) (*models.ProjectMember, bool, error) {
	return firstOrInsert(r.db,
		map[string]interface{}{"project_id": projectID, "user_id": userID},
		&models.ProjectMember{ProjectID: projectID, UserID: userID},
	)
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// ListMembers lists members of the given projects
func (r *GormProjectRepository) ListMembers(projectIDs []uint64) ([]models.ProjectMember, error) {
	members := []models.ProjectMember{}
	if len(projectIDs) == 0 {
		return members, nil
	}
	if err := r.db.Preload("User").
		Where("project_id IN ?", projectIDs).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
