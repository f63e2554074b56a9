package repository

import (
	"fmt"
	"time"

	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
)

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by its global slug
	FindBySlug(slug string) (*models.Organization, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByIDs returns the users that exist among ids, in no particular order
	FindByIDs(ids []uint64) ([]models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns every user
	List() ([]models.User, error)

	// Update applies a partial patch to a user
	Update(id uint64, fields patch.Fields) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindBySlug finds a project by slug within an organization
	FindBySlug(organizationID uint64, slug string) (*models.Project, error)

	// ListByOrganization lists all projects of an organization
	ListByOrganization(organizationID uint64) ([]models.Project, error)

	// Delete deletes a project together with its tasks, wiki pages and members
	Delete(id uint64) error

	// AddMember adds a member, returning the existing row if the pair is already present
	AddMember(projectID, userID uint64) (*models.ProjectMember, bool, error)

	// RemoveMember removes a member; absent pairs are ignored
	RemoveMember(projectID, userID uint64) error

	// ListMembers lists members of the given projects with their users preloaded
	ListMembers(projectIDs []uint64) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// CreateAll creates tasks in one transaction; on error none is stored
	CreateAll(tasks []models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// Update applies a partial patch to a task
	Update(id uint64, fields patch.Fields) error

	// Delete hard deletes a task
	Delete(id uint64) error

	// List returns every task matching filter, newest first
	List(filter TaskFilter, preload ...string) ([]models.Task, error)

	// ListPage returns up to limit+1 tasks matching filter with id below afterID, newest first
	ListPage(filter TaskFilter, afterID uint64, limit int, preload ...string) ([]models.Task, error)

	// Count counts tasks matching filter
	Count(filter TaskFilter) (int64, error)

	// CountByStatus groups task counts by project and status
	CountByStatus(projectIDs []uint64) (map[uint64]map[models.TaskStatus]int64, error)

	// MoveOverdue moves tasks in status from with a due time before now to status to
	MoveOverdue(now time.Time, from, to models.TaskStatus) (int64, error)
}

// TaskFilter holds the conjunctive filter shared by task counts and pages.
// Zero values mean "no constraint".
type TaskFilter struct {
	ProjectID  uint64
	Status     *models.TaskStatus
	Quadrant   models.Quadrant
	AssigneeID *uint64
	ReporterID *uint64
}

// Scope identifies the query a pagination cursor was issued for.
func (f TaskFilter) Scope() string {
	scope := fmt.Sprintf("tasks:project=%d;quadrant=%s", f.ProjectID, f.Quadrant)
	if f.Status != nil {
		scope += ";status=" + string(*f.Status)
	}
	if f.AssigneeID != nil {
		scope += fmt.Sprintf(";assignee=%d", *f.AssigneeID)
	}
	if f.ReporterID != nil {
		scope += fmt.Sprintf(";reporter=%d", *f.ReporterID)
	}
	return scope
}

// WikiRepository defines the interface for wiki page data access
type WikiRepository interface {
	// Create creates a new page
	Create(page *models.WikiPage) error

	// FindByID finds a page by ID
	FindByID(id uint64) (*models.WikiPage, error)

	// FindByTitle finds a page by its exact title within a project
	FindByTitle(projectID uint64, title string) (*models.WikiPage, error)

	// UpsertByTitle writes content and last-edited time for (project, title), inserting when absent
	UpsertByTitle(page *models.WikiPage) (*models.WikiPage, error)

	// Update applies a partial patch to a page
	Update(id uint64, fields patch.Fields) error

	// Delete hard deletes a page
	Delete(id uint64) error

	// ListByProjectLatest lists pages of a project, most recently edited first
	ListByProjectLatest(projectID uint64) ([]models.WikiPage, error)
}

// ChatRepository defines the interface for chat and participant data access
type ChatRepository interface {
	// FindByID finds a chat by ID
	FindByID(id uint64) (*models.Chat, error)

	// ListByOrganization lists the chats of an organization
	ListByOrganization(organizationID uint64) ([]models.Chat, error)

	// GetOrCreate returns the chat with the same (organization, type, lookup key), creating it when absent
	GetOrCreate(chat *models.Chat) (*models.Chat, bool, error)

	// AddParticipant adds a participant, returning the existing row if already present
	AddParticipant(chatID, userID uint64) (*models.ChatParticipant, bool, error)

	// ClaimDM sets a chat's direct-message pair and removes participants outside it
	ClaimDM(chatID uint64, pair models.DMPair) error

	// ListParticipations lists a user's participations in chats of an organization, with chats preloaded
	ListParticipations(userID, organizationID uint64) ([]models.ChatParticipant, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// Create creates a new message
	Create(message *models.Message) error

	// ListByChat lists messages of a chat in send order
	ListByChat(chatID uint64, preload ...string) ([]models.Message, error)
}
