package services

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
	"github.com/yukikurage/nanban-api/internal/repository"
	"github.com/yukikurage/nanban-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DirectoryService manages organizations, users, projects and project membership.
type DirectoryService struct {
	orgRepo     repository.OrganizationRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	changed     func()
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, projectRepo repository.ProjectRepository, opts ...Option) *DirectoryService {
	o := buildOptions(opts)
	return &DirectoryService{
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		changed:     o.changed,
	}
}

// GetOrgBySlug returns the organization or nil when the slug is unknown.
func (s *DirectoryService) GetOrgBySlug(slug string) (*models.Organization, error) {
	org, err := s.orgRepo.FindBySlug(slug)
	return optional(org, err, "organization")
}

// CreateOrgInput represents input for creating an organization.
type CreateOrgInput struct {
	Name string
	// Slug defaults to a slugified Name.
	Slug string
}

// CreateOrg creates an organization with a globally unique slug.
func (s *DirectoryService) CreateOrg(input CreateOrgInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("organization name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, validationError("organization slug is required")
	}

	if _, err := s.orgRepo.FindBySlug(slug); err == nil {
		return nil, ErrOrganizationSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check organization slug: %w", err)
	}

	org := &models.Organization{Name: name, Slug: slug}
	if err := s.orgRepo.Create(org); err != nil {
		if isDuplicate(err) {
			return nil, ErrOrganizationSlugTaken
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	s.changed()
	return org, nil
}

// CreateUserInput represents the information needed to create a user.
type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL *string
}

// CreateUser creates a user with a unique email. The password is stored as a bcrypt hash.
func (s *DirectoryService) CreateUser(input CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("email is invalid")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, validationError("password must be at least %d characters", constants.MinPasswordLength)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		AvatarURL:    blankToNil(input.AvatarURL),
	}
	if err := s.userRepo.Create(user); err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user or nil when no user has that email.
func (s *DirectoryService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	return optional(user, err, "user")
}

// UserPatch holds the user fields that may be changed. Nil fields are left untouched.
type UserPatch struct {
	Name      *string
	AvatarURL *string
}

func (p UserPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return validationError("name cannot be empty")
	}
	return nil
}

func (p UserPatch) Fields() patch.Fields {
	f := patch.Fields{}
	patch.SetFunc(f, "name", p.Name, func(v string) any { return strings.TrimSpace(v) })
	// An empty avatar clears it.
	patch.SetFunc(f, "avatar_url", p.AvatarURL, func(v string) any { return blankToNil(&v) })
	return f
}

// UpdateUser applies p to the user and returns the updated row.
func (s *DirectoryService) UpdateUser(id uint64, p UserPatch) (*models.User, error) {
	fields, err := patch.Prepare(p)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(id)
	if user, err = lookup(user, err, ErrUserNotFound, "user"); err != nil {
		return nil, err
	}
	if fields.Empty() {
		return user, nil
	}

	if err := s.userRepo.Update(id, fields); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.changed()
	user, err = s.userRepo.FindByID(id)
	return lookup(user, err, ErrUserNotFound, "user")
}

// ListUsers returns every user sorted by name.
func (s *DirectoryService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users, nil
}

// GetUser retrieves a user by ID.
func (s *DirectoryService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	return lookup(user, err, ErrUserNotFound, "user")
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	OrganizationID uint64
	Name           string
	Slug           string
	Description    string
	CreatedByID    uint64
}

// CreateProject creates a project whose slug is unique within its organization.
// The creator becomes its first member.
func (s *DirectoryService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("project name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, validationError("project slug is required")
	}

	org, err := s.orgRepo.FindByID(input.OrganizationID)
	if _, err = lookup(org, err, ErrOrganizationNotFound, "organization"); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindBySlug(input.OrganizationID, slug); err == nil {
		return nil, ErrProjectSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check project slug: %w", err)
	}

	project := &models.Project{
		OrganizationID: input.OrganizationID,
		Name:           name,
		Slug:           slug,
		Description:    input.Description,
		CreatedByID:    input.CreatedByID,
	}
	if err := s.projectRepo.Create(project); err != nil {
		if isDuplicate(err) {
			return nil, ErrProjectSlugTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if input.CreatedByID != 0 {
		if _, _, err := s.projectRepo.AddMember(project.ID, input.CreatedByID); err != nil {
			return nil, fmt.Errorf("failed to add project creator as member: %w", err)
		}
	}
	s.changed()
	return project, nil
}

// ListProjectsByOrg lists the projects of an organization sorted by name.
func (s *DirectoryService) ListProjectsByOrg(orgID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// GetProjectBySlug resolves a project by organization and project slug.
// The project is nil when either slug is unknown.
func (s *DirectoryService) GetProjectBySlug(orgSlug, projectSlug string) (*models.Organization, *models.Project, error) {
	return resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
}

// RemoveProject deletes a project with its tasks, wiki pages and members.
// Chats and messages belong to the organization and are kept.
// Removing a project that no longer exists succeeds.
func (s *DirectoryService) RemoveProject(projectID uint64) error {
	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.changed()
	return nil
}

// AddProjectMember adds a user to a project, returning the existing membership if present.
func (s *DirectoryService) AddProjectMember(projectID, userID uint64) (*models.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if _, err = lookup(project, err, ErrProjectNotFound, "project"); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if _, err = lookup(user, err, ErrUserNotFound, "user"); err != nil {
		return nil, err
	}

	member, created, err := s.projectRepo.AddMember(projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}
	if created {
		s.changed()
	}
	return member, nil
}

// RemoveProjectMember removes a user from a project. Absent memberships are ignored.
func (s *DirectoryService) RemoveProjectMember(projectID, userID uint64) error {
	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	s.changed()
	return nil
}

// resolveProject looks up an organization and one of its projects by slug.
// Unknown slugs yield nil results rather than errors.
func resolveProject(orgRepo repository.OrganizationRepository, projectRepo repository.ProjectRepository, orgSlug, projectSlug string) (*models.Organization, *models.Project, error) {
	org, err := orgRepo.FindBySlug(orgSlug)
	if org, err = optional(org, err, "organization"); err != nil || org == nil {
		return nil, nil, err
	}
	project, err := projectRepo.FindBySlug(org.ID, projectSlug)
	if project, err = optional(project, err, "project"); err != nil {
		return nil, nil, err
	}
	return org, project, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
