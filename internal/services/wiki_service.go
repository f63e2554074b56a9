package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/patch"
	"github.com/yukikurage/nanban-api/internal/repository"
	"gorm.io/gorm"
)

// WikiService handles wiki page business logic
type WikiService struct {
	wikiRepo    repository.WikiRepository
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
	now         func() time.Time
}

// NewWikiService creates a new WikiService
func NewWikiService(wikiRepo repository.WikiRepository, projectRepo repository.ProjectRepository, orgRepo repository.OrganizationRepository, opts ...Option) *WikiService {
	o := buildOptions(opts)
	return &WikiService{
		wikiRepo:    wikiRepo,
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		now:         o.now,
	}
}

// editedAt returns the next last-edited time, strictly after prev when given.
// Stored timestamps have millisecond precision.
func (s *WikiService) editedAt(prev *time.Time) time.Time {
	ts := s.now().UTC().Truncate(time.Millisecond)
	if prev != nil && !ts.After(*prev) {
		ts = prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return ts
}

// Upsert writes content to the page titled title, creating it when absent.
// Concurrent writers race freely; the last write wins.
func (s *WikiService) Upsert(projectID uint64, title, content string) (*models.WikiPage, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	project, err := s.projectRepo.FindByID(projectID)
	if _, err = lookup(project, err, ErrProjectNotFound, "project"); err != nil {
		return nil, err
	}

	var prev *time.Time
	existing, err := s.wikiRepo.FindByTitle(projectID, title)
	if err == nil {
		prev = &existing.LastEditedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find wiki page: %w", err)
	}

	page, err := s.wikiRepo.UpsertByTitle(&models.WikiPage{
		ProjectID:    projectID,
		Title:        title,
		Content:      content,
		LastEditedAt: s.editedAt(prev),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wiki page: %w", err)
	}
	return page, nil
}

// CreateWikiInput represents input for strictly creating a page
type CreateWikiInput struct {
	Title     string
	Content   string
	Thumbnail *string
}

// Create adds a page to the project addressed by slugs. Unlike Upsert it
// refuses to overwrite an existing title.
func (s *WikiService) Create(orgSlug, projectSlug string, input CreateWikiInput) (*models.WikiPage, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

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

	if _, err := s.wikiRepo.FindByTitle(project.ID, title); err == nil {
		return nil, ErrWikiTitleTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check wiki title: %w", err)
	}

	page := &models.WikiPage{
		ProjectID:    project.ID,
		Title:        title,
		Content:      input.Content,
		Thumbnail:    blankToNil(input.Thumbnail),
		LastEditedAt: s.editedAt(nil),
	}
	if err := s.wikiRepo.Create(page); err != nil {
		if isDuplicate(err) {
			return nil, ErrWikiTitleTaken
		}
		return nil, fmt.Errorf("failed to create wiki page: %w", err)
	}
	return page, nil
}

// Get returns the page or nil when it doesn't exist.
func (s *WikiService) Get(id uint64) (*models.WikiPage, error) {
	page, err := s.wikiRepo.FindByID(id)
	return optional(page, err, "wiki page")
}

// WikiPatch holds the page fields that may be changed. Nil fields are left
// untouched; a blank thumbnail clears it.
type WikiPatch struct {
	Title     *string
	Content   *string
	Thumbnail *string
}

func (p WikiPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func (p WikiPatch) Fields() patch.Fields {
	f := patch.Fields{}
	patch.SetFunc(f, "title", p.Title, func(v string) any { return strings.TrimSpace(v) })
	patch.Set(f, "content", p.Content)
	patch.SetFunc(f, "thumbnail", p.Thumbnail, func(v string) any { return blankToNil(&v) })
	return f
}

// Update applies p and always refreshes the last-edited time, even when p is empty.
func (s *WikiService) Update(id uint64, p WikiPatch) (*models.WikiPage, error) {
	fields, err := patch.Prepare(p)
	if err != nil {
		return nil, err
	}

	page, err := s.wikiRepo.FindByID(id)
	if page, err = lookup(page, err, ErrWikiPageNotFound, "wiki page"); err != nil {
		return nil, err
	}

	if title, ok := fields["title"].(string); ok && title != page.Title {
		if _, err := s.wikiRepo.FindByTitle(page.ProjectID, title); err == nil {
			return nil, ErrWikiTitleTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check wiki title: %w", err)
		}
	}

	fields["last_edited_at"] = s.editedAt(&page.LastEditedAt)
	if err := s.wikiRepo.Update(id, fields); err != nil {
		if isDuplicate(err) {
			return nil, ErrWikiTitleTaken
		}
		return nil, fmt.Errorf("failed to update wiki page: %w", err)
	}

	page, err = s.wikiRepo.FindByID(id)
	return lookup(page, err, ErrWikiPageNotFound, "wiki page")
}

// ListByProjectLatest lists a project's pages, most recently edited first.
func (s *WikiService) ListByProjectLatest(projectID uint64) ([]models.WikiPage, error) {
	pages, err := s.wikiRepo.ListByProjectLatest(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wiki pages: %w", err)
	}
	return pages, nil
}

// WikiListing is a page listing for a project addressed by slugs.
type WikiListing struct {
	Project *models.Project
	Pages   []models.WikiPage
}

// ListByProject lists pages of the project addressed by slugs, most recently edited first.
// Unknown slugs give an empty listing.
func (s *WikiService) ListByProject(orgSlug, projectSlug string) (*WikiListing, error) {
	_, project, err := resolveProject(s.orgRepo, s.projectRepo, orgSlug, projectSlug)
	if err != nil {
		return nil, err
	}
	listing := &WikiListing{Project: project, Pages: []models.WikiPage{}}
	if project == nil {
		return listing, nil
	}

	listing.Pages, err = s.ListByProjectLatest(project.ID)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Remove deletes a page. Removing a missing page succeeds.
func (s *WikiService) Remove(id uint64) error {
	if err := s.wikiRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete wiki page: %w", err)
	}
	return nil
}
