package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/nanban-api/internal/cache"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/repository"
)

// DashboardService builds organization-wide rollups
type DashboardService struct {
	orgRepo     repository.OrganizationRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	cache       cache.Cache
	ttl         time.Duration
}

// NewDashboardService creates a new DashboardService. Results are cached for
// ttl when c is non-nil and ttl is positive.
func NewDashboardService(orgRepo repository.OrganizationRepository, projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository, c cache.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{
		orgRepo:     orgRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		cache:       c,
		ttl:         ttl,
	}
}

// MemberSummary is the display information of a project member.
type MemberSummary struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// ProjectSummary is one project's rollup.
type ProjectSummary struct {
	ID           uint64                      `json:"id"`
	Name         string                      `json:"name"`
	Slug         string                      `json:"slug"`
	Description  string                      `json:"description"`
	StatusCounts map[models.TaskStatus]int64 `json:"status_counts"`
	TotalTasks   int64                       `json:"total_tasks"`
	Completion   int                         `json:"completion"`
	Members      []MemberSummary             `json:"members"`
}

// CompanyDashboard is the organization rollup. Organization is nil, and
// Projects empty, when the slug is unknown.
type CompanyDashboard struct {
	Organization *models.Organization `json:"organization"`
	Projects     []ProjectSummary     `json:"projects"`
}

// Completion returns round(100 * done / total), or 0 when there are no tasks.
func Completion(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

const dashboardGenerationKey = "dashboard:generation"

// Invalidate retires every cached dashboard. Entries are keyed by the current
// generation, so storing a new one makes all older entries unreachable.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Set(ctx, dashboardGenerationKey, uuid.NewString(), 0); err != nil {
		logrus.WithError(err).Warn("dashboard cache invalidation failed")
	}
}

func (s *DashboardService) companyKey(ctx context.Context, orgSlug string) string {
	var generation string
	if _, err := s.cache.Get(ctx, dashboardGenerationKey, &generation); err != nil {
		logrus.WithError(err).Warn("dashboard cache generation read failed")
	}
	return "dashboard:company:" + generation + ":" + orgSlug
}

// Company returns the dashboard of the organization with the given slug.
// Cached results are dropped whenever a registered service writes.
func (s *DashboardService) Company(ctx context.Context, orgSlug string) (*CompanyDashboard, error) {
	var key string
	if s.cacheEnabled() {
		key = s.companyKey(ctx, orgSlug)
		var cached CompanyDashboard
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("dashboard cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	dashboard, err := s.buildCompany(orgSlug)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, dashboard, s.ttl); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("dashboard cache write failed")
		}
	}
	return dashboard, nil
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *DashboardService) buildCompany(orgSlug string) (*CompanyDashboard, error) {
	dashboard := &CompanyDashboard{Projects: []ProjectSummary{}}

	org, err := s.orgRepo.FindBySlug(orgSlug)
	if org, err = optional(org, err, "organization"); err != nil || org == nil {
		return dashboard, err
	}
	dashboard.Organization = org

	projects, err := s.projectRepo.ListByOrganization(org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	ids := make([]uint64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	counts, err := s.taskRepo.CountByStatus(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	members, err := s.projectRepo.ListMembers(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	membersByProject := make(map[uint64][]MemberSummary, len(projects))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		membersByProject[m.ProjectID] = append(membersByProject[m.ProjectID], MemberSummary{
			ID:        m.User.ID,
			Name:      m.User.Name,
			Email:     m.User.Email,
			AvatarURL: m.User.AvatarURL,
		})
	}

	for _, p := range projects {
		statusCounts := make(map[models.TaskStatus]int64, len(models.TaskStatuses))
		var total int64
		for _, status := range models.TaskStatuses {
			n := counts[p.ID][status]
			statusCounts[status] = n
			total += n
		}
		projectMembers := membersByProject[p.ID]
		if projectMembers == nil {
			projectMembers = []MemberSummary{}
		}

		dashboard.Projects = append(dashboard.Projects, ProjectSummary{
			ID:           p.ID,
			Name:         p.Name,
			Slug:         p.Slug,
			Description:  p.Description,
			StatusCounts: statusCounts,
			TotalTasks:   total,
			Completion:   Completion(statusCounts[models.TaskStatusDone], total),
			Members:      projectMembers,
		})
	}

	sort.SliceStable(dashboard.Projects, func(i, j int) bool {
		return dashboard.Projects[i].Name < dashboard.Projects[j].Name
	})
	return dashboard, nil
}
