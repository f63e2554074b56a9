package services

import (
	"context"
	"testing"
	"time"

	"github.com/yukikurage/nanban-api/internal/cache"
	"github.com/yukikurage/nanban-api/internal/repository"
	"github.com/yukikurage/nanban-api/internal/testutil"
	"github.com/yukikurage/nanban-api/internal/utils"
	"gorm.io/gorm"
)

type fakeSuggester struct {
	suggestions []SuggestedTask
	err         error
	calls       int
}

func (f *fakeSuggester) SuggestTasks(_ context.Context, _ string) ([]SuggestedTask, error) {
	f.calls++
	return f.suggestions, f.err
}

type testEnv struct {
	db        *gorm.DB
	clock     *testutil.FixedClock
	suggester *fakeSuggester
	cache     cache.Cache

	directory *DirectoryService
	auth      *AuthService
	tasks     *TaskService
	wiki      *WikiService
	messaging *MessagingService
	dashboard *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	withClock := WithClock(clock.Now)

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	wikiRepo := repository.NewWikiRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	suggester := &fakeSuggester{}
	memCache := cache.NewMemoryCache(time.Minute)
	dashboard := NewDashboardService(orgRepo, projectRepo, taskRepo, memCache, time.Minute)
	invalidate := WithInvalidator(dashboard)

	return &testEnv{
		db:        db,
		clock:     clock,
		suggester: suggester,
		cache:     memCache,
		directory: NewDirectoryService(orgRepo, userRepo, projectRepo, invalidate),
		auth:      NewAuthService(userRepo),
		tasks:     NewTaskService(taskRepo, projectRepo, orgRepo, userRepo, utils.NewCursorCodec("test-secret"), suggester, withClock, invalidate),
		wiki:      NewWikiService(wikiRepo, projectRepo, orgRepo, withClock),
		messaging: NewMessagingService(chatRepo, messageRepo, orgRepo, userRepo, withClock),
		dashboard: dashboard,
	}
}
