// Command sweep-overdue moves overdue todo tasks to the backlog once and exits.
// It is meant for deployments that schedule the sweep with an external cron
// instead of the server's built-in scheduler.
package main

import (
	"context"
	"time"

	"github.com/yukikurage/nanban-api/internal/cache"
	"github.com/yukikurage/nanban-api/internal/config"
	"github.com/yukikurage/nanban-api/internal/database"
	"github.com/yukikurage/nanban-api/internal/jobs"
	"github.com/yukikurage/nanban-api/internal/logging"
	"github.com/yukikurage/nanban-api/internal/repository"
	"github.com/yukikurage/nanban-api/internal/services"
	"github.com/yukikurage/nanban-api/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logging.Setup(cfg.LogLevel, cfg.IsProduction())

	if err := database.Connect(cfg, log); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// A shared Redis cache must learn about moved tasks; a memory cache
	// lives in the server process and is unaffected by this command.
	dashboardCache, err := cache.New(ctx, cache.Options{
		Backend:       cfg.CacheBackend,
		RedisAddr:     cfg.RedisAddr(),
		RedisPassword: cfg.RedisPassword,
		Prefix:        "nanban:",
	})
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	dashboard := services.NewDashboardService(orgRepo, projectRepo, taskRepo, dashboardCache, cfg.DashboardCacheTTL)

	tasks := services.NewTaskService(
		taskRepo,
		projectRepo,
		orgRepo,
		repository.NewUserRepository(db),
		utils.NewCursorCodec(cfg.CursorSecret),
		nil,
		services.WithInvalidator(dashboard),
	)

	if err := jobs.RunOnce(ctx, jobs.NewOverdueTaskJob(tasks)); err != nil {
		log.Fatalf("Overdue sweep failed: %v", err)
	}
}
