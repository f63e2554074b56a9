package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/cache"
	"github.com/yukikurage/nanban-api/internal/config"
	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/database"
	"github.com/yukikurage/nanban-api/internal/handlers"
	"github.com/yukikurage/nanban-api/internal/jobs"
	"github.com/yukikurage/nanban-api/internal/logging"
	"github.com/yukikurage/nanban-api/internal/metrics"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/repository"
	"github.com/yukikurage/nanban-api/internal/services"
	"github.com/yukikurage/nanban-api/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.Setup(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()

	dashboardCache, err := cache.New(context.Background(), cache.Options{
		Backend:       cfg.CacheBackend,
		RedisAddr:     cfg.RedisAddr(),
		RedisPassword: cfg.RedisPassword,
		Prefix:        "nanban:",
	})
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	// Initialize AI service
	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	}

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Writes to tasks, projects and members retire cached dashboards.
	dashboard := services.NewDashboardService(orgRepo, projectRepo, taskRepo, dashboardCache, cfg.DashboardCacheTTL)
	invalidate := services.WithInvalidator(dashboard)

	svc := handlers.Services{
		Auth:      services.NewAuthService(userRepo),
		Directory: services.NewDirectoryService(orgRepo, userRepo, projectRepo, invalidate),
		Tasks:     services.NewTaskService(taskRepo, projectRepo, orgRepo, userRepo, utils.NewCursorCodec(cfg.CursorSecret), suggester, invalidate),
		Wiki:      services.NewWikiService(repository.NewWikiRepository(db), projectRepo, orgRepo),
		Messaging: services.NewMessagingService(repository.NewChatRepository(db), repository.NewMessageRepository(db), orgRepo, userRepo),
		Dashboard: dashboard,
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if cfg.OverdueSweepInterval > 0 {
		if err := scheduler.Every(cfg.OverdueSweepInterval, jobs.NewOverdueTaskJob(svc.Tasks)); err != nil {
			log.Fatalf("Failed to schedule overdue sweep: %v", err)
		}
	}
	scheduler.Start()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log), metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", constants.HeaderRequestID},
		ExposeHeaders:    []string{constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/metrics", metrics.Handler())
	handlers.Register(r, svc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutting down server...")

	if err := scheduler.Shutdown(); err != nil {
		log.WithError(err).Warn("Error stopping scheduler")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error shutting down server")
	}
}
