package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/middleware"
	"github.com/yukikurage/nanban-api/internal/services"
)

// Services are the business services the API is built on.
type Services struct {
	Auth      *services.AuthService
	Directory *services.DirectoryService
	Tasks     *services.TaskService
	Wiki      *services.WikiService
	Messaging *services.MessagingService
	Dashboard *services.DashboardService
}

// Register mounts /health and the /api routes. Session middleware must
// already be installed on r.
func Register(r gin.IRouter, svc Services) {
	authHandler := NewAuthHandler(svc.Auth, svc.Directory)
	userHandler := NewUserHandler(svc.Directory)
	orgHandler := NewOrganizationHandler(svc.Directory, svc.Dashboard, svc.Messaging)
	projectHandler := NewProjectHandler(svc.Directory)
	taskHandler := NewTaskHandler(svc.Tasks)
	wikiHandler := NewWikiHandler(svc.Wiki)
	chatHandler := NewChatHandler(svc.Messaging)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Nanban API is running",
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}
		api.POST("/users", userHandler.CreateUser)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/by-email", userHandler.GetUserByEmail)
			users.PATCH("/:id", userHandler.UpdateUser)
		}

		orgs := protected.Group("/orgs")
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("/:orgSlug", orgHandler.GetOrganization)
			orgs.GET("/:orgSlug/dashboard", orgHandler.GetDashboard)
			orgs.GET("/:orgSlug/inbox", orgHandler.GetInbox)
			orgs.POST("/:orgSlug/dms", orgHandler.OpenDirectMessage)

			board := orgs.Group("/:orgSlug/projects/:projectSlug")
			board.GET("/kanban", taskHandler.Kanban)
			board.GET("/table", taskHandler.Table)
			board.GET("/tasks/count", taskHandler.Count)
			board.GET("/tasks/page", taskHandler.Page)
			board.GET("/tasks/mine", taskHandler.Mine)
			board.GET("/tasks/mine/page", taskHandler.MinePage)
			board.POST("/tasks", taskHandler.CreateBySlug)
			board.GET("/wiki", wikiHandler.ListBySlug)
			board.POST("/wiki", wikiHandler.CreateBySlug)
		}

		projects := protected.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/members", projectHandler.AddMember)
			projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember)
			projects.GET("/:id/tasks", taskHandler.ListByProject)
			projects.POST("/:id/tasks", taskHandler.CreateInProject)
			projects.GET("/:id/wiki", wikiHandler.ListByProject)
			projects.PUT("/:id/wiki", wikiHandler.Upsert)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("/overdue/backlog", taskHandler.MoveOverdueToBacklog)
			tasks.POST("/suggest", taskHandler.Suggest)
			tasks.PATCH("/:id", taskHandler.Update)
			tasks.PUT("/:id/status", taskHandler.SetStatus)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		wiki := protected.Group("/wiki")
		{
			wiki.GET("/:id", wikiHandler.Get)
			wiki.PATCH("/:id", wikiHandler.Update)
			wiki.DELETE("/:id", wikiHandler.Delete)
		}

		chats := protected.Group("/chats")
		{
			chats.GET("", chatHandler.ListChats)
			chats.POST("", chatHandler.CreateChat)
			chats.POST("/:id/participants", chatHandler.AddParticipant)
			chats.GET("/:id/messages", chatHandler.ListMessages)
			chats.POST("/:id/messages", chatHandler.SendMessage)
		}
	}
}
