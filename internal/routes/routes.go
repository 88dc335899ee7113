package routes

import (
	"mentorhub-api/internal/board"
	"mentorhub-api/internal/handlers"
	"mentorhub-api/internal/middleware"
	"mentorhub-api/internal/realtime"
	"mentorhub-api/internal/store"

	"github.com/gin-gonic/gin"
)

// SetupRoutes assembles the router over the injected service, store and hub.
func SetupRoutes(svc *board.Service, taskStore *store.TaskStore, hub *realtime.Hub) *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	authHandler := handlers.NewAuthHandler(taskStore)
	userHandler := handlers.NewUserHandler(taskStore)
	taskHandler := handlers.NewTaskHandler(svc)
	wsHandler := handlers.NewWSHandler(hub)

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", taskHandler.List)
		protectedRoutes.GET("/tasks/dashboard-stats", taskHandler.DashboardStats)
		protectedRoutes.GET("/tasks/:id", taskHandler.Get)
		protectedRoutes.POST("/tasks", taskHandler.Create)
		protectedRoutes.PUT("/tasks/:id", taskHandler.Update)
		protectedRoutes.PUT("/tasks/:id/move", taskHandler.Move)
		protectedRoutes.DELETE("/tasks/:id", taskHandler.Delete)
		protectedRoutes.POST("/tasks/:id/attachments", taskHandler.AddAttachment)
		protectedRoutes.DELETE("/tasks/:id/attachments/:attachmentId", taskHandler.RemoveAttachment)
		protectedRoutes.POST("/tasks/:id/voice-notes", taskHandler.AddVoiceNote)
		// Users endpoint
		protectedRoutes.GET("/users", userHandler.List)
		// Real-time channel
		protectedRoutes.GET("/ws", wsHandler.Serve)
	}

	return ginRouter
}
