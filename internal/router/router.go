package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/handler"
	"github.com/quizdrill/backend/internal/middleware"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Topic      *handler.TopicHandler
	Question   *handler.QuestionHandler
	Session    *handler.SessionHandler
	Practice   *handler.PracticeHandler
	User       *handler.UserHandler
	Media      *handler.MediaHandler
	Backup     *handler.BackupHandler
	Statistics *handler.StatisticsHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded question images statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated Group (any approved user) ────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/topics", handlers.Topic.GetAll)
		api.GET("/topics/:id", handlers.Topic.GetByID)

		api.GET("/questions/random", handlers.Question.Random)

		api.POST("/sessions", handlers.Session.Submit)
		api.GET("/sessions", handlers.Session.ListMine)
		api.GET("/sessions/:id", handlers.Session.GetDetail)

		api.POST("/practice/attempts", handlers.Practice.Start)
		api.GET("/practice/attempts/active", handlers.Practice.Active)
		api.GET("/practice/attempts/:id", handlers.Practice.Get)
		api.PUT("/practice/attempts/:id/answers", handlers.Practice.SaveAnswer)
		api.POST("/practice/attempts/:id/submit", handlers.Practice.Submit)
	}

	// ─── 3. WebSocket Group (token via query param) ────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/practice/attempts/:id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (JWT + admin role) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		// Topic management
		adminAPI.POST("/topics", handlers.Topic.Create)
		adminAPI.PUT("/topics/:id", handlers.Topic.Update)
		adminAPI.DELETE("/topics/:id", handlers.Topic.Delete)

		// Question management
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.GET("/questions/:id", handlers.Question.GetByID)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.POST("/questions/bulk", handlers.Question.BulkImport)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Media upload
		adminAPI.POST("/media/upload", handlers.Media.Upload)

		// User management
		adminAPI.GET("/users", handlers.User.List)
		adminAPI.GET("/users/pending", handlers.User.ListPending)
		adminAPI.GET("/users/:id", handlers.User.GetByID)
		adminAPI.PUT("/users/:id", handlers.User.Update)
		adminAPI.DELETE("/users/:id", handlers.User.Delete)
		adminAPI.POST("/users/reset-password", handlers.User.ResetPassword)

		// Backups
		adminAPI.GET("/backups", handlers.Backup.List)
		adminAPI.POST("/backups", handlers.Backup.Create)
		adminAPI.GET("/backups/:id/download", handlers.Backup.Download)
		adminAPI.POST("/backups/:id/restore", handlers.Backup.Restore)
		adminAPI.DELETE("/backups/:id", handlers.Backup.Delete)

		// Analytics
		adminAPI.GET("/statistics", handlers.Statistics.Dashboard)
	}

	return router
}
