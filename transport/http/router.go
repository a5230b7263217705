package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/taskito/backend/ports"
	"github.com/taskito/backend/service"
)

// RouterConfig carries everything the router needs at startup.
type RouterConfig struct {
	AuthService *service.AuthService
	UserService *service.UserService
	TaskService *service.TaskService

	CSRFGuard *CSRFGuard
	Limiter   ports.RateLimiter // nil disables throttling

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AllowedOrigins []string

	// WSHandler serves GET /ws/:channel when set.
	WSHandler gin.HandlerFunc
}

// SetupRouter sets up the Gin router. Middleware runs outermost to innermost:
// security headers, CORS, CSRF, then per-group rate limiting and session
// verification.
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", CSRFHeader},
		ExposeHeaders:    []string{CSRFHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	router.Use(SecurityHeaders())
	router.Use(cors.New(corsConfig))
	router.Use(cfg.CSRFGuard.Middleware())

	authHandlers := NewAuthHandlers(cfg.AuthService, cfg.UserService, cfg.AccessTTL, cfg.RefreshTTL)
	csrfHandlers := NewCSRFHandlers(cfg.CSRFGuard)
	taskHandlers := NewTaskHandlers(cfg.TaskService)
	userHandlers := NewUserHandlers(cfg.UserService)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "taskito", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Session management. CSRF validation skips this group; the login and
	// refresh endpoints carry their own integrity and logout is idempotent.
	auth := router.Group("/auth")
	auth.Use(RateLimit(cfg.Limiter))
	{
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
		auth.POST("/refresh", authHandlers.Refresh)
		auth.POST("/logout", authHandlers.Logout)
	}

	// Explicit CSRF token management; excluded from rotation so the pair
	// handed out here is not immediately replaced.
	csrf := router.Group("/csrf")
	csrf.Use(RequireAuth(cfg.AuthService))
	{
		csrf.GET("/token", csrfHandlers.Token)
		csrf.GET("/validate", csrfHandlers.Validate)
	}

	api := router.Group("/api")
	api.Use(RateLimit(cfg.Limiter))
	api.Use(RequireAuth(cfg.AuthService))
	{
		api.GET("/me", authHandlers.Me)
		api.PUT("/me", authHandlers.UpdateMe)
		api.PUT("/me/password", authHandlers.ChangePassword)

		api.GET("/tasks", taskHandlers.List)
		api.POST("/tasks", taskHandlers.Create)
		api.GET("/tasks/statistics", taskHandlers.Statistics)
		api.GET("/tasks/:id", taskHandlers.Get)
		api.PUT("/tasks/:id", taskHandlers.Update)
		api.DELETE("/tasks/:id", taskHandlers.Delete)
		api.POST("/tasks/:id/comments", taskHandlers.AddComment)

		admin := api.Group("/users")
		admin.Use(RequireAdmin())
		{
			admin.GET("", userHandlers.List)
			admin.GET("/:id", userHandlers.Get)
			admin.PUT("/:id", userHandlers.Update)
			admin.DELETE("/:id", userHandlers.Delete)
			admin.GET("/:id/tasks", userHandlers.Tasks)
			admin.POST("/:id/activate", userHandlers.Activate)
			admin.POST("/:id/deactivate", userHandlers.Deactivate)
		}
	}

	if cfg.WSHandler != nil {
		router.GET("/ws/:channel", cfg.WSHandler)
	}

	return router
}
