package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/handler"
	"github.com/prepstack/prepstack-backend/internal/middleware"
	"github.com/prepstack/prepstack-backend/internal/response"
	"github.com/prepstack/prepstack-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Test      *handler.TestHandler
	Attempt   *handler.AttemptHandler
	Analytics *handler.AnalyticsHandler
	Access    *handler.AccessHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiter middleware.RateLimiter,
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.RateLimit(limiter))
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/tests", handlers.Test.List)
		api.GET("/tests/:test_id/paper", handlers.Test.IssuePaper)
		api.POST("/tests/:test_id/attempts", middleware.RateLimit(limiter), handlers.Attempt.Submit)
		api.GET("/tests/:test_id/attempts", handlers.Attempt.ListMine)
		api.GET("/tests/:test_id/analytics", handlers.Analytics.TestAnalytics)
		api.GET("/tests/:test_id/leaderboard", handlers.Analytics.Leaderboard)
		api.GET("/attempts/:attempt_id", handlers.Attempt.Get)
	}

	// ─── 3. WebSocket Group (WS Auth via ?token=) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tests/:test_id/leaderboard", handlers.WS.LeaderboardStream)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		adminAPI.GET("/tests", handlers.Test.AdminList)
		adminAPI.POST("/tests", handlers.Test.Create)
		adminAPI.GET("/tests/:test_id", handlers.Test.AdminGet)
		adminAPI.PUT("/tests/:test_id", handlers.Test.Update)
		adminAPI.DELETE("/tests/:test_id", handlers.Test.Deactivate)

		adminAPI.GET("/tests/:test_id/results", handlers.Attempt.AdminResults)

		adminAPI.GET("/tests/:test_id/access", handlers.Access.List)
		adminAPI.POST("/tests/:test_id/access", handlers.Access.Grant)
		adminAPI.DELETE("/tests/:test_id/access/:user_id", handlers.Access.Revoke)
	}

	return router
}
