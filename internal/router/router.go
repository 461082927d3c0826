package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/questify/questify-backend/internal/config"
	"github.com/questify/questify-backend/internal/handler"
	"github.com/questify/questify-backend/internal/middleware"
	"github.com/questify/questify-backend/internal/response"
	"github.com/questify/questify-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Quiz        *handler.QuizHandler
	Attempt     *handler.AttemptHandler
	Leaderboard *handler.LeaderboardHandler
	Admin       *handler.AdminHandler
	WS          *handler.WSHandler
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the credential endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
		auth.PUT("/me", middleware.RequireJWT(authService), handlers.Auth.UpdateMe)
	}

	// ─── 2. Quiz Group (JWT) ───────────────────────────────────────────
	quizzes := router.Group("/api/v1/quizzes")
	quizzes.Use(middleware.RequireJWT(authService))
	{
		quizzes.GET("", handlers.Quiz.List)
		quizzes.POST("", handlers.Quiz.Create)
		quizzes.GET("/mine", handlers.Quiz.ListMine)
		quizzes.POST("/join", handlers.Quiz.Join)

		quizzes.GET("/:quiz_id", handlers.Quiz.Get)
		quizzes.PUT("/:quiz_id", handlers.Quiz.Update)
		quizzes.DELETE("/:quiz_id", handlers.Quiz.Delete)

		quizzes.POST("/:quiz_id/ratings", handlers.Quiz.Rate)
		quizzes.GET("/:quiz_id/analytics", handlers.Quiz.Analytics)
		quizzes.GET("/:quiz_id/results", handlers.Quiz.Results)
		quizzes.POST("/:quiz_id/access-code", handlers.Quiz.RegenerateAccessCode)

		quizzes.POST("/:quiz_id/attempts", handlers.Attempt.Start)
	}

	// ─── 3. Attempt Group (JWT) ────────────────────────────────────────
	attempts := router.Group("/api/v1/attempts")
	attempts.Use(middleware.RequireJWT(authService))
	{
		attempts.GET("", handlers.Attempt.History)
		attempts.GET("/:attempt_id", handlers.Attempt.Get)
		attempts.POST("/:attempt_id/submit", handlers.Attempt.Submit)
	}

	// ─── 4. Leaderboard Group (JWT) ────────────────────────────────────
	leaderboards := router.Group("/api/v1/leaderboards")
	leaderboards.Use(middleware.RequireJWT(authService))
	{
		leaderboards.GET("/global", handlers.Leaderboard.Global)
		leaderboards.GET("/quizzes/:quiz_id", handlers.Leaderboard.Quiz)
	}

	// ─── 5. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/quizzes/:quiz_id/leaderboard", handlers.WS.LeaderboardStream)
	}

	// ─── 6. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		adminAPI.GET("/analytics", handlers.Admin.Analytics)
		adminAPI.GET("/users", handlers.Admin.ListUsers)
		adminAPI.DELETE("/users/:user_id", handlers.Admin.DeactivateUser)
		adminAPI.GET("/quizzes", handlers.Admin.ListQuizzes)
		adminAPI.GET("/attempts", handlers.Admin.ListAttempts)
	}

	return router
}
