package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/praxia/medprep-backend/internal/config"
	"github.com/praxia/medprep-backend/internal/handler"
	"github.com/praxia/medprep-backend/internal/middleware"
	"github.com/praxia/medprep-backend/internal/response"
	"github.com/praxia/medprep-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Engine   *handler.EngineHandler
	Question *handler.QuestionHandler
	WS       *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
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

	// ─── Engine API (Token Protected) ──────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAPIToken(authService))
	{
		eng := api.Group("/engine")
		{
			eng.POST("/init", handlers.Engine.Init)
			eng.POST("/analyze", handlers.Engine.Analyze)
			eng.GET("/report", handlers.Engine.GetReport)
			eng.GET("/snapshot", handlers.Engine.GetSnapshot)
		}

		// Extraction calls a paid external API; keep bursts in check.
		extractLimiter := middleware.NewRateLimiter(10, time.Minute)
		api.POST("/questions/extract", extractLimiter.Middleware(), handlers.Question.Extract)
	}

	// ─── WebSocket (Token via query param) ─────────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireWSAuth(authService))
	{
		wsGroup.GET("/engine/stream", handlers.WS.EngineStream)
	}

	return router
}
