package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"sudooom.boba/internal/api"
	"sudooom.boba/internal/config"
	"sudooom.boba/internal/health"
	"sudooom.boba/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg config.HTTPConfig,
	seats middleware.SeatVerifier,
	checker *health.Checker,
	lobbyHandler *api.LobbyHandler,
	gameHandler *api.GameHandler,
	resultHandler *api.ResultHandler,
) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(slog.Default().With("component", "http")))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", api.Health(checker))

	v1 := r.Group("/api/v1")
	{
		lobbies := v1.Group("/lobbies")
		{
			lobbies.POST("", lobbyHandler.Create)
			lobbies.GET("/:id", lobbyHandler.Get)
			lobbies.POST("/:id/join", lobbyHandler.Join)
			lobbies.POST("/:id/start", lobbyHandler.Start)
			lobbies.POST("/:id/seat", lobbyHandler.ClaimSeat)
		}

		games := v1.Group("/games")
		{
			games.GET("/:id/status", gameHandler.Status)
			games.GET("/:id/scores", gameHandler.Scores)

			seated := games.Group("")
			seated.Use(middleware.SeatAuth(seats))
			{
				seated.GET("/:id/me", gameHandler.Me)
				seated.POST("/:id/actions", gameHandler.Action)
			}
		}

		results := v1.Group("/results")
		{
			results.GET("", resultHandler.List)
			results.GET("/:id", resultHandler.Get)
		}
	}

	return r
}
