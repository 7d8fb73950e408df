package http

import (
	"context"
	"time"

	"arcadia_backend/internal/config"
	"arcadia_backend/internal/http/handlers"
	"arcadia_backend/internal/http/middleware"
	"arcadia_backend/internal/realtime"
	"arcadia_backend/internal/repository"
	"arcadia_backend/internal/service"
	"arcadia_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutesWithConfig собирает сервисы и вешает все маршруты приложения
func RegisterRoutesWithConfig(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) *ws.Hub {
	bridge := realtime.NewBridge(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	sessionService := service.NewSessionService(
		repository.NewSessionRepository(db),
		repository.NewPlayerRepository(db),
		repository.NewBoardRepository(db),
	)

	hub := ws.NewHub(sessionService, bridge, cfg.SessionInactivity, cfg.RoomGracePeriod)
	hub.StartCleanup()

	h := handlers.NewHandler(db, sessionService, hub, bridge)
	wsHandler := ws.NewWSHandler(hub, sessionService, cfg.AllowedOrigin)

	r.Use(middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "version": version})
			return
		}
		c.JSON(200, gin.H{"status": "ok", "version": version})
	})

	api := r.Group("/api")

	// Аутентификация с лимитом, остальное за JWT
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(10, time.Minute))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	api.GET("/boards", middleware.OptionalAuth(), h.ListBoards)
	api.GET("/boards/:id", h.GetBoard)
	api.GET("/discussions", h.ListDiscussions)
	api.GET("/discussions/:id", h.GetDiscussion)
	api.GET("/discussions/:id/comments", h.ListComments)
	api.GET("/events", h.ListEvents)
	api.GET("/events/:id", h.GetEvent)

	authorized := api.Group("")
	authorized.Use(middleware.Auth())
	{
		authorized.GET("/users/me", h.Me)

		authorized.POST("/boards", h.CreateBoard)
		authorized.PATCH("/boards/:id", h.UpdateBoard)
		authorized.DELETE("/boards/:id", h.DeleteBoard)
		authorized.POST("/boards/:id/vote", h.VoteBoard)

		authorized.POST("/bingo/sessions", h.CreateSession)
		authorized.GET("/bingo/sessions", h.ListSessions)
		authorized.GET("/bingo/sessions/:id", h.GetSession)
		authorized.POST("/bingo/sessions/players", h.JoinSession)
		authorized.PATCH("/bingo/sessions/:id", h.UpdateSessionStatus)
		authorized.DELETE("/bingo/sessions/:id/players/:playerID", h.RemoveSessionPlayer)
		authorized.POST("/bingo/sessions/:id/mark", h.MarkCell)

		authorized.POST("/discussions", h.CreateDiscussion)
		authorized.DELETE("/discussions/:id", h.DeleteDiscussion)
		authorized.POST("/discussions/:id/upvote", h.UpvoteDiscussion)
		authorized.POST("/discussions/:id/comments", h.AddComment)
		authorized.DELETE("/discussions/:id/comments/:commentID", h.DeleteComment)

		authorized.POST("/events", h.CreateEvent)
		authorized.POST("/events/:id/join", h.JoinEvent)
		authorized.DELETE("/events/:id/join", h.LeaveEvent)
	}

	// WS авторизуется токеном в query, middleware тут не нужен
	r.GET("/api/ws", wsHandler.HandleWS())

	return hub
}
