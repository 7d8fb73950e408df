package handlers

import (
	"errors"
	"net/http"

	"arcadia_backend/internal/http/middleware"
	"arcadia_backend/internal/realtime"
	"arcadia_backend/internal/repository"
	"arcadia_backend/internal/service"
	"arcadia_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler собирает зависимости всех REST обработчиков
type Handler struct {
	DB *pgxpool.Pool

	Users       *repository.UserRepository
	Boards      *repository.BoardRepository
	Discussions *repository.DiscussionRepository
	Events      *repository.EventRepository

	AuthService    *service.AuthService
	SessionService *service.SessionService

	Hub    *ws.Hub
	Bridge *realtime.Bridge
}

func NewHandler(db *pgxpool.Pool, sessionService *service.SessionService, hub *ws.Hub, bridge *realtime.Bridge) *Handler {
	users := repository.NewUserRepository(db)
	return &Handler{
		DB:             db,
		Users:          users,
		Boards:         repository.NewBoardRepository(db),
		Discussions:    repository.NewDiscussionRepository(db),
		Events:         repository.NewEventRepository(db),
		AuthService:    service.NewAuthService(users),
		SessionService: sessionService,
		Hub:            hub,
		Bridge:         bridge,
	}
}

func getUserID(c *gin.Context) (int64, bool) {
	return middleware.UserID(c)
}

// respondRepoError переводит доменные ошибки базы в HTTP статусы
func respondRepoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, repository.ErrForeignKey):
		c.JSON(http.StatusNotFound, gin.H{"error": "related record not found"})
	case errors.Is(err, repository.ErrCheckViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "constraint violation"})
	case errors.Is(err, repository.ErrNoPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
	}
}
