package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Создание события, только для админов
func (h *Handler) CreateEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if user.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req struct {
		Title           string     `json:"title" binding:"required,max=200"`
		Description     string     `json:"description"`
		Game            string     `json:"game"`
		MaxParticipants int        `json:"max_participants"`
		StartsAt        time.Time  `json:"starts_at" binding:"required"`
		EndsAt          *time.Time `json:"ends_at"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.MaxParticipants < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad max_participants"})
		return
	}

	event := &domain.Event{
		CreatorID:       userID,
		Title:           req.Title,
		Description:     req.Description,
		Game:            req.Game,
		Status:          domain.EventUpcoming,
		MaxParticipants: req.MaxParticipants,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}
	if err := h.Events.Create(ctx, event); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Список событий с фильтром по статусу
func (h *Handler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.Events.List(c.Request.Context(), domain.EventStatus(c.Query("status")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Событие по id
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad event id"})
		return
	}

	event, err := h.Events.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// Запись на событие
func (h *Handler) JoinEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad event id"})
		return
	}

	if err := h.Events.Join(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventFull):
			c.JSON(http.StatusConflict, gin.H{"error": "event is full"})
		case errors.Is(err, repository.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "already joined"})
		case errors.Is(err, repository.ErrForeignKey):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		default:
			respondRepoError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Отписка от события
func (h *Handler) LeaveEvent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad event id"})
		return
	}

	if err := h.Events.Leave(c.Request.Context(), id, userID); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
