package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/game"
	"arcadia_backend/internal/service"
	"arcadia_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Создание сессии по доске: создатель становится хостом
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		BoardID     string                `json:"board_id" binding:"required"`
		DisplayName string                `json:"display_name" binding:"required,max=32"`
		Color       string                `json:"color" binding:"required"`
		Team        string                `json:"team"`
		Settings    *domain.BoardSettings `json:"settings"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
		return
	}

	session, player, err := h.SessionService.Create(c.Request.Context(), userID, boardID, req.DisplayName, req.Color, req.Team, req.Settings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBoardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
		case errors.Is(err, service.ErrInvalidColor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid color"})
		case errors.Is(err, domain.ErrNoWinCondition), errors.Is(err, domain.ErrBadTimeLimit):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			respondRepoError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session, "player": player})
}

// Вход в сессию по id или коду присоединения
func (h *Handler) JoinSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		SessionID   string `json:"session_id"`
		JoinCode    string `json:"join_code"`
		DisplayName string `json:"display_name" binding:"required,max=32"`
		Color       string `json:"color" binding:"required"`
		Team        string `json:"team"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.SessionID == "" && req.JoinCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or join_code required"})
		return
	}

	var sessionID uuid.UUID
	if req.SessionID != "" {
		var err error
		sessionID, err = uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
			return
		}
	}

	session, player, err := h.SessionService.Join(c.Request.Context(), userID, sessionID, req.JoinCode, req.DisplayName, req.Color, req.Team)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrSessionNotJoinable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session not joinable"})
		case errors.Is(err, service.ErrInvalidColor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid color"})
		case errors.Is(err, service.ErrColorTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "color taken"})
		default:
			respondRepoError(c, err)
		}
		return
	}

	h.Hub.Notify(c.Request.Context(), session.ID, ws.Message{Type: "player_joined", Player: player})

	c.JSON(http.StatusCreated, gin.H{"session": session, "player": player})
}

// Снапшот сессии с игроками
func (h *Handler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
		return
	}

	session, players, err := h.SessionService.Snapshot(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	// онлайн по всем инстансам, если redis подключен
	online := 0
	if h.Bridge.Enabled() {
		online = h.Bridge.PresenceCount(c.Request.Context(), session.ID.String())
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"players": players,
		"claimed": game.ClaimedCount(session.State),
		"online":  online,
	})
}

// Список сессий с фильтрами
func (h *Handler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var boardID uuid.UUID
	if raw := c.Query("board_id"); raw != "" {
		var err error
		boardID, err = uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
			return
		}
	}

	sessions, err := h.SessionService.List(c.Request.Context(), domain.SessionStatus(c.Query("status")), boardID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Смена статуса сессии хостом: пауза, возобновление, завершение, отмена
func (h *Handler) UpdateSessionStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
		return
	}

	var req struct {
		Status domain.SessionStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	session, err := h.SessionService.SetStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrNotHost):
			c.JSON(http.StatusForbidden, gin.H{"error": "host only"})
		case errors.Is(err, service.ErrIllegalTransition):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "illegal status transition"})
		default:
			respondRepoError(c, err)
		}
		return
	}

	h.Hub.NotifyStatus(c.Request.Context(), id, session.Status)

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Выход игрока из сессии (или кик хостом)
func (h *Handler) RemoveSessionPlayer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
		return
	}
	playerID, err := uuid.Parse(c.Param("playerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad player id"})
		return
	}

	if err := h.SessionService.Leave(c.Request.Context(), sessionID, playerID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotPlayer):
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrNotHost):
			c.JSON(http.StatusForbidden, gin.H{"error": "host only"})
		default:
			respondRepoError(c, err)
		}
		return
	}

	h.Hub.Notify(c.Request.Context(), sessionID, ws.Message{
		Type:   "player_left",
		Player: &domain.SessionPlayer{ID: playerID, SessionID: sessionID},
	})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// REST fallback для отметки клетки: та же семантика, что и по WebSocket
func (h *Handler) MarkCell(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
		return
	}

	var req struct {
		Cell    int   `json:"cell"`
		Version int64 `json:"version"`
		Unmark  bool  `json:"unmark"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()

	player, err := h.SessionService.PlayerForUser(ctx, sessionID, userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "join the session first"})
		return
	}

	var res *service.MarkResult
	if req.Unmark {
		res, err = h.SessionService.Unmark(ctx, sessionID, player.ID, req.Cell, req.Version)
	} else {
		res, err = h.SessionService.Mark(ctx, sessionID, player.ID, req.Cell, req.Version)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrSessionPaused):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session paused"})
		case errors.Is(err, service.ErrSessionNotActive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session finished"})
		case errors.Is(err, game.ErrCellLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "cell locked"})
		case errors.Is(err, game.ErrCellOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cell out of range"})
		default:
			respondRepoError(c, err)
		}
		return
	}

	// рассылаем тем, кто подключен по WebSocket
	if res.Changed {
		h.Hub.Notify(ctx, sessionID, ws.MarkedMessage(req.Cell, player.Color, res.Session.Version, req.Unmark))
		if res.Win != nil {
			winnerID := ""
			if res.WinnerPlayerID != nil {
				winnerID = res.WinnerPlayerID.String()
			}
			h.Hub.Notify(ctx, sessionID, ws.WinnerMessage(winnerID, res.Win.Team, res.Win.Reason, res.Session.Version))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"changed": res.Changed,
		"stale":   res.Stale,
		"session": res.Session,
	})
}
