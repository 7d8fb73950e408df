package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Создание доски бинго
func (h *Handler) CreateBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Title    string               `json:"title"`
		Game     string               `json:"game"`
		Size     int                  `json:"size"`
		Cells    []domain.BoardCell   `json:"cells"`
		Settings domain.BoardSettings `json:"settings"`
		Public   bool                 `json:"public"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	board := &domain.Board{
		OwnerID:  userID,
		Title:    req.Title,
		Game:     req.Game,
		Size:     req.Size,
		Cells:    req.Cells,
		Settings: req.Settings,
		Public:   req.Public,
	}
	if err := board.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Boards.Create(c.Request.Context(), board); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, board)
}

// Доска по id
func (h *Handler) GetBoard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
		return
	}

	board, err := h.Boards.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
		return
	}

	c.JSON(http.StatusOK, board)
}

// Список досок: публичные и свои
func (h *Handler) ListBoards(c *gin.Context) {
	userID, _ := getUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx := c.Request.Context()

	var boards []*domain.Board
	var err error
	if c.Query("owner") == "me" {
		boards, err = h.Boards.ListByOwner(ctx, userID, limit, offset)
	} else {
		boards, err = h.Boards.List(ctx, userID, c.Query("game"), limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// Правка доски владельцем
func (h *Handler) UpdateBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
		return
	}

	ctx := c.Request.Context()
	board, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the board owner"})
		return
	}

	var req struct {
		Title    *string               `json:"title"`
		Game     *string               `json:"game"`
		Cells    []domain.BoardCell    `json:"cells"`
		Settings *domain.BoardSettings `json:"settings"`
		Public   *bool                 `json:"public"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if req.Title != nil {
		board.Title = *req.Title
	}
	if req.Game != nil {
		board.Game = *req.Game
	}
	if req.Cells != nil {
		board.Cells = req.Cells
	}
	if req.Settings != nil {
		board.Settings = *req.Settings
	}
	if req.Public != nil {
		board.Public = *req.Public
	}

	if err := board.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Boards.Update(ctx, board); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// Удаление доски владельцем
func (h *Handler) DeleteBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
		return
	}

	ctx := c.Request.Context()
	board, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the board owner"})
		return
	}

	if err := h.Boards.Delete(ctx, id); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Голос за доску, один на пользователя
func (h *Handler) VoteBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad board id"})
		return
	}

	votes, err := h.Boards.Vote(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "already voted"})
			return
		}
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
