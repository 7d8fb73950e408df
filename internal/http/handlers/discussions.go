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

// Создание обсуждения
func (h *Handler) CreateDiscussion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		Title string   `json:"title" binding:"required,max=200"`
		Body  string   `json:"body" binding:"required"`
		Game  string   `json:"game"`
		Tags  []string `json:"tags"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	discussion := &domain.Discussion{
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
		Game:     req.Game,
		Tags:     req.Tags,
	}
	if err := h.Discussions.Create(c.Request.Context(), discussion); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, discussion)
}

// Список обсуждений с фильтрами по игре и тегу
func (h *Handler) ListDiscussions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	discussions, err := h.Discussions.List(c.Request.Context(), c.Query("game"), c.Query("tag"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"discussions": discussions})
}

// Обсуждение по id
func (h *Handler) GetDiscussion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}

	discussion, err := h.Discussions.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if discussion == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "discussion not found"})
		return
	}

	c.JSON(http.StatusOK, discussion)
}

// Удаление обсуждения автором или админом
func (h *Handler) DeleteDiscussion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}

	ctx := c.Request.Context()
	discussion, err := h.Discussions.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if discussion == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "discussion not found"})
		return
	}

	if discussion.AuthorID != userID {
		user, err := h.Users.GetByID(ctx, userID)
		if err != nil || user == nil || user.Role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	if err := h.Discussions.Delete(ctx, id); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Апвоут, один на пользователя
func (h *Handler) UpvoteDiscussion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}

	upvotes, err := h.Discussions.Upvote(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "already upvoted"})
			return
		}
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvotes": upvotes})
}

// Комментарий к обсуждению
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	comment := &domain.Comment{
		DiscussionID: id,
		AuthorID:     userID,
		Body:         req.Body,
	}
	if err := h.Discussions.AddComment(c.Request.Context(), comment); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Удаление комментария автором или админом
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	discussionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}
	commentID, err := uuid.Parse(c.Param("commentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad comment id"})
		return
	}

	ctx := c.Request.Context()
	comment, err := h.Discussions.GetComment(ctx, commentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if comment == nil || comment.DiscussionID != discussionID {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	if comment.AuthorID != userID {
		user, err := h.Users.GetByID(ctx, userID)
		if err != nil || user == nil || user.Role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	if err := h.Discussions.DeleteComment(ctx, commentID); err != nil {
		respondRepoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Комментарии обсуждения
func (h *Handler) ListComments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad discussion id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	comments, err := h.Discussions.ListComments(c.Request.Context(), id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
