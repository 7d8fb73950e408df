package ws

import (
	"log"
	"net/http"

	"arcadia_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// обрабатывает подключение игрока к комнате сессии
type WSHandler struct {
	Hub           *Hub
	Sessions      *service.SessionService
	AllowedOrigin string
}

func NewWSHandler(hub *Hub, sessions *service.SessionService, allowedOrigin string) *WSHandler {
	return &WSHandler{Hub: hub, Sessions: sessions, AllowedOrigin: allowedOrigin}
}

func (h *WSHandler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		// токен идет в query: браузерный WebSocket не умеет заголовки
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sessionID, err := uuid.Parse(c.Query("session"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad session id"})
			return
		}

		ctx := c.Request.Context()

		session, _, err := h.Sessions.Snapshot(ctx, sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		// подключаться может только тот, кто уже вошел в сессию через REST
		player, err := h.Sessions.PlayerForUser(ctx, sessionID, userID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "join the session first"})
			return
		}

		allowedOrigin := h.AllowedOrigin
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ошибка обновления ws:", err)
			return
		}

		room := h.Hub.GetOrCreateRoom(session)
		client := NewClient(player.ID, userID, sessionID, conn, room)
		go client.Run()
	}
}
