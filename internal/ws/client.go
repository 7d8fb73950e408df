package ws

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Подключение одного игрока к комнате сессии
type Client struct {
	PlayerID  uuid.UUID
	UserID    int64
	SessionID uuid.UUID
	Conn      *websocket.Conn
	Send      chan []byte

	Room *Room
	Done chan struct{}
}

func NewClient(playerID uuid.UUID, userID int64, sessionID uuid.UUID, conn *websocket.Conn, room *Room) *Client {
	return &Client{
		PlayerID:  playerID,
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Room:      room,
		Done:      make(chan struct{}),
	}
}

func (c *Client) Run() {
	go c.writePump()
	go c.readPump()

	c.Room.Register <- c
	<-c.Done
}

// read
func (c *Client) readPump() {
	defer func() {
		c.Room.Unregister <- c
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client.readPump: игрок=%s ошибка чтения: %v", c.PlayerID, err)
			}
			return
		}

		select {
		case c.Room.Inbound <- inbound{client: c, raw: msg}:
		default:
			// комната перегружена, сообщение отбрасывается
			log.Printf("Client.readPump: игрок=%s входящая очередь комнаты заполнена", c.PlayerID)
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: игрок=%s ошибка записи: %v", c.PlayerID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
