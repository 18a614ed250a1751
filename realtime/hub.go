// Package realtime раздаёт события рейтингов подписчикам по WebSocket.
// Комнаты ключуются идентификатором рейтинга; хаб — штатная реализация
// коллаборатора-нотификатора, движок пересчёта о транспорте не знает.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// EventRatingResultsUpdated рассылается после каждого закоммиченного
// пересчёта рейтинга.
const EventRatingResultsUpdated = "RATING_RESULTS_UPDATED"

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("realtime client joined", slog.String("room", client.room))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					close(client.send)
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("realtime client left", slog.String("room", client.room))
		}
	}
}

// BroadcastToRoom отправляет сообщение всем клиентам комнаты.
// Медленный клиент с забитым каналом пропускается, а не блокирует хаб.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal realtime message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("realtime client send buffer full, dropping message",
				slog.String("room", roomID))
		}
	}
}

// RatingRoom — имя комнаты для рейтинга.
func RatingRoom(ratingID int) string {
	return fmt.Sprintf("rating_%d", ratingID)
}

// NewClient регистрирует соединение в комнате и запускает его насосы.
func (h *Hub) NewClient(conn *websocket.Conn, room string) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		room: room,
	}
	h.register <- client
	go client.writePump()
	go client.readPump()
	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Входящие сообщения игнорируются: канал только на чтение
		// для клиента, но ReadMessage нужен ради pong и закрытия.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
