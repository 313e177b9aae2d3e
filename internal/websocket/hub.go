// Package websocket pushes learner events (seek requests, quiz and summary
// readiness) to connected browser tabs.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"lectura-dashboard/internal/logger"
	"lectura-dashboard/internal/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// conn serialises writes; gorilla allows one concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub fans events out to every open connection. With a Redis client, events
// are relayed through a pub/sub channel so several server processes share
// one stream.
type Hub struct {
	mu          sync.RWMutex
	connections map[*conn]struct{}
	redisClient *redis.Client
	channel     string
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, channel string, log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[*conn]struct{}),
		redisClient: redisClient,
		channel:     channel,
		log:         log,
	}
}

// Run relays pub/sub messages until ctx is done. It returns immediately
// without a Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.redisClient == nil {
		return
	}

	pubsub := h.redisClient.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &conn{ws: ws}
	h.register(c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	h.connections[c] = struct{}{}
	total := len(h.connections)
	h.mu.Unlock()

	h.log.Info("WebSocket connected", "total", total)
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	delete(h.connections, c)
	h.mu.Unlock()

	c.ws.Close()
	h.log.Info("WebSocket disconnected")
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.connections))
	for c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("WebSocket write failed", "error", err)
		}
	}
}

// Publish delivers an event to all listeners.
func (h *Hub) Publish(ctx context.Context, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", msg.Type, err)
	}

	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, h.channel, string(data)).Err(); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", msg.Type, err)
		}
		return nil
	}

	h.broadcast(data)
	return nil
}

// Seek asks the player to jump and resume.
func (h *Hub) Seek(ctx context.Context, lectureID string, seconds float64) error {
	return h.Publish(ctx, models.WSMessage{
		Type:    models.EventSeek,
		Payload: models.SeekRequest{LectureID: lectureID, Seconds: seconds, Resume: true},
	})
}

func (h *Hub) Play(ctx context.Context, lectureID string) error {
	return h.Publish(ctx, models.WSMessage{
		Type:    models.EventPlay,
		Payload: map[string]string{"lecture_id": lectureID},
	})
}
