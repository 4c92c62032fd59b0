package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"tumaini-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const feedChannel = "ledger_feed"

// Hub fans the live ledger feed out to connected admin dashboards. The
// feed is broadcast-only; per-client routing does not exist. Redis pub/sub
// carries events between instances so every dashboard sees every event no
// matter which replica settled the donation.
type Hub struct {
	// id tags events this instance publishes so its own Redis relay is
	// not delivered twice to local dashboards.
	id string

	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil in single-instance
	// setups and tests.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Dashboard connected", map[string]interface{}{"admin": client.AdminEmail})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Dashboard disconnected", map[string]interface{}{"admin": client.AdminEmail})
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast implements the dispatcher's feed contract: serialize once,
// push to every local dashboard, then relay through Redis for the other
// instances.
func (h *Hub) Broadcast(eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":      eventType,
		"data":      payload,
		"timestamp": time.Now().UTC(),
		"origin":    h.id,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal feed event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(data)

	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), feedChannel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay feed event to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer. Drop the connection rather than the feed.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleFeedMessage([]byte(msg.Payload))
	}
}

// handleFeedMessage delivers a relayed event unless this instance
// published it; those were already pushed locally in Broadcast.
func (h *Hub) handleFeedMessage(payload []byte) {
	var envelope struct {
		Origin string `json:"origin"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		log.Printf("Redis feed msg invalid: %q", payload)
		return
	}
	if envelope.Origin == h.id {
		return
	}
	h.deliverLocal(payload)
}
