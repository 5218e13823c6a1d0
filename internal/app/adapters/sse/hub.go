package sse

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"streamboard/internal/app/ports"
	"streamboard/pkg/logger"
)

const clientBuffer = 100

type client struct {
	id      string
	gameIDs map[string]struct{}
	events  chan ports.PushEvent
}

func (c *client) ID() string { return c.id }

func (c *client) Events() <-chan ports.PushEvent { return c.events }

// Hub fans game_updated notifications out to subscribed push clients.
// Events carry no payload; consumers re-fetch on notification.
type Hub struct {
	log logger.Logger

	mu      sync.Mutex
	clients map[string]*client
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]*client),
	}
}

func (h *Hub) Subscribe(gameIDs []string) ports.PushClient {
	c := &client{
		id:      uuid.NewString(),
		gameIDs: make(map[string]struct{}, len(gameIDs)),
		events:  make(chan ports.PushEvent, clientBuffer),
	}
	for _, id := range gameIDs {
		c.gameIDs[id] = struct{}{}
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) Unsubscribe(clientID string) {
	h.mu.Lock()
	delete(h.clients, clientID)
	h.mu.Unlock()
}

func (h *Hub) PublishGameUpdated(gameID string) {
	event := ports.PushEvent{
		Type:   "game_updated",
		GameID: gameID,
		Ts:     time.Now().Unix(),
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	pushed := 0
	for _, c := range clients {
		if _, ok := c.gameIDs[gameID]; !ok {
			continue
		}
		select {
		case c.events <- event:
			pushed++
		default:
			// slow client, drop the update
		}
	}

	h.log.Debug("Push publish",
		slog.String("game_id", gameID),
		slog.Int("clients_notified", pushed),
		slog.Int("total_clients", len(clients)),
	)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
