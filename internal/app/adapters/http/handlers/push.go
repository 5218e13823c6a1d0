package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"streamboard/internal/app/adapters/metrics"
	"streamboard/internal/app/ports"
)

const pingInterval = 15 * time.Second

// SSEHandler streams game_updated events for the requested games.
// Events carry no stream data; the client re-fetches on notification.
func (h *Handlers) SSEHandler(c *gin.Context) {
	gameIDs := dedupe(parseCSV(c.Query("game_ids")))

	client := h.hub.Subscribe(gameIDs)
	defer h.hub.Unsubscribe(client.ID())

	metrics.PushClients.Inc()
	defer metrics.PushClients.Dec()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if err := sse.Encode(c.Writer, sse.Event{Event: "hello", Data: gin.H{"ok": true}}); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-client.Events():
			return sse.Encode(w, sse.Event{Event: ev.Type, Data: ev}) == nil
		case <-ticker.C:
			return sse.Encode(w, sse.Event{Event: "ping", Data: gin.H{}}) == nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(*http.Request) bool { return true },
}

// WSHandler mirrors the SSE feed over a websocket for clients behind
// proxies that buffer event streams.
func (h *Handlers) WSHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade websocket", err)
		return
	}
	defer conn.Close()

	gameIDs := dedupe(parseCSV(c.Query("game_ids")))
	client := h.hub.Subscribe(gameIDs)
	defer h.hub.Unsubscribe(client.ID())

	metrics.PushClients.Inc()
	defer metrics.PushClients.Dec()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(ports.PushEvent{Type: "hello"}); err != nil {
		return
	}

	for {
		select {
		case ev := <-client.Events():
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
