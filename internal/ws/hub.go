// Package ws implements the best-effort fan-out of project events to
// connected clients. Delivery is at-most-once: a slow or dead client
// is dropped, nothing is buffered or replayed.
package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

// Event is the wire shape of every broadcast frame.
type Event struct {
	Type      string      `json:"type"`
	ProjectID uint        `json:"project_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Client wraps one connection with a write lock. gorilla/websocket
// allows only a single concurrent writer per connection, and writes
// come from both the hub's Emit and the subscription handler's
// ping/welcome path.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteEvent sends one JSON frame under the write lock.
func (c *Client) WriteEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// Ping sends a control ping under the write lock.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *Client) Close() {
	c.conn.Close()
}

// Hub tracks which clients joined which project room. It is an
// explicit dependency of the handlers that emit events; construct one
// per process and pass it down.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]bool),
	}
}

func (h *Hub) Join(projectID uint, conn *websocket.Conn) *Client {
	client := &Client{conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[projectID] == nil {
		h.rooms[projectID] = make(map[*Client]bool)
	}
	h.rooms[projectID][client] = true

	return client
}

func (h *Hub) Leave(projectID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(projectID, client)
}

func (h *Hub) removeLocked(projectID uint, client *Client) {
	clients, exists := h.rooms[projectID]
	if !exists {
		return
	}

	delete(clients, client)

	if len(clients) == 0 {
		delete(h.rooms, projectID)
	}
}

// RoomSize reports how many clients joined the project room.
func (h *Hub) RoomSize(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[projectID])
}

// Emit broadcasts an event to every client in the project room. Fire
// and forget: write failures evict the client and are not reported to
// the caller.
func (h *Hub) Emit(projectID uint, eventType string, payload interface{}) {
	h.mu.RLock()
	clients, exists := h.rooms[projectID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy so the room lock is not held while writing to sockets.
	clientsCopy := make([]*Client, 0, len(clients))
	for client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	event := Event{
		Type:      eventType,
		ProjectID: projectID,
		Payload:   payload,
	}

	for _, client := range clientsCopy {
		if err := client.WriteEvent(event); err != nil {
			log.Printf("Failed to broadcast %s to client: %v", eventType, err)

			h.mu.Lock()
			h.removeLocked(projectID, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}
