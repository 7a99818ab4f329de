package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/ws"
)

// WSHandler upgrades project-room subscriptions onto the hub.
type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ProjectStream joins the caller to a project's event room. Only
// members may subscribe; the membership check runs before the
// connection is upgraded.
func (h *WSHandler) ProjectStream(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetIDParam(c, "project_id")

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ensureProjectMember(projectID, userID); err != nil {
		respondAccessError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins() {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(ws.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	// All writes to this connection go through the client's write
	// lock; the hub's Emit shares it.
	client := h.hub.Join(projectID, conn)

	defer func() {
		h.hub.Leave(projectID, client)
		conn.Close()

		log.Printf("WebSocket connection closed for project %d", projectID)
	}()

	err = client.WriteEvent(ws.Event{
		Type:      "connected",
		ProjectID: projectID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := client.Ping(); err != nil {
				log.Printf("Ping failed for project %d: %v", projectID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
			log.Printf("Failed to set read deadline for project %d: %v", projectID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %d: %v", projectID, err)
			}
			break
		}

		// Clients only listen; inbound text is logged and dropped.
		if messageType == websocket.TextMessage {
			log.Printf("Received message from client in project %d: %s", projectID, string(message))
		}
	}
}
