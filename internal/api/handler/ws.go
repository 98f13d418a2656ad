package handler

import (
	"log"
	"net/http"

	"supportchat/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production deployments.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection and registers it, role unbound,
// with the hub. The admin capability is resolved server-side from the caller's
// session before the socket opens; the join declaration's isAdmin flag is only
// honored when the session actually holds the capability.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	adminCapable := false
	if sid := h.sessionID(c); sid != "" {
		ok, err := h.Storage.IsAdminSession(sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
			return
		}
		adminCapable = ok
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: Failed to upgrade connection: %v", err)
		return
	}

	client := chathub.NewWebSocketClient(conn, h.Registry, h.Bridge, adminCapable)
	client.Run()
}
