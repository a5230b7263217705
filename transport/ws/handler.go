package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin from the SPA; the session and
	// CSRF layers guard the state-changing surface, not this read feed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades a request on /ws/:channel and serves the echo loop. A
// client text frame "ping" is answered with "pong"; everything else is
// ignored. Broadcast traffic arrives via the hub.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		channel := c.Param("channel")
		if channel == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Channel is required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		cl := h.register(channel, conn)
		defer func() {
			h.unregister(channel, conn)
			conn.Close()
		}()

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType == websocket.TextMessage && string(payload) == "ping" {
				if err := cl.write(websocket.TextMessage, []byte("pong")); err != nil {
					return
				}
			}
		}
	}
}
