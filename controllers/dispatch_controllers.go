package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wrenchworks/garage-app/dispatch"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DispatchHandler -> WebSocket endpoint for the live schedule board.
func DispatchHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "mechanic" && role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	dispatch.RegisterClient(ws, role)

	// Drain until the client disconnects.
	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	dispatch.UnregisterClient(ws)
}
