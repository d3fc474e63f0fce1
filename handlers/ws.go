// handlers/ws.go - Achievement Unlock Feed
package handlers

import (
	"wellspace/middleware"
	"wellspace/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var eventHub *services.AchievementEventHub

// InitWSHandlers wires the unlock event hub.
func InitWSHandlers(hub *services.AchievementEventHub) {
	eventHub = hub
}

// WebSocketUpgrade rejects plain HTTP requests on websocket routes.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AchievementSocket streams unlock events to the authenticated user.
// The token travels as a query parameter since browsers cannot set headers
// on websocket connections.
// GET /ws/achievements?token=...
var AchievementSocket = websocket.New(func(conn *websocket.Conn) {
	defer conn.Close()

	userID, err := middleware.UserIDFromToken(conn.Query("token"))
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "invalid token"})
		return
	}

	events := eventHub.Subscribe(userID)
	defer eventHub.Unsubscribe(userID, events)

	// Reader loop only exists to observe the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
})
