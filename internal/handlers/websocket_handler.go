package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/mosesmmoisebidth/rod-backend/internal/cache"
	"github.com/mosesmmoisebidth/rod-backend/internal/handlers/ws"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
)

type WebSocketHandler struct {
	fanoutService     *service.FanoutService
	membershipService *service.MembershipService
	presenceService   *service.PresenceService
	hub               *ws.Hub
	roomCache         *cache.RoomCache
}

func NewWebSocketHandler(
	hub *ws.Hub,
	fanoutService *service.FanoutService,
	membershipService *service.MembershipService,
	presenceService *service.PresenceService,
	roomCache *cache.RoomCache,
) *WebSocketHandler {
	return &WebSocketHandler{
		fanoutService:     fanoutService,
		membershipService: membershipService,
		presenceService:   presenceService,
		hub:               hub,
		roomCache:         roomCache,
	}
}

// GetHub returns the hub instance (useful for delivery from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// HandleWebSocket owns one connection for its whole lifetime. Registering
// subscribes the user to private delivery and the presence topic and marks
// them online; the deferred unregister marks them offline. With several
// devices the presence flag is last-writer-wins.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	username := c.Locals("username").(string)

	client := h.hub.Register(username, c)
	h.hub.Subscribe(service.PresenceTopic, client)

	go func() {
		if _, err := h.presenceService.Connect(username); err != nil {
			log.Printf("Failed to mark user %s online: %v", username, err)
		}
	}()

	defer func() {
		h.hub.Unregister(client)
		go func() {
			if _, err := h.presenceService.Disconnect(username); err != nil {
				log.Printf("Failed to mark user %s offline: %v", username, err)
			}
		}()
	}()

	log.Printf("User %s connected via WebSocket", username)

	ctx := &ws.MessageContext{
		Username:          username,
		Conn:              c,
		Hub:               h.hub,
		FanoutService:     h.fanoutService,
		MembershipService: h.membershipService,
		RoomCache:         h.roomCache,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %s: %v", username, err)
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %s: %v", username, err)
			ws.SendError(c, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %s: %v", msg.GetType(), username, err)
			ws.SendError(c, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %s disconnected from WebSocket", username)
}
