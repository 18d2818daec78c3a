package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mosesmmoisebidth/rod-backend/internal/cache"
	"github.com/mosesmmoisebidth/rod-backend/internal/httpx"
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
	"github.com/mosesmmoisebidth/rod-backend/internal/validation"
)

type MessageHandler struct {
	messageService *service.MessageService
	fanoutService  *service.FanoutService
	roomCache      *cache.RoomCache
}

func NewMessageHandler(messageService *service.MessageService, fanoutService *service.FanoutService, roomCache *cache.RoomCache) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		fanoutService:  fanoutService,
		roomCache:      roomCache,
	}
}

type sendMessageInput struct {
	Body string `json:"body"`
}

// SendMessage persists the message and returns 201 once it is durable.
// Fan-out to room members happens in the background; a member without a live
// connection simply misses the push and catches up on the next fetch.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	sender, err := httpx.LocalString(c, "username")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input sendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Body = validation.TrimAndLimit(input.Body, validation.MaxMessageLength())
	if input.Body == "" {
		return httpx.BadRequest(c, "missing_body", "Body is required")
	}

	message, err := h.fanoutService.SendMessage(c.Params("id"), sender, input.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			return httpx.NotFound(c, "room_not_found", "Message room not found")
		case errors.Is(err, service.ErrInvalidInput):
			return httpx.BadRequest(c, "invalid_body", err.Error())
		default:
			return httpx.Internal(c, "send_message_failed")
		}
	}

	_ = h.roomCache.InvalidateMessages(c.Params("id"))

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// ListRoomMessages returns the full room history ascending by sent time.
func (h *MessageHandler) ListRoomMessages(c *fiber.Ctx) error {
	roomID := c.Params("id")

	var messages []models.Message
	if cached, ok := h.roomCache.GetMessages(roomID); ok {
		messages = cached
	} else {
		var err error
		messages, err = h.messageService.ListByRoom(roomID)
		if err != nil {
			return httpx.Internal(c, "fetch_messages_failed")
		}
		if len(messages) > 0 {
			_ = h.roomCache.SetMessages(roomID, messages)
		}
	}

	responses := make([]models.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	return c.JSON(fiber.Map{
		"messages": responses,
		"count":    len(responses),
	})
}
