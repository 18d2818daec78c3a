package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mosesmmoisebidth/rod-backend/internal/httpx"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
	"github.com/mosesmmoisebidth/rod-backend/internal/validation"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// ResolveRoom finds an existing room for an exact member set. It never
// creates: a missing room is a plain 404 so the client can decide to create.
func (h *RoomHandler) ResolveRoom(c *fiber.Ctx) error {
	members := validation.SplitMembers(c.Query("members"))
	if len(members) == 0 {
		return httpx.BadRequest(c, "missing_members", "members is required")
	}

	room, err := h.roomService.FindByMembers(members)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			return httpx.NotFound(c, "room_not_found", "No chat room exists for the specified members")
		}
		if errors.Is(err, service.ErrInvalidInput) {
			return httpx.BadRequest(c, "invalid_members", err.Error())
		}
		return httpx.Internal(c, "resolve_room_failed")
	}
	return c.JSON(room)
}

type createRoomInput struct {
	Members []string `json:"members"`
}

func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	creator, err := httpx.LocalString(c, "username")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createRoomInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	room, err := h.roomService.Create(input.Members, creator)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return httpx.BadRequest(c, "invalid_members", err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return httpx.NotFound(c, "user_not_found", "One or more members do not exist")
		default:
			return httpx.Internal(c, "create_room_failed")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// ListUserRooms returns the caller's room summaries, most recent first.
func (h *RoomHandler) ListUserRooms(c *fiber.Ctx) error {
	username, err := httpx.LocalString(c, "username")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	summaries, err := h.roomService.ListUserRooms(username)
	if err != nil {
		return httpx.Internal(c, "list_rooms_failed")
	}
	return c.JSON(fiber.Map{
		"rooms": summaries,
		"count": len(summaries),
	})
}

func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	room, err := h.roomService.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			return httpx.NotFound(c, "room_not_found", "Message room not found")
		}
		return httpx.Internal(c, "get_room_failed")
	}
	return c.JSON(room)
}

type renameGroupInput struct {
	Name string `json:"name"`
}

func (h *RoomHandler) RenameGroup(c *fiber.Ctx) error {
	var input renameGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	name := validation.TrimAndLimit(input.Name, validation.MaxRoomNameLength())
	if name == "" {
		return httpx.BadRequest(c, "missing_name", "Name is required")
	}

	room, err := h.roomService.RenameGroup(c.Params("id"), name)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			return httpx.NotFound(c, "room_not_found", "Message room not found")
		}
		return httpx.Internal(c, "rename_group_failed")
	}
	return c.JSON(room)
}
