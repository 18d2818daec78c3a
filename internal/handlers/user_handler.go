package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mosesmmoisebidth/rod-backend/internal/httpx"
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
)

type UserHandler struct {
	userService     *service.UserService
	presenceService *service.PresenceService
}

func NewUserHandler(userService *service.UserService, presenceService *service.PresenceService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		presenceService: presenceService,
	}
}

func (h *UserHandler) ListOnline(c *fiber.Ctx) error {
	users, err := h.presenceService.ListOnline()
	if err != nil {
		return httpx.Internal(c, "list_online_failed")
	}

	responses := make([]models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return c.JSON(responses)
}

func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.userService.SearchUsers(c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		return httpx.Internal(c, "search_users_failed")
	}

	responses := make([]models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return c.JSON(responses)
}
