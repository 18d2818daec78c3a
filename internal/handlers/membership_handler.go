package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mosesmmoisebidth/rod-backend/internal/httpx"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
}

func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type addMembersInput struct {
	Members []service.AddMemberInput `json:"members"`
}

func (h *MembershipHandler) AddMembers(c *fiber.Ctx) error {
	var input addMembersInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	memberships, err := h.membershipService.AddMembers(c.Params("id"), input.Members)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return httpx.BadRequest(c, "invalid_members", err.Error())
		case errors.Is(err, service.ErrRoomNotFound):
			return httpx.NotFound(c, "room_not_found", "Message room not found")
		case errors.Is(err, service.ErrUserNotFound):
			return httpx.NotFound(c, "user_not_found", err.Error())
		case errors.Is(err, service.ErrMemberExists):
			// Distinct from not-found so clients can choose to ignore.
			return httpx.Conflict(c, "member_exists", err.Error())
		default:
			return httpx.Internal(c, "add_members_failed")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(memberships)
}

func (h *MembershipHandler) RemoveMember(c *fiber.Ctx) error {
	ok, err := h.membershipService.RemoveMember(c.Params("id"), c.Params("username"))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return httpx.NotFound(c, "member_not_found", "Member not found in this room")
		}
		return httpx.Internal(c, "remove_member_failed")
	}
	return c.JSON(fiber.Map{"removed": ok})
}

type setAdminInput struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *MembershipHandler) SetAdmin(c *fiber.Ctx) error {
	var input setAdminInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	membership, err := h.membershipService.SetAdmin(c.Params("id"), c.Params("username"), input.IsAdmin)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return httpx.NotFound(c, "member_not_found", "Member not found in this room")
		}
		return httpx.Internal(c, "set_admin_failed")
	}
	return c.JSON(membership.ToResponse())
}

// MarkRead moves the caller's last-seen watermark in the room to now.
func (h *MembershipHandler) MarkRead(c *fiber.Ctx) error {
	username, err := httpx.LocalString(c, "username")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	membership, err := h.membershipService.TouchLastSeen(c.Params("id"), username)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return httpx.NotFound(c, "member_not_found", "Member not found in this room")
		}
		return httpx.Internal(c, "mark_read_failed")
	}
	return c.JSON(membership.ToResponse())
}
