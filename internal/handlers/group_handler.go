package handlers

import (
	"errors"
	"log"

	"github.com/CShah18/group-room-api/internal/httpx"
	"github.com/CShah18/group-room-api/internal/service"
	"github.com/CShah18/group-room-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreateGroupRequest struct {
	MaxParticipants int `json:"max_participants"`
	ExpiryMinutes   int `json:"expiry_minutes"`
}

type JoinGroupRequest struct {
	UserID string `json:"user_id"`
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if req.MaxParticipants < 1 {
		return httpx.BadRequest(c, "invalid_max_participants", "max_participants must be a positive integer")
	}
	if req.ExpiryMinutes < 0 {
		return httpx.BadRequest(c, "invalid_expiry_minutes", "expiry_minutes must be a positive integer")
	}

	status, err := h.groupService.CreateGroup(req.MaxParticipants, req.ExpiryMinutes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMaxParticipants) {
			return httpx.BadRequest(c, "invalid_max_participants", err.Error())
		}
		log.Printf("ERROR: create group: %v", err)
		return httpx.Internal(c, "create_group_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(status)
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	groupID := c.Params("id")
	if !validation.ValidateGroupID(groupID) {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var req JoinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	userID := validation.NormalizeUserID(req.UserID)
	if !validation.ValidateUserID(userID) {
		return httpx.BadRequest(c, "invalid_user_id", "user_id is required")
	}

	result, err := h.groupService.JoinGroup(groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			return httpx.NotFound(c, "group_not_found", "Group not found")
		case errors.Is(err, service.ErrGroupClosed):
			return httpx.Gone(c, "group_closed", "Group expired or closed")
		case errors.Is(err, service.ErrGroupFull):
			return httpx.Conflict(c, "group_full", "Group is full")
		case errors.Is(err, service.ErrAlreadyJoined):
			return httpx.Conflict(c, "already_joined", "User already joined")
		}
		log.Printf("ERROR: join group %s: %v", groupID, err)
		return httpx.Internal(c, "join_group_failed")
	}

	return c.JSON(result)
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	groupID := c.Params("id")
	if !validation.ValidateGroupID(groupID) {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	status, err := h.groupService.GetGroup(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return httpx.NotFound(c, "group_not_found", "Group not found")
		}
		log.Printf("ERROR: get group %s: %v", groupID, err)
		return httpx.Internal(c, "get_group_failed")
	}

	return c.JSON(status)
}
