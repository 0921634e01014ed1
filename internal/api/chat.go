package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/uncord-chat/uncord-server/internal/auth"
	"github.com/uncord-chat/uncord-server/internal/chat"
	"github.com/uncord-chat/uncord-server/internal/httputil"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

// ChatHandler serves the Membership Service's chat-creation and invite-response endpoints.
type ChatHandler struct {
	chats *chat.Service
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(chats *chat.Service) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// CreateChat handles POST /create_chat, per spec.md §6.
func (h *ChatHandler) CreateChat(c fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return httputil.Fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body wire.CreateChatRequest
	if err := c.Bind().Body(&body); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.chats.CreateChat(c.Context(), userID, body.Name, body.Invitees)
	if err != nil {
		return mapChatError(c, err)
	}

	return httputil.JSON(c, fiber.StatusOK, wire.ChatResponse{ID: created.ID, Name: created.Name})
}

// RespondToInvitation handles POST /invites/respond, per spec.md §6.
func (h *ChatHandler) RespondToInvitation(c fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return httputil.Fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body wire.RespondInviteRequest
	if err := c.Bind().Body(&body); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	inv, err := h.chats.RespondToInvitation(c.Context(), body.InvitationID, userID, body.Accept)
	if err != nil {
		return mapChatError(c, err)
	}

	return httputil.JSON(c, fiber.StatusOK, wire.InviteResponse{
		InvitationID: inv.ID,
		ChatID:       inv.ChatID,
		InviterID:    inv.InviterID,
		InviteeID:    inv.InviteeID,
		Status:       inv.Status,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	})
}

func mapChatError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chat.ErrNameLength),
		errors.Is(err, chat.ErrUserNotFound),
		errors.Is(err, chat.ErrAlreadyMember),
		errors.Is(err, chat.ErrInviteResolved):
		return httputil.Fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrChatNotFound), errors.Is(err, chat.ErrInviteNotFound):
		return httputil.Fail(c, fiber.StatusBadRequest, err.Error())
	default:
		return httputil.Fail(c, fiber.StatusInternalServerError, "internal error")
	}
}
