package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/uncord-chat/uncord-server/internal/auth"
	"github.com/uncord-chat/uncord-server/internal/httputil"
	"github.com/uncord-chat/uncord-server/internal/message"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

// MessageHandler serves the Message Service's REST endpoints.
type MessageHandler struct {
	messages *message.Service
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *message.Service) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GetMessages handles GET /get_messages/{chat_id}, per spec.md §6 (list_messages: no pagination).
func (h *MessageHandler) GetMessages(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Params("chat_id"))
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid chat_id")
	}

	msgs, err := h.messages.ListMessages(c.Context(), chatID)
	if err != nil {
		return httputil.Fail(c, fiber.StatusInternalServerError, "internal error")
	}

	out := make([]wire.MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = wire.MessageResponse{
			MessageID: m.MessageID,
			ChatID:    m.ChatID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}

	return httputil.JSON(c, fiber.StatusOK, out)
}

// SendMessage handles POST /send_message, per spec.md §6.
func (h *MessageHandler) SendMessage(c fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return httputil.Fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body wire.SendMessageRequest
	if err := c.Bind().Body(&body); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.messages.PostMessage(c.Context(), body.ChatID, userID, body.Message)
	if err != nil {
		switch {
		case errors.Is(err, message.ErrForbidden):
			return httputil.Fail(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, message.ErrEmptyContent), errors.Is(err, message.ErrContentTooLong):
			return httputil.Fail(c, fiber.StatusBadRequest, err.Error())
		default:
			return httputil.Fail(c, fiber.StatusInternalServerError, "internal error")
		}
	}

	return httputil.JSON(c, fiber.StatusOK, wire.MessageResponse{
		MessageID: msg.MessageID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	})
}
