package api

import (
	"errors"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/auth"
	"github.com/uncord-chat/uncord-server/internal/gateway"
	"github.com/uncord-chat/uncord-server/internal/httputil"
	"github.com/uncord-chat/uncord-server/internal/message"
	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/user"
)

// GatewayHandler serves the WebSocket upgrade endpoint for the Stream Session.
type GatewayHandler struct {
	gate   *auth.Gate
	reg    *registry.Registry
	poster gateway.Poster
	users  user.Repository
	log    zerolog.Logger
}

// NewGatewayHandler constructs a GatewayHandler.
func NewGatewayHandler(gate *auth.Gate, reg *registry.Registry, messages *message.Service, users user.Repository, log zerolog.Logger) *GatewayHandler {
	return &GatewayHandler{gate: gate, reg: reg, poster: messages, users: users, log: log}
}

// Upgrade handles GET /ws?chat_id=&token=, per spec.md §6. Authorization — both token validity and
// room membership — happens before the WebSocket upgrade completes, per spec.md §4.5's contract
// that join_room is never reachable for an unauthorized caller.
func (h *GatewayHandler) Upgrade(c fiber.Ctx) error {
	chatID, err := uuid.Parse(c.Query("chat_id"))
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid chat_id")
	}

	token := auth.BearerToken(c)
	userID, err := h.gate.AuthorizeStream(c.Context(), token, chatID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			return httputil.Fail(c, fiber.StatusForbidden, "not a member of this chat")
		default:
			return httputil.Fail(c, fiber.StatusUnauthorized, "unauthorized")
		}
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// register_connection (spec.md §4.4) is keyed by username, not just user_id, so the direct
	// endpoint can be looked up by LookupOnline — resolve it before the upgrade completes.
	u, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to resolve user")
	}

	return websocket.New(func(conn *websocket.Conn) {
		session := gateway.NewSession(conn.Conn, h.reg, h.poster, chatID, userID, u.Username, h.log)
		session.Run(c.Context())
	})(c)
}
