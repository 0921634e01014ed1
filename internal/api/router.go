package api

import (
	"github.com/gofiber/fiber/v3"
)

// Handlers bundles every REST/WebSocket handler the router wires onto routes.
type Handlers struct {
	Auth    *AuthHandler
	Chat    *ChatHandler
	Message *MessageHandler
	Gateway *GatewayHandler
	Health  *HealthHandler
}

// RegisterRoutes wires every endpoint documented in spec.md §6 onto app.
func RegisterRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	app.Get("/health", h.Health.Health)

	app.Post("/register", h.Auth.Register)
	app.Post("/login", h.Auth.Login)

	app.Post("/create_chat", requireAuth, h.Chat.CreateChat)
	app.Post("/invites/respond", requireAuth, h.Chat.RespondToInvitation)

	app.Get("/get_messages/:chat_id", requireAuth, h.Message.GetMessages)
	app.Post("/send_message", requireAuth, h.Message.SendMessage)

	// The Stream Session authorizes internally via AuthorizeStream before the WebSocket upgrade
	// completes (spec.md §4.5), so it does not sit behind the RequireAuth middleware.
	app.Get("/ws", h.Gateway.Upgrade)
}
