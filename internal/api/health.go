package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uncord-chat/uncord-server/internal/httputil"
)

// Pinger probes the session cache; cmd/chatd adapts its Redis client to it. Session-cache health is
// only reported when one is wired.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the server's storage dependencies.
type HealthHandler struct {
	db    *pgxpool.Pool
	cache Pinger
}

// NewHealthHandler constructs a HealthHandler. cache may be nil when no session cache is configured.
func NewHealthHandler(db *pgxpool.Pool, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health handles GET /health. It pings Postgres and, if configured, the session cache, returning
// 200 when all configured dependencies respond and 503 otherwise.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := fiber.StatusOK
	body := map[string]string{"postgres": "ok"}

	if err := h.db.Ping(c.Context()); err != nil {
		status = fiber.StatusServiceUnavailable
		body["postgres"] = "unavailable"
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Context()); err != nil {
			status = fiber.StatusServiceUnavailable
			body["cache"] = "unavailable"
		} else {
			body["cache"] = "ok"
		}
	}

	if status == fiber.StatusOK {
		body["status"] = "ok"
	} else {
		body["status"] = "degraded"
	}

	return httputil.JSON(c, status, body)
}
