// Package httputil holds small REST response and middleware helpers shared by internal/api.
package httputil

import (
	"github.com/gofiber/fiber/v3"

	"github.com/uncord-chat/uncord-server/internal/wire"
)

// JSON sends data as a bare JSON body with the given status code. Unlike the teacher's
// {"data": ...} envelope, spec.md §6 defines every REST response as the unwrapped literal shape
// (e.g. {id, name} for a chat), so responses are written out flat here.
func JSON(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(data)
}

// Fail sends {"error": message} at the given status code, per spec.md §6.
func Fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(wire.ErrorResponse{Error: message})
}
