package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/uncord-chat/uncord-server/internal/auth"
	"github.com/uncord-chat/uncord-server/internal/httputil"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

// AuthHandler serves the Token Service's REST endpoints: POST /register and POST /login.
type AuthHandler struct {
	tokens *auth.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(tokens *auth.Service) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Register handles POST /register, per spec.md §6.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body wire.RegisterRequest
	if err := c.Bind().Body(&body); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := h.tokens.Register(c.Context(), auth.RegisterParams{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return httputil.JSON(c, fiber.StatusCreated, wire.RegisterResponse{Message: "registered"})
}

// Login handles POST /login, per spec.md §6.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body wire.LoginRequest
	if err := c.Bind().Body(&body); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.tokens.Login(c.Context(), body.Username, body.Password)
	if err != nil {
		return mapAuthError(c, err)
	}

	return httputil.JSON(c, fiber.StatusOK, wire.LoginResponse{Token: result.Token, Type: "Bearer"})
}

// mapAuthError converts auth-layer sentinel errors to the status codes documented in spec.md §6.
func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrUsernameLength),
		errors.Is(err, auth.ErrUsernameInvalidChars),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordTooWeak):
		return httputil.Fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
		return httputil.Fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return httputil.Fail(c, fiber.StatusUnauthorized, err.Error())
	default:
		return httputil.Fail(c, fiber.StatusInternalServerError, "internal error")
	}
}
