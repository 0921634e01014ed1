package auth

import "errors"

// Sentinel errors for the auth package.
var (
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrUsernameLength       = errors.New("username must be between 2 and 32 characters")
	ErrUsernameInvalidChars = errors.New("username may only contain letters, digits, underscores, and periods")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong      = errors.New("password must be at most 128 characters")
	ErrPasswordTooWeak      = errors.New("password must contain an uppercase letter, a lowercase letter, a digit, and a special character")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already taken")

	// ErrUnauthorized is returned by the Auth Gate when a bearer token is missing, malformed, or does
	// not resolve to an unexpired session (spec.md §4.1 authorize_request).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned by authorize_stream when the caller is authenticated but is not an
	// accepted member of the target room.
	ErrForbidden = errors.New("forbidden")
)
