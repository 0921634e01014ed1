package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the user package.
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

// User is the durable identity record described in spec.md §3: a username/email-unique account with
// an opaque 128-bit identifier. The password hash is intentionally excluded from this type so that
// read paths serving profile data can never leak it; see Credentials for the authentication path.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedAt time.Time
}

// Credentials extends User with the password hash. Only the repository method serving the login path
// returns this type.
type Credentials struct {
	User
	PasswordHash string
}

// CreateParams groups the inputs for registering a new user.
type CreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// Repository defines the data-access contract for user operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}
