package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/user"
)

// HashParams groups the Argon2id tuning knobs read from configuration.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Service is the Token Service of spec.md §2: it mints bearer tokens for authenticated users and
// persists the accompanying Session row. It also owns registration (password hashing + validation).
type Service struct {
	users      user.Repository
	sessions   SessionRepository
	hashParams HashParams
	jwtSecret  string
	jwtIssuer  string
	jwtTTL     time.Duration
	sessionTTL time.Duration
	log        zerolog.Logger
}

// NewService constructs the Token Service.
func NewService(users user.Repository, sessions SessionRepository, hashParams HashParams, jwtSecret, jwtIssuer string, jwtTTL, sessionTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		hashParams: hashParams,
		jwtSecret:  jwtSecret,
		jwtIssuer:  jwtIssuer,
		jwtTTL:     jwtTTL,
		sessionTTL: sessionTTL,
		log:        logger,
	}
}

// RegisterParams groups the inputs to Register.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register validates and creates a new user, matching the REST contract of spec.md §6
// (POST /register). Validation errors and username/email conflicts are returned as the package's
// sentinel errors so the HTTP layer can map them to the documented status codes.
func (s *Service) Register(ctx context.Context, params RegisterParams) error {
	if err := ValidateUsername(params.Username); err != nil {
		return err
	}
	if _, err := ValidateEmail(params.Email); err != nil {
		return err
	}
	if err := ValidatePassword(params.Password); err != nil {
		return err
	}

	hash, err := HashPassword(params.Password,
		s.hashParams.Memory, s.hashParams.Iterations, s.hashParams.Parallelism,
		s.hashParams.SaltLength, s.hashParams.KeyLength)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, user.CreateParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		if errors.Is(err, user.ErrEmailTaken) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// LoginResult is returned by Login: the bearer token to hand back to the client.
type LoginResult struct {
	Token string
}

// Login verifies credentials and mints a new bearer token plus Session row, matching spec.md §6
// (POST /login). Any verification failure collapses to ErrInvalidCredentials so as not to leak
// whether a username exists.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	creds, err := s.users.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up credentials: %w", err)
	}

	match, err := VerifyPassword(password, creds.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	if NeedsRehash(creds.PasswordHash, s.hashParams.Memory, s.hashParams.Iterations,
		s.hashParams.Parallelism, s.hashParams.SaltLength, s.hashParams.KeyLength) {
		if newHash, err := HashPassword(password, s.hashParams.Memory, s.hashParams.Iterations,
			s.hashParams.Parallelism, s.hashParams.SaltLength, s.hashParams.KeyLength); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, creds.ID, newHash); err != nil {
				s.log.Warn().Err(err).Msg("failed to rehash password")
			}
		}
	}

	token, err := NewAccessToken(creds.ID, s.jwtSecret, s.jwtTTL, s.jwtIssuer)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	if _, err := s.sessions.Create(ctx, creds.ID, token, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{Token: token}, nil
}
