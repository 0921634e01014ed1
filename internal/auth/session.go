package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSessionNotFound is returned when no session row matches the presented token.
var ErrSessionNotFound = errors.New("session not found")

// Session is the durable record described in spec.md §3: a session is valid iff expires_at is in the
// future. The token is globally unique; it is the JWT minted at login (see jwt.go) and is what the
// HTTP/stream layer receives from clients. The Auth Gate decides validity from the Session row alone
// and does not verify the JWT's signature or claims.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the session has not yet expired.
func (s Session) Valid() bool {
	return s.ExpiresAt.After(time.Now())
}

// SessionRepository defines the data-access contract for session rows.
type SessionRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (*Session, error)
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// PGSessionRepository implements SessionRepository using PostgreSQL.
type PGSessionRepository struct {
	db *pgxpool.Pool
}

// NewPGSessionRepository creates a new PostgreSQL-backed session repository.
func NewPGSessionRepository(db *pgxpool.Pool) *PGSessionRepository {
	return &PGSessionRepository{db: db}
}

// Create inserts a new session row with the given token and TTL.
func (r *PGSessionRepository) Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (*Session, error) {
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (session_id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.Token, s.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// GetByToken returns the session matching the given token, regardless of whether it has expired; the
// caller decides what to do with an expired session (spec.md §4.1 collapses this into Unauthorized).
func (r *PGSessionRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.db.QueryRow(ctx,
		`SELECT session_id, user_id, token, expires_at FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session by token: %w", err)
	}
	return &s, nil
}

// Delete removes a session row by token. A missing row is not an error.
func (r *PGSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
