package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MembershipChecker is the subset of the Membership Service the Auth Gate depends on for stream
// authorization (spec.md §4.1 authorize_stream). Defined here, rather than imported from the chat
// package, so internal/auth never depends on internal/chat; internal/chat's Service satisfies this
// interface implicitly.
type MembershipChecker interface {
	IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
}

// Gate is the Auth Gate component of spec.md §4.1: it resolves bearer tokens to user identities and,
// for stream upgrades, additionally verifies room membership.
type Gate struct {
	sessions   SessionRepository
	cache      *SessionCache
	membership MembershipChecker
	log        zerolog.Logger
}

// NewGate constructs an Auth Gate. membership may be nil when only authorize_request is needed (e.g.
// in tests); calling authorize_stream with a nil membership checker panics, matching the contract that
// stream authorization is never reachable without it wired.
func NewGate(sessions SessionRepository, cache *SessionCache, membership MembershipChecker, logger zerolog.Logger) *Gate {
	return &Gate{sessions: sessions, cache: cache, membership: membership, log: logger}
}

// AuthorizeRequest resolves a bearer token to a user_id, verifying that an unexpired Session row
// exists for it. Every failure mode (malformed token, no session row, expired session) collapses to
// ErrUnauthorized, per spec.md §4.1.
func (g *Gate) AuthorizeRequest(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthorized
	}

	if userID, ok := g.cache.Get(ctx, token); ok {
		return userID, nil
	}

	session, err := g.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return uuid.Nil, ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("authorize request: %w", err)
	}
	if !session.Valid() {
		return uuid.Nil, ErrUnauthorized
	}

	if err := g.cache.Set(ctx, token, session.UserID, ttlUntil(session)); err != nil {
		g.log.Warn().Err(err).Msg("failed to populate session cache")
	}

	return session.UserID, nil
}

// AuthorizeStream performs AuthorizeRequest, then verifies the resolved user holds an accepted
// membership in roomID. Returns ErrUnauthorized for a bad token and ErrForbidden for an authenticated
// user without accepted membership (spec.md §4.1, §8 property 1).
func (g *Gate) AuthorizeStream(ctx context.Context, token string, roomID uuid.UUID) (uuid.UUID, error) {
	userID, err := g.AuthorizeRequest(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	isMember, err := g.membership.IsMember(ctx, roomID, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("authorize stream: %w", err)
	}
	if !isMember {
		return uuid.Nil, ErrForbidden
	}

	return userID, nil
}

func ttlUntil(s *Session) time.Duration {
	return time.Until(s.ExpiresAt)
}
