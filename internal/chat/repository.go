package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/postgres"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewPGRepository constructs a PostgreSQL-backed chat repository.
func NewPGRepository(db *pgxpool.Pool, logger zerolog.Logger) *PGRepository {
	return &PGRepository{db: db, log: logger}
}

// CreateChatWithCreator inserts a Chat row and a Membership row for its creator
// (status=accepted, is_creator=true) in a single transaction, per spec.md §4.2 create_chat.
func (r *PGRepository) CreateChatWithCreator(ctx context.Context, name string, creatorID uuid.UUID) (*Chat, error) {
	chatID := uuid.New()
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chats (chat_id, name) VALUES ($1, $2)`, chatID, name,
		); err != nil {
			return fmt.Errorf("insert chat: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO memberships (chat_id, user_id, status, is_creator)
			 VALUES ($1, $2, $3, true)`,
			chatID, creatorID, MembershipStatusAccepted,
		); err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Chat{ID: chatID, Name: name}, nil
}

// GetChat returns the chat matching chatID.
func (r *PGRepository) GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	var c Chat
	err := r.db.QueryRow(ctx,
		`SELECT chat_id, name FROM chats WHERE chat_id = $1`, chatID,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("query chat: %w", err)
	}
	return &c, nil
}

// IsMember reports whether userID has a membership row in chatID with the given status.
// Service.IsMember calls it with status=accepted to satisfy auth.MembershipChecker.
func (r *PGRepository) IsMember(ctx context.Context, chatID, userID uuid.UUID, status string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM memberships WHERE chat_id = $1 AND user_id = $2 AND status = $3
		 )`, chatID, userID, status,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query membership: %w", err)
	}
	return exists, nil
}

// CreateInvite inserts a pending Invite row, per spec.md §4.2 send_invitation.
func (r *PGRepository) CreateInvite(ctx context.Context, chatID, inviterID, inviteeID uuid.UUID) (*Invite, error) {
	now := time.Now().UTC()
	inv := &Invite{
		ID:        uuid.New(),
		ChatID:    chatID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    InviteStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO invites (invite_id, chat_id, inviter_id, invitee_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.ChatID, inv.InviterID, inv.InviteeID, inv.Status, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	return inv, nil
}

// GetInvite returns the invite matching inviteID.
func (r *PGRepository) GetInvite(ctx context.Context, inviteID uuid.UUID) (*Invite, error) {
	inv, err := scanInvite(r.db.QueryRow(ctx,
		`SELECT invite_id, chat_id, inviter_id, invitee_id, status, created_at, updated_at
		 FROM invites WHERE invite_id = $1`, inviteID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("query invite: %w", err)
	}
	return inv, nil
}

// ResolveInvite transitions a pending invite to accepted or rejected, and — on acceptance —
// upserts an accepted Membership row in the same transaction, per spec.md §4.2
// respond_to_invitation and §8 property 5 (invite acceptance atomicity).
func (r *PGRepository) ResolveInvite(ctx context.Context, inviteID, inviteeID uuid.UUID, accept bool) (*Invite, error) {
	newStatus := InviteStatusRejected
	if accept {
		newStatus = InviteStatusAccepted
	}

	var resolved *Invite
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		inv, err := scanInvite(tx.QueryRow(ctx,
			`SELECT invite_id, chat_id, inviter_id, invitee_id, status, created_at, updated_at
			 FROM invites WHERE invite_id = $1 AND invitee_id = $2 FOR UPDATE`,
			inviteID, inviteeID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("query invite for update: %w", err)
		}
		if inv.Status != InviteStatusPending {
			return ErrInviteResolved
		}

		updatedAt := time.Now().UTC()
		if _, err := tx.Exec(ctx,
			`UPDATE invites SET status = $1, updated_at = $2 WHERE invite_id = $3`,
			newStatus, updatedAt, inviteID,
		); err != nil {
			return fmt.Errorf("update invite status: %w", err)
		}
		inv.Status = newStatus
		inv.UpdatedAt = updatedAt

		if accept {
			if _, err := tx.Exec(ctx,
				`INSERT INTO memberships (chat_id, user_id, status, is_creator)
				 VALUES ($1, $2, $3, false)
				 ON CONFLICT (chat_id, user_id) DO UPDATE SET status = EXCLUDED.status`,
				inv.ChatID, inviteeID, MembershipStatusAccepted,
			); err != nil {
				return fmt.Errorf("upsert membership: %w", err)
			}
		}

		resolved = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func scanInvite(row pgx.Row) (*Invite, error) {
	var inv Invite
	err := row.Scan(&inv.ID, &inv.ChatID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
