package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/user"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

// Service implements the Membership Service operations of spec.md §4.2.
type Service struct {
	repo  Repository
	users user.Repository
	reg   *registry.Registry
	log   zerolog.Logger
}

// NewService constructs a chat Service.
func NewService(repo Repository, users user.Repository, reg *registry.Registry, log zerolog.Logger) *Service {
	return &Service{repo: repo, users: users, reg: reg, log: log.With().Str("component", "chat").Logger()}
}

// CreateChat transactionally creates a Chat and its creator's accepted Membership, then fires off
// a best-effort invitation per invitee username. Invitation failures are logged, not propagated —
// they must never roll back chat creation (spec.md §4.2 create_chat, §7).
func (s *Service) CreateChat(ctx context.Context, creatorID uuid.UUID, name *string, invitees []string) (*Chat, error) {
	chatName := DefaultChatName
	if name != nil {
		validated, err := ValidateName(*name)
		if err != nil {
			return nil, err
		}
		chatName = validated
	}

	c, err := s.repo.CreateChatWithCreator(ctx, chatName, creatorID)
	if err != nil {
		return nil, err
	}

	for _, username := range invitees {
		if _, err := s.SendInvitation(ctx, c.ID, creatorID, username); err != nil {
			s.log.Warn().Err(err).Stringer("chat_id", c.ID).Str("invitee", username).
				Msg("invitation failed during chat creation, continuing")
		}
	}

	return c, nil
}

// SendInvitation resolves invitee by username, rejects existing members, and inserts a pending
// Invite. On success it best-effort pushes an InvitationFrame to the invitee's direct channel if
// they are currently connected (spec.md §4.2 send_invitation).
func (s *Service) SendInvitation(ctx context.Context, chatID, inviterID uuid.UUID, inviteeUsername string) (*Invite, error) {
	invitee, err := s.users.GetByUsername(ctx, inviteeUsername)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	alreadyMember, err := s.repo.IsMember(ctx, chatID, invitee.ID, MembershipStatusAccepted)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, ErrAlreadyMember
	}

	inv, err := s.repo.CreateInvite(ctx, chatID, inviterID, invitee.ID)
	if err != nil {
		return nil, err
	}

	inviter, err := s.users.GetByID(ctx, inviterID)
	inviterUsername := ""
	if err == nil {
		inviterUsername = inviter.Username
	}
	frame := wire.NewInvitationFrame(wire.InvitationFrame{
		InvitationID:    inv.ID,
		ChatID:          chatID,
		InviterUsername: inviterUsername,
		Timestamp:       inv.CreatedAt,
	})
	if err := s.reg.SendDirect(invitee.ID, frame); err != nil {
		s.log.Warn().Err(err).Stringer("invite_id", inv.ID).Msg("invitation push failed, invite still recorded")
	}

	return inv, nil
}

// RespondToInvitation transitions a pending invite to accepted or rejected and, on acceptance,
// upserts the Membership row atomically with it. After commit, on acceptance, it opportunistically
// seeds the live Room with the new member if (and only if) the room is currently active — it never
// allocates one — and broadcasts a Joined status (spec.md §4.2 respond_to_invitation, §8 property 5).
func (s *Service) RespondToInvitation(ctx context.Context, inviteID, userID uuid.UUID, accept bool) (*Invite, error) {
	inv, err := s.repo.ResolveInvite(ctx, inviteID, userID, accept)
	if err != nil {
		return nil, err
	}

	if accept {
		s.reg.SeedMember(inv.ChatID, userID)
		s.reg.UpdateUserStatus(inv.ChatID, userID, wire.StatusJoined)
	}

	return inv, nil
}

// IsMember reports whether userID has an accepted Membership in chatID. It satisfies
// auth.MembershipChecker by structural typing — no import of internal/auth is needed here.
func (s *Service) IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	return s.repo.IsMember(ctx, chatID, userID, MembershipStatusAccepted)
}

// GetChat returns the chat matching chatID, or ErrChatNotFound.
func (s *Service) GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	return s.repo.GetChat(ctx, chatID)
}
