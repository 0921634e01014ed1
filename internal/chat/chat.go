// Package chat implements the Membership Service (spec.md §4.2): the transactional owner of
// chat, membership, and invitation rows. It creates rooms, manages invites, and promotes an
// accepted invitee to an accepted member, opportunistically notifying the Connection Registry of
// durable state changes so live connections observe them.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultChatName is used when create_chat is called without an explicit name.
const DefaultChatName = "Default Chat"

// Invite status values, matching the database CHECK constraint.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
	InviteStatusExpired  = "expired"
)

// Membership status values, matching the database CHECK constraint.
const (
	MembershipStatusPending  = "pending"
	MembershipStatusAccepted = "accepted"
	MembershipStatusRejected = "rejected"
)

// Sentinel errors for the chat package.
var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrNameLength     = errors.New("chat name must be between 1 and 50 characters")
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyMember  = errors.New("user is already a member of this chat")
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteResolved = errors.New("invite has already been resolved")
)

// Chat is a durable group identified by ChatID; membership is explicit via Membership rows.
type Chat struct {
	ID   uuid.UUID
	Name string
}

// Membership is a (ChatID, UserID) durable record. Only status=accepted grants read/write access
// to the room.
type Membership struct {
	ChatID    uuid.UUID
	UserID    uuid.UUID
	Status    string
	IsCreator bool
}

// Invite is a durable proposal from an inviter to a potential member.
type Invite struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	InviterID uuid.UUID
	InviteeID uuid.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateName checks that a chat name, after trimming whitespace, is between 1 and 50 runes.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < 1 || utf8.RuneCountInString(trimmed) > 50 {
		return "", ErrNameLength
	}
	return trimmed, nil
}

// Repository defines the data-access contract for chat, membership, and invite operations.
type Repository interface {
	CreateChatWithCreator(ctx context.Context, name string, creatorID uuid.UUID) (*Chat, error)
	GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error)
	IsMember(ctx context.Context, chatID, userID uuid.UUID, status string) (bool, error)

	CreateInvite(ctx context.Context, chatID, inviterID, inviteeID uuid.UUID) (*Invite, error)
	GetInvite(ctx context.Context, inviteID uuid.UUID) (*Invite, error)
	ResolveInvite(ctx context.Context, inviteID, inviteeID uuid.UUID, accept bool) (*Invite, error)
}
