package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/user"
)

type fakeRepo struct {
	chats       map[uuid.UUID]*Chat
	memberships map[uuid.UUID]map[uuid.UUID]string
	invites     map[uuid.UUID]*Invite
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		chats:       make(map[uuid.UUID]*Chat),
		memberships: make(map[uuid.UUID]map[uuid.UUID]string),
		invites:     make(map[uuid.UUID]*Invite),
	}
}

func (r *fakeRepo) CreateChatWithCreator(_ context.Context, name string, creatorID uuid.UUID) (*Chat, error) {
	c := &Chat{ID: uuid.New(), Name: name}
	r.chats[c.ID] = c
	r.memberships[c.ID] = map[uuid.UUID]string{creatorID: MembershipStatusAccepted}
	return c, nil
}

func (r *fakeRepo) GetChat(_ context.Context, chatID uuid.UUID) (*Chat, error) {
	c, ok := r.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	return c, nil
}

func (r *fakeRepo) IsMember(_ context.Context, chatID, userID uuid.UUID, status string) (bool, error) {
	return r.memberships[chatID][userID] == status, nil
}

func (r *fakeRepo) CreateInvite(_ context.Context, chatID, inviterID, inviteeID uuid.UUID) (*Invite, error) {
	now := time.Now().UTC()
	inv := &Invite{ID: uuid.New(), ChatID: chatID, InviterID: inviterID, InviteeID: inviteeID, Status: InviteStatusPending, CreatedAt: now, UpdatedAt: now}
	r.invites[inv.ID] = inv
	return inv, nil
}

func (r *fakeRepo) GetInvite(_ context.Context, inviteID uuid.UUID) (*Invite, error) {
	inv, ok := r.invites[inviteID]
	if !ok {
		return nil, ErrInviteNotFound
	}
	return inv, nil
}

func (r *fakeRepo) ResolveInvite(_ context.Context, inviteID, inviteeID uuid.UUID, accept bool) (*Invite, error) {
	inv, ok := r.invites[inviteID]
	if !ok || inv.InviteeID != inviteeID {
		return nil, ErrInviteNotFound
	}
	if inv.Status != InviteStatusPending {
		return nil, ErrInviteResolved
	}
	if accept {
		inv.Status = InviteStatusAccepted
		if r.memberships[inv.ChatID] == nil {
			r.memberships[inv.ChatID] = make(map[uuid.UUID]string)
		}
		r.memberships[inv.ChatID][inviteeID] = MembershipStatusAccepted
	} else {
		inv.Status = InviteStatusRejected
	}
	inv.UpdatedAt = time.Now().UTC()
	return inv, nil
}

type fakeUsers struct {
	byUsername map[string]*user.User
	byID       map[uuid.UUID]*user.User
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{byUsername: make(map[string]*user.User), byID: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		f.byUsername[u.Username] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(context.Context, user.CreateParams) (uuid.UUID, error) { return uuid.Nil, nil }
func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}
func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}
func (f *fakeUsers) GetCredentialsByUsername(context.Context, string) (*user.Credentials, error) {
	return nil, user.ErrNotFound
}
func (f *fakeUsers) UpdatePasswordHash(context.Context, uuid.UUID, string) error { return nil }

func TestService_CreateChat_DefaultNameAndInvitees(t *testing.T) {
	t.Parallel()

	creator := &user.User{ID: uuid.New(), Username: "alice"}
	bob := &user.User{ID: uuid.New(), Username: "bob"}
	repo := newFakeRepo()
	users := newFakeUsers(creator, bob)
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	c, err := svc.CreateChat(context.Background(), creator.ID, nil, []string{"bob"})
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if c.Name != DefaultChatName {
		t.Errorf("Name = %q, want %q", c.Name, DefaultChatName)
	}

	member, err := svc.IsMember(context.Background(), c.ID, creator.ID)
	if err != nil || !member {
		t.Errorf("IsMember(creator) = %v, %v, want true, nil", member, err)
	}

	if len(repo.invites) != 1 {
		t.Fatalf("invites created = %d, want 1", len(repo.invites))
	}
}

func TestService_CreateChat_InvalidName(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	users := newFakeUsers()
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	tooLong := make([]byte, 51)
	for i := range tooLong {
		tooLong[i] = 'a'
	}
	name := string(tooLong)

	_, err := svc.CreateChat(context.Background(), uuid.New(), &name, nil)
	if !errors.Is(err, ErrNameLength) {
		t.Errorf("error = %v, want ErrNameLength", err)
	}
}

func TestService_SendInvitation_UnknownUser(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	users := newFakeUsers()
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	_, err := svc.SendInvitation(context.Background(), uuid.New(), uuid.New(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestService_SendInvitation_AlreadyMember(t *testing.T) {
	t.Parallel()

	bob := &user.User{ID: uuid.New(), Username: "bob"}
	repo := newFakeRepo()
	users := newFakeUsers(bob)
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	chatID := uuid.New()
	repo.chats[chatID] = &Chat{ID: chatID, Name: "r"}
	repo.memberships[chatID] = map[uuid.UUID]string{bob.ID: MembershipStatusAccepted}

	_, err := svc.SendInvitation(context.Background(), chatID, uuid.New(), "bob")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("error = %v, want ErrAlreadyMember", err)
	}
}

func TestService_RespondToInvitation_AcceptJoinsRoom(t *testing.T) {
	t.Parallel()

	alice := &user.User{ID: uuid.New(), Username: "alice"}
	bob := &user.User{ID: uuid.New(), Username: "bob"}
	repo := newFakeRepo()
	users := newFakeUsers(alice, bob)
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	chat, err := svc.CreateChat(context.Background(), alice.ID, nil, nil)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	inv, err := svc.SendInvitation(context.Background(), chat.ID, alice.ID, "bob")
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}

	// Simulate alice's live Stream Session so the room is active before bob responds.
	reg.JoinRoom(chat.ID, alice.ID)

	resolved, err := svc.RespondToInvitation(context.Background(), inv.ID, bob.ID, true)
	if err != nil {
		t.Fatalf("RespondToInvitation() error = %v", err)
	}
	if resolved.Status != InviteStatusAccepted {
		t.Errorf("Status = %q, want %q", resolved.Status, InviteStatusAccepted)
	}

	member, err := svc.IsMember(context.Background(), chat.ID, bob.ID)
	if err != nil || !member {
		t.Errorf("IsMember(bob) = %v, %v, want true, nil", member, err)
	}
	if got := reg.RoomSize(chat.ID); got != 2 {
		t.Errorf("RoomSize() = %d, want 2 (bob seeded into alice's live room)", got)
	}
}

func TestService_RespondToInvitation_AcceptDoesNotCreateRoomWhenInactive(t *testing.T) {
	t.Parallel()

	alice := &user.User{ID: uuid.New(), Username: "alice"}
	bob := &user.User{ID: uuid.New(), Username: "bob"}
	repo := newFakeRepo()
	users := newFakeUsers(alice, bob)
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	chat, err := svc.CreateChat(context.Background(), alice.ID, nil, nil)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	inv, err := svc.SendInvitation(context.Background(), chat.ID, alice.ID, "bob")
	if err != nil {
		t.Fatalf("SendInvitation() error = %v", err)
	}

	if _, err := svc.RespondToInvitation(context.Background(), inv.ID, bob.ID, true); err != nil {
		t.Fatalf("RespondToInvitation() error = %v", err)
	}

	if got := reg.RoomSize(chat.ID); got != 0 {
		t.Errorf("RoomSize() = %d, want 0 (no one connected, nothing to seed, no phantom room)", got)
	}
}

func TestService_RespondToInvitation_AlreadyResolved(t *testing.T) {
	t.Parallel()

	alice := &user.User{ID: uuid.New(), Username: "alice"}
	bob := &user.User{ID: uuid.New(), Username: "bob"}
	repo := newFakeRepo()
	users := newFakeUsers(alice, bob)
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, users, reg, zerolog.Nop())

	chat, _ := svc.CreateChat(context.Background(), alice.ID, nil, nil)
	inv, _ := svc.SendInvitation(context.Background(), chat.ID, alice.ID, "bob")

	if _, err := svc.RespondToInvitation(context.Background(), inv.ID, bob.ID, true); err != nil {
		t.Fatalf("first RespondToInvitation() error = %v", err)
	}
	if _, err := svc.RespondToInvitation(context.Background(), inv.ID, bob.ID, true); !errors.Is(err, ErrInviteResolved) {
		t.Errorf("second RespondToInvitation() error = %v, want ErrInviteResolved", err)
	}
}
