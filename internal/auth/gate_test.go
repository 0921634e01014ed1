package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeSessionRepo struct {
	sessions map[string]*Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*Session{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (*Session, error) {
	s := &Session{ID: uuid.New(), UserID: userID, Token: token, ExpiresAt: time.Now().Add(ttl)}
	f.sessions[token] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeMembership struct {
	members map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakeMembership) IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	room, ok := f.members[chatID]
	if !ok {
		return false, nil
	}
	return room[userID], nil
}

func TestGate_AuthorizeRequest(t *testing.T) {
	t.Parallel()

	repo := newFakeSessionRepo()
	userID := uuid.New()
	session, _ := repo.Create(context.Background(), userID, "tok-valid", time.Hour)
	_ = session

	expiredUser := uuid.New()
	repo.sessions["tok-expired"] = &Session{ID: uuid.New(), UserID: expiredUser, Token: "tok-expired", ExpiresAt: time.Now().Add(-time.Second)}

	gate := NewGate(repo, NewSessionCache(nil), nil, zerolog.Nop())

	tests := []struct {
		name    string
		token   string
		wantID  uuid.UUID
		wantErr error
	}{
		{"valid session", "tok-valid", userID, nil},
		{"expired session", "tok-expired", uuid.Nil, ErrUnauthorized},
		{"unknown token", "tok-bogus", uuid.Nil, ErrUnauthorized},
		{"empty token", "", uuid.Nil, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.AuthorizeRequest(context.Background(), tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != tt.wantID {
				t.Errorf("userID = %v, want %v", got, tt.wantID)
			}
		})
	}
}

func TestGate_AuthorizeStream(t *testing.T) {
	t.Parallel()

	repo := newFakeSessionRepo()
	member := uuid.New()
	nonMember := uuid.New()
	roomID := uuid.New()

	repo.Create(context.Background(), member, "tok-member", time.Hour)
	repo.Create(context.Background(), nonMember, "tok-nonmember", time.Hour)

	membership := &fakeMembership{members: map[uuid.UUID]map[uuid.UUID]bool{
		roomID: {member: true},
	}}

	gate := NewGate(repo, NewSessionCache(nil), membership, zerolog.Nop())

	t.Run("member is authorized", func(t *testing.T) {
		id, err := gate.AuthorizeStream(context.Background(), "tok-member", roomID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != member {
			t.Errorf("userID = %v, want %v", id, member)
		}
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		_, err := gate.AuthorizeStream(context.Background(), "tok-nonmember", roomID)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("bad token is unauthorized", func(t *testing.T) {
		_, err := gate.AuthorizeStream(context.Background(), "tok-bogus", roomID)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})
}
