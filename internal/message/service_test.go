package message

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/registry"
)

// fakeRepo emulates the transactional membership-check-then-insert contract of PGRepository.Create:
// a sender absent from members is rejected with ErrForbidden before anything is appended.
type fakeRepo struct {
	mu       sync.Mutex
	members  map[uuid.UUID]bool
	messages []Message
}

func (f *fakeRepo) Create(_ context.Context, chatID, senderID uuid.UUID, content string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.members[senderID] {
		return nil, ErrForbidden
	}
	msg := Message{MessageID: uuid.New(), ChatID: chatID, SenderID: senderID, Content: content, Timestamp: time.Now().UTC()}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeRepo) List(_ context.Context, chatID uuid.UUID) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestService_PostMessage_Forbidden(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{members: map[uuid.UUID]bool{}}
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, reg, zerolog.Nop())

	_, err := svc.PostMessage(context.Background(), uuid.New(), uuid.New(), "hi")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestService_PostMessage_PersistsAndBroadcasts(t *testing.T) {
	t.Parallel()

	chatID := uuid.New()
	senderID := uuid.New()
	repo := &fakeRepo{members: map[uuid.UUID]bool{senderID: true}}
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, reg, zerolog.Nop())

	sub := reg.JoinRoom(chatID, senderID)

	msg, err := svc.PostMessage(context.Background(), chatID, senderID, "  hello  ")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "hello")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := sub.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if frame.Chat == nil || frame.Chat.MessageID != msg.MessageID {
		t.Errorf("broadcast frame = %+v, want MessageID %v", frame.Chat, msg.MessageID)
	}

	listed, err := svc.ListMessages(context.Background(), chatID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(listed) != 1 || listed[0].MessageID != msg.MessageID {
		t.Errorf("ListMessages() = %+v, want single message %v", listed, msg.MessageID)
	}
}

func TestService_PostMessage_EmptyContentRejected(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	reg := registry.New(zerolog.Nop())
	svc := NewService(repo, reg, zerolog.Nop())

	_, err := svc.PostMessage(context.Background(), uuid.New(), uuid.New(), "   ")
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("error = %v, want ErrEmptyContent", err)
	}
}
