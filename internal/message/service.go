package message

import (
	"context"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

// Service implements the Message Service operations of spec.md §4.3.
type Service struct {
	repo      Repository
	reg       *registry.Registry
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

// NewService constructs a message Service. The sanitizer strips HTML/script content from message
// bodies before they are persisted or broadcast, using bluemonday's strict policy — chat content is
// plain text, never rendered as markup.
func NewService(repo Repository, reg *registry.Registry, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		reg:       reg,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.With().Str("component", "message").Logger(),
	}
}

// PostMessage persists the message — verifying sender membership and inserting the row in one
// transaction (Repository.Create) — and hands the committed record to the Connection Registry for
// broadcast. Broadcast is best-effort: lag or zero subscribers is not an error, and happens strictly
// after the durable commit (spec.md §4.3, §8 property 2).
func (s *Service) PostMessage(ctx context.Context, chatID, senderID uuid.UUID, content string) (*Message, error) {
	cleaned, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}
	cleaned = s.sanitizer.Sanitize(cleaned)

	msg, err := s.repo.Create(ctx, chatID, senderID, cleaned)
	if err != nil {
		return nil, err
	}

	s.reg.BroadcastToRoom(chatID, wire.NewChatFrame(wire.ChatFrame{
		MessageID: msg.MessageID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}))

	return msg, nil
}

// ListMessages returns every message in chatID ordered by timestamp ascending (spec.md §4.3
// list_messages — no pagination in this version).
func (s *Service) ListMessages(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	return s.repo.List(ctx, chatID)
}
