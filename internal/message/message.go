// Package message implements the Message Service (spec.md §4.3): validates that a sender is an
// accepted member, persists a message row, and hands the persisted record to the Connection
// Registry for broadcast.
package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds message content length (runes), matching spec.md §5 resource caps.
const MaxContentLength = 4000

// Sentinel errors for the message package.
var (
	ErrEmptyContent   = errors.New("message content must not be empty")
	ErrContentTooLong = errors.New("message content exceeds the maximum length")
	ErrForbidden      = errors.New("sender is not an accepted member of this chat")
	ErrNotFound       = errors.New("message not found")
)

// Message is the durable record described in spec.md §3: message_id, chat_id, sender_id, content,
// timestamp.
type Message struct {
	MessageID uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	Timestamp time.Time
}

// ValidateContent trims content and rejects it if empty or over MaxContentLength runes.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if len([]rune(trimmed)) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// Repository defines the data-access contract for message operations.
type Repository interface {
	Create(ctx context.Context, chatID, senderID uuid.UUID, content string) (*Message, error)
	List(ctx context.Context, chatID uuid.UUID) ([]Message, error)
}
