package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/postgres"
)

const selectColumns = `message_id, chat_id, sender_id, content, timestamp`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewPGRepository constructs a PostgreSQL-backed message repository.
func NewPGRepository(db *pgxpool.Pool, logger zerolog.Logger) *PGRepository {
	return &PGRepository{db: db, log: logger}
}

// Create verifies senderID's accepted membership and inserts a message row with a freshly generated
// message_id and server-assigned timestamp, both inside one transaction, per spec.md §4.3
// post_message and §5's membership-check-then-insert atomicity requirement. Checking membership and
// inserting as two separate round trips would leave a window where a membership revoked in between
// still admits the message; reading both under the same transaction closes it. Returns ErrForbidden
// if the sender holds no accepted membership in chatID.
func (r *PGRepository) Create(ctx context.Context, chatID, senderID uuid.UUID, content string) (*Message, error) {
	var msg *Message
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var isMember bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM memberships WHERE chat_id = $1 AND user_id = $2 AND status = 'accepted'
			 )`, chatID, senderID,
		).Scan(&isMember); err != nil {
			return fmt.Errorf("query membership: %w", err)
		}
		if !isMember {
			return ErrForbidden
		}

		m, err := scanMessage(tx.QueryRow(ctx,
			`INSERT INTO messages (message_id, chat_id, sender_id, content, timestamp)
			 VALUES ($1, $2, $3, $4, NOW())
			 RETURNING `+selectColumns,
			uuid.New(), chatID, senderID, content,
		))
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		msg = m
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return msg, nil
}

// List returns every message in chatID ordered by timestamp ascending; no pagination in this
// version, per spec.md §4.3 list_messages.
func (r *PGRepository) List(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM messages WHERE chat_id = $1 ORDER BY timestamp ASC`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var msg Message
	err := row.Scan(&msg.MessageID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.Timestamp)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
