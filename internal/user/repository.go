package user

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

// selectColumns lists the columns returned by queries that produce a *User.
const selectColumns = `user_id, username, email, created_at`

// selectCredentialsColumns lists the columns returned by queries that produce a *Credentials.
const selectCredentialsColumns = `user_id, username, email, password_hash, created_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewPGRepository creates a new PostgreSQL-backed user repository.
func NewPGRepository(db *pgxpool.Pool, logger zerolog.Logger) *PGRepository {
	return &PGRepository{db: db, log: logger}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func scanCredentials(row pgx.Row) (*Credentials, error) {
	var c Credentials
	if err := row.Scan(&c.ID, &c.Username, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}
	return &c, nil
}

// Create inserts a new user row. Returns ErrUsernameTaken or ErrEmailTaken when the corresponding
// unique constraint is violated.
func (r *PGRepository) Create(ctx context.Context, params CreateParams) (uuid.UUID, error) {
	userID := uuid.New()
	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users (user_id, username, email, password_hash) VALUES ($1, $2, $3, $4)`,
			userID, params.Username, params.Email, params.PasswordHash,
		)
		return err
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			// The schema enforces uniqueness on both columns; a targeted lookup disambiguates which
			// one collided so the caller can report the specific conflict.
			if _, lookupErr := r.GetByUsername(ctx, params.Username); lookupErr == nil {
				return uuid.Nil, ErrUsernameTaken
			}
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return userID, nil
}

// GetByID returns the user matching the given ID.
func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE user_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

// GetByUsername returns the user matching the given username, without credentials. Used by the
// Membership Service to resolve an invitee (spec.md §4.2 send_invitation).
func (r *PGRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

// GetCredentialsByUsername returns the user with credentials matching the given username, serving
// the login path.
func (r *PGRepository) GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error) {
	c, err := scanCredentials(r.db.QueryRow(ctx,
		`SELECT `+selectCredentialsColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query credentials by username: %w", err)
	}
	return c, nil
}

// UpdatePasswordHash updates the stored password hash for a user, used for lazy hash rotation when
// Argon2 parameters change.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2`, hash, userID)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}
