package wire

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the JSON body for a successful POST /register.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON body for a successful POST /login.
type LoginResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// CreateChatRequest is the JSON body for POST /create_chat.
type CreateChatRequest struct {
	Name     *string  `json:"name,omitempty"`
	Invitees []string `json:"invitees,omitempty"`
}

// ChatResponse is the JSON body for a successful POST /create_chat.
type ChatResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MessageResponse is the JSON representation of a persisted Message, returned by GET
// /get_messages/{chat_id} (as an array) and POST /send_message.
type MessageResponse struct {
	MessageID uuid.UUID `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest is the JSON body for POST /send_message.
type SendMessageRequest struct {
	ChatID  uuid.UUID `json:"chat_id"`
	Message string    `json:"message"`
}

// RespondInviteRequest is the JSON body for POST /invites/respond.
type RespondInviteRequest struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	Accept       bool      `json:"accept"`
}

// InviteResponse is the JSON representation of an Invite, returned by POST /invites/respond.
type InviteResponse struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	ChatID       uuid.UUID `json:"chat_id"`
	InviterID    uuid.UUID `json:"inviter_id"`
	InviteeID    uuid.UUID `json:"invitee_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrorResponse is the JSON body for a 4xx/5xx REST response.
type ErrorResponse struct {
	Error string `json:"error"`
}
