// Package wire defines the JSON wire types exchanged over the REST surface and the streaming
// connection (spec.md §6). Frames are a tagged union with a discriminant field, not a subclass
// hierarchy (spec.md §9 "Dynamic polymorphism for frames").
package wire

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FrameType is the discriminant of a streamed Frame.
type FrameType string

const (
	FrameTypeChat       FrameType = "Chat"
	FrameTypeStatus     FrameType = "Status"
	FrameTypeInvitation FrameType = "Invitation"
	FrameTypeError      FrameType = "Error"
)

// UserStatus enumerates the MemberSession statuses of spec.md §3.
type UserStatus string

const (
	StatusOnline  UserStatus = "Online"
	StatusOffline UserStatus = "Offline"
	StatusTyping  UserStatus = "Typing"
	StatusIdle    UserStatus = "Idle"
	StatusJoined  UserStatus = "Joined"
)

// Frame is the envelope for every message placed on a room's broadcast channel or a user's direct
// channel. Exactly one of the payload fields is populated, selected by Type.
type Frame struct {
	Type       FrameType        `json:"type"`
	Chat       *ChatFrame       `json:"-"`
	Status     *StatusFrame     `json:"-"`
	Invitation *InvitationFrame `json:"-"`
	Error      *ErrorFrame      `json:"-"`
}

// ChatFrame carries a persisted message, per spec.md §6.
type ChatFrame struct {
	MessageID uuid.UUID `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusFrame announces a member's presence change within a room, per spec.md §6.
type StatusFrame struct {
	ChatID    uuid.UUID  `json:"chat_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Status    UserStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// InvitationFrame is pushed to a user's direct channel when they are invited to a chat, per
// spec.md §6.
type InvitationFrame struct {
	InvitationID    uuid.UUID `json:"invitation_id"`
	ChatID          uuid.UUID `json:"chat_id"`
	InviterUsername string    `json:"inviter_username"`
	Timestamp       time.Time `json:"timestamp"`
}

// ErrorFrame is a terminal or informational error delivered over the stream.
type ErrorFrame struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewChatFrame wraps a ChatFrame in its envelope.
func NewChatFrame(f ChatFrame) Frame { return Frame{Type: FrameTypeChat, Chat: &f} }

// NewStatusFrame wraps a StatusFrame in its envelope.
func NewStatusFrame(f StatusFrame) Frame { return Frame{Type: FrameTypeStatus, Status: &f} }

// NewInvitationFrame wraps an InvitationFrame in its envelope.
func NewInvitationFrame(f InvitationFrame) Frame { return Frame{Type: FrameTypeInvitation, Invitation: &f} }

// NewErrorFrame wraps an ErrorFrame in its envelope.
func NewErrorFrame(code, message string) Frame {
	return Frame{Type: FrameTypeError, Error: &ErrorFrame{Code: code, Message: message}}
}

// MarshalJSON flattens the envelope so the wire representation is a single JSON object carrying the
// discriminant plus the active payload's fields inline, matching the schema in spec.md §6.
func (f Frame) MarshalJSON() ([]byte, error) {
	switch f.Type {
	case FrameTypeChat:
		return marshalTagged(f.Type, f.Chat)
	case FrameTypeStatus:
		return marshalTagged(f.Type, f.Status)
	case FrameTypeInvitation:
		return marshalTagged(f.Type, f.Invitation)
	case FrameTypeError:
		return marshalTagged(f.Type, f.Error)
	default:
		return json.Marshal(struct {
			Type FrameType `json:"type"`
		}{f.Type})
	}
}

func marshalTagged(t FrameType, payload any) ([]byte, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payloadJSON, &fields); err != nil {
		return nil, err
	}
	fields["type"], err = json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the discriminant and decodes the matching payload.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var head struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	f.Type = head.Type

	switch head.Type {
	case FrameTypeChat:
		var c ChatFrame
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		f.Chat = &c
	case FrameTypeStatus:
		var s StatusFrame
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Status = &s
	case FrameTypeInvitation:
		var i InvitationFrame
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		f.Invitation = &i
	case FrameTypeError:
		var e ErrorFrame
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		f.Error = &e
	}
	return nil
}
