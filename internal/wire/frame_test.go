package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFrame_ChatRoundTrip(t *testing.T) {
	t.Parallel()

	original := NewChatFrame(ChatFrame{
		MessageID: uuid.New(),
		ChatID:    uuid.New(),
		SenderID:  uuid.New(),
		Content:   "hello",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal to map error = %v", err)
	}
	if decoded["type"] != string(FrameTypeChat) {
		t.Errorf("type = %v, want %q", decoded["type"], FrameTypeChat)
	}
	if decoded["content"] != "hello" {
		t.Errorf("content = %v, want %q", decoded["content"], "hello")
	}

	var roundTripped Frame
	if err := json.Unmarshal(data, &roundTripped); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if roundTripped.Type != FrameTypeChat {
		t.Fatalf("Type = %v, want %v", roundTripped.Type, FrameTypeChat)
	}
	if roundTripped.Chat == nil || roundTripped.Chat.Content != "hello" {
		t.Errorf("Chat = %+v, want Content %q", roundTripped.Chat, "hello")
	}
}

func TestFrame_StatusDiscriminant(t *testing.T) {
	t.Parallel()

	f := NewStatusFrame(StatusFrame{ChatID: uuid.New(), UserID: uuid.New(), Status: StatusJoined, Timestamp: time.Now()})

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Frame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Type != FrameTypeStatus {
		t.Fatalf("Type = %v, want %v", decoded.Type, FrameTypeStatus)
	}
	if decoded.Status == nil || decoded.Status.Status != StatusJoined {
		t.Errorf("Status = %+v, want Status %v", decoded.Status, StatusJoined)
	}
}

func TestFrame_Error(t *testing.T) {
	t.Parallel()

	f := NewErrorFrame("FORBIDDEN", "not a member")
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Frame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != "FORBIDDEN" {
		t.Errorf("Error = %+v, want Code %q", decoded.Error, "FORBIDDEN")
	}
}
