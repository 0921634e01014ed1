// Package gateway implements the Stream Session (spec.md §4.5): the per-connection read/write
// loop bridging a single authorized WebSocket connection to the Connection Registry.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/message"
	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

const (
	// maxMessageSize bounds a single inbound text frame, matching spec.md §5 resource caps.
	maxMessageSize = 4096

	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may go without a pong before it is considered dead.
	pongWait = 60 * time.Second

	// pingPeriod sends pings often enough to keep the connection alive within pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Poster persists and broadcasts a chat message. message.Service satisfies this structurally.
type Poster interface {
	PostMessage(ctx context.Context, chatID, senderID uuid.UUID, content string) (*message.Message, error)
}

// Session is one authorized client's Stream Session: a chat_id, a user_id, and the pumps bridging
// the WebSocket connection to its room and direct Subscriptions on the Connection Registry.
type Session struct {
	conn   *websocket.Conn
	reg    *registry.Registry
	poster Poster
	log    zerolog.Logger

	chatID   uuid.UUID
	userID   uuid.UUID
	username string

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession constructs a Stream Session for an already-authorized connection. Authorization
// (token validity and room membership) has already been checked by auth.Gate.AuthorizeStream
// before the WebSocket upgrade completes, per spec.md §4.5 — there is no post-upgrade Identify
// handshake in this protocol, unlike the Discord-style gateway this package's predecessor modeled.
// username is the publicly known name registered against userID's direct channel (spec.md §4.4
// register_connection), used to deliver Invitation frames and other out-of-room pushes.
func NewSession(conn *websocket.Conn, reg *registry.Registry, poster Poster, chatID, userID uuid.UUID, username string, log zerolog.Logger) *Session {
	return &Session{
		conn:     conn,
		reg:      reg,
		poster:   poster,
		log:      log.With().Stringer("chat_id", chatID).Stringer("user_id", userID).Logger(),
		chatID:   chatID,
		userID:   userID,
		username: username,
		done:     make(chan struct{}),
	}
}

// Run registers the connection's direct endpoint and room membership, then blocks running the read
// and write pumps concurrently until either exits. It always cleans up registry state on return —
// unregistering the direct endpoint and leaving the room — and the cleanup is idempotent even if
// both pumps race to trigger it (spec.md §4.5 step 4).
func (s *Session) Run(ctx context.Context) {
	direct := s.reg.RegisterConnection(s.userID, s.username)
	room := s.reg.JoinRoom(s.chatID, s.userID)
	s.reg.UpdateUserStatus(s.chatID, s.userID, wire.StatusOnline)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if p := recover(); p != nil {
				s.log.Error().Interface("panic", p).Msg("read pump panicked, closing session")
				s.stop()
			}
		}()
		s.readPump()
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if p := recover(); p != nil {
				s.log.Error().Interface("panic", p).Msg("write pump panicked, closing session")
				s.stop()
			}
		}()
		s.writePump(ctx, room, direct)
	}()
	wg.Wait()

	s.reg.UpdateUserStatus(s.chatID, s.userID, wire.StatusOffline)
	s.reg.LeaveRoom(s.chatID, s.userID)
	s.reg.UnregisterConnection(s.userID)
}

// stop signals both pumps to exit. Safe to call multiple times or concurrently.
func (s *Session) stop() {
	s.closeOnce.Do(func() { close(s.done) })
}

// readPump reads inbound text frames, persists them via the Message Service (durable-before-
// visible, per spec.md §3, §8 property 2), and relies on PostMessage's own call into
// BroadcastToRoom for delivery. A transport error or close breaks the loop (spec.md §4.5).
func (s *Session) readPump() {
	defer func() {
		s.stop()
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, text, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("read error")
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err = s.poster.PostMessage(ctx, s.chatID, s.userID, string(text))
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Msg("post_message failed, dropping inbound frame")
		}
	}
}

// writePump fans in room and direct frames onto a single channel and writes each to the peer as it
// arrives, interleaved with periodic keepalive pings. Only this goroutine ever calls conn.WriteMessage,
// so a client's Chat, Status, Invitation, and Error frames are never torn across two writers
// (spec.md §4.5 outbound). A Lagged signal on either subscription is logged and draining continues.
func (s *Session) writePump(ctx context.Context, room, direct *registry.Subscription) {
	defer func() { _ = s.conn.Close() }()

	frames := make(chan wire.Frame)

	var fanIn sync.WaitGroup
	fanIn.Add(2)
	go func() { defer fanIn.Done(); s.fanIn(ctx, room, frames) }()
	go func() { defer fanIn.Done(); s.fanIn(ctx, direct, frames) }()
	go func() {
		fanIn.Wait()
		close(frames)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := s.writeFrame(frame); err != nil {
				s.log.Debug().Err(err).Msg("write error")
				return
			}
		}
	}
}

// fanIn drains sub and forwards every received frame onto out until ctx is cancelled or sub's
// channel closes (e.g. the room emptied, or a later RegisterConnection call replaced this direct
// endpoint). A Lagged signal is logged and draining continues from the advanced cursor.
func (s *Session) fanIn(ctx context.Context, sub *registry.Subscription, out chan<- wire.Frame) {
	for {
		frame, err := sub.Receive(ctx)
		if err != nil {
			if lagged, ok := err.(*registry.LaggedError); ok {
				s.log.Warn().Int("lost", lagged.N).Msg("subscriber lagged, continuing")
				continue
			}
			return
		}

		select {
		case out <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) writeFrame(frame wire.Frame) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if frame.Type == wire.FrameTypeChat && frame.Chat != nil {
		return s.conn.WriteMessage(websocket.TextMessage, []byte(frame.Chat.Content))
	}

	data, err := frame.MarshalJSON()
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
