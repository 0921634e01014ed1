package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uncord-chat/uncord-server/internal/wire"
)

// Capacity is the bounded ring-buffer size of every broadcast and direct channel (spec.md §4.4,
// §5 Resource caps).
const Capacity = 100

// ErrClosed is returned by Receive once the channel's owning Room (or DirectEndpoint) has been torn
// down. Any Subscription holder still waiting observes this as a closed signal (spec.md §4.4
// leave_room, register_connection replacement semantics).
var ErrClosed = errors.New("broadcast channel closed")

// LaggedError is returned by Receive when the subscriber fell behind the ring buffer's capacity and
// missed N messages (spec.md §4.4, §8 Lagged signal in the GLOSSARY). The subscriber's cursor has
// already been advanced past the gap; a subsequent Receive call returns the next available message.
type LaggedError struct{ N int }

func (e *LaggedError) Error() string { return fmt.Sprintf("lagged by %d messages", e.N) }

// broadcastChannel is a bounded, multi-subscriber, drop-oldest broadcast primitive. Go's built-in
// channels block publishers when full and deliver to only one of several waiting receivers, neither
// of which matches spec.md §4.4's required semantics (never block the publisher; every subscriber
// observes every non-dropped message). This ring buffer plus a "generation" notify channel reproduces
// the behavior of Rust's tokio::sync::broadcast, which the source (original_source/connection_manager.rs)
// uses directly.
type broadcastChannel struct {
	mu       sync.Mutex
	buf      []wire.Frame
	capacity int
	head     uint64 // total number of messages ever published
	closed   bool
	notify   chan struct{} // closed and replaced on every Publish/Close to wake waiting receivers
}

func newBroadcastChannel(capacity int) *broadcastChannel {
	return &broadcastChannel{
		buf:      make([]wire.Frame, capacity),
		capacity: capacity,
		notify:   make(chan struct{}),
	}
}

// Publish appends msg to the ring buffer, overwriting the oldest entry once the buffer is full.
// Never blocks, matching the publisher contract in spec.md §4.4.
func (bc *broadcastChannel) Publish(msg wire.Frame) {
	bc.mu.Lock()
	if bc.closed {
		bc.mu.Unlock()
		return
	}
	bc.buf[bc.head%uint64(bc.capacity)] = msg
	bc.head++
	old := bc.notify
	bc.notify = make(chan struct{})
	bc.mu.Unlock()
	close(old)
}

// Close marks the channel closed; every blocked or future Receive call returns ErrClosed.
func (bc *broadcastChannel) Close() {
	bc.mu.Lock()
	if bc.closed {
		bc.mu.Unlock()
		return
	}
	bc.closed = true
	old := bc.notify
	bc.notify = make(chan struct{})
	bc.mu.Unlock()
	close(old)
}

// subscribe returns a cursor positioned at the channel's current head: a subscriber observes only
// messages published after it joins, never a backlog (spec.md §8 property 3).
func (bc *broadcastChannel) subscribe() uint64 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.head
}

// receive blocks until a message is available at or after next, the channel closes, or ctx is
// cancelled. On success it returns the message and the advanced cursor. If the subscriber fell behind
// the ring buffer, it returns a *LaggedError with the cursor already advanced past the gap; the caller
// must call receive again to obtain the next available message.
func (bc *broadcastChannel) receive(ctx context.Context, next uint64) (wire.Frame, uint64, error) {
	for {
		bc.mu.Lock()
		if bc.closed {
			bc.mu.Unlock()
			return wire.Frame{}, next, ErrClosed
		}

		if next < bc.head {
			if bc.head-next > uint64(bc.capacity) {
				lost := bc.head - next - uint64(bc.capacity)
				next = bc.head - uint64(bc.capacity)
				bc.mu.Unlock()
				return wire.Frame{}, next, &LaggedError{N: int(lost)}
			}

			msg := bc.buf[next%uint64(bc.capacity)]
			next++
			bc.mu.Unlock()
			return msg, next, nil
		}

		notify := bc.notify
		bc.mu.Unlock()

		select {
		case <-ctx.Done():
			return wire.Frame{}, next, ctx.Err()
		case <-notify:
		}
	}
}
