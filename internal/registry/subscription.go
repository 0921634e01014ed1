package registry

import (
	"context"

	"github.com/uncord-chat/uncord-server/internal/wire"
)

// Subscription is a detached receiver handle yielding messages published on a Room's broadcast
// channel or a user's direct channel. It holds no reference back to the Room or DirectEndpoint it
// came from — only the channel itself — so a Stream Session can keep receiving from a Subscription
// even after the registry has moved on, until the channel is closed (spec.md §9 "Cyclic state").
type Subscription struct {
	channel *broadcastChannel
	next    uint64
}

func newSubscription(ch *broadcastChannel) *Subscription {
	return &Subscription{channel: ch, next: ch.subscribe()}
}

// Receive blocks until the next message is available, the channel is closed (ErrClosed), or ctx is
// cancelled. A *LaggedError indicates the subscriber fell behind; the cursor has already been
// advanced, so the caller should log the loss and call Receive again (spec.md §4.5 outbound loop).
func (s *Subscription) Receive(ctx context.Context) (wire.Frame, error) {
	msg, next, err := s.channel.receive(ctx, s.next)
	s.next = next
	return msg, err
}
