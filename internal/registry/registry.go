// Package registry implements the Connection Registry (spec.md §4.4): the in-memory fan-out hub
// that maps rooms and users to the live Stream Sessions subscribed to them. It holds no reference
// to Postgres or any domain concept of membership — callers decide who may join a room before
// calling JoinRoom; the registry itself only ever does bookkeeping and message delivery.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uncord-chat/uncord-server/internal/wire"
)

// room is one chat's broadcast channel plus the set of users currently subscribed to it.
type room struct {
	channel *broadcastChannel
	members map[uuid.UUID]struct{}
}

// directEndpoint is a single user's direct (out-of-room) channel, used for invitation pushes and
// any other per-user delivery that isn't scoped to a chat.
type directEndpoint struct {
	channel  *broadcastChannel
	username string
}

// Registry is the process-wide Connection Registry. Safe for concurrent use.
type Registry struct {
	log zerolog.Logger

	roomsMu sync.Mutex
	rooms   map[uuid.UUID]*room

	connMu      sync.RWMutex
	connections map[uuid.UUID]*directEndpoint
	usernames   map[string]uuid.UUID
}

// New constructs an empty Registry.
func New(log zerolog.Logger) *Registry {
	return &Registry{
		log:         log.With().Str("component", "registry").Logger(),
		rooms:       make(map[uuid.UUID]*room),
		connections: make(map[uuid.UUID]*directEndpoint),
		usernames:   make(map[string]uuid.UUID),
	}
}

// RegisterConnection records that userID (known publicly as username) is now connected, creating
// its direct channel if this is the user's first connection, and returns a Subscription over it.
// Calling this again for a userID that is already registered replaces the direct channel: the
// previous channel is closed, so a Subscription still reading it receives ErrClosed (spec.md §4.4
// register_connection replacement semantics).
func (r *Registry) RegisterConnection(userID uuid.UUID, username string) *Subscription {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if old, ok := r.connections[userID]; ok {
		old.channel.Close()
	}
	ep := &directEndpoint{channel: newBroadcastChannel(Capacity), username: username}
	r.connections[userID] = ep
	r.usernames[username] = userID

	r.log.Debug().Stringer("user_id", userID).Str("username", username).Msg("connection registered")
	return newSubscription(ep.channel)
}

// UnregisterConnection closes userID's direct channel, removes it from every room's member set, and
// forgets its username mapping. Idempotent: unregistering an already-unregistered user is a no-op
// (spec.md §8 property 4).
func (r *Registry) UnregisterConnection(userID uuid.UUID) {
	r.connMu.Lock()
	ep, ok := r.connections[userID]
	if ok {
		delete(r.connections, userID)
		if r.usernames[ep.username] == userID {
			delete(r.usernames, ep.username)
		}
	}
	r.connMu.Unlock()

	if ok {
		ep.channel.Close()
	}

	r.roomsMu.Lock()
	for id, rm := range r.rooms {
		if _, member := rm.members[userID]; member {
			delete(rm.members, userID)
			if len(rm.members) == 0 {
				rm.channel.Close()
				delete(r.rooms, id)
			}
		}
	}
	r.roomsMu.Unlock()

	r.log.Debug().Stringer("user_id", userID).Msg("connection unregistered")
}

// LookupOnline reports whether username currently has a registered connection, returning its
// user ID if so.
func (r *Registry) LookupOnline(username string) (uuid.UUID, bool) {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	id, ok := r.usernames[username]
	return id, ok
}

// SendDirect publishes msg to userID's direct channel. It is a no-op (not an error) if the user has
// no live connection, since invitations and status pushes are best-effort per spec.md §4.5.
func (r *Registry) SendDirect(userID uuid.UUID, msg wire.Frame) error {
	r.connMu.RLock()
	ep, ok := r.connections[userID]
	r.connMu.RUnlock()
	if !ok {
		return nil
	}
	ep.channel.Publish(msg)
	return nil
}

// JoinRoom adds userID to roomID's member set, creating the room's broadcast channel on first join,
// and returns a Subscription positioned at the channel's current head — the new subscriber observes
// nothing published before it joined (spec.md §8 property 3).
func (r *Registry) JoinRoom(roomID, userID uuid.UUID) *Subscription {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{channel: newBroadcastChannel(Capacity), members: make(map[uuid.UUID]struct{})}
		r.rooms[roomID] = rm
	}
	rm.members[userID] = struct{}{}

	r.log.Debug().Stringer("room_id", roomID).Stringer("user_id", userID).Msg("joined room")
	return newSubscription(rm.channel)
}

// SeedMember adds userID to roomID's member set if the room is currently active, returning whether
// it did. Unlike JoinRoom, it never creates a room: this is for opportunistically folding a newly
// accepted member into a Room that happens to be live, not for establishing membership on its own
// (spec.md §4.2 respond_to_invitation — the room is seeded "if active", never allocated for it).
func (r *Registry) SeedMember(roomID, userID uuid.UUID) bool {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	rm.members[userID] = struct{}{}
	return true
}

// LeaveRoom removes userID from roomID's member set, tearing the room down once it is empty.
// Idempotent: leaving a room the user isn't in, or a room that doesn't exist, is a no-op.
func (r *Registry) LeaveRoom(roomID, userID uuid.UUID) {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(rm.members, userID)
	if len(rm.members) == 0 {
		rm.channel.Close()
		delete(r.rooms, roomID)
	}
}

// BroadcastToRoom publishes msg to roomID's channel. Publishing to a room with no live members (or
// one that was never joined) is a silent no-op: the message is simply never read by anyone.
func (r *Registry) BroadcastToRoom(roomID uuid.UUID, msg wire.Frame) {
	r.roomsMu.Lock()
	rm, ok := r.rooms[roomID]
	r.roomsMu.Unlock()
	if !ok {
		return
	}
	rm.channel.Publish(msg)
}

// UpdateUserStatus is a convenience wrapper broadcasting a StatusFrame to roomID on userID's behalf.
func (r *Registry) UpdateUserStatus(roomID, userID uuid.UUID, status wire.UserStatus) {
	r.BroadcastToRoom(roomID, wire.NewStatusFrame(wire.StatusFrame{
		ChatID: roomID,
		UserID: userID,
		Status: status,
	}))
}

// RoomSize reports how many members roomID currently has, for diagnostics and tests.
func (r *Registry) RoomSize(roomID uuid.UUID) int {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	return len(rm.members)
}

// String implements fmt.Stringer for debug logging convenience.
func (r *Registry) String() string {
	r.roomsMu.Lock()
	nr := len(r.rooms)
	r.roomsMu.Unlock()
	r.connMu.RLock()
	nc := len(r.connections)
	r.connMu.RUnlock()
	return fmt.Sprintf("Registry(rooms=%d, connections=%d)", nr, nc)
}
