package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/store"
)

var (
	ErrNotConnected = errors.New("no session for connection")
	ErrNotInRoom    = errors.New("not a member of the room")
)

// Orchestrator owns the connection lifecycle transitions: join, send,
// typing, leave, disconnect. Errors it returns are sender-facing; they
// are never broadcast.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomManager
	Store    store.MessageStore
	Policy   DeliveryPolicy

	mu      sync.Mutex
	commits map[domain.RoomName]*sync.Mutex
}

func NewOrchestrator(reg *Registry, rooms core.RoomManager, st store.MessageStore, policy DeliveryPolicy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Store:    st,
		Policy:   policy,
		commits:  make(map[domain.RoomName]*sync.Mutex),
	}
}

// commitLock serializes append-then-broadcast (and join's history read
// plus announcement) per room. A slow store write stalls only its own
// room. Lock entries are keyed by name and may outlive a reaped room;
// that keeps the ordering correct across reap/recreate cycles.
func (o *Orchestrator) commitLock(room domain.RoomName) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.commits[room]
	if !ok {
		l = &sync.Mutex{}
		o.commits[room] = l
	}
	return l
}

// Join registers the connection in the room, replays the full stored
// history privately to the joiner and announces the join to the rest.
// Repeated joins to the same room are a no-op.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, room domain.RoomName) error {
	if room == "" {
		return domain.ErrMissingRoom
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return ErrNotConnected
	}
	user, _ := o.Registry.Identity(sid)

	lock := o.commitLock(room)
	lock.Lock()
	defer lock.Unlock()

	if o.Registry.InRoom(sid, room) {
		return nil
	}

	// History is delivered before membership is granted; with the
	// commit lock held nothing can be broadcast to this room in
	// between, so the joiner sees history strictly before live events.
	history, err := o.Store.History(ctx, room)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if history == nil {
		history = []domain.Message{}
	}
	if err := sess.Signal().TrySend(encode(historyEvent{Type: EventHistory, Room: room, Messages: history})); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Str("sid", string(sid)).Msg("history delivery failed")
	}

	r := o.Rooms.GetOrCreate(room)
	r.AddMember(sid, sess)
	o.Registry.AddRoom(sid, room)

	o.fanout(r, sid, encode(systemEvent{Type: EventSystem, Room: room, Text: user.Username + " joined the room"}))
	log.Info().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(room)).Msg("joined")
	return nil
}

// Send validates the body, stamps the server timestamp, appends to the
// store and only then broadcasts. If the append fails nothing is
// broadcast and only the sender learns about it.
func (o *Orchestrator) Send(ctx context.Context, sid core.SessionID, room domain.RoomName, body string) error {
	user, ok := o.Registry.Identity(sid)
	if !ok {
		return ErrNotConnected
	}
	msg, err := domain.NewMessage(user.Username, body, room)
	if err != nil {
		return err
	}

	lock := o.commitLock(room)
	lock.Lock()
	defer lock.Unlock()

	committed, err := o.Store.Append(ctx, msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Str("room", string(room)).Msg("append failed, not broadcasting")
		return fmt.Errorf("append message: %w", err)
	}

	if r, ok := o.Rooms.Get(room); ok {
		o.fanout(r, "", encode(messageEvent{Type: EventMessage, Message: committed}))
	}
	return nil
}

// Typing emits an ephemeral notification to the room, excluding the
// sender. Never persisted, never retried.
func (o *Orchestrator) Typing(sid core.SessionID, room domain.RoomName) error {
	user, ok := o.Registry.Identity(sid)
	if !ok {
		return ErrNotConnected
	}
	if room == "" {
		return domain.ErrMissingRoom
	}
	if !o.Registry.InRoom(sid, room) {
		return ErrNotInRoom
	}
	if r, ok := o.Rooms.Get(room); ok {
		o.fanout(r, sid, encode(typingEvent{Type: EventTyping, Room: room, Username: user.Username}))
	}
	return nil
}

// Leave releases the membership and announces it to the remainder.
// Empty rooms are reclaimed.
func (o *Orchestrator) Leave(sid core.SessionID, room domain.RoomName) {
	lock := o.commitLock(room)
	lock.Lock()
	defer lock.Unlock()

	o.Registry.RemoveRoom(sid, room)
	r, ok := o.Rooms.Get(room)
	if !ok || !r.HasMember(sid) {
		return
	}
	r.RemoveMember(sid)

	if r.MemberCount() == 0 {
		o.Rooms.Reap(room)
		return
	}
	if user, ok := o.Registry.Identity(sid); ok {
		o.fanout(r, sid, encode(systemEvent{Type: EventSystem, Room: room, Text: user.Username + " left the room"}))
	}
}

// StopRoom force-closes a room regardless of occupancy: every member's
// registry binding to it is released and the room is withdrawn from the
// arena. Reached over the admin REST surface; reports whether the room
// existed.
func (o *Orchestrator) StopRoom(room domain.RoomName) bool {
	lock := o.commitLock(room)
	lock.Lock()
	defer lock.Unlock()

	r, ok := o.Rooms.Get(room)
	if !ok {
		return false
	}
	for _, m := range r.MembersSnapshot() {
		o.Registry.RemoveRoom(core.SessionID(m.ID), room)
	}
	o.Rooms.StopRoom(room)
	log.Info().Str("module", "app.orchestrator").Str("room", string(room)).Msg("room stopped")
	return true
}

// OnDisconnect is terminal: membership is released in every room the
// connection held, then the session is unbound. A reconnecting client
// is a brand-new connection.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	for _, room := range o.Registry.RoomsOf(sid) {
		o.Leave(sid, room)
	}
	o.Registry.Unbind(sid)
	log.Info().Str("module", "app.orchestrator").Str("sid", string(sid)).Msg("disconnected")
}

// fanout delivers the frame to the room's current member snapshot and
// applies the delivery policy to each member that could not be reached.
func (o *Orchestrator) fanout(r core.RoomService, exclude core.SessionID, frame core.Frame) {
	res := r.Broadcast(exclude, frame)
	if o.Policy == nil {
		return
	}
	room := r.Room().Name
	for _, sid := range res.Dropped {
		switch o.Policy.OnDeliveryFailure(r, sid) {
		case KickMember:
			r.RemoveMember(sid)
			o.Registry.RemoveRoom(sid, room)
			// Cancel tears down the connection's pumps; the read loop's
			// disconnect path then releases any remaining memberships.
			o.Registry.Cancel(sid)
			log.Warn().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(room)).Msg("kicked unreachable member")
		case DropEvent:
			log.Debug().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(room)).Msg("delivery dropped")
		}
	}
	if len(res.Dropped) > 0 && r.MemberCount() == 0 {
		o.Rooms.Reap(room)
	}
}
