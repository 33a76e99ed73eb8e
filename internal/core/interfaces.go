package core

import "github.com/dkeye/Parley/internal/domain"

// Frame is an encoded wire event.
type Frame []byte

type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds the resolved identity and its transport endpoint.
// The identity is fixed at handshake time and never changes afterwards.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.User
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	HasMember(sid SessionID) bool
	MembersSnapshot() []MemberDTO

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID)

	// Broadcast delivers data to every member except exclude (empty
	// exclude means everyone). Delivery is fire-and-forget per member.
	Broadcast(exclude SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(name domain.RoomName) RoomService
	Get(name domain.RoomName) (RoomService, bool)
	List() []RoomInfo

	StopRoom(name domain.RoomName)
	// Reap removes the room only if its member set is empty.
	Reap(name domain.RoomName) bool
}
