package app

import "github.com/dkeye/Parley/internal/core"

type DeliveryAction int

const (
	// DropEvent logs the failed delivery and moves on.
	DropEvent DeliveryAction = iota
	// KickMember removes the unreachable member from the room.
	KickMember
)

// DeliveryPolicy decides what to do about a member that could not be
// delivered to during a fanout. The fanout itself already completed for
// everyone else.
type DeliveryPolicy interface {
	OnDeliveryFailure(room core.RoomService, sid core.SessionID) DeliveryAction
}

// DropPolicy is the default: a failed delivery is this one member's
// loss, never an error of the broadcast as a whole.
type DropPolicy struct{}

func (DropPolicy) OnDeliveryFailure(core.RoomService, core.SessionID) DeliveryAction {
	return DropEvent
}

// KickPolicy evicts members whose transport stopped accepting frames.
type KickPolicy struct{}

func (KickPolicy) OnDeliveryFailure(core.RoomService, core.SessionID) DeliveryAction {
	return KickMember
}
