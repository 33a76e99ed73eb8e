//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Package store holds the append/read contract for a room's ordered
// message log and its adapters. Append must complete before the
// corresponding broadcast is issued; callers own that ordering.
package store

import (
	"context"

	"github.com/dkeye/Parley/internal/domain"
)

type MessageStore interface {
	// Append commits msg to the room's log and returns the committed
	// message. On error nothing was recorded.
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)

	// History returns every message ever appended for the room,
	// oldest first. No pagination.
	History(ctx context.Context, room domain.RoomName) ([]domain.Message, error)
}
