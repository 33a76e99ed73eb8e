package domain

type RoomName string

// Room exists implicitly from the first join and carries no persisted
// identity of its own.
type Room struct {
	Name RoomName
}
