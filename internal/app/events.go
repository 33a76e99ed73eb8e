package app

import (
	"encoding/json"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

// Server-to-client event envelopes, discriminated by "type".

const (
	EventHistory = "history"
	EventMessage = "message"
	EventSystem  = "system"
	EventTyping  = "typing"
)

type historyEvent struct {
	Type     string           `json:"type"`
	Room     domain.RoomName  `json:"room"`
	Messages []domain.Message `json:"messages"`
}

type messageEvent struct {
	Type string `json:"type"`
	domain.Message
}

type systemEvent struct {
	Type string          `json:"type"`
	Room domain.RoomName `json:"room"`
	Text string          `json:"text"`
}

type typingEvent struct {
	Type     string          `json:"type"`
	Room     domain.RoomName `json:"room"`
	Username string          `json:"username"`
}

func encode(v any) core.Frame {
	// Marshal of these envelopes cannot fail; they are plain structs.
	b, _ := json.Marshal(v)
	return core.Frame(b)
}
