package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyBody   = errors.New("empty message body")
	ErrMissingRoom = errors.New("missing room")
)

// Message is the wire shape of a single chat message. Once appended to
// the store the tuple is immutable.
type Message struct {
	Username  string   `json:"username"`
	Body      string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Room      RoomName `json:"room"`
}

// NewMessage stamps the server receipt time; client-supplied timestamps
// are never trusted. Blank bodies are rejected before anything is
// persisted or broadcast.
func NewMessage(username, body string, room RoomName) (Message, error) {
	if room == "" {
		return Message{}, ErrMissingRoom
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, ErrEmptyBody
	}
	return Message{
		Username:  username,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Room:      room,
	}, nil
}
