package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessage_StampsServerTime(t *testing.T) {
	req := require.New(t)

	msg, err := NewMessage("Alice", "hello", "lobby")
	req.NoError(err)
	req.Equal("Alice", msg.Username)
	req.Equal("hello", msg.Body)
	req.Equal(RoomName("lobby"), msg.Room)

	ts, err := time.Parse(time.RFC3339, msg.Timestamp)
	req.NoError(err)
	req.WithinDuration(time.Now().UTC(), ts, 5*time.Second)
}

func TestNewMessage_TrimsBody(t *testing.T) {
	req := require.New(t)

	msg, err := NewMessage("Alice", "  hi there \n", "lobby")
	req.NoError(err)
	req.Equal("hi there", msg.Body)
}

func TestNewMessage_RejectsBlankBody(t *testing.T) {
	req := require.New(t)

	for _, body := range []string{"", "   ", "\t\n "} {
		_, err := NewMessage("Alice", body, "lobby")
		req.ErrorIs(err, ErrEmptyBody)
	}
}

func TestNewMessage_RejectsMissingRoom(t *testing.T) {
	req := require.New(t)

	_, err := NewMessage("Alice", "hello", "")
	req.ErrorIs(err, ErrMissingRoom)
}

func TestResolveUsername(t *testing.T) {
	req := require.New(t)

	req.Equal("Alice", ResolveUsername("Alice"))
	req.Equal("Alice", ResolveUsername("  Alice  "))
	req.Equal(DefaultUsername, ResolveUsername(""))
	req.Equal(DefaultUsername, ResolveUsername("   "))

	long := strings.Repeat("x", MaxUsernameLen+10)
	req.Len(ResolveUsername(long), MaxUsernameLen)
}
