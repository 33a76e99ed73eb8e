package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Parley/internal/domain"
)

func TestMemoryStore_AppendOrderPreserved(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		msg, err := domain.NewMessage("Alice", body, "lobby")
		req.NoError(err)
		_, err = s.Append(ctx, msg)
		req.NoError(err)
	}

	history, err := s.History(ctx, "lobby")
	req.NoError(err)
	req.Len(history, 3)
	req.Equal("first", history[0].Body)
	req.Equal("second", history[1].Body)
	req.Equal("third", history[2].Body)
}

func TestMemoryStore_RoomsIsolated(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	msg, err := domain.NewMessage("Alice", "hello", "lobby")
	req.NoError(err)
	_, err = s.Append(ctx, msg)
	req.NoError(err)

	other, err := s.History(ctx, "dev")
	req.NoError(err)
	req.Empty(other)
}

func TestMemoryStore_HistoryReturnsCopy(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	msg, err := domain.NewMessage("Alice", "hello", "lobby")
	req.NoError(err)
	_, err = s.Append(ctx, msg)
	req.NoError(err)

	first, err := s.History(ctx, "lobby")
	req.NoError(err)
	first[0].Body = "mutated"

	second, err := s.History(ctx, "lobby")
	req.NoError(err)
	req.Equal("hello", second[0].Body)
}
