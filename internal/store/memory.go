package store

import (
	"context"
	"sync"

	"github.com/dkeye/Parley/internal/domain"
)

// MemoryStore is the in-process adapter used in dev mode and tests.
// Logs do not survive a restart.
type MemoryStore struct {
	mu   sync.Mutex
	logs map[domain.RoomName][]domain.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[domain.RoomName][]domain.Message)}
}

func (s *MemoryStore) Append(_ context.Context, msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[msg.Room] = append(s.logs[msg.Room], msg)
	return msg, nil
}

func (s *MemoryStore) History(_ context.Context, room domain.RoomName) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.logs[room]))
	copy(out, s.logs[room])
	return out, nil
}
