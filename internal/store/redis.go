package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Parley/internal/domain"
)

// RedisStore keeps each room's log in a Redis list, one JSON-encoded
// message per entry. RPUSH preserves append order, so LRANGE 0 -1
// yields the history oldest first.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(room domain.RoomName) string {
	return s.prefix + string(room)
}

func (s *RedisStore) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode message: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(msg.Room), b).Err(); err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

func (s *RedisStore) History(ctx context.Context, room domain.RoomName) ([]domain.Message, error) {
	vals, err := s.client.LRange(ctx, s.key(room), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	messages := make([]domain.Message, 0, len(vals))
	for _, v := range vals {
		var msg domain.Message
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
