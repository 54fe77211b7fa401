package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps one JSON snapshot per player.
// A zero ttl keeps keys forever; otherwise every Save refreshes the expiry.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) key(playerID string) string {
	return fmt.Sprintf("session:%s", playerID)
}

func (s *RedisSessionStore) Save(ctx context.Context, playerID string, snap SessionSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(playerID), b, s.ttl).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, playerID string) (SessionSnapshot, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionSnapshot{}, false, nil
	}
	if err != nil {
		return SessionSnapshot{}, false, err
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("decode session %s: %w", playerID, err)
	}
	return snap, true, nil
}
