package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"regenx/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "regenx:session:"

// RedisStore keeps sessions in Redis with a TTL per key, so several
// server instances can share logins.
type RedisStore struct {
	rc  redis.UniversalClient
	ttl time.Duration
}

func NewRedisStore(rc redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rc: rc, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func redisKey(sid string) string { return redisKeyPrefix + sid }

func (s *RedisStore) Set(ctx context.Context, sid string, id models.Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.rc.Set(ctx, redisKey(sid), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sid string) (*models.Identity, error) {
	b, err := s.rc.Get(ctx, redisKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var id models.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	return &id, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := s.rc.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// NewRedisClient builds a client with the timeouts used across the app.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
