package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	repo "app/internal/repository"

	"github.com/redis/go-redis/v9"
)

// セッションID→カートIDの対応をRedisに持つ
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (int64, error) {
	v, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	cartID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("broken session value: %w", err)
	}
	return cartID, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sessionID string, cartID int64) error {
	key := sessionKey(sessionID)
	if err := s.client.Set(ctx, key, strconv.FormatInt(cartID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart_session:%s", sessionID)
}
