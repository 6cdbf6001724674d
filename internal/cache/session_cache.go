package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"docquery/internal/model"
)

// SessionListCache keeps a user's chat-session list in Redis for a short
// TTL. Saves and deletes invalidate it; retrieval results and answers are
// never cached anywhere.
type SessionListCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewSessionListCache(client *redisv9.Client, ttl time.Duration) *SessionListCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SessionListCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SessionListCache) Get(ctx context.Context, userID string) ([]model.ChatSession, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session list failed: %w", err)
	}

	var sessions []model.ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached session list failed: %w", err)
	}
	return sessions, true, nil
}

func (c *SessionListCache) Set(ctx context.Context, userID string, sessions []model.ChatSession) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal session list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session list failed: %w", err)
	}
	return nil
}

func (c *SessionListCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete session list failed: %w", err)
	}
	return nil
}

func (c *SessionListCache) key(userID string) string {
	return "chat:sessions:" + userID
}
