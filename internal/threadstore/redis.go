package threadstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/domain"
)

const bindingKeyPrefix = "thread:"

// Redis keeps bindings in a key-value cache with a 24h TTL, refreshed
// on every Put. Losing an expired binding only costs a new remote
// thread on the session's next turn.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Get(ctx context.Context, sessionID string) (string, error) {
	threadID, err := s.client.Get(ctx, bindingKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrBindingNotFound
		}
		return "", fmt.Errorf("get binding: %w", err)
	}
	return threadID, nil
}

func (s *Redis) Put(ctx context.Context, sessionID, threadID string) error {
	if err := s.client.Set(ctx, bindingKeyPrefix+sessionID, threadID, config.BindingTTL).Err(); err != nil {
		return fmt.Errorf("put binding: %w", err)
	}
	return nil
}
