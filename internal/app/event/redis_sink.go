package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors every envelope onto a Redis channel, one channel per
// game, so other instances and out-of-process consumers see the same stream
// the in-process hub does.
type RedisSink struct {
	client *redis.Client
	prefix string
}

func NewRedisSink(client *redis.Client, channelPrefix string) *RedisSink {
	return &RedisSink{client: client, prefix: channelPrefix}
}

func (s *RedisSink) Deliver(ctx context.Context, gameID string, payload []byte) error {
	if err := s.client.Publish(ctx, s.prefix+gameID, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
