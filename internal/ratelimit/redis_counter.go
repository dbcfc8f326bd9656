package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisCounter keeps one expiring key per window.
type RedisCounter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client, prefix: "ratelimit"}
}

func (c *RedisCounter) key(userID uuid.UUID, action Action, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.prefix, userID, action, windowStart.Unix())
}

func (c *RedisCounter) Increment(
	ctx context.Context,
	userID uuid.UUID,
	action Action,
	windowStart time.Time,
	window time.Duration,
) (int, error) {

	key := c.key(userID, action, windowStart)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		// outlive the window slightly so late readers still see it
		p.ExpireAt(ctx, key, windowStart.Add(window+time.Second))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

var _ Counter = (*RedisCounter)(nil)
