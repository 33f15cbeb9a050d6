package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis publishes each batch to a Redis Pub/Sub channel.
type Redis struct {
	client  redis.UniversalClient
	channel string
}

// NewRedis creates a Redis publisher on an existing client.
func NewRedis(client redis.UniversalClient, channel string) (*Redis, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	return &Redis{client: client, channel: channel}, nil
}

// NewRedisFromURL parses a redis:// or rediss:// url and creates a client for it.
// The client is owned by the returned publisher and released by Close.
func NewRedisFromURL(rawURL, channel string) (*Redis, error) {
	if rawURL == "" {
		return nil, ErrEmptyURL
	}
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, rawURL)
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), channel)
}

// Publish issues PUBLISH channel batch.
func (r *Redis) Publish(ctx context.Context, batch []byte) error {
	if err := r.client.Publish(ctx, r.channel, batch).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", r.channel, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
