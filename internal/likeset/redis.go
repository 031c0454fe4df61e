package likeset

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each visitor's set as a Redis set under
// "likedPosts:<visitorID>".
type Redis struct {
	client *redis.Client
}

// NewRedis connects using a redis:// URL.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Redis{client: redis.NewClient(opts)}, nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(visitorID string) string {
	return Namespace + ":" + visitorID
}

func (r *Redis) Contains(ctx context.Context, visitorID, articleKey string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, key(visitorID), articleKey).Result()
	if err != nil {
		return false, fmt.Errorf("like-set lookup: %w", err)
	}

	return ok, nil
}

func (r *Redis) Add(ctx context.Context, visitorID, articleKey string) error {
	if err := r.client.SAdd(ctx, key(visitorID), articleKey).Err(); err != nil {
		return fmt.Errorf("like-set add: %w", err)
	}

	return nil
}

// Ping checks connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
