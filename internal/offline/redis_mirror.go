package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisMirror keeps mirrors in Redis, for clients that share a cache
type RedisMirror struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisMirror connects to redisURL; keys are namespaced by project
func NewRedisMirror(redisURL, projectID string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisMirror{
		rdb:    redis.NewClient(opts),
		prefix: "learnhub:" + projectID + ":",
	}, nil
}

// Get implements Mirror
func (m *RedisMirror) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := m.rdb.Get(ctx, m.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put implements Mirror
func (m *RedisMirror) Put(ctx context.Context, key string, value []byte) error {
	return m.rdb.Set(ctx, m.prefix+key, value, 0).Err()
}

// Close closes the connection pool
func (m *RedisMirror) Close() error {
	return m.rdb.Close()
}
