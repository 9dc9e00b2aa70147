package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client embeds a go-redis client so callers get the full command surface.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient dials Redis and pings it before handing back the client.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("connected to redis", zap.String("addr", addr))
	return &Client{Client: rdb, logger: logger}, nil
}
