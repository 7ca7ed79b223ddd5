package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultAddr     = "localhost:6379"
	connectAttempts = 3
	retryBackoff    = 500 * time.Millisecond
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
	waitRetry     = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

// Connect opens a Redis client for addr, which is either host:port or a
// redis:// / rediss:// URL. Redis often starts alongside the service, so
// PING is retried a few times with a growing pause before giving up.
func Connect(ctx context.Context, addr string, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := options(addr)
	if err != nil {
		return nil, err
	}

	client := newRedisClient(opts)
	for attempt := 1; ; attempt++ {
		err = pingRedis(ctx, client)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s after %d attempts: %w", opts.Addr, attempt, err)
		}
		logger.Warn("redis not ready, retrying",
			zap.String("addr", opts.Addr),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if werr := waitRetry(ctx, time.Duration(attempt)*retryBackoff); werr != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, werr)
		}
	}

	logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}

func options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = defaultAddr
	}
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := parseRedisURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
