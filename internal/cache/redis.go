// Package cache provides Redis connection management and the feed page cache.
package cache

import (
	"context"
	"log"
	"net"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// metricsHook counts Redis command errors so cache degradation is visible
// without log spelunking.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && err != redis.Nil {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && err != redis.Nil {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to Redis at the given URL or host:port address. The
// application runs without Redis; a failed connection disables caching
// rather than aborting startup.
func InitRedis(redisURL string) error {
	var opts *redis.Options

	if parsed, err := redis.ParseURL(redisURL); err == nil {
		opts = parsed
	} else if _, _, splitErr := net.SplitHostPort(redisURL); splitErr == nil {
		opts = &redis.Options{Addr: redisURL}
	} else {
		return err
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Redis unavailable at %s, caching disabled: %v", redisURL, err)
		client = nil
		return err
	}

	client = c
	return nil
}

// GetClient returns the shared Redis client, or nil when caching is disabled.
func GetClient() *redis.Client {
	return client
}

// SetClient swaps the shared Redis client. Tests use it to point the cache at
// an in-process server.
func SetClient(c *redis.Client) {
	client = c
}

// CloseRedis closes the shared client if one is connected.
func CloseRedis() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
