package cache

import (
	"context"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// feedKey is the single cache key for the first page of the global feed.
// Every page-one request shares it, so within one TTL window all readers
// see the same rendered bytes.
const feedKey = "feed:index"

var feedTTL = 20 * time.Second

// SetFeedTTL overrides the feed cache lifetime. Called once at startup from
// configuration.
func SetFeedTTL(ttl time.Duration) {
	if ttl > 0 {
		feedTTL = ttl
	}
}

// FeedGet returns the cached feed page bytes, or nil on a miss. A Redis
// error is treated as a miss so the feed keeps serving from the database.
func FeedGet(ctx context.Context) []byte {
	if client == nil {
		return nil
	}
	data, err := client.Get(ctx, feedKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			middleware.Logger.WarnContext(ctx, "feed cache read failed", "error", err)
		}
		middleware.FeedCacheHits.WithLabelValues("miss").Inc()
		return nil
	}
	middleware.FeedCacheHits.WithLabelValues("hit").Inc()
	return data
}

// FeedSet stores the rendered feed page for the configured TTL. Failures are
// logged and swallowed.
func FeedSet(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	if err := client.Set(ctx, feedKey, data, feedTTL).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "feed cache write failed", "error", err)
	}
}

// FeedFlush drops the cached feed page immediately instead of waiting out
// the TTL.
func FeedFlush(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, feedKey).Err()
}
