package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// FeedCacheHits counts feed cache lookups by outcome (hit, miss).
	FeedCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_feed_cache_lookups_total",
		Help: "Total feed cache lookups by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP metrics middleware.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
