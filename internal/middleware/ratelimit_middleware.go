package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
}

// RateLimit is a fixed-window limiter keyed by client IP and stored in
// Redis. Redis errors let the request through.
func RateLimit(client *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		ctx := c.Request.Context()
		key := fmt.Sprintf("%s:%s", cfg.KeyPrefix, c.ClientIP())

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Error("Failed to increment rate limit counter", err, map[string]interface{}{
				"key": key,
			})
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, cfg.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))

		if count > int64(cfg.RequestsPerWindow) {
			ttl, err := client.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				ttl = cfg.Window
			}

			log.Warn("Rate limit exceeded", map[string]interface{}{
				"key":   key,
				"count": count,
				"limit": cfg.RequestsPerWindow,
			})
			metrics.RateLimitedTotal.WithLabelValues(cfg.KeyPrefix).Inc()

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.RateLimited, "Too many requests, please try again later")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.RequestsPerWindow-int(count)))
		c.Next()
	}
}
