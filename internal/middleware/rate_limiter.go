package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
)

// Redis-backed fixed-window rate limiting. Counters live in Redis rather
// than a process-local map so limits hold across restarts and across every
// instance behind the load balancer, and expired windows clean themselves up
// via TTL instead of a purge goroutine.

// RateLimiter limits requests per client IP within the window.
func RateLimiter(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return limiter(rdb, "rl:api", limit, window, "too many requests, retry shortly")
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return limiter(rdb, "rl:login", 20, time.Minute, "too many login attempts, retry in 1 minute")
}

func limiter(rdb *redis.Client, prefix string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", prefix, c.ClientIP())
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis down must not take the API with it — let the request pass.
			log.Error().Err(err).Msg("rate limiter: redis unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			ttl, _ := rdb.TTL(ctx, key).Result()
			if ttl > 0 {
				c.Header("Retry-After", time.Now().Add(ttl).Format(time.RFC1123))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
