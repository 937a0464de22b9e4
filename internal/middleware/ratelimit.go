package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	redispkg "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimitOptions struct {
	Max    int
	Window time.Duration
}

// RateLimit allows opts.Max requests per client IP and route within opts.Window.
// Admins are never limited. Redis errors let the request through.
func RateLimit(rdb *redispkg.Client, opts RateLimitOptions, log *zap.Logger) gin.HandlerFunc {
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	return func(c *gin.Context) {
		if opts.Max <= 0 || !rdb.Enabled() || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := redispkg.Key("rate-limit", ip, c.Request.Method+" "+route)

		count, ttl, err := rdb.Incr(c.Request.Context(), key, opts.Window)
		if err != nil {
			if log != nil {
				log.Warn("rate limit check failed", zap.Error(err))
			}
			c.Next()
			return
		}

		remaining := opts.Max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(opts.Max) {
			retry := int(math.Ceil(ttl.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.TooManyRequests(c, fmt.Sprintf("Too many requests, please try again in %d seconds", retry))
			return
		}

		c.Next()
	}
}
