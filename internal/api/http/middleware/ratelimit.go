package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/ivoka/taskvote-backend/internal/auth"
)

const rateLimitKeyPrefix = "votes:rl:" // per-user vote window: votes:rl:{user_id}

// RateLimiter caps vote-cast requests per user per minute. With a Redis
// client the window is shared across instances; without one it degrades to
// an in-process token bucket per user.
type RateLimiter struct {
	client    *redis.Client
	perMinute int

	mu      sync.Mutex
	buckets map[int64]*rate.Limiter
}

func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		client:    client,
		perMinute: perMinute,
		buckets:   make(map[int64]*rate.Limiter),
	}
}

// Limit is the gin middleware. It runs after RequireUser, so the current
// user is always resolved here.
func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}

		u := auth.FromContext(c)
		if u == nil {
			c.Next()
			return
		}

		allowed, err := l.allow(c, u.ID)
		if err != nil {
			// The limiter is protective, not load-bearing; on Redis failure
			// the request proceeds.
			slog.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many vote requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(c *gin.Context, userID int64) (bool, error) {
	if l.client == nil {
		return l.bucket(userID).Allow(), nil
	}

	key := fmt.Sprintf("%s%d", rateLimitKeyPrefix, userID)
	ctx := c.Request.Context()

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	// The TTL is set only on the first hit of a window; refreshing it on
	// every increment would keep a busy user's window open forever.
	if n == 1 {
		if err := l.client.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(l.perMinute), nil
}

func (l *RateLimiter) bucket(userID int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[userID]
	if !ok {
		b = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.buckets[userID] = b
	}
	return b
}
