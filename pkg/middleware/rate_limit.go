package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
	"github.com/redis/go-redis/v9"
)

const tokenBucketScriptName = "rate_limit_token_bucket"

// KEYS[1] bucket key. ARGV: rate per second, burst, now in seconds.
const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = math.max(0, now - last_update)
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, 60)
return {allowed, tostring(tokens)}
`

// ScriptRunner runs a cached Lua script. pkg/redis.Client satisfies it.
type ScriptRunner interface {
	EvalWithFallback(ctx context.Context, name, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis             ScriptRunner
	RequestsPerSecond int
	BurstSize         int
	KeyPrefix         string
}

// RateLimiter is a Redis token bucket shared by all API instances
type RateLimiter struct {
	config RateLimitConfig
}

// NewRateLimiter creates a limiter, applying defaults for zero values
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	if config.BurstSize <= 0 {
		config.BurstSize = config.RequestsPerSecond * 2
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit:"
	}
	return &RateLimiter{config: config}
}

// Allow takes one token from key's bucket
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, float64, error) {
	now := float64(time.Now().UnixNano()) / 1e9

	values, err := rl.config.Redis.EvalWithFallback(ctx, tokenBucketScriptName, tokenBucketScript,
		[]string{rl.config.KeyPrefix + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstSize,
		now,
	).Slice()
	if err != nil {
		return false, 0, err
	}
	if len(values) < 2 {
		return false, 0, fmt.Errorf("unexpected rate limit result length: %d", len(values))
	}

	allowed := toFloat(values[0]) == 1
	return allowed, toFloat(values[1]), nil
}

// Middleware limits per authenticated user, falling back to client IP.
// Redis errors fail open.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := GetUserID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}

		allowed, remaining, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.BurstSize))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests("Rate limit exceeded, please retry shortly"))
			return
		}
		c.Next()
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
