package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window limiter shared by every server instance that
// points at the same Redis. Redis failures fail open.
type RedisLimiter struct {
	client    redis.Scripter
	script    *redis.Script
	perMinute map[RateLimitTier]int
	prefix    string
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewRedisLimiter(client redis.Scripter, perMinute map[RateLimitTier]int, logger zerolog.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:    client,
		script:    redis.NewScript(rateLimitScript),
		perMinute: perMinute,
		prefix:    "internhub:ratelimit",
		timeout:   250 * time.Millisecond,
		logger:    logger.With().Str("component", "ratelimit").Logger(),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, tier RateLimitTier, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	limit := l.perMinute[tier]
	if limit <= 0 || key == "" {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := l.prefix + ":" + string(tier) + ":" + key
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, rateLimitWindow.Milliseconds(), limit).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("tier", string(tier)).Msg("rate limit check failed, allowing request")
		return true
	}
	return allowed == 1
}
