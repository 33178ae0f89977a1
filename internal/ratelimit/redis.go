// Package ratelimit throttles login attempts per client with a fixed window
// counter kept in Redis.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const windowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const callTimeout = 250 * time.Millisecond

// Limiter allows at most limit hits per key within window. A nil Limiter
// allows everything, and so does a Redis failure.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
}

// New returns nil when client is nil or limit is not positive.
func New(client *redis.Client, limit int, window time.Duration, prefix string) *Limiter {
	if client == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(windowScript),
	}
}

func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || key == "" {
		return true
	}
	if l.prefix != "" {
		key = l.prefix + ":" + key
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, l.limit).Int64()
	if err != nil {
		slog.Warn("rate limit check failed, allowing", "key", key, "err", err)
		return true
	}
	return allowed == 1
}
