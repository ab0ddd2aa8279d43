package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLimited indicates the attempt budget for the window is spent.
	ErrLimited = errors.New("rate limited")
	// ErrUnknownAction indicates no policy is configured for the action.
	ErrUnknownAction = errors.New("unknown rate limit action")
	// ErrUnavailable indicates the counter backend is unreachable.
	ErrUnavailable = errors.New("rate limit backend unavailable")
)

// checkAndRecordLua atomically increments the window counter, arms the TTL
// on the first hit, and reports the retry-after when over budget.
//
// KEYS[1] = counter key
// ARGV[1] = max attempts (int string)
// ARGV[2] = window duration in milliseconds (int string)
//
// Returns {1, 0} when admitted, {0, retryAfterMs} when rejected.
var checkAndRecordLua = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
if count > tonumber(ARGV[1]) then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
    ttl = tonumber(ARGV[2])
  end
  return {0, ttl}
end
return {1, 0}
`)

// Policy is the fixed attempt budget for one action.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Limiter enforces per-identifier, per-action attempt budgets.
type Limiter struct {
	redis    redis.UniversalClient
	prefix   string
	policies map[string]Policy
}

// New creates a limiter with the given action policy table.
func New(redisClient redis.UniversalClient, prefix string, policies map[string]Policy) *Limiter {
	if prefix == "" {
		prefix = "arl"
	}
	return &Limiter{
		redis:    redisClient,
		prefix:   prefix,
		policies: policies,
	}
}

func (l *Limiter) key(identifier, action string) string {
	return l.prefix + ":" + action + ":" + identifier
}

// CheckAndRecord admits the attempt and counts it, or rejects it with the
// time until the window resets. The counter write and ceiling comparison are
// a single atomic step, so exactly MaxAttempts calls per window are admitted
// regardless of concurrency.
func (l *Limiter) CheckAndRecord(ctx context.Context, identifier, action string) (time.Duration, error) {
	policy, ok := l.policies[action]
	if !ok {
		return 0, ErrUnknownAction
	}

	result, err := checkAndRecordLua.Run(ctx, l.redis,
		[]string{l.key(identifier, action)},
		policy.MaxAttempts,
		policy.Window.Milliseconds(),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, fmt.Errorf("%w: unexpected lua result shape", ErrUnavailable)
	}
	admitted, ok1 := values[0].(int64)
	retryMs, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%w: unexpected lua result type", ErrUnavailable)
	}

	if admitted == 1 {
		return 0, nil
	}
	return time.Duration(retryMs) * time.Millisecond, ErrLimited
}

// Reset clears the counter for the identifier+action pair. Used after a
// successful authentication so earlier failures stop counting.
func (l *Limiter) Reset(ctx context.Context, identifier, action string) error {
	if err := l.redis.Del(ctx, l.key(identifier, action)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Attempts returns the current counter value. Missing keys return zero.
func (l *Limiter) Attempts(ctx context.Context, identifier, action string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(identifier, action)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}
