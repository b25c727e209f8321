package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock stays taken past the wait budget.
var ErrNotAcquired = errors.New("lock: not acquired")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a SET NX PX lock. The TTL bounds how long a crashed holder can
// block others.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Redis{client: client, ttl: ttl, retry: 25 * time.Millisecond, wait: ttl}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	k := r.key(key)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)
	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// best effort; the TTL cleans up if this fails
				_ = releaseScript.Run(context.Background(), r.client, []string{k}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}
}

func (r *Redis) key(k string) string {
	return "examhall:lock:" + k
}
