package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLeaseTTL bounds how long a crashed holder can block a key
	DefaultLeaseTTL = 30 * time.Second
	// DefaultPollInterval is the wait between acquisition attempts
	DefaultPollInterval = 50 * time.Millisecond

	keyPrefix = "voice:lock:"
)

// releaseScript deletes the lock only if it is still held by our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a Locker backed by SET NX leases, shared by every instance
// pointing at the same Redis.
type RedisLocker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
	log          *logrus.Entry
}

// NewRedisLocker connects to redisURL and verifies the connection.
func NewRedisLocker(ctx context.Context, redisURL string, log *logrus.Entry) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisLockerFromClient(client, DefaultLeaseTTL, log), nil
}

// NewRedisLockerFromClient wraps an existing client.
func NewRedisLockerFromClient(client *redis.Client, ttl time.Duration, log *logrus.Entry) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	if log == nil {
		log = logrus.WithField("component", "locking")
	}
	return &RedisLocker{client: client, ttl: ttl, pollInterval: DefaultPollInterval, log: log}
}

// Lock implements Locker. It polls until the lease is free or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	lockKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}

	return func() {
		// release on a fresh context so a cancelled request still frees the lease
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		released, err := releaseScript.Run(releaseCtx, r.client, []string{lockKey}, token).Int64()
		if err != nil {
			r.log.WithError(err).WithField("key", key).Warn("Failed to release lock")
			return
		}
		if released == 0 {
			r.log.WithField("key", key).Warn("Lock lease expired before release")
		}
	}, nil
}

// Close closes the Redis client.
func (r *RedisLocker) Close() error {
	return r.client.Close()
}
