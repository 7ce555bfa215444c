// Package lock provides cross-process run exclusion for deployments where
// several bot processes share one publishing channel.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned by Release when this locker does not own the lock
var ErrNotHeld = errors.New("lock not held")

// Locker is a mutual-exclusion lock that may span processes
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// releaseScript deletes the key only when it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript refreshes the TTL only when the key still carries our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// RedisLocker holds a single lock key in Redis. The TTL bounds how long a
// crashed holder can block other processes; while the lock is held it is
// refreshed every third of the TTL, so long runs keep it.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	extend func(ctx context.Context, token string) (bool, error)

	mu    sync.Mutex
	token string
	stop  chan struct{}
}

// NewRedisLocker creates a new Redis-backed locker and checks connectivity
func NewRedisLocker(cfg RedisConfig) *RedisLocker {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis at %s: %v. Runs will not start until it is reachable.", cfg.Addr, err)
	}

	return newRedisLocker(rdb, cfg.Key, cfg.TTL)
}

func newRedisLocker(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	l := &RedisLocker{client: client, key: key, ttl: ttl}
	l.extend = func(ctx context.Context, token string) (bool, error) {
		n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		return n == 1, err
	}
	return l
}

// Acquire tries to take the lock without waiting
func (l *RedisLocker) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token != "" {
		return false, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return false, nil
	}
	l.token = token
	if l.ttl > 0 {
		l.stop = make(chan struct{})
		go l.keepAlive(token, l.stop)
	}
	return true, nil
}

func (l *RedisLocker) keepAlive(token string, stop <-chan struct{}) {
	interval := l.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			ok, err := l.extend(ctx, token)
			cancel()
			if err != nil {
				log.Printf("⚠️  Failed to refresh run lock %s: %v", l.key, err)
				continue
			}
			if !ok {
				log.Printf("⚠️  Run lock %s was lost before release", l.key)
				return
			}
		}
	}
}

// Release gives the lock back if this locker still owns it
func (l *RedisLocker) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.token == "" {
		return ErrNotHeld
	}
	token := l.token
	l.token = ""
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}

	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
	if err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	if n == 0 {
		// expired and possibly taken by another process
		return ErrNotHeld
	}
	return nil
}

// Close closes the underlying Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
