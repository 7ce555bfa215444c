package deduplication

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"contentbot/types"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCapacity  = 10000
	defaultErrorRate = 0.001
	// DefaultTTL keeps a used topic out of rotation for a month after the last insert
	DefaultTTL = 30 * 24 * time.Hour
)

// BloomConfig configures the RedisBloom connection and key
type BloomConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
	// Capacity and ErrorRate size the filter on BF.RESERVE
	Capacity  int
	ErrorRate float64
}

// RedisBloom remembers which topics earlier runs used, in a RedisBloom filter
type RedisBloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisBloom creates a RedisBloom wrapper and verifies connectivity
func NewRedisBloom(ctx context.Context, cfg BloomConfig) (*RedisBloom, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = defaultErrorRate
	}

	// BF.ADD auto-creates the filter with server defaults, so a failed
	// reserve is not fatal.
	exists, err := client.Exists(pingCtx, cfg.Key).Result()
	if err == nil && exists == 0 {
		client.Do(pingCtx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity)
	}

	return newRedisBloom(client, cfg.Key, cfg.TTL), nil
}

func newRedisBloom(client *redis.Client, key string, ttl time.Duration) *RedisBloom {
	return &RedisBloom{client: client, key: key, ttl: ttl}
}

// Close closes the underlying Redis client
func (r *RedisBloom) Close() error {
	return r.client.Close()
}

// Exists reports whether hash may be in the filter
func (r *RedisBloom) Exists(ctx context.Context, hash string) (bool, error) {
	res, err := r.client.Do(ctx, "BF.EXISTS", r.key, hash).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case bool:
		return v, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add inserts hash and slides the key's expiry forward
func (r *RedisBloom) Add(ctx context.Context, hash string) error {
	if err := r.client.Do(ctx, "BF.ADD", r.key, hash).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, r.key, r.ttl).Err()
}

// Seen reports whether the topic was used by an earlier run
func (r *RedisBloom) Seen(ctx context.Context, topic *types.Topic) (bool, error) {
	return r.Exists(ctx, TopicHash(topic))
}

// Remember records the topic as used
func (r *RedisBloom) Remember(ctx context.Context, topic *types.Topic) error {
	return r.Add(ctx, TopicHash(topic))
}

// TopicHash returns sha256(normalizedURL + "|" + normalizedTitle) in hex.
// Tracking parameters and fragments do not change the hash.
func TopicHash(topic *types.Topic) string {
	combined := normalizeURL(topic.Link) + "|" + normalizeTitle(topic.Title)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
