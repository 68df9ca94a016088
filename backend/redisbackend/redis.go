package redisbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/authstate/backend"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport or server error.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultScanCount = 256

// Backend is a Redis-backed [backend.Backend].
type Backend struct {
	redis      redis.UniversalClient
	defaultTTL time.Duration
	scanCount  int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithDefaultTTL sets the retention applied when Set is called with ttl <= 0.
// Zero (the default) stores such keys without expiry.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.defaultTTL = ttl
	}
}

// WithScanCount sets the COUNT hint passed to SCAN.
func WithScanCount(n int64) Option {
	return func(b *Backend) {
		if n > 0 {
			b.scanCount = n
		}
	}
}

// New creates a Backend over client. The caller owns the client's lifecycle.
func New(client redis.UniversalClient, opts ...Option) *Backend {
	b := &Backend{
		redis:     client,
		scanCount: defaultScanCount,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.defaultTTL
	}
	if err := b.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (b *Backend) Del(ctx context.Context, key string) error {
	if err := b.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Keys scans every master of a cluster and every shard of a ring; any other
// client is scanned as a single server.
func (b *Backend) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(prefix) + "*"

	var (
		mu   sync.Mutex
		keys []string
	)
	collect := func(ctx context.Context, node *redis.Client) error {
		found, err := scanAll(ctx, node, match, b.scanCount)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, found...)
		mu.Unlock()
		return nil
	}

	var err error
	switch client := b.redis.(type) {
	case *redis.ClusterClient:
		err = client.ForEachMaster(ctx, collect)
	case *redis.Ring:
		err = client.ForEachShard(ctx, collect)
	default:
		keys, err = scanAll(ctx, b.redis, match, b.scanCount)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return keys, nil
}

func scanAll(ctx context.Context, client redis.Cmdable, match string, count int64) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)

	var cursor uint64
	for {
		batch, next, err := client.Scan(ctx, cursor, match, count).Result()
		if err != nil {
			return nil, err
		}
		// SCAN may return a key more than once across iterations.
		for _, k := range batch {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var _ backend.Backend = (*Backend)(nil)
