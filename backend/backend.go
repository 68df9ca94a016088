package backend

import (
	"context"
	"time"
)

// Backend is a string key/value store with per-key retention.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Backend interface {
	// Get returns (value, true, nil) on hit and ("", false, nil) on miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. A ttl <= 0 applies the backend's default
	// retention, which may be "never expires".
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Keys returns every live key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
