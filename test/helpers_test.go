//go:build integration
// +build integration

package test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/backend"
	"github.com/MrEthical07/authstate/backend/redisbackend"
	"github.com/MrEthical07/authstate/backend/sqlitebackend"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// backendMode describes one backend the integration suite runs against.
type backendMode struct {
	name  string
	setup func(t *testing.T) (backend.Backend, func())
}

// backendModes returns every backend available in this environment.
// Memory, SQLite and miniredis are always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
// Redis cluster is used when REDIS_CLUSTER_ADDRS is set (comma-separated).
func backendModes(t *testing.T) []backendMode {
	t.Helper()
	modes := []backendMode{
		{
			name: "memory",
			setup: func(t *testing.T) (backend.Backend, func()) {
				return backend.NewMemoryBackend(), func() {}
			},
		},
		{
			name: "sqlite",
			setup: func(t *testing.T) (backend.Backend, func()) {
				t.Helper()
				db, err := sqlitebackend.Open(filepath.Join(t.TempDir(), "authstate.db"))
				if err != nil {
					t.Fatalf("sqlite: %v", err)
				}
				return db, func() { _ = db.Close() }
			},
		},
		{
			name: "miniredis",
			setup: func(t *testing.T) (backend.Backend, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return redisbackend.New(rdb), func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, backendMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (backend.Backend, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				rdb.FlushDB(context.Background())
				return redisbackend.New(rdb), func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, backendMode{
			name: "cluster",
			setup: func(t *testing.T) (backend.Backend, func()) {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return redisbackend.New(rdb), func() { _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func newManager(t *testing.T, be backend.Backend) *authstate.Manager {
	t.Helper()
	mgr, err := authstate.New().
		WithBackend(be).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return mgr
}
