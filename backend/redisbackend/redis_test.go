package redisbackend

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBackendTest(t *testing.T, opts ...Option) (*Backend, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, opts...), mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestGetMissIsNotAnError(t *testing.T) {
	b, _, done := newRedisBackendTest(t)
	defer done()

	v, ok, err := b.Get(context.Background(), "missing")
	if err != nil || ok || v != "" {
		t.Fatalf("expected clean miss, got %q %v %v", v, ok, err)
	}
}

func TestSetGetDel(t *testing.T) {
	b, mr, done := newRedisBackendTest(t)
	defer done()
	ctx := context.Background()

	if err := b.Set(ctx, "as:s:creds", `{"a":1}`, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := b.Get(ctx, "as:s:creds")
	if err != nil || !ok || v != `{"a":1}` {
		t.Fatalf("expected hit, got %q %v %v", v, ok, err)
	}
	if ttl := mr.TTL("as:s:creds"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	if err := b.Del(ctx, "as:s:creds"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if err := b.Del(ctx, "as:s:creds"); err != nil {
		t.Fatalf("second del: %v", err)
	}
	if mr.Exists("as:s:creds") {
		t.Fatal("expected key to be deleted")
	}
}

func TestDefaultTTLAppliesOnlyWithoutExplicitTTL(t *testing.T) {
	b, mr, done := newRedisBackendTest(t, WithDefaultTTL(time.Second))
	defer done()
	ctx := context.Background()

	_ = b.Set(ctx, "short", "x", 0)
	_ = b.Set(ctx, "long", "x", time.Hour)

	mr.FastForward(2 * time.Second)

	if _, ok, _ := b.Get(ctx, "short"); ok {
		t.Fatal("expected default-ttl key to expire")
	}
	if _, ok, _ := b.Get(ctx, "long"); !ok {
		t.Fatal("expected explicit-ttl key to survive")
	}
}

func TestNoDefaultTTLKeepsKeys(t *testing.T) {
	b, mr, done := newRedisBackendTest(t)
	defer done()

	_ = b.Set(context.Background(), "k", "x", 0)
	if ttl := mr.TTL("k"); ttl != 0 {
		t.Fatalf("expected no ttl, got %v", ttl)
	}
}

func TestKeysEscapesGlobCharacters(t *testing.T) {
	b, _, done := newRedisBackendTest(t, WithScanCount(2))
	defer done()
	ctx := context.Background()

	for _, k := range []string{"a*:1", "a*:2", "ab:1", "a?:1", "a[x]:1", "ax:1"} {
		if err := b.Set(ctx, k, "v", 0); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := b.Keys(ctx, "a*:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a*:1" || keys[1] != "a*:2" {
		t.Fatalf("expected literal prefix match, got %v", keys)
	}

	keys, err = b.Keys(ctx, "a[x]:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "a[x]:1" {
		t.Fatalf("expected bracket literal match, got %v", keys)
	}
}

func TestUnavailableWrapsSentinel(t *testing.T) {
	b, mr, done := newRedisBackendTest(t)
	defer done()
	mr.Close()

	ctx := context.Background()
	if _, _, err := b.Get(ctx, "k"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from get, got %v", err)
	}
	if err := b.Set(ctx, "k", "v", 0); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from set, got %v", err)
	}
	if _, err := b.Keys(ctx, ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from keys, got %v", err)
	}
}

func TestKeysScansEveryRingShard(t *testing.T) {
	shardA := miniredis.RunT(t)
	shardB := miniredis.RunT(t)
	ring := redis.NewRing(&redis.RingOptions{
		Addrs: map[string]string{"a": shardA.Addr(), "b": shardB.Addr()},
	})
	defer ring.Close()

	b := New(ring)
	ctx := context.Background()

	want := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		key := "p:s:pre-key:" + strconv.Itoa(i)
		if err := b.Set(ctx, key, "v", 0); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
		want = append(want, key)
	}
	if len(shardA.Keys()) == 0 || len(shardB.Keys()) == 0 {
		t.Fatalf("expected keys on both shards, got %d and %d", len(shardA.Keys()), len(shardB.Keys()))
	}

	got, err := b.Keys(ctx, "p:s:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("expected %d keys across shards, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	for _, k := range got {
		if err := b.Del(ctx, k); err != nil {
			t.Fatalf("del %s: %v", k, err)
		}
	}
	left, err := b.Keys(ctx, "p:s:")
	if err != nil {
		t.Fatalf("keys after delete: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected no keys after delete, got %v", left)
	}
}
