package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 1000, "number of sessions to seed")
		keys        = flag.Int("keys", 20, "pre-keys written per batch")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "batch operations per phase (set + get)")
		batchLimit  = flag.Int("batch-concurrency", 16, "in-flight backend calls per batch")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, AUTHSTATE_REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "authstate-loadtest", "key namespace prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *keys <= 0 || *concurrency <= 0 || *ops <= 0 || *batchLimit <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, keys, concurrency, ops and batch-concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("AUTHSTATE_REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authstate.DefaultConfig()
	cfg.Keyspace.Prefix = *prefix
	cfg.Batch.MaxConcurrency = *batchLimit
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	mgr, err := authstate.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	states := make([]*authstate.State, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		st, err := mgr.Open(ctx, uuid.NewString())
		if err != nil {
			fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
			os.Exit(1)
		}
		if err := st.SaveCreds(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = st
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	setStats := runPhase(states, *ops, *concurrency, 7919, func(st *authstate.State, i int) error {
		return st.Keys().Set(ctx, map[authstate.Category]map[string]any{
			authstate.CategoryPreKey: preKeyBatch(i, *keys),
		})
	})
	getStats := runPhase(states, *ops, *concurrency, 6151, func(st *authstate.State, i int) error {
		_, err := st.Keys().Get(ctx, authstate.CategoryPreKey, preKeyIDs(i, *keys))
		return err
	})

	clearStart := time.Now()
	var cleared int
	for _, st := range states {
		cleared += st.ClearState(ctx)
	}

	fmt.Println("---- results ----")
	printStats("batch-set", setStats)
	printStats("batch-get", getStats)
	fmt.Printf("clear: keys=%d total=%s\n", cleared, time.Since(clearStart).Round(time.Millisecond))

	snap := mgr.MetricsSnapshot()
	fmt.Printf("metrics: writes=%d reads=%d misses=%d read_failures=%d write_failures=%d\n",
		snap.Counters[authstate.MetricRecordWrite],
		snap.Counters[authstate.MetricRecordRead],
		snap.Counters[authstate.MetricRecordReadMiss],
		snap.Counters[authstate.MetricRecordReadFailure],
		snap.Counters[authstate.MetricRecordWriteFailure],
	)
}

func runPhase(states []*authstate.State, ops, concurrency int, seed int64, op func(*authstate.State, int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				st := states[r.Intn(len(states))]
				t0 := time.Now()
				err := op(st, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// preKeyBatch returns n records starting at a window derived from i, so gets
// and sets overlap without always hitting the same ids.
func preKeyBatch(i, n int) map[string]any {
	out := make(map[string]any, n)
	for _, id := range preKeyIDs(i, n) {
		pub := make([]byte, 32)
		for j := range pub {
			pub[j] = byte((i + j*17 + 11) % 251)
		}
		out[id] = map[string]any{"public": pub, "private": pub}
	}
	return out
}

func preKeyIDs(i, n int) []string {
	base := (i % 50) * n
	ids := make([]string, n)
	for j := range ids {
		ids[j] = strconv.Itoa(base + j + 1)
	}
	return ids
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
