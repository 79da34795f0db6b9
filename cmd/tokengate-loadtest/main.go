// Command tokengate-loadtest measures authenticate and refresh latency
// against a real or in-process Redis.
//
// It seeds N token pairs, then runs two phases: an authenticate phase
// (pure codec validation, no Redis round-trips) and a refresh phase
// (single-use rotation, one Redis round-trip pair per op). Each loadtest
// subject rotates its own token chain, so the refresh phase measures
// rotation latency rather than reuse rejections.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/veranyon/tokengate/refresh"
	"github.com/veranyon/tokengate/token"
)

type pairState struct {
	subject string
	refresh string
	mu      sync.Mutex
}

func main() {
	var (
		pairs       = flag.Int("pairs", 100000, "number of token pairs to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (authenticate + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "rt", "refresh token key prefix")
	)
	flag.Parse()

	if *pairs <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "pairs, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
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

	tokens, err := token.NewManager(token.Config{
		Secret:     []byte("loadtest-signing-secret-32-bytes"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token manager init failed: %v\n", err)
		os.Exit(1)
	}

	store := refresh.NewStore(client, *prefix, 3*time.Second)

	states := make([]pairState, *pairs)
	accessTokens := make([]string, *pairs)
	fmt.Printf("seeding %d token pairs...\n", *pairs)
	startSeed := time.Now()
	for i := 0; i < *pairs; i++ {
		subject := fmt.Sprintf("user-%d@loadtest.local", i)

		access, err := tokens.IssueAccess(subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue access failed: %v\n", err)
			os.Exit(1)
		}
		rt, err := tokens.IssueRefresh(subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue refresh failed: %v\n", err)
			os.Exit(1)
		}
		if err := store.Save(ctx, rt, 24*time.Hour); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}

		states[i] = pairState{subject: subject, refresh: rt}
		accessTokens[i] = access
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authStats := runAuthenticatePhase(tokens, states, accessTokens, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, tokens, store, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("refresh", refreshStats)
}

func runAuthenticatePhase(tokens *token.Manager, states []pairState, accessTokens []string, ops, concurrency int) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				ok := tokens.Verify(accessTokens[idx], states[idx].subject)
				d := time.Since(t0)
				if !ok {
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

func runRefreshPhase(ctx context.Context, tokens *token.Manager, store *refresh.Store, states []pairState, ops, concurrency int) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				d, next, err := rotateOnce(ctx, tokens, store, state)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else {
					state.refresh = next
				}
				if d == 0 {
					d = time.Since(t0)
				}
				state.mu.Unlock()

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

// rotateOnce performs the same consume-then-record sequence the engine's
// refresh flow runs, timed around the store I/O.
func rotateOnce(ctx context.Context, tokens *token.Manager, store *refresh.Store, state *pairState) (time.Duration, string, error) {
	next, err := tokens.IssueRefresh(state.subject)
	if err != nil {
		return 0, "", err
	}

	t0 := time.Now()
	existed, err := store.Delete(ctx, state.refresh)
	if err != nil {
		return time.Since(t0), "", err
	}
	if !existed {
		return time.Since(t0), "", fmt.Errorf("refresh token already consumed")
	}
	if err := store.Save(ctx, next, 24*time.Hour); err != nil {
		return time.Since(t0), "", err
	}

	return time.Since(t0), next, nil
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
