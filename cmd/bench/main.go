// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/IvanBrykalov/blockcache/internal/util"
	pmet "github.com/IvanBrykalov/blockcache/metrics/prom"
	"github.com/IvanBrykalov/blockcache/policy"
	"github.com/IvanBrykalov/blockcache/policy/arc"
	"github.com/IvanBrykalov/blockcache/policy/clock"
	"github.com/IvanBrykalov/blockcache/policy/fifo"
	"github.com/IvanBrykalov/blockcache/policy/lfu"
	"github.com/IvanBrykalov/blockcache/policy/lru"
	"github.com/IvanBrykalov/blockcache/policy/sieve"
)

func policyByName(name string) policy.Factory[string] {
	switch name {
	case "lru":
		return lru.New[string]()
	case "lfu":
		return lfu.New[string]()
	case "fifo":
		return fifo.New[string]()
	case "clock":
		return clock.New[string]()
	case "sieve":
		return sieve.New[string]()
	case "arc":
		return arc.New[string]()
	default:
		log.Fatalf("unknown policy: %q (use lru, lfu, fifo, clock, sieve, or arc)", name)
		return nil
	}
}

func main() {
	// ---- Flags ----
	var (
		capacity   = flag.Int("cap", 100_000, "cache capacity (entries)")
		policyName = flag.String("policy", "lru", "eviction policy: lru | lfu | fifo | clock | sieve | arc")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "blockcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	c := cache.New[string, string](cache.Options[string, string]{
		Capacity: *capacity,
		Policy:   policyByName(*policyName),
		Metrics:  metrics,
	})
	defer func() { _ = c.Close() }()

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		_, _ = c.Insert(k, "v"+strconv.Itoa(i))
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	// Counters are padded to a cache line each: workersN goroutines hit
	// these on every single op, and unpadded adjacent counters would
	// false-share one line between unrelated cores.
	var reads, writes, hits, misses, total util.PaddedAtomicUint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				total.Add(1)
				if int(localR.Int31n(100)) < readPctVal {
					reads.Add(1)
					if _, ok := c.Lookup(keyByZipf()); ok {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				} else {
					writes.Add(1)
					k := keyByZipf()
					_ = c.Upsert(k, "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	readsN := reads.Load()
	writesN := writes.Load()
	hitsN := hits.Load()
	missesN := misses.Load()

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("policy=%s cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		*policyName, *capacity, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)
	fmt.Printf("stats=%+v\n", c.Stats())
}
