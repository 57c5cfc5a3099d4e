// Command heartscore-bench measures per-decision latency of the decision
// core with several concurrent workers, each repeatedly building a fresh,
// independent bot instance for a fresh mid-round situation, the way cmd/benchmark
// drives many concurrent bot connections against a shared hand target.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/randutil"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
)

type CLI struct {
	Workers   int     `default:"6" help:"Number of concurrent independent bot instances"`
	Decisions int     `default:"2000" help:"Total decisions to make across all workers"`
	NSamples  int     `default:"500" help:"Monte Carlo sample budget per decision"`
	Seed      int64   `default:"0" help:"RNG seed"`
	TargetMs  float64 `default:"0.5" help:"Latency target per sample (p95 decision latency divided by n-samples), reported as a pass/fail gate"`
	Debug     bool    `help:"Show debug logs"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("heartscore-bench"),
		kong.Description("Benchmarks decision core latency across concurrent independent bot instances"),
		kong.UsageOnError(),
	)

	level := log.WarnLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	fmt.Printf("Benchmarking %d workers, %d total decisions, n_samples=%d\n", cli.Workers, cli.Decisions, cli.NSamples)

	var completed int64
	latencies := make(chan time.Duration, cli.Decisions)

	dealer := randutil.New(cli.Seed)
	g, ctx := errgroup.WithContext(context.Background())

	perWorker := cli.Decisions / cli.Workers
	remainder := cli.Decisions % cli.Workers

	for w := 0; w < cli.Workers; w++ {
		n := perWorker
		if w < remainder {
			n++
		}
		workerSeed := int64(dealer.Uint64())
		g.Go(func() error {
			return runWorker(ctx, cli, logger, workerSeed, n, &completed, latencies)
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	close(latencies)

	var samples []float64
	var sum float64
	for d := range latencies {
		ms := d.Seconds() * 1000
		samples = append(samples, ms)
		sum += ms
	}
	sort.Float64s(samples)

	fmt.Printf("\n=== RESULTS ===\n")
	fmt.Printf("Decisions: %d, wall time: %v\n", len(samples), elapsed.Round(time.Millisecond))
	if len(samples) > 0 {
		mean := sum / float64(len(samples))
		p50 := percentile(samples, 0.50)
		p95 := percentile(samples, 0.95)
		p99 := percentile(samples, 0.99)
		fmt.Printf("Latency per decision: mean=%.3fms p50=%.3fms p95=%.3fms p99=%.3fms\n", mean, p50, p95, p99)
		if perSample := p95 / float64(cli.NSamples); perSample <= cli.TargetMs {
			fmt.Printf("PASS: p95 latency per sample %.4fms <= target %.3fms\n", perSample, cli.TargetMs)
		} else {
			fmt.Printf("FAIL: p95 latency per sample %.4fms > target %.3fms\n", perSample, cli.TargetMs)
			os.Exit(1)
		}
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// runWorker makes n decisions, each with a new bot instance facing a
// freshly dealt mid-round situation, pushing each decision's wall-clock latency onto
// latencies. Each decision starts from a fresh deal and a fresh belief
// tracker so workers never share state.
func runWorker(ctx context.Context, cli CLI, logger *log.Logger, seed int64, n int, completed *int64, latencies chan<- time.Duration) error {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	r := rules.Default()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hands := round.Deal(rng)
		bot := decision.New(decision.Config{
			NSamples:   cli.NSamples,
			Seed:       int64(rng.Uint64()),
			Rules:      r,
		}, logger)
		bot.InitBeliefs(hands[rules.Self], nil)

		// Benchmark the worst case the search loop actually faces: self
		// on lead with a full, unconstrained hand, so every legal
		// candidate in the hand gets its own sample budget rather than
		// the single-card-forced shortcut a genuine first-trick lead
		// would take.
		sit := decision.Situation{
			OwnHand:      hands[rules.Self],
			Trick:        nil,
			Leader:       rules.Self,
			HeartsBroken: true,
			IsFirstTrick: false,
			PointsSoFar:  map[rules.Seat]int{},
		}

		decideCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		start := time.Now()
		_, err := bot.PlayCard(decideCtx, sit)
		elapsed := time.Since(start)
		cancel()
		if err != nil {
			return fmt.Errorf("worker: decision failed: %w", err)
		}

		latencies <- elapsed
		atomic.AddInt64(completed, 1)
	}
	return nil
}
