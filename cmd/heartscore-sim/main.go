// Command heartscore-sim plays many full Hearts rounds between one
// decision.Bot seat and three fixed-policy opponents, reporting the
// bot's scored-points statistics, mirroring cmd/simulate's structure
// (a CLI struct, a Statistics accumulator, a per-hand timeout guard).
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/handlog"
	"github.com/lox/heartscore/internal/heuristics"
	"github.com/lox/heartscore/internal/randutil"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
)

type CLI struct {
	Rounds     int           `default:"1000" help:"Number of rounds to simulate"`
	NSamples   int           `default:"500" help:"Monte Carlo sample budget per decision"`
	Seed       int64         `default:"0" help:"RNG seed (0 picks a fixed default so runs stay reproducible)"`
	MaxRetries int           `default:"32" help:"Sampler feasibility-restart cap"`
	Timeout    time.Duration `default:"1s" help:"Per-decision deadline guard to detect hangs"`
	Opponent   string        `default:"fixed" enum:"fixed,random" help:"Opponent policy the three non-self seats play: fixed or random"`
	Record     string        `help:"If set, records the first round's self decisions as JSON to this path for heartscore-replay"`
	Verbose    bool          `short:"v" help:"Verbose logging"`
}

type statistics struct {
	rounds int
	sum    float64
	sumSq  float64
	values []float64
}

func (s *statistics) add(points int) {
	v := float64(points)
	s.rounds++
	s.sum += v
	s.sumSq += v * v
	s.values = append(s.values, v)
}

func (s *statistics) mean() float64 {
	if s.rounds == 0 {
		return 0
	}
	return s.sum / float64(s.rounds)
}

func (s *statistics) stdDev() float64 {
	if s.rounds < 2 {
		return 0
	}
	mean := s.mean()
	variance := (s.sumSq - float64(s.rounds)*mean*mean) / float64(s.rounds-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func (s *statistics) median() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("heartscore-sim"),
		kong.Description("Simulates Hearts rounds for the decision core against a fixed opponent policy"),
		kong.UsageOnError(),
	)

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	fmt.Printf("Simulating %d rounds, n_samples=%d, max_retries=%d\n", cli.Rounds, cli.NSamples, cli.MaxRetries)

	dealer := randutil.New(cli.Seed)
	stats := &statistics{}

	start := time.Now()
	for i := 0; i < cli.Rounds; i++ {
		var rec *handlog.Recorder
		if cli.Record != "" && i == 0 {
			rec = handlog.NewRecorder(int64(dealer.Uint64()))
		}
		points, err := playRoundWithTimeout(cli, logger, rand.New(rand.NewPCG(dealer.Uint64(), dealer.Uint64())), cli.Timeout, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "round %d: %v\n", i, err)
			os.Exit(1)
		}
		stats.add(points)

		if rec != nil {
			if err := writeRecording(cli.Record, rec); err != nil {
				fmt.Fprintf(os.Stderr, "recording round %d: %v\n", i, err)
				os.Exit(1)
			}
			fmt.Printf("recorded round 0's decisions to %s\n", cli.Record)
		}
	}
	duration := time.Since(start)

	fmt.Printf("\n=== RESULTS ===\n")
	fmt.Printf("Rounds: %d, total time: %v (%.2fms/round)\n", stats.rounds, duration.Round(time.Millisecond), duration.Seconds()*1000/float64(stats.rounds))
	fmt.Printf("Self points per round: mean=%.2f median=%.2f stddev=%.2f\n", stats.mean(), stats.median(), stats.stdDev())
	fmt.Printf("(lower is better: a point-minimizing bot should average under 26/4=6.5 points against naive opponents)\n")
}

// playRoundWithTimeout deals one round and plays it to completion: self
// is driven by a fresh decision.Bot, the three opponents by the fixed
// policy. Each PlayCard call is wrapped in cli.Timeout to surface hangs
// the way cmd/simulate's playHandWithTimeout does.
func playRoundWithTimeout(cli CLI, logger *log.Logger, rng *rand.Rand, timeout time.Duration, rec *handlog.Recorder) (int, error) {
	resultCh := make(chan int, 1)
	errCh := make(chan error, 1)

	go func() {
		points, err := playRound(cli, logger, rng, rec)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- points
	}()

	select {
	case points := <-resultCh:
		return points, nil
	case err := <-errCh:
		return 0, err
	case <-time.After(timeout):
		return 0, fmt.Errorf("round timed out after %v", timeout)
	}
}

func playRound(cli CLI, logger *log.Logger, rng *rand.Rand, rec *handlog.Recorder) (int, error) {
	hands := round.Deal(rng)
	r := rules.Default()

	st, err := round.New(hands, r)
	if err != nil {
		return 0, err
	}

	botSeed := int64(rng.Uint64())
	if rec != nil {
		botSeed = rec.Seed
	}
	bot := decision.New(decision.Config{
		NSamples:   cli.NSamples,
		Seed:       botSeed,
		MaxRetries: cli.MaxRetries,
		Rules:      r,
	}, logger)
	bot.InitBeliefs(hands[rules.Self], nil)
	if rec != nil {
		rec.RecordInit(hands[rules.Self])
	}

	for !st.Done() {
		seat := st.ActionOn()
		trick := append(rules.Trick(nil), st.Trick...)

		var move card.Card
		if seat == rules.Self {
			sit := decision.Situation{
				OwnHand:      st.Hands[rules.Self],
				Trick:        trick,
				Leader:       st.Leader,
				HeartsBroken: st.HeartsBroken,
				IsFirstTrick: st.IsFirstTrick(),
				PointsSoFar:  st.Points,
			}
			ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
			move, err = bot.PlayCard(ctx, sit)
			cancel()
			if err != nil {
				return 0, fmt.Errorf("self decision: %w", err)
			}
			if rec != nil {
				rec.RecordDecision(sit, move)
			}
		} else if cli.Opponent == "random" {
			move = heuristics.RandomPolicy(rng, st.Hands[seat], trick, st.HeartsBroken, st.IsFirstTrick())
		} else {
			move = heuristics.FixedPolicy(st.Hands[seat], trick, st.HeartsBroken, st.IsFirstTrick())
		}

		if err := st.Play(seat, move); err != nil {
			return 0, fmt.Errorf("seat %v playing %v: %w", seat, move, err)
		}
		if err := bot.ObservePlay(seat, move); err != nil {
			return 0, fmt.Errorf("observing seat %v: %w", seat, err)
		}
		if rec != nil {
			rec.RecordObservePlay(seat, move)
		}
		if st.Trick == nil && len(trick)+1 == 4 {
			completed := st.History[len(st.History)-1]
			bot.ObserveTrickComplete(completed)
			if rec != nil {
				rec.RecordTrickComplete(completed)
			}
		}
	}

	return st.ScoredPoints()[rules.Self], nil
}

func writeRecording(path string, rec *handlog.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating recording file: %w", err)
	}
	defer f.Close()
	return rec.WriteTo(f)
}
