// Command heartscore-replay loads a recorded round (as written by the
// decision core's handlog recorder) and replays it through a fresh bot
// seeded identically, checking that the replayed decisions match the
// ones recorded — a determinism regression check, mirroring the intent
// of cmd/regression-tester but scoped to one recorded round rather than
// a population of poker hands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/handlog"
	"github.com/lox/heartscore/internal/rules"
)

type CLI struct {
	Recording string `arg:"" help:"Path to a JSON round recording"`
	NSamples  int    `default:"500" help:"Monte Carlo sample budget per decision"`
	Verbose   bool   `short:"v" help:"Verbose logging"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("heartscore-replay"),
		kong.Description("Replays a recorded round and checks the decision core reproduces it"),
		kong.UsageOnError(),
	)

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	f, err := os.Open(cli.Recording)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-replay: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rec, err := handlog.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-replay: %v\n", err)
		os.Exit(1)
	}

	cfg := decision.Config{NSamples: cli.NSamples, Rules: rules.Default()}
	decisions, err := handlog.Replay(context.Background(), rec, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-replay: %v\n", err)
		os.Exit(1)
	}

	mismatches := 0
	for i, d := range decisions {
		status := "match"
		if d.Recorded != d.Replayed {
			status = "MISMATCH"
			mismatches++
		}
		fmt.Printf("decision %d: recorded=%v replayed=%v [%s]\n", i, d.Recorded, d.Replayed, status)
	}

	fmt.Printf("\n%d decisions replayed, %d mismatches\n", len(decisions), mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}
