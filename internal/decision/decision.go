// Package decision implements the move selector (§4.7): the bot
// consults the zero-sample heuristics first, and only falls back to
// determinized Monte Carlo search — sampling consistent worlds from
// the belief tracker and rolling each out under the fixed opponent
// policy — when no override applies.
package decision

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/heartscore/internal/belief"
	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decisionlog"
	"github.com/lox/heartscore/internal/heuristics"
	"github.com/lox/heartscore/internal/randutil"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
	"github.com/lox/heartscore/internal/sampler"
	"github.com/lox/heartscore/internal/simulator"
)

// Config controls sampling depth, RNG seeding, and feasibility retries.
type Config struct {
	// NSamples is the total simulated-world budget spread across every
	// legal candidate for a single decision (K = NSamples / |legal|).
	NSamples int
	// Seed deterministically seeds the bot's RNG via randutil.New.
	Seed int64
	// MaxRetries bounds the sampler's ordered-draw feasibility restarts
	// before it falls back to the constructive algorithm.
	MaxRetries int
	// Rules carries the house-rule toggles (Queen-breaks-hearts,
	// aggressive moon) used both by the rules engine and by the
	// CanShootMoon heuristic.
	Rules rules.Rules
}

// DefaultConfig returns reasonable defaults: 1000 total samples per
// decision and the sampler's own default retry cap.
func DefaultConfig() Config {
	return Config{
		NSamples:   1000,
		MaxRetries: sampler.DefaultMaxRetries,
		Rules:      rules.Default(),
	}
}

// Situation is the observable round position the external driver
// supplies to PlayCard: self's hand, the in-flight trick (possibly
// empty if self is on lead), and the round-so-far context needed both
// by the rules engine and by the moon heuristic.
type Situation struct {
	OwnHand      card.Set
	Trick        rules.Trick
	Leader       rules.Seat
	HeartsBroken bool
	IsFirstTrick bool
	PointsSoFar  map[rules.Seat]int
}

// Bot is one seat's decision core for a single round: it owns the
// belief tracker across the round's lifetime and a reusable rollout
// scratch buffer, and answers PlayCard/ObservePlay/ObserveTrickComplete
// per the §6 external-interface contract.
type Bot struct {
	cfg     Config
	rng     *rand.Rand
	beliefs *belief.Tracker
	scratch *round.State
	log     *log.Logger
}

// New creates a Bot. logger may be nil, in which case decisionlog falls
// back to a default logger.
func New(cfg Config, logger *log.Logger) *Bot {
	if cfg.NSamples <= 0 {
		cfg.NSamples = DefaultConfig().NSamples
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = sampler.DefaultMaxRetries
	}
	return &Bot{
		cfg:     cfg,
		rng:     randutil.New(cfg.Seed),
		beliefs: belief.New(),
		scratch: &round.State{},
		log:     decisionlog.For(logger, "decision"),
	}
}

// InitBeliefs resets the belief tracker for a new round from self's
// dealt hand and any passes the host already knows the recipient of.
func (b *Bot) InitBeliefs(ownHand card.Set, passedTo map[rules.Seat]card.Set) {
	b.beliefs.Init(ownHand, passedTo)
}

// ObservePlay folds a play into the belief tracker, which derives the
// trick's lead suit and each play's lead/follow status internally —
// callers report every seat's play, including self's, in the order
// they occurred. A recovered contradiction is logged and swallowed
// rather than returned, since §7 treats it as non-fatal.
func (b *Bot) ObservePlay(seat rules.Seat, c card.Card) error {
	err := b.beliefs.OnPlay(seat, c)
	if err == nil {
		return nil
	}
	var illegal *belief.IllegalObservationError
	if errors.As(err, &illegal) {
		b.log.Warn("recovered illegal observation", "seat", illegal.Seat, "card", illegal.Card, "reason", illegal.Reason)
		return nil
	}
	return err
}

// ObserveTrickComplete notifies the belief tracker that a trick has
// finished, mirroring the §6 interface's stable hook.
func (b *Bot) ObserveTrickComplete(trick rules.Trick) {
	b.beliefs.OnTrickComplete(trick)
}

// PlayCard chooses self's next play for sit. It returns immediately
// with a forced move when the legal-plays filter leaves only one
// option or a §4.5 heuristic override applies; otherwise it runs
// determinized Monte Carlo search over the remaining candidates.
func (b *Bot) PlayCard(ctx context.Context, sit Situation) (card.Card, error) {
	legal := rules.LegalPlays(sit.OwnHand, sit.Trick, sit.HeartsBroken, sit.IsFirstTrick)
	if legal.Empty() {
		return card.Card{}, round.ErrEmptyLegalMoves
	}

	candidates := legal.Cards()
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	canShootMoon := heuristics.CanShootMoon(sit.PointsSoFar, b.cfg.Rules.AggressiveMoon)
	if c, ok := heuristics.Consult(legal, sit.Trick, canShootMoon); ok {
		return c, nil
	}

	return b.search(ctx, sit, candidates)
}

// candidateStats accumulates the simulated point totals of one
// candidate move across every world sampled for it.
type candidateStats struct {
	sum float64
	n   int
}

// search runs the Monte Carlo evaluation loop: K = NSamples/|candidates|
// consistent worlds per candidate, each rolled out under the fixed
// opponent policy, picking the candidate with the lowest mean simulated
// points for self. Ties fall to whichever candidate sorts first under
// card.Card.Less, which candidates already does since legal.Cards()
// yields ascending suit-major index order. At least one fully
// simulated world per candidate always completes even if ctx's
// deadline has already elapsed; only the second and later samples for
// a candidate are skipped once the deadline passes.
func (b *Bot) search(ctx context.Context, sit Situation, candidates []card.Card) (card.Card, error) {
	k := b.cfg.NSamples / len(candidates)
	if k < 1 {
		k = 1
	}

	stats := make(map[card.Card]*candidateStats, len(candidates))
	for _, c := range candidates {
		stats[c] = &candidateStats{}
	}

	hands := make(map[rules.Seat]card.Set, 4)
	hands[rules.Self] = sit.OwnHand

	for _, candidate := range candidates {
		st := stats[candidate]
		for st.n < k {
			if st.n >= 1 && deadlineExceeded(ctx) {
				break
			}

			assignment, err := sampler.Draw(b.beliefs, b.rng, b.cfg.MaxRetries)
			if err != nil {
				return card.Card{}, fmt.Errorf("decision: sampling world: %w", err)
			}
			hands[rules.Opponent1] = assignment[rules.Opponent1]
			hands[rules.Opponent2] = assignment[rules.Opponent2]
			hands[rules.Opponent3] = assignment[rules.Opponent3]

			if err := b.scratch.ResumeAt(hands, sit.Trick, sit.Leader, sit.HeartsBroken, sit.IsFirstTrick, sit.PointsSoFar, b.cfg.Rules); err != nil {
				return card.Card{}, fmt.Errorf("decision: resuming rollout state: %w", err)
			}
			points, err := simulator.Rollout(b.scratch, candidate)
			if err != nil {
				return card.Card{}, fmt.Errorf("decision: rollout: %w", err)
			}

			st.sum += float64(points[rules.Self])
			st.n++
		}
	}

	best := candidates[0]
	bestAvg := stats[best].sum / float64(stats[best].n)
	for _, c := range candidates[1:] {
		st := stats[c]
		avg := st.sum / float64(st.n)
		if avg < bestAvg {
			bestAvg, best = avg, c
		}
	}
	return best, nil
}

func deadlineExceeded(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
