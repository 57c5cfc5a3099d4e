package handlog

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decision"
)

// Decision is one replayed decision event's outcome: the card the
// fresh bot actually chose, and — if the recording carries one — the
// card it chose when the recording was made.
type Decision struct {
	Recorded card.Card
	Replayed card.Card
}

// Replay drives a fresh decision.Bot through r's events in order,
// reusing r.Seed for cfg.Seed so the replayed bot is seeded exactly as
// the recording bot was. It returns one Decision per EventDecision
// event, in order, for the caller to compare against the recording for
// a determinism check.
func Replay(ctx context.Context, r *Recorder, cfg decision.Config, logger *log.Logger) ([]Decision, error) {
	cfg.Seed = r.Seed
	bot := decision.New(cfg, logger)

	var decisions []Decision
	for i, ev := range r.Events {
		switch ev.Kind {
		case EventInit:
			bot.InitBeliefs(decodeSet(ev.OwnHand), nil)

		case EventObservePlay:
			if err := bot.ObservePlay(ev.Seat, card.FromIndex(ev.Card)); err != nil {
				return nil, fmt.Errorf("handlog: replaying event %d (observe_play): %w", i, err)
			}

		case EventTrickComplete:
			bot.ObserveTrickComplete(decodeTrick(ev.Trick))

		case EventDecision:
			if ev.Situation == nil {
				return nil, fmt.Errorf("handlog: event %d (decision) missing situation", i)
			}
			sit := decodeSituation(ev.Situation)
			chosen, err := bot.PlayCard(ctx, sit)
			if err != nil {
				return nil, fmt.Errorf("handlog: replaying event %d (decision): %w", i, err)
			}
			decisions = append(decisions, Decision{Recorded: card.FromIndex(ev.Chosen), Replayed: chosen})

		default:
			return nil, fmt.Errorf("handlog: event %d has unknown kind %q", i, ev.Kind)
		}
	}
	return decisions, nil
}
