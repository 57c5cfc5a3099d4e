package handlog

import (
	"bytes"
	"context"
	"testing"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/rules"
)

func fullHand13() card.Set {
	return card.Of(
		card.TwoOfClubs, card.New(card.Clubs, card.Five), card.New(card.Clubs, card.Ten),
		card.New(card.Diamonds, card.Jack), card.New(card.Diamonds, card.Queen), card.New(card.Diamonds, card.Ace),
		card.New(card.Spades, card.Three), card.New(card.Spades, card.Nine), card.New(card.Spades, card.King),
		card.New(card.Hearts, card.Four), card.New(card.Hearts, card.Eight), card.New(card.Hearts, card.Ten),
		card.New(card.Hearts, card.Queen),
	)
}

func TestRecorderRoundTripsThroughJSON(t *testing.T) {
	hand := fullHand13()
	rec := NewRecorder(42)
	rec.RecordInit(hand)
	rec.RecordObservePlay(rules.Opponent1, card.New(card.Diamonds, card.King))
	rec.RecordTrickComplete(rules.Trick{
		{Seat: rules.Self, Card: card.TwoOfClubs},
		{Seat: rules.Opponent1, Card: card.New(card.Clubs, card.King)},
	})
	rec.RecordDecision(decision.Situation{
		OwnHand:      hand,
		IsFirstTrick: false,
		HeartsBroken: true,
		PointsSoFar:  map[rules.Seat]int{rules.Self: 0, rules.Opponent1: 13},
	}, card.New(card.Hearts, card.Queen))

	var buf bytes.Buffer
	if err := rec.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seed != rec.Seed {
		t.Fatalf("Seed = %d, want %d", got.Seed, rec.Seed)
	}
	if len(got.Events) != len(rec.Events) {
		t.Fatalf("Events = %d, want %d", len(got.Events), len(rec.Events))
	}
	if got.Events[3].Chosen != card.New(card.Hearts, card.Queen).Index() {
		t.Fatalf("decision event Chosen = %d, want %d", got.Events[3].Chosen, card.New(card.Hearts, card.Queen).Index())
	}
	if got.Events[3].Situation.PointsSoFar["opponent1"] != 13 {
		t.Fatalf("decision event points_so_far[opponent1] = %d, want 13", got.Events[3].Situation.PointsSoFar["opponent1"])
	}
}

func TestReplayIsDeterministicForRecordedSeed(t *testing.T) {
	hand := fullHand13()
	rec := NewRecorder(7)
	rec.RecordInit(hand)
	rec.RecordDecision(decision.Situation{
		OwnHand:      hand,
		IsFirstTrick: false,
		HeartsBroken: true,
		PointsSoFar:  map[rules.Seat]int{},
	}, card.Card{})

	cfg := decision.Config{NSamples: 100, Rules: rules.Default()}

	first, err := Replay(context.Background(), rec, cfg, nil)
	if err != nil {
		t.Fatalf("Replay (first): %v", err)
	}
	second, err := Replay(context.Background(), rec, cfg, nil)
	if err != nil {
		t.Fatalf("Replay (second): %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected exactly one decision event, got %d and %d", len(first), len(second))
	}
	if first[0].Replayed != second[0].Replayed {
		t.Fatalf("replay not deterministic for seed=7: got %v then %v", first[0].Replayed, second[0].Replayed)
	}
}
