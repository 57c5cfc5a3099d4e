package simulator

import (
	"testing"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
)

func splitDeck() map[rules.Seat]card.Set {
	return map[rules.Seat]card.Set{
		rules.Self:      card.SuitMask(card.Clubs),
		rules.Opponent1: card.SuitMask(card.Diamonds),
		rules.Opponent2: card.SuitMask(card.Spades),
		rules.Opponent3: card.SuitMask(card.Hearts),
	}
}

func TestRolloutPointsSumTo26BeforeMoon(t *testing.T) {
	st, err := round.New(splitDeck(), rules.Default())
	if err != nil {
		t.Fatalf("round.New: %v", err)
	}
	points, err := Rollout(st, card.TwoOfClubs)
	if err != nil {
		t.Fatalf("Rollout: %v", err)
	}
	raw := 0
	for _, p := range st.Points {
		raw += p
	}
	if raw != 26 {
		t.Fatalf("raw round points before moon transform = %d, want 26", raw)
	}
	total := 0
	for _, p := range points {
		total += p
	}
	if total != 26 && total != 78 {
		t.Fatalf("total round points = %d, want 26 (no moon) or 78 (moon)", total)
	}
}

func TestRolloutCompletesRound(t *testing.T) {
	st, err := round.New(splitDeck(), rules.Default())
	if err != nil {
		t.Fatalf("round.New: %v", err)
	}
	if _, err := Rollout(st, card.TwoOfClubs); err != nil {
		t.Fatalf("Rollout: %v", err)
	}
	if !st.Done() {
		t.Fatal("Rollout should play every hand to empty")
	}
}

func TestRolloutDeterministic(t *testing.T) {
	st1, _ := round.New(splitDeck(), rules.Default())
	st2, _ := round.New(splitDeck(), rules.Default())
	p1, err := Rollout(st1, card.TwoOfClubs)
	if err != nil {
		t.Fatalf("Rollout 1: %v", err)
	}
	p2, err := Rollout(st2, card.TwoOfClubs)
	if err != nil {
		t.Fatalf("Rollout 2: %v", err)
	}
	for seat, pts := range p1 {
		if p2[seat] != pts {
			t.Fatalf("Rollout is not deterministic: seat %v got %d then %d", seat, pts, p2[seat])
		}
	}
}
