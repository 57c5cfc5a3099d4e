package round

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

func fourHands() map[rules.Seat]card.Set {
	return map[rules.Seat]card.Set{
		rules.Self: card.Of(
			card.TwoOfClubs, card.New(card.Clubs, card.Five), card.New(card.Clubs, card.Ten),
			card.New(card.Diamonds, card.Jack), card.New(card.Diamonds, card.Queen), card.New(card.Diamonds, card.Ace),
			card.New(card.Spades, card.Three), card.New(card.Spades, card.Nine), card.New(card.Spades, card.King),
			card.New(card.Hearts, card.Four), card.New(card.Hearts, card.Eight), card.New(card.Hearts, card.Ten),
			card.New(card.Hearts, card.Queen),
		),
		rules.Opponent1: card.SuitMask(card.Clubs).Minus(card.Of(card.TwoOfClubs, card.New(card.Clubs, card.Five), card.New(card.Clubs, card.Ten))),
		rules.Opponent2: card.SuitMask(card.Diamonds).Minus(card.Of(card.New(card.Diamonds, card.Jack), card.New(card.Diamonds, card.Queen), card.New(card.Diamonds, card.Ace))),
		rules.Opponent3: card.SuitMask(card.Spades).Minus(card.Of(card.New(card.Spades, card.Three), card.New(card.Spades, card.Nine), card.New(card.Spades, card.King))).
			Union(card.SuitMask(card.Hearts).Minus(card.Of(card.New(card.Hearts, card.Four), card.New(card.Hearts, card.Eight), card.New(card.Hearts, card.Ten), card.New(card.Hearts, card.Queen)))),
	}
}

func TestNewRoundFindsTwoOfClubsLeader(t *testing.T) {
	st, err := New(fourHands(), rules.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st.Leader != rules.Self {
		t.Fatalf("Leader = %v, want Self", st.Leader)
	}
	if st.ActionOn() != rules.Self {
		t.Fatalf("ActionOn = %v, want Self", st.ActionOn())
	}
}

func TestNewRoundRejectsOverlappingHands(t *testing.T) {
	hands := fourHands()
	hands[rules.Opponent1] = hands[rules.Opponent1].Add(card.TwoOfClubs)
	_, err := New(hands, rules.Default())
	if !errors.Is(err, ErrInvalidRound) {
		t.Fatalf("New with overlapping hands: err = %v, want ErrInvalidRound", err)
	}
}

func TestFirstTrickMustLeadTwoOfClubs(t *testing.T) {
	st, err := New(fourHands(), rules.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := st.Play(rules.Self, card.New(card.Spades, card.Three)); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("playing non-2C on first lead: err = %v, want ErrIllegalMove", err)
	}
	if err := st.Play(rules.Self, card.TwoOfClubs); err != nil {
		t.Fatalf("playing 2C on first lead: %v", err)
	}
}

func TestPlayOutOfTurnRejected(t *testing.T) {
	st, err := New(fourHands(), rules.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := st.Play(rules.Opponent1, card.New(card.Clubs, card.King)); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("out-of-turn play: err = %v, want ErrIllegalMove", err)
	}
}

func TestTrickCompletionScoresWinnerAndAdvancesLeader(t *testing.T) {
	st, err := New(fourHands(), rules.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plays := []struct {
		seat rules.Seat
		card card.Card
	}{
		{rules.Self, card.TwoOfClubs},
		{rules.Opponent1, card.New(card.Clubs, card.King)},
		{rules.Opponent2, card.New(card.Diamonds, card.Two)},
		{rules.Opponent3, card.New(card.Spades, card.Two)},
	}
	for _, p := range plays {
		if err := st.Play(p.seat, p.card); err != nil {
			t.Fatalf("Play(%v, %v): %v", p.seat, p.card, err)
		}
	}
	if st.Leader != rules.Opponent1 {
		t.Fatalf("Leader after trick = %v, want Opponent1 (played King of Clubs)", st.Leader)
	}
	if len(st.Trick) != 0 {
		t.Fatalf("Trick should reset after completion, got %d plays", len(st.Trick))
	}
	if st.IsFirstTrick() {
		t.Fatal("IsFirstTrick should be false once the first trick completes")
	}
	if st.Points[rules.Opponent1] != 0 {
		t.Fatalf("first trick has no points, got %d", st.Points[rules.Opponent1])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st, err := New(fourHands(), rules.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clone := st.Clone()
	if err := clone.Play(rules.Self, card.TwoOfClubs); err != nil {
		t.Fatalf("Play on clone: %v", err)
	}
	if st.Hands[rules.Self].Contains(card.TwoOfClubs) == false {
		t.Fatal("mutating the clone should not affect the original round state")
	}
}

func TestDealProducesFourDisjointThirteenCardHands(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	hands := Deal(rng)
	if len(hands) != 4 {
		t.Fatalf("Deal produced %d hands, want 4", len(hands))
	}

	var union card.Set
	for _, seat := range []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		h := hands[seat]
		if h.Len() != 13 {
			t.Errorf("seat %v has %d cards, want 13", seat, h.Len())
		}
		if h.Intersect(union) != 0 {
			t.Errorf("seat %v overlaps a previously dealt hand", seat)
		}
		union = union.Union(h)
	}
	if union != card.FullDeck {
		t.Fatal("Deal did not cover the full deck")
	}
}
