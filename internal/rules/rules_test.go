package rules

import (
	"testing"

	"github.com/lox/heartscore/internal/card"
)

func TestLegalPlaysFirstTrickLead(t *testing.T) {
	hand := card.Of(card.TwoOfClubs, card.New(card.Diamonds, card.Seven), card.QueenOfSpades)
	legal := LegalPlays(hand, nil, false, true)
	if legal != card.Of(card.TwoOfClubs) {
		t.Fatalf("LegalPlays on first lead = %v, want exactly {2C}", legal.Cards())
	}
}

func TestLegalPlaysLeadHeartsNotBroken(t *testing.T) {
	hand := card.Of(card.New(card.Clubs, card.Five), card.New(card.Hearts, card.Three))
	legal := LegalPlays(hand, nil, false, false)
	if legal != card.Of(card.New(card.Clubs, card.Five)) {
		t.Fatalf("LegalPlays with hearts unbroken = %v, want only non-heart cards", legal.Cards())
	}
}

func TestLegalPlaysLeadAllHearts(t *testing.T) {
	hand := card.Of(card.New(card.Hearts, card.Three), card.New(card.Hearts, card.King))
	legal := LegalPlays(hand, nil, false, false)
	if legal != hand {
		t.Fatalf("LegalPlays with hand of all hearts = %v, want whole hand", legal.Cards())
	}
}

func TestLegalPlaysMustFollowSuit(t *testing.T) {
	hand := card.Of(card.New(card.Spades, card.Two), card.New(card.Spades, card.Nine), card.New(card.Hearts, card.King))
	trick := Trick{{Seat: Opponent1, Card: card.New(card.Spades, card.Five)}}
	legal := LegalPlays(hand, trick, false, false)
	want := card.Of(card.New(card.Spades, card.Two), card.New(card.Spades, card.Nine))
	if legal != want {
		t.Fatalf("LegalPlays following suit = %v, want %v", legal.Cards(), want.Cards())
	}
}

func TestLegalPlaysFirstTrickDiscardForbidsPoints(t *testing.T) {
	hand := card.Of(card.QueenOfSpades, card.New(card.Hearts, card.Two), card.New(card.Diamonds, card.Four))
	trick := Trick{{Seat: Opponent1, Card: card.New(card.Clubs, card.Five)}}
	legal := LegalPlays(hand, trick, false, true)
	want := card.Of(card.New(card.Diamonds, card.Four))
	if legal != want {
		t.Fatalf("LegalPlays first-trick discard = %v, want %v", legal.Cards(), want.Cards())
	}
}

func TestLegalPlaysFirstTrickDiscardAllPointCards(t *testing.T) {
	hand := card.Of(card.QueenOfSpades, card.New(card.Hearts, card.Two))
	trick := Trick{{Seat: Opponent1, Card: card.New(card.Clubs, card.Five)}}
	legal := LegalPlays(hand, trick, false, true)
	if legal != hand {
		t.Fatalf("LegalPlays first-trick all-point hand = %v, want whole hand", legal.Cards())
	}
}

func TestTrickWinnerHighestOfLeadSuit(t *testing.T) {
	trick := Trick{
		{Seat: Self, Card: card.New(card.Diamonds, card.Five)},
		{Seat: Opponent1, Card: card.New(card.Diamonds, card.King)},
		{Seat: Opponent2, Card: card.New(card.Hearts, card.Ace)},
		{Seat: Opponent3, Card: card.New(card.Diamonds, card.Two)},
	}
	if w := TrickWinner(trick); w != Opponent1 {
		t.Fatalf("TrickWinner = %v, want Opponent1", w)
	}
}

func TestHeartsBrokenAfter(t *testing.T) {
	r := Default()
	if HeartsBrokenAfter(false, card.New(card.Clubs, card.King), r) {
		t.Fatal("a non-point club should not break hearts")
	}
	if !HeartsBrokenAfter(false, card.New(card.Hearts, card.Two), r) {
		t.Fatal("any heart should break hearts")
	}
	if !HeartsBrokenAfter(false, card.QueenOfSpades, r) {
		t.Fatal("queen of spades should break hearts under default rules")
	}
	noQueen := Rules{QueenBreaksHearts: false}
	if HeartsBrokenAfter(false, card.QueenOfSpades, noQueen) {
		t.Fatal("queen of spades should not break hearts when disabled")
	}
	if !HeartsBrokenAfter(true, card.New(card.Clubs, card.Two), r) {
		t.Fatal("hearts broken must stay monotonically true")
	}
}

func TestApplyMoonTransform(t *testing.T) {
	points := map[Seat]int{Self: 26, Opponent1: 0, Opponent2: 0, Opponent3: 0}
	out := ApplyMoonTransform(points)
	if out[Self] != 0 {
		t.Errorf("shooter should score 0, got %d", out[Self])
	}
	for _, s := range []Seat{Opponent1, Opponent2, Opponent3} {
		if out[s] != 26 {
			t.Errorf("non-shooter %v should score 26, got %d", s, out[s])
		}
	}
}

func TestApplyMoonTransformNoop(t *testing.T) {
	points := map[Seat]int{Self: 5, Opponent1: 10, Opponent2: 6, Opponent3: 5}
	out := ApplyMoonTransform(points)
	for s, p := range points {
		if out[s] != p {
			t.Errorf("no-moon round should be unchanged, got %v want %v", out, points)
		}
	}
}

func TestSeatString(t *testing.T) {
	cases := map[Seat]string{
		Self:      "self",
		Opponent1: "opponent1",
		Opponent2: "opponent2",
		Opponent3: "opponent3",
	}
	for seat, want := range cases {
		if got := seat.String(); got != want {
			t.Errorf("Seat(%d).String() = %q, want %q", seat, got, want)
		}
	}
}

func TestSeatOpponentIndexPanicsOnSelf(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("OpponentIndex on Self should panic")
		}
	}()
	Self.OpponentIndex()
}
