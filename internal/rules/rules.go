// Package rules implements the pure, stateless Hearts rule functions:
// the legal-plays filter, trick winner determination, point values, and
// the hearts-broken transition. Nothing here holds state; callers in
// package round thread these functions through a RoundState.
package rules

import (
	"fmt"

	"github.com/lox/heartscore/internal/card"
)

// Seat identifies one of the four players at the table. Seat 0 is
// always "self" — the bot making the decision. Turn order is
// clockwise: (seat+1) mod 4.
type Seat int

const (
	Self Seat = iota
	Opponent1
	Opponent2
	Opponent3
)

// Next returns the seat that plays after s.
func (s Seat) Next() Seat {
	return (s + 1) % 4
}

// String returns the seat's wire/log name: "self", "opponent1",
// "opponent2", or "opponent3".
func (s Seat) String() string {
	switch s {
	case Self:
		return "self"
	case Opponent1:
		return "opponent1"
	case Opponent2:
		return "opponent2"
	case Opponent3:
		return "opponent3"
	default:
		return "unknown"
	}
}

// Opponents returns the three opponent seats in a stable order.
func Opponents() [3]Seat {
	return [3]Seat{Opponent1, Opponent2, Opponent3}
}

// OpponentIndex maps an opponent seat to its 0..2 column index, used
// by the belief and sampler packages to index their per-seat arrays.
// It panics if called on Self, which has no such column.
func (s Seat) OpponentIndex() int {
	switch s {
	case Opponent1:
		return 0
	case Opponent2:
		return 1
	case Opponent3:
		return 2
	default:
		panic(fmt.Sprintf("rules: seat %v has no opponent column", s))
	}
}

// Play is a single (seat, card) entry in a trick.
type Play struct {
	Seat Seat
	Card card.Card
}

// Trick is an ordered sequence of at most four plays. The first play
// defines the lead suit.
type Trick []Play

// LeadSuit returns the suit of the first play, and false if the trick
// is empty.
func (t Trick) LeadSuit() (card.Suit, bool) {
	if len(t) == 0 {
		return 0, false
	}
	return t[0].Card.Suit, true
}

// Leader returns the seat that led the trick, and false if empty.
func (t Trick) Leader() (Seat, bool) {
	if len(t) == 0 {
		return 0, false
	}
	return t[0].Seat, true
}

// Full reports whether the trick already has four plays.
func (t Trick) Full() bool {
	return len(t) == 4
}

// Rules toggles the two house-rule Open Questions the spec leaves
// configurable: whether the Queen of Spades breaks hearts in addition
// to any Heart, and whether the bot should play for an aggressive moon
// attempt. Default enables QueenBreaksHearts and leaves AggressiveMoon
// off.
type Rules struct {
	QueenBreaksHearts bool
	AggressiveMoon    bool
}

// Default returns the spec's default house rules: the Queen of Spades
// does break hearts, and the decision core does not actively pursue
// shooting the moon.
func Default() Rules {
	return Rules{QueenBreaksHearts: true, AggressiveMoon: false}
}

// Points returns a card's point value: 1 for any Heart, 13 for the
// Queen of Spades, 0 otherwise.
func Points(c card.Card) int {
	return c.Points()
}

// HeartsBrokenAfter returns whether hearts become broken after c is
// played, given the prior state. Hearts is broken by any Heart, and
// — unless r.QueenBreaksHearts is false — by the Queen of Spades too.
func HeartsBrokenAfter(prev bool, c card.Card, r Rules) bool {
	if prev {
		return true
	}
	if c.Suit == card.Hearts {
		return true
	}
	if r.QueenBreaksHearts && c == card.QueenOfSpades {
		return true
	}
	return false
}

// isAllPointCards reports whether every card in hand carries points
// (i.e. the hand is entirely Hearts and/or the Queen of Spades).
func isAllPointCards(hand card.Set) bool {
	for _, c := range hand.Cards() {
		if c.Points() == 0 {
			return false
		}
	}
	return true
}

// LegalPlays computes the set of cards hand may legally play into
// trick, given whether hearts have broken and whether this is the
// round's first trick.
func LegalPlays(hand card.Set, trick Trick, heartsBroken bool, isFirstTrick bool) card.Set {
	if hand.Empty() {
		return 0
	}

	leading := len(trick) == 0
	if leading {
		if isFirstTrick {
			if hand.Contains(card.TwoOfClubs) {
				return card.Of(card.TwoOfClubs)
			}
			// Leader invariant violated upstream; fall through to
			// full legality rather than returning an empty set here.
			return hand
		}
		if !heartsBroken {
			nonHearts := hand.Minus(card.SuitMask(card.Hearts))
			if !nonHearts.Empty() {
				return nonHearts
			}
			return hand
		}
		return hand
	}

	leadSuit, _ := trick.LeadSuit()
	followSuit := hand.OfSuit(leadSuit)
	if !followSuit.Empty() {
		return followSuit
	}

	// Can't follow suit.
	if isFirstTrick {
		nonPoint := hand.Minus(card.SuitMask(card.Hearts)).Remove(card.QueenOfSpades)
		if !nonPoint.Empty() {
			return nonPoint
		}
		if isAllPointCards(hand) {
			return hand
		}
		return nonPoint
	}
	return hand
}

// TrickWinner returns the seat that played the highest-ranked card of
// the lead suit.
func TrickWinner(t Trick) Seat {
	if len(t) == 0 {
		panic("rules: TrickWinner called on empty trick")
	}
	leadSuit, _ := t.LeadSuit()
	winner := t[0]
	for _, p := range t[1:] {
		if p.Card.Suit == leadSuit && p.Card.Rank > winner.Card.Rank {
			winner = p
		}
	}
	return winner.Seat
}

// TrickPoints returns the total point value collected by the trick's
// winner.
func TrickPoints(t Trick) int {
	total := 0
	for _, p := range t {
		total += p.Card.Points()
	}
	return total
}

// MoonShooter returns the seat that collected all 26 points in a
// completed round, and true if such a seat exists.
func MoonShooter(points map[Seat]int) (Seat, bool) {
	for s, p := range points {
		if p == 26 {
			return s, true
		}
	}
	return 0, false
}

// ApplyMoonTransform returns the scored round points: if a single seat
// collected all 26 points, it returns a new map in which that seat
// scores 0 and every other seat scores 26; otherwise it returns points
// itself. points is never modified.
func ApplyMoonTransform(points map[Seat]int) map[Seat]int {
	shooter, shot := MoonShooter(points)
	if !shot {
		return points
	}
	out := make(map[Seat]int, len(points))
	for s := range points {
		if s == shooter {
			out[s] = 0
		} else {
			out[s] = 26
		}
	}
	return out
}
