// Package heuristics implements the zero-sample fast-path overrides
// consulted before Monte Carlo sampling (§4.5), and the fixed
// lightweight opponent policy the simulator plays rollouts against
// (§4.6).
package heuristics

import (
	"math/rand/v2"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

// Consult returns a forced move and true when one of the unconditional
// overrides applies, or (Card{}, false) when the decision should defer
// to Monte Carlo. Only the forced overrides from §4.5 live here — the
// Queen-of-Spades-dump signal is explicitly advisory ("flagged but not
// forced") and is exposed separately via QueenDumpSignal so the
// decision layer can use it to order candidates without shortcutting
// evaluation.
func Consult(legal card.Set, trick rules.Trick, selfCanShootMoon bool) (card.Card, bool) {
	if legal.Len() == 1 {
		c, _ := legal.Lowest()
		return c, true
	}

	if len(trick) > 0 {
		leadSuit, _ := trick.LeadSuit()
		offSuit := legal.OfSuit(leadSuit).Empty()
		if offSuit && !selfCanShootMoon {
			if c, ok := highestPointCard(legal); ok {
				return c, true
			}
		}
	}

	return card.Card{}, false
}

// highestPointCard implements "prefer Queen > high Heart > low Heart":
// the Queen of Spades outranks every Heart since it carries more
// points, and among Hearts the highest rank is preferred.
func highestPointCard(legal card.Set) (card.Card, bool) {
	if legal.Contains(card.QueenOfSpades) {
		return card.QueenOfSpades, true
	}
	return legal.OfSuit(card.Hearts).Highest()
}

// QueenDumpSignal reports whether playing the Queen of Spades right
// now is the advisory-only heuristic from §4.5 item 3: the Queen is
// playable, a previous seat in this trick already played the Ace or
// King of Spades, and self is not the trick's last player. The
// decision layer may use this to bias candidate ordering; it must not
// treat it as forced.
func QueenDumpSignal(legal card.Set, trick rules.Trick) bool {
	if !legal.Contains(card.QueenOfSpades) {
		return false
	}
	if len(trick) == 0 || len(trick) == 3 {
		return false
	}
	for _, p := range trick {
		if p.Card.Suit == card.Spades && (p.Card.Rank == card.Ace || p.Card.Rank == card.King) {
			return true
		}
	}
	return false
}

// CanShootMoon is the conservative proxy the decision layer uses for
// "self cannot shoot the moon in the remaining tricks" (§4.5 item 4).
// The spec leaves an aggressive-moon strategy as an open, host-gated
// question, so with aggressiveMoon off it always reports false. With
// aggressiveMoon on, it reports true until any other seat has
// collected a point this round.
func CanShootMoon(pointsSoFar map[rules.Seat]int, aggressiveMoon bool) bool {
	if !aggressiveMoon {
		return false
	}
	for seat, pts := range pointsSoFar {
		if seat != rules.Self && pts > 0 {
			return false
		}
	}
	return true
}

// FixedPolicy is the opponent contract used inside simulator rollouts
// (§4.6): deterministic given hand/trick/state, so rollouts reproduce.
func FixedPolicy(hand card.Set, trick rules.Trick, heartsBroken bool, isFirstTrick bool) card.Card {
	legal := rules.LegalPlays(hand, trick, heartsBroken, isFirstTrick)
	if legal.Len() == 1 {
		c, _ := legal.Lowest()
		return c
	}

	if len(trick) == 0 {
		return leadChoice(legal)
	}

	leadSuit, _ := trick.LeadSuit()
	if !hand.OfSuit(leadSuit).Empty() {
		return followChoice(legal, trick, leadSuit)
	}
	return discardChoice(legal)
}

// RandomPolicy picks uniformly among the legal plays, mirroring the
// teacher's sdk/bot/random against FixedPolicy's sdk/bot/complex:
// a cheap opponent shape for benchmarking that carries no strategy of
// its own, so latency measurements aren't skewed by FixedPolicy's
// (very slight) per-decision branching cost.
func RandomPolicy(rng *rand.Rand, hand card.Set, trick rules.Trick, heartsBroken bool, isFirstTrick bool) card.Card {
	legal := rules.LegalPlays(hand, trick, heartsBroken, isFirstTrick)
	cards := legal.Cards()
	return cards[rng.IntN(len(cards))]
}

// leadChoice: the lowest non-point card in the longest suit held,
// falling back to the lowest card overall when that suit is all
// points (or legal is otherwise constrained).
func leadChoice(legal card.Set) card.Card {
	bestSuit := card.Clubs
	bestLen := -1
	for suit := card.Clubs; suit <= card.Hearts; suit++ {
		if l := legal.OfSuit(suit).Len(); l > bestLen {
			bestLen, bestSuit = l, suit
		}
	}
	nonPoint := legal.OfSuit(bestSuit).Minus(card.SuitMask(card.Hearts)).Remove(card.QueenOfSpades)
	if lo, ok := nonPoint.Lowest(); ok {
		return lo
	}
	lo, _ := legal.Lowest()
	return lo
}

// followChoice implements the "able to follow suit" branch of §4.6:
// duck below the current winner when the trick already carries
// points, otherwise win as cheaply as possible only when last to act,
// otherwise play low.
func followChoice(legal card.Set, trick rules.Trick, leadSuit card.Suit) card.Card {
	winningCard := currentWinningCard(trick, leadSuit)
	if trickCarriesPoints(trick) {
		below := legal.OfSuit(leadSuit).Minus(rankAtOrAbove(winningCard.Rank))
		if hi, ok := below.Highest(); ok {
			return hi
		}
		lo, _ := legal.Lowest()
		return lo
	}

	if len(trick) == 3 {
		winners := legal.OfSuit(leadSuit).Intersect(rankAbove(winningCard.Rank))
		if lo, ok := winners.Lowest(); ok {
			return lo
		}
	}
	lo, _ := legal.Lowest()
	return lo
}

// discardChoice implements the "unable to follow suit" branch: dump
// the highest Heart, else the Queen of Spades, else the highest card
// of any suit.
func discardChoice(legal card.Set) card.Card {
	if hi, ok := legal.OfSuit(card.Hearts).Highest(); ok {
		return hi
	}
	if legal.Contains(card.QueenOfSpades) {
		return card.QueenOfSpades
	}
	hi, _ := legal.Highest()
	return hi
}

func currentWinningCard(trick rules.Trick, leadSuit card.Suit) card.Card {
	var best card.Card
	set := false
	for _, p := range trick {
		if p.Card.Suit == leadSuit && (!set || p.Card.Rank > best.Rank) {
			best, set = p.Card, true
		}
	}
	return best
}

func trickCarriesPoints(trick rules.Trick) bool {
	for _, p := range trick {
		if p.Card.IsPointCard() {
			return true
		}
	}
	return false
}

// rankAtOrAbove returns a mask of every card (any suit) whose rank is
// >= r, used to restrict a single-suit set to ranks below r via Minus.
func rankAtOrAbove(r card.Rank) card.Set {
	var s card.Set
	for suit := card.Clubs; suit <= card.Hearts; suit++ {
		for rr := r; rr <= card.Ace; rr++ {
			s = s.Add(card.New(suit, rr))
		}
	}
	return s
}

// rankAbove returns a mask of every card (any suit) whose rank is > r.
func rankAbove(r card.Rank) card.Set {
	if r == card.Ace {
		return 0
	}
	return rankAtOrAbove(r + 1)
}
