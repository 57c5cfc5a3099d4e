// Package belief maintains, per unseen card, a probability mass over
// the three opponent seats, together with void flags and remaining
// hand-size counters. It is the bot's only source of uncertainty about
// the world; the sampler (package sampler) draws concrete worlds from
// it.
package belief

import (
	"fmt"
	"math"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

const (
	reconcileEpsilon   = 1e-9
	reconcileMaxIters  = 64
	numOpponents       = 3
	numSuits           = 4
)

// IllegalObservationError reports an observed play inconsistent with
// the current beliefs — the card had already been seen, or the seat
// was marked void in the suit it just played. Per spec §7 this is
// recovered in favor of the observation (the conflicting void is
// unset, the card is treated as newly seen) rather than failing the
// decision.
type IllegalObservationError struct {
	Seat   rules.Seat
	Card   card.Card
	Reason string
}

func (e *IllegalObservationError) Error() string {
	return fmt.Sprintf("belief: illegal observation seat=%v card=%v: %s", e.Seat, e.Card, e.Reason)
}

// Tracker owns the probability matrix, void flags, and remaining-count
// state for one round, for one bot instance. It also tracks the trick
// currently in progress (the lead suit and how many seats have played
// into it so far) so OnPlay can infer void suits from the bare
// (seat, card) observations §6 specifies, without callers needing to
// supply trick context themselves.
type Tracker struct {
	unseen    card.Set
	probs     map[int][numOpponents]float64
	void      [numOpponents][numSuits]bool
	remaining [numOpponents]int

	leadSuit     card.Suit
	playsInTrick int
}

// New creates an empty Tracker. Call Init before use.
func New() *Tracker {
	return &Tracker{probs: make(map[int][numOpponents]float64, 39)}
}

// Init seeds the tracker from the bot's own hand and any known passes
// (cards self passed to a specific opponent, if the passing phase is
// tracked by the host). Each opponent's remaining count starts at 13 —
// the full hand size — regardless of known passes: a known pass pins
// that card's probability mass to its recipient but does not change
// how many cards the recipient physically holds.
func (t *Tracker) Init(ownHand card.Set, passedTo map[rules.Seat]card.Set) {
	t.unseen = card.FullDeck.Minus(ownHand)
	for i := range t.remaining {
		t.remaining[i] = 13
	}
	for i := range t.void {
		t.void[i] = [numSuits]bool{}
	}
	t.probs = make(map[int][numOpponents]float64, t.unseen.Len())
	t.playsInTrick = 0

	knownSeat := make(map[int]int, 13) // card index -> opponent index
	for seat, cards := range passedTo {
		oi := seat.OpponentIndex()
		for _, c := range cards.Cards() {
			knownSeat[c.Index()] = oi
		}
	}

	for _, c := range t.unseen.Cards() {
		var row [numOpponents]float64
		if oi, known := knownSeat[c.Index()]; known {
			row[oi] = 1
		} else {
			for i := range row {
				row[i] = 1.0 / numOpponents
			}
		}
		t.probs[c.Index()] = row
	}
	t.reconcile()
}

// Prob returns the probability that seat holds c, 0 for self or for
// cards no longer unseen.
func (t *Tracker) Prob(c card.Card, seat rules.Seat) float64 {
	if seat == rules.Self {
		return 0
	}
	row, ok := t.probs[c.Index()]
	if !ok {
		return 0
	}
	return row[seat.OpponentIndex()]
}

// Remaining returns the number of cards still believed to be in
// seat's hand.
func (t *Tracker) Remaining(seat rules.Seat) int {
	if seat == rules.Self {
		return 0
	}
	return t.remaining[seat.OpponentIndex()]
}

// IsVoid reports whether seat is known to hold no cards of suit.
func (t *Tracker) IsVoid(seat rules.Seat, suit card.Suit) bool {
	if seat == rules.Self {
		return false
	}
	return t.void[seat.OpponentIndex()][suit]
}

// Unseen returns the set of cards not yet seen by self: the union of
// all three opponents' remaining hands.
func (t *Tracker) Unseen() card.Set {
	return t.unseen
}

// markVoid sets the void flag for seat/suit and zeroes that suit's
// column for every unseen card, provided seat is not self.
func (t *Tracker) markVoid(seat rules.Seat, suit card.Suit) {
	oi := seat.OpponentIndex()
	t.void[oi][suit] = true
	for idx, row := range t.probs {
		if card.FromIndex(idx).Suit != suit {
			continue
		}
		row[oi] = 0
		t.probs[idx] = row
	}
}

// unsetVoid clears a previously (incorrectly) recorded void, used only
// by the illegal-observation recovery path.
func (t *Tracker) unsetVoid(seat rules.Seat, suit card.Suit) {
	t.void[seat.OpponentIndex()][suit] = false
}

// OnPlay records that seat played c, deriving the trick context (lead
// suit, and whether c was itself the lead) from plays observed since
// the last OnTrickComplete rather than requiring callers to track it.
//
// Self's plays must also be reported here, in seat order, so the
// tracker's own lead-suit/play-count bookkeeping stays correct across
// a trick self leads — Self carries no belief weight of its own, so
// the only effect of a Self play is advancing that bookkeeping.
//
// Returns a non-nil *IllegalObservationError when the observation
// contradicted the tracker's prior beliefs; the contradiction has
// already been corrected in favor of the observation by the time this
// function returns, so callers should log the error and continue
// rather than treat it as fatal.
func (t *Tracker) OnPlay(seat rules.Seat, c card.Card) error {
	isLead := t.playsInTrick == 0
	leadSuit := t.leadSuit
	if isLead {
		leadSuit = c.Suit
		t.leadSuit = c.Suit
	}
	t.playsInTrick++
	if t.playsInTrick >= 4 {
		t.playsInTrick = 0
	}

	if seat == rules.Self {
		return nil
	}
	oi := seat.OpponentIndex()

	var recovered *IllegalObservationError
	if t.void[oi][c.Suit] {
		// Contradiction: seat was believed void in the suit of the
		// card it just played. Recover in favor of the observation.
		t.unsetVoid(seat, c.Suit)
		recovered = &IllegalObservationError{Seat: seat, Card: c, Reason: "seat played a suit it was marked void in"}
	}

	if !t.unseen.Contains(c) {
		if recovered == nil {
			recovered = &IllegalObservationError{Seat: seat, Card: c, Reason: "card had already been marked seen"}
		}
	} else {
		delete(t.probs, c.Index())
		t.unseen = t.unseen.Remove(c)
		if t.remaining[oi] > 0 {
			t.remaining[oi]--
		}
	}

	if !isLead && c.Suit != leadSuit {
		t.markVoid(seat, leadSuit)
	}

	t.reconcile()
	return recovered
}

// OnTrickComplete resets the lead-tracking state OnPlay derives
// isLead/leadSuit from, beyond the per-play updates already applied in
// OnPlay. A driver that calls OnPlay for every seat's play each trick
// (including Self's) never needs this — the 4th play already resets
// it — but it's kept as a stable hook for drivers that skip reporting
// Self's plays, or replay only a partial trick.
func (t *Tracker) OnTrickComplete(trick rules.Trick) {
	t.playsInTrick = 0
}

// reconcile re-establishes both marginal constraints — each unseen
// card's row sums to 1 (unless every seat is voided, which cannot
// happen while the card is still unseen), and each opponent's column
// sums to its remaining count — by iterative proportional fitting
// (Sinkhorn scaling). Void cells stay at zero throughout since scaling
// a zero leaves it zero.
func (t *Tracker) reconcile() {
	if len(t.probs) == 0 {
		return
	}
	for iter := 0; iter < reconcileMaxIters; iter++ {
		maxDelta := t.normalizeRows()
		maxDelta = math.Max(maxDelta, t.scaleColumns())
		if maxDelta < reconcileEpsilon {
			return
		}
	}
}

func (t *Tracker) normalizeRows() float64 {
	var maxDelta float64
	for idx, row := range t.probs {
		sum := row[0] + row[1] + row[2]
		if sum <= 0 {
			continue
		}
		for i := range row {
			before := row[i]
			row[i] = row[i] / sum
			if d := math.Abs(row[i] - before); d > maxDelta {
				maxDelta = d
			}
		}
		t.probs[idx] = row
	}
	return maxDelta
}

func (t *Tracker) scaleColumns() float64 {
	var colSum [numOpponents]float64
	for _, row := range t.probs {
		for i := range row {
			colSum[i] += row[i]
		}
	}
	var scale [numOpponents]float64
	for i := range scale {
		if colSum[i] > 0 {
			scale[i] = float64(t.remaining[i]) / colSum[i]
		} else {
			scale[i] = 1
		}
	}
	var maxDelta float64
	for idx, row := range t.probs {
		for i := range row {
			before := row[i]
			row[i] = row[i] * scale[i]
			if d := math.Abs(row[i] - before); d > maxDelta {
				maxDelta = d
			}
		}
		t.probs[idx] = row
	}
	return maxDelta
}
