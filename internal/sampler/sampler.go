// Package sampler draws a concrete assignment of every card unseen by
// self to one of the three opponent seats, consistent with the belief
// tracker's hard constraints (voids, remaining hand sizes) and biased
// by its probability weights. It is the consistent-world determinizer
// the simulator rolls out.
package sampler

import (
	"errors"
	"math/rand/v2"
	"sort"

	"github.com/lox/heartscore/internal/belief"
	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

// DefaultMaxRetries is the feasibility-restart cap used when the host
// does not override it.
const DefaultMaxRetries = 32

// ErrInfeasible is returned when neither the ordered draw nor the
// constructive fallback could complete an assignment — per spec §7
// this means beliefs are corrupt and the decision must abort.
var ErrInfeasible = errors.New("sampler: no feasible assignment of unseen cards to opponent seats")

// Assignment maps each opponent seat to its sampled hand.
type Assignment map[rules.Seat]card.Set

// Draw samples one consistent world from tr using rng. It first tries
// the ordered algorithm (degree-of-freedom order, §4.3 steps 1-4) up
// to maxRetries times; if every attempt dead-ends it falls back to the
// constructive, most-constrained-first algorithm, which recomputes
// feasibility after every assignment. The fallback is greedy: it can
// still reach a card with no feasible seat, and Draw then returns
// ErrInfeasible.
func Draw(tr *belief.Tracker, rng *rand.Rand, maxRetries int) (Assignment, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	unseen := tr.Unseen().Cards()

	for attempt := 0; attempt < maxRetries; attempt++ {
		if assign, ok := orderedDraw(tr, unseen, rng); ok {
			return assign, nil
		}
	}
	if assign, ok := constructiveDraw(tr, unseen, rng); ok {
		return assign, nil
	}
	return nil, ErrInfeasible
}

// orderedDraw implements §4.3 steps 1-4: sort unseen cards by ascending
// degree of freedom (ties by card index, which Cards() already yields
// in ascending order, and sort.SliceStable preserves that), then walk
// the fixed order sampling a seat for each card from its still-feasible
// candidates. A dead end (no feasible seat) aborts this attempt.
func orderedDraw(tr *belief.Tracker, unseen []card.Card, rng *rand.Rand) (Assignment, bool) {
	ordered := make([]card.Card, len(unseen))
	copy(ordered, unseen)
	sort.SliceStable(ordered, func(i, j int) bool {
		return degreeOfFreedom(tr, ordered[i]) < degreeOfFreedom(tr, ordered[j])
	})

	var assigned [3]int
	result := make(Assignment, 3)
	for _, seat := range rules.Opponents() {
		result[seat] = 0
	}

	for _, c := range ordered {
		feasible := feasibleSeats(tr, c, assigned)
		if len(feasible) == 0 {
			return nil, false
		}
		seat := weightedChoice(tr, c, feasible, rng)
		result[seat] = result[seat].Add(c)
		assigned[seat.OpponentIndex()]++
	}
	return result, true
}

// constructiveDraw is the rejection-free fallback: at each step it
// recomputes every remaining card's feasible-seat set against the
// current partial assignment and picks the most constrained card
// (smallest feasible set, ties by card index) next. Forced cards
// (exactly one feasible seat) are always picked first because they
// always have the smallest possible feasible-set size.
func constructiveDraw(tr *belief.Tracker, unseen []card.Card, rng *rand.Rand) (Assignment, bool) {
	remaining := make([]card.Card, len(unseen))
	copy(remaining, unseen)

	var assigned [3]int
	result := make(Assignment, 3)
	for _, seat := range rules.Opponents() {
		result[seat] = 0
	}

	for len(remaining) > 0 {
		bestIdx := -1
		var bestFeasible []rules.Seat
		for i, c := range remaining {
			feasible := feasibleSeats(tr, c, assigned)
			if len(feasible) == 0 {
				return nil, false
			}
			if bestIdx == -1 || len(feasible) < len(bestFeasible) {
				bestIdx, bestFeasible = i, feasible
			}
		}
		c := remaining[bestIdx]
		seat := weightedChoice(tr, c, bestFeasible, rng)
		result[seat] = result[seat].Add(c)
		assigned[seat.OpponentIndex()]++
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return result, true
}

func degreeOfFreedom(tr *belief.Tracker, c card.Card) int {
	n := 0
	for _, s := range rules.Opponents() {
		if tr.Prob(c, s) > 0 {
			n++
		}
	}
	return n
}

func feasibleSeats(tr *belief.Tracker, c card.Card, assigned [3]int) []rules.Seat {
	var seats []rules.Seat
	for _, s := range rules.Opponents() {
		if tr.Prob(c, s) > 0 && assigned[s.OpponentIndex()] < tr.Remaining(s) {
			seats = append(seats, s)
		}
	}
	return seats
}

// weightedChoice samples one seat from candidates, weighted by
// tr.Prob(c, seat).
func weightedChoice(tr *belief.Tracker, c card.Card, candidates []rules.Seat, rng *rand.Rand) rules.Seat {
	if len(candidates) == 1 {
		return candidates[0]
	}
	var total float64
	weights := make([]float64, len(candidates))
	for i, s := range candidates {
		w := tr.Prob(c, s)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		// All candidates carry zero weight (can happen only through a
		// reconciliation rounding artifact); fall back to uniform so
		// the draw still makes progress.
		return candidates[rng.IntN(len(candidates))]
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
