// Package simulator rolls a fully determinized RoundState out to
// completion under the fixed opponent policy from package heuristics,
// returning each seat's final round points after the shoot-the-moon
// transform.
package simulator

import (
	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/heuristics"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
)

// Rollout plays candidate as self's next move on st, then autopilots
// every remaining play — self's own later tricks included — through
// the fixed policy (§4.6) until the round is complete. §4.6 only
// specifies self's very first move explicitly (the candidate under
// evaluation); we resolve the otherwise-unspecified behavior for
// self's later plays the same way a determinized rollout conventionally
// does, by reusing the same cheap fixed policy for every seat once the
// candidate has been committed, rather than recursing into another
// round of Monte Carlo search.
//
// st is mutated in place; callers own scratch-buffer reuse via
// round.State.Reset or round.State.ResumeAt.
func Rollout(st *round.State, candidate card.Card) (map[rules.Seat]int, error) {
	if err := st.Play(rules.Self, candidate); err != nil {
		return nil, err
	}

	for !st.Done() {
		seat := st.ActionOn()
		hand := st.Hands[seat]
		c := heuristics.FixedPolicy(hand, st.Trick, st.HeartsBroken, st.IsFirstTrick())
		if err := st.Play(seat, c); err != nil {
			return nil, err
		}
	}

	return st.ScoredPoints(), nil
}
