package belief

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

func ownHand13() card.Set {
	return card.Of(
		card.TwoOfClubs, card.New(card.Clubs, card.Five), card.New(card.Clubs, card.Ten),
		card.New(card.Diamonds, card.Jack), card.New(card.Diamonds, card.Queen), card.New(card.Diamonds, card.Ace),
		card.New(card.Spades, card.Three), card.New(card.Spades, card.Nine), card.New(card.Spades, card.King),
		card.New(card.Hearts, card.Four), card.New(card.Hearts, card.Eight), card.New(card.Hearts, card.Ten),
		card.New(card.Hearts, card.Queen),
	)
}

// assertReconciled checks the two marginal invariants from spec §3/§8:
// each unseen card's row sums to 1, and each opponent's column
// sums to its remaining count.
func assertReconciled(t *testing.T, tr *Tracker) {
	t.Helper()
	for _, c := range tr.Unseen().Cards() {
		sum := tr.Prob(c, rules.Opponent1) + tr.Prob(c, rules.Opponent2) + tr.Prob(c, rules.Opponent3)
		assert.InDelta(t, 1.0, sum, 1e-6, "row sum for %v should be 1, got %f", c, sum)
		for _, seat := range []rules.Seat{rules.Opponent1, rules.Opponent2, rules.Opponent3} {
			for suit := card.Clubs; suit <= card.Hearts; suit++ {
				if tr.IsVoid(seat, suit) && c.Suit == suit {
					assert.Zero(t, tr.Prob(c, seat), "void seat %v suit %v must have zero prob on %v", seat, suit, c)
				}
			}
		}
	}
	for _, seat := range []rules.Seat{rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		var colSum float64
		for _, c := range tr.Unseen().Cards() {
			colSum += tr.Prob(c, seat)
		}
		assert.InDelta(t, float64(tr.Remaining(seat)), colSum, 1e-6, "column sum for %v should equal remaining", seat)
	}
}

func TestInitReconciled(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)
	require.Equal(t, 39, tr.Unseen().Len())
	for _, seat := range []rules.Seat{rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		require.Equal(t, 13, tr.Remaining(seat))
	}
	assertReconciled(t, tr)
}

func TestInitWithKnownPass(t *testing.T) {
	tr := New()
	passed := card.New(card.Spades, card.Ace)
	tr.Init(ownHand13(), map[rules.Seat]card.Set{rules.Opponent2: card.Of(passed)})
	assert.InDelta(t, 1.0, tr.Prob(passed, rules.Opponent2), 1e-9)
	assert.Zero(t, tr.Prob(passed, rules.Opponent1))
	assert.Zero(t, tr.Prob(passed, rules.Opponent3))
	assertReconciled(t, tr)
}

func TestOnPlayOpponentRemovesCardAndDecrementsRemaining(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)
	c := card.New(card.Clubs, card.King)
	require.NoError(t, tr.OnPlay(rules.Opponent1, c))
	assert.False(t, tr.Unseen().Contains(c))
	assert.Equal(t, 12, tr.Remaining(rules.Opponent1))
	assertReconciled(t, tr)
}

func TestOnPlaySelfIsNoop(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)
	before := tr.Unseen()
	require.NoError(t, tr.OnPlay(rules.Self, card.New(card.Clubs, card.King)))
	assert.Equal(t, before, tr.Unseen())
}

func TestOnPlayFailingToFollowMarksVoid(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Clubs, card.Three)))
	discard := card.New(card.Hearts, card.Two)
	require.NoError(t, tr.OnPlay(rules.Opponent2, discard))
	assert.True(t, tr.IsVoid(rules.Opponent2, card.Clubs))
	for _, c := range card.SuitMask(card.Clubs).Cards() {
		assert.Zero(t, tr.Prob(c, rules.Opponent2), "void seat should have zero prob on %v", c)
	}
	assertReconciled(t, tr)
}

func TestVoidIsMonotonic(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)

	// Trick 1: Opponent2 leads Diamonds; Opponent1 fails to follow.
	require.NoError(t, tr.OnPlay(rules.Opponent2, card.New(card.Diamonds, card.Two)))
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Hearts, card.Three)))
	require.True(t, tr.IsVoid(rules.Opponent1, card.Diamonds))
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Diamonds, card.Three)))
	require.NoError(t, tr.OnPlay(rules.Self, card.New(card.Clubs, card.Ace)))

	// Trick 2: Opponent3 leads Spades; Opponent1 fails to follow again.
	// This must not clear the Diamonds void recorded in trick 1.
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Spades, card.Two)))
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Hearts, card.Two)))
	assert.True(t, tr.IsVoid(rules.Opponent1, card.Diamonds))
}

func TestIllegalObservationRecoversVoid(t *testing.T) {
	tr := New()
	tr.Init(ownHand13(), nil)
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Clubs, card.Three)))
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Hearts, card.Three)))
	require.True(t, tr.IsVoid(rules.Opponent3, card.Clubs))

	// Opponent3 now plays a Club despite the believed void, later in the
	// same trick: recoverable.
	err := tr.OnPlay(rules.Opponent3, card.New(card.Clubs, card.Jack))
	var illegal *IllegalObservationError
	require.True(t, errors.As(err, &illegal))
	assert.False(t, tr.IsVoid(rules.Opponent3, card.Clubs))
	assertReconciled(t, tr)
}
