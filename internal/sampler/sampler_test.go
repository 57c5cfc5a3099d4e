package sampler

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/heartscore/internal/belief"
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

func assertValidAssignment(t *testing.T, tr *belief.Tracker, ownHand card.Set, played card.Set, assign Assignment) {
	t.Helper()
	var union card.Set
	for _, seat := range rules.Opponents() {
		hand := assign[seat]
		assert.Equal(t, tr.Remaining(seat), hand.Len(), "seat %v hand size should equal remaining", seat)
		for _, c := range hand.Cards() {
			assert.False(t, tr.IsVoid(seat, c.Suit), "seat %v is void in %v but was assigned %v", seat, c.Suit, c)
		}
		assert.Zero(t, union.Intersect(hand).Len(), "assignment must not double-assign a card")
		union = union.Union(hand)
	}
	assert.Equal(t, tr.Unseen().Len(), union.Len(), "assignment must cover every unseen card exactly once")
	full := union.Union(ownHand).Union(played)
	assert.Equal(t, card.FullDeck, full, "own hand + assignment + already-played cards must equal the full deck")
}

func TestDrawBasic(t *testing.T) {
	tr := belief.New()
	tr.Init(ownHand13(), nil)
	rng := rand.New(rand.NewPCG(1, 2))

	assign, err := Draw(tr, rng, DefaultMaxRetries)
	require.NoError(t, err)
	assertValidAssignment(t, tr, ownHand13(), 0, assign)
}

func TestDrawRespectsVoids(t *testing.T) {
	tr := belief.New()
	tr.Init(ownHand13(), nil)
	// Trick 1: Opponent3 leads Clubs; Opponent1 fails to follow.
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Clubs, card.Three)))
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Hearts, card.Two)))
	tr.OnTrickComplete(nil)
	// Trick 2: Opponent3 leads Spades; Opponent2 fails to follow.
	require.NoError(t, tr.OnPlay(rules.Opponent3, card.New(card.Spades, card.Four)))
	require.NoError(t, tr.OnPlay(rules.Opponent2, card.New(card.Hearts, card.Three)))

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20; i++ {
		assign, err := Draw(tr, rng, DefaultMaxRetries)
		require.NoError(t, err)
		played := card.Of(
			card.New(card.Clubs, card.Three), card.New(card.Hearts, card.Two),
			card.New(card.Spades, card.Four), card.New(card.Hearts, card.Three),
		)
		assertValidAssignment(t, tr, ownHand13(), played, assign)
	}
}

func TestDrawManyTrialsStayFeasible(t *testing.T) {
	tr := belief.New()
	tr.Init(ownHand13(), nil)
	// Force opponent1 void in two suits, narrowing their feasible suits
	// — a tight but still feasible instance.
	require.NoError(t, tr.OnPlay(rules.Opponent2, card.New(card.Clubs, card.Four)))
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Spades, card.Two)))
	tr.OnTrickComplete(nil)
	require.NoError(t, tr.OnPlay(rules.Opponent2, card.New(card.Diamonds, card.Four)))
	require.NoError(t, tr.OnPlay(rules.Opponent1, card.New(card.Spades, card.Five)))
	played := card.Of(
		card.New(card.Clubs, card.Four), card.New(card.Spades, card.Two),
		card.New(card.Diamonds, card.Four), card.New(card.Spades, card.Five),
	)

	rng := rand.New(rand.NewPCG(42, 99))
	for i := 0; i < 50; i++ {
		assign, err := Draw(tr, rng, DefaultMaxRetries)
		require.NoError(t, err)
		assertValidAssignment(t, tr, ownHand13(), played, assign)
	}
}

func TestConstructiveDrawDirectly(t *testing.T) {
	tr := belief.New()
	tr.Init(ownHand13(), nil)
	rng := rand.New(rand.NewPCG(3, 5))
	assign, ok := constructiveDraw(tr, tr.Unseen().Cards(), rng)
	require.True(t, ok)
	assertValidAssignment(t, tr, ownHand13(), 0, assign)
}
