// Package round holds the mutable round-in-progress value: per-seat
// hands, the current trick, the leader, the hearts-broken flag, and
// running points. It is the only object mutated while the decision
// core plays out a hand or a simulated rollout.
package round

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

// Fatal errors — per spec §7, these indicate corrupted invariants and
// abort the decision with no partial mutation committed.
var (
	// ErrEmptyLegalMoves signals a hand with no legal play, which can
	// only happen if the rules engine itself has a bug.
	ErrEmptyLegalMoves = errors.New("round: no legal moves available")

	// ErrIllegalMove signals a requested play inconsistent with the
	// round's observation history (e.g. the seat does not hold the
	// card, or the card is not in the legal-plays filter).
	ErrIllegalMove = errors.New("round: illegal move")

	// ErrInvalidRound signals a hand-disjointness or card-count
	// invariant violation detected at construction time.
	ErrInvalidRound = errors.New("round: invariant violation")
)

// State is a round of Hearts in progress.
type State struct {
	Hands        map[rules.Seat]card.Set
	Trick        rules.Trick
	Leader       rules.Seat
	HeartsBroken bool
	Points       map[rules.Seat]int
	History      []rules.Trick
	Rules        rules.Rules

	firstTrick bool
	played     card.Set
}

// New creates a round from four disjoint 13-card hands. The seat
// holding the two of clubs leads the first trick.
func New(hands map[rules.Seat]card.Set, r rules.Rules) (*State, error) {
	if err := validateHands(hands); err != nil {
		return nil, err
	}

	leader := rules.Self
	found := false
	for seat, hand := range hands {
		if hand.Contains(card.TwoOfClubs) {
			leader = seat
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no seat holds the two of clubs", ErrInvalidRound)
	}

	return &State{
		Hands:      cloneHands(hands),
		Leader:     leader,
		Points:     map[rules.Seat]int{rules.Self: 0, rules.Opponent1: 0, rules.Opponent2: 0, rules.Opponent3: 0},
		Rules:      r,
		firstTrick: true,
	}, nil
}

func validateHands(hands map[rules.Seat]card.Set) error {
	seats := []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3}
	var union card.Set
	total := 0
	for _, s := range seats {
		h, ok := hands[s]
		if !ok {
			return fmt.Errorf("%w: missing hand for seat %v", ErrInvalidRound, s)
		}
		if h.Intersect(union) != 0 {
			return fmt.Errorf("%w: hands are not pairwise disjoint", ErrInvalidRound)
		}
		union = union.Union(h)
		total += h.Len()
	}
	if total != 52 {
		return fmt.Errorf("%w: hands total %d cards, want 52", ErrInvalidRound, total)
	}
	return nil
}

// Deal shuffles a fresh 52-card deck with rng and splits it into four
// 13-card hands, one per seat. It is a convenience for simulation and
// benchmark tooling, not part of the decision core's own operation.
func Deal(rng *rand.Rand) map[rules.Seat]card.Set {
	deck := card.FullDeck.Cards()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	hands := make(map[rules.Seat]card.Set, 4)
	seats := []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3}
	for i, c := range deck {
		seat := seats[i/13]
		hands[seat] = hands[seat].Add(c)
	}
	return hands
}

func cloneHands(hands map[rules.Seat]card.Set) map[rules.Seat]card.Set {
	out := make(map[rules.Seat]card.Set, len(hands))
	for s, h := range hands {
		out[s] = h
	}
	return out
}

// ActionOn returns the seat whose turn it is to play.
func (s *State) ActionOn() rules.Seat {
	if len(s.Trick) == 0 {
		return s.Leader
	}
	return s.Trick[len(s.Trick)-1].Seat.Next()
}

// IsFirstTrick reports whether the round's opening trick is still in
// progress (or about to begin).
func (s *State) IsFirstTrick() bool {
	return s.firstTrick
}

// LegalPlays returns the legal plays for the seat currently on move.
func (s *State) LegalPlays() card.Set {
	seat := s.ActionOn()
	return rules.LegalPlays(s.Hands[seat], s.Trick, s.HeartsBroken, s.firstTrick)
}

// Done reports whether every hand has been exhausted.
func (s *State) Done() bool {
	for _, h := range s.Hands {
		if !h.Empty() {
			return false
		}
	}
	return true
}

// Play applies seat playing c: it validates the move against the
// legal-plays filter, removes the card from the seat's hand, appends
// it to the current trick, updates hearts-broken, and — if the trick
// is now complete — scores it and sets up the next leader.
func (s *State) Play(seat rules.Seat, c card.Card) error {
	if seat != s.ActionOn() {
		return fmt.Errorf("%w: seat %v acted out of turn", ErrIllegalMove, seat)
	}
	hand := s.Hands[seat]
	if !hand.Contains(c) {
		return fmt.Errorf("%w: seat %v does not hold %v", ErrIllegalMove, seat, c)
	}
	legal := rules.LegalPlays(hand, s.Trick, s.HeartsBroken, s.firstTrick)
	if legal.Empty() {
		return ErrEmptyLegalMoves
	}
	if !legal.Contains(c) {
		return fmt.Errorf("%w: %v is not legal for seat %v", ErrIllegalMove, c, seat)
	}

	s.Hands[seat] = hand.Remove(c)
	s.played = s.played.Add(c)
	s.Trick = append(s.Trick, rules.Play{Seat: seat, Card: c})
	s.HeartsBroken = rules.HeartsBrokenAfter(s.HeartsBroken, c, s.Rules)

	if s.Trick.Full() {
		winner := rules.TrickWinner(s.Trick)
		s.Points[winner] += rules.TrickPoints(s.Trick)
		s.History = append(s.History, s.Trick)
		s.Trick = nil
		s.Leader = winner
		s.firstTrick = false
	}
	return nil
}

// ScoredPoints returns s.Points with the shoot-the-moon transform
// applied, as appropriate only once the round is Done.
func (s *State) ScoredPoints() map[rules.Seat]int {
	return rules.ApplyMoonTransform(s.Points)
}

// Reset reinitializes the scratch state in place for hands, avoiding
// allocation churn across repeated simulator rollouts from the same
// decision. It is the caller's responsibility to supply hands that
// satisfy the same invariants as New.
func (s *State) Reset(hands map[rules.Seat]card.Set, leader rules.Seat, r rules.Rules) {
	if s.Hands == nil {
		s.Hands = make(map[rules.Seat]card.Set, 4)
	}
	for seat, h := range hands {
		s.Hands[seat] = h
	}
	s.Trick = s.Trick[:0]
	s.Leader = leader
	s.HeartsBroken = false
	s.Rules = r
	s.firstTrick = true
	s.played = 0
	if s.Points == nil {
		s.Points = make(map[rules.Seat]int, 4)
	}
	for _, seat := range []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		s.Points[seat] = 0
	}
	s.History = s.History[:0]
}

// ResumeAt reinitializes the scratch state in place to a snapshot of a
// round already in progress: an in-flight trick, accumulated points,
// and the hearts-broken/first-trick flags as observed by the host.
// Unlike Reset (which always starts a fresh round at the two of clubs),
// ResumeAt is what the decision core uses to seed a rollout from
// exactly the position it is currently deciding in, so the simulated
// continuation reflects the real trick in progress rather than a new
// deal. It performs only a pairwise-disjointness check on hands, since
// the 52-card total invariant does not hold once a round is under way.
func (s *State) ResumeAt(hands map[rules.Seat]card.Set, trick rules.Trick, leader rules.Seat, heartsBroken, isFirstTrick bool, points map[rules.Seat]int, r rules.Rules) error {
	if err := validateDisjoint(hands); err != nil {
		return err
	}
	if s.Hands == nil {
		s.Hands = make(map[rules.Seat]card.Set, 4)
	}
	for seat, h := range hands {
		s.Hands[seat] = h
	}
	s.Trick = append(s.Trick[:0], trick...)
	s.Leader = leader
	s.HeartsBroken = heartsBroken
	s.Rules = r
	s.firstTrick = isFirstTrick
	s.played = 0
	if s.Points == nil {
		s.Points = make(map[rules.Seat]int, 4)
	}
	for _, seat := range []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		s.Points[seat] = points[seat]
	}
	s.History = s.History[:0]
	return nil
}

func validateDisjoint(hands map[rules.Seat]card.Set) error {
	var union card.Set
	for _, s := range []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3} {
		h, ok := hands[s]
		if !ok {
			return fmt.Errorf("%w: missing hand for seat %v", ErrInvalidRound, s)
		}
		if h.Intersect(union) != 0 {
			return fmt.Errorf("%w: hands are not pairwise disjoint", ErrInvalidRound)
		}
		union = union.Union(h)
	}
	return nil
}

// Clone returns a deep copy of s, suitable as an independent rollout
// starting point.
func (s *State) Clone() *State {
	out := &State{
		Hands:        cloneHands(s.Hands),
		Trick:        append(rules.Trick{}, s.Trick...),
		Leader:       s.Leader,
		HeartsBroken: s.HeartsBroken,
		Points:       make(map[rules.Seat]int, len(s.Points)),
		Rules:        s.Rules,
		firstTrick:   s.firstTrick,
		played:       s.played,
	}
	for seat, p := range s.Points {
		out.Points[seat] = p
	}
	out.History = append(out.History, s.History...)
	return out
}
