// Package handlog records the sequence of observations and decisions
// that made up one round, so a recorded round can be replayed later to
// check that the decision core is deterministic given the same seed
// and the same observation history — mirroring the adapter/event style
// of the teacher's internal/server/hand_history_adapter.go, but for
// Hearts rather than poker hand histories, and over JSON events rather
// than formatted hand-history text.
package handlog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/rules"
)

// EventKind names one recorded step.
type EventKind string

const (
	EventInit           EventKind = "init"
	EventObservePlay    EventKind = "observe_play"
	EventTrickComplete  EventKind = "trick_complete"
	EventDecision       EventKind = "decision"
)

// TrickPlayWire is one (seat, card) entry in a recorded trick.
type TrickPlayWire struct {
	Seat rules.Seat `json:"seat"`
	Card int        `json:"card"`
}

// SituationWire is the JSON form of decision.Situation passed to a
// recorded decision event.
type SituationWire struct {
	OwnHand      []int           `json:"own_hand"`
	Trick        []TrickPlayWire `json:"trick,omitempty"`
	Leader       rules.Seat      `json:"leader"`
	HeartsBroken bool            `json:"hearts_broken"`
	IsFirstTrick bool            `json:"is_first_trick"`
	PointsSoFar  map[string]int  `json:"points_so_far,omitempty"`
}

// Event is one step of a recorded round, tagged by Kind. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind EventKind `json:"kind"`

	// EventInit
	OwnHand []int `json:"own_hand,omitempty"`

	// EventObservePlay
	Seat rules.Seat `json:"seat,omitempty"`
	Card int        `json:"card,omitempty"`

	// EventTrickComplete
	Trick []TrickPlayWire `json:"trick,omitempty"`

	// EventDecision
	Situation *SituationWire `json:"situation,omitempty"`
	Chosen    int            `json:"chosen,omitempty"`
}

// Recorder accumulates the events of one round alongside the seed used
// to initialize the bot that produced them.
type Recorder struct {
	Seed   int64   `json:"seed"`
	Events []Event `json:"events"`
}

// NewRecorder returns an empty recorder for a round driven with seed.
func NewRecorder(seed int64) *Recorder {
	return &Recorder{Seed: seed}
}

// RecordInit appends an init event.
func (r *Recorder) RecordInit(hand card.Set) {
	r.Events = append(r.Events, Event{Kind: EventInit, OwnHand: encodeSet(hand)})
}

// RecordObservePlay appends an observe_play event.
func (r *Recorder) RecordObservePlay(seat rules.Seat, c card.Card) {
	r.Events = append(r.Events, Event{
		Kind: EventObservePlay,
		Seat: seat,
		Card: c.Index(),
	})
}

// RecordTrickComplete appends a trick_complete event.
func (r *Recorder) RecordTrickComplete(t rules.Trick) {
	r.Events = append(r.Events, Event{Kind: EventTrickComplete, Trick: encodeTrick(t)})
}

// RecordDecision appends a decision event: the situation the bot faced
// and the card it chose.
func (r *Recorder) RecordDecision(sit decision.Situation, chosen card.Card) {
	r.Events = append(r.Events, Event{
		Kind:      EventDecision,
		Situation: encodeSituation(sit),
		Chosen:    chosen.Index(),
	})
}

// WriteTo marshals the recorder as indented JSON.
func (r *Recorder) WriteTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Load reads a recorder back from JSON.
func Load(r io.Reader) (*Recorder, error) {
	var rec Recorder
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("handlog: decoding recording: %w", err)
	}
	return &rec, nil
}

func encodeSet(s card.Set) []int {
	cards := s.Cards()
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Index()
	}
	return out
}

func decodeSet(indices []int) card.Set {
	var s card.Set
	for _, i := range indices {
		s = s.Add(card.FromIndex(i))
	}
	return s
}

func encodeTrick(t rules.Trick) []TrickPlayWire {
	out := make([]TrickPlayWire, len(t))
	for i, p := range t {
		out[i] = TrickPlayWire{Seat: p.Seat, Card: p.Card.Index()}
	}
	return out
}

func decodeTrick(wire []TrickPlayWire) rules.Trick {
	t := make(rules.Trick, len(wire))
	for i, w := range wire {
		t[i] = rules.Play{Seat: w.Seat, Card: card.FromIndex(w.Card)}
	}
	return t
}

func encodeSituation(sit decision.Situation) *SituationWire {
	points := make(map[string]int, len(sit.PointsSoFar))
	for seat, p := range sit.PointsSoFar {
		points[seat.String()] = p
	}
	return &SituationWire{
		OwnHand:      encodeSet(sit.OwnHand),
		Trick:        encodeTrick(sit.Trick),
		Leader:       sit.Leader,
		HeartsBroken: sit.HeartsBroken,
		IsFirstTrick: sit.IsFirstTrick,
		PointsSoFar:  points,
	}
}

var seatsByName = map[string]rules.Seat{
	"self": rules.Self, "opponent1": rules.Opponent1,
	"opponent2": rules.Opponent2, "opponent3": rules.Opponent3,
}

func decodeSituation(w *SituationWire) decision.Situation {
	points := make(map[rules.Seat]int, len(w.PointsSoFar))
	for name, p := range w.PointsSoFar {
		if seat, ok := seatsByName[name]; ok {
			points[seat] = p
		}
	}
	return decision.Situation{
		OwnHand:      decodeSet(w.OwnHand),
		Trick:        decodeTrick(w.Trick),
		Leader:       w.Leader,
		HeartsBroken: w.HeartsBroken,
		IsFirstTrick: w.IsFirstTrick,
		PointsSoFar:  points,
	}
}
