// Package driverconn adapts the decision core's external interface —
// init_beliefs, play_card, observe_play, observe_trick_complete — onto
// a WebSocket connection, mirroring the teacher's
// internal/server/connection.go read/write pump split but for a single
// bot instance talking to one external game driver rather than a
// server fanning out to many table clients.
package driverconn

import (
	"encoding/json"
	"fmt"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

// MessageType names a frame exchanged over the connection.
type MessageType string

const (
	MessageTypeInitBeliefs          MessageType = "init_beliefs"
	MessageTypePlayCard             MessageType = "play_card"
	MessageTypePlayCardResponse     MessageType = "play_card_response"
	MessageTypeObservePlay          MessageType = "observe_play"
	MessageTypeObserveTrickComplete MessageType = "observe_trick_complete"
	MessageTypeError                MessageType = "error"
)

// Message is the envelope every frame travels in; Data is decoded
// based on Type.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage marshals payload into a Message of the given type.
func NewMessage(t MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("driverconn: marshaling %s payload: %w", t, err)
	}
	return &Message{Type: t, Data: data}, nil
}

// InitBeliefsData seeds a round: self's dealt hand and any passes
// whose recipient the driver already knows, keyed by seat name.
type InitBeliefsData struct {
	OwnHand  []string            `json:"own_hand"`
	PassedTo map[string][]string `json:"passed_to,omitempty"`
}

// PlayWire is one (seat, card) entry in a trick, wire-encoded.
type PlayWire struct {
	Seat string `json:"seat"`
	Card string `json:"card"`
}

// PlayCardRequestData is the observable round position the driver
// supplies for a move decision.
type PlayCardRequestData struct {
	OwnHand      []string       `json:"own_hand"`
	Trick        []PlayWire     `json:"trick,omitempty"`
	Leader       string         `json:"leader"`
	HeartsBroken bool           `json:"hearts_broken"`
	IsFirstTrick bool           `json:"is_first_trick"`
	PointsSoFar  map[string]int `json:"points_so_far,omitempty"`
}

// PlayCardResponseData is the bot's chosen card.
type PlayCardResponseData struct {
	Card string `json:"card"`
}

// ObservePlayData reports one seat's play for belief tracking. The
// bot derives trick-lead context internally, so drivers report every
// seat's play, including self's, in the order they occurred.
type ObservePlayData struct {
	Seat string `json:"seat"`
	Card string `json:"card"`
}

// ObserveTrickCompleteData reports a finished trick.
type ObserveTrickCompleteData struct {
	Trick []PlayWire `json:"trick"`
}

// ErrorData reports a frame the bot could not process.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var rankBySymbol = map[byte]card.Rank{
	'2': card.Two, '3': card.Three, '4': card.Four, '5': card.Five,
	'6': card.Six, '7': card.Seven, '8': card.Eight, '9': card.Nine,
	'T': card.Ten, 'J': card.Jack, 'Q': card.Queen, 'K': card.King, 'A': card.Ace,
}

var suitBySymbol = map[byte]card.Suit{
	'C': card.Clubs, 'D': card.Diamonds, 'S': card.Spades, 'H': card.Hearts,
}

var suitSymbols = map[card.Suit]byte{
	card.Clubs: 'C', card.Diamonds: 'D', card.Spades: 'S', card.Hearts: 'H',
}

// encodeCard renders a card as a two-character ASCII code, e.g. "QS"
// for the queen of spades and "TC" for the ten of clubs.
func encodeCard(c card.Card) string {
	return fmt.Sprintf("%s%c", c.Rank, suitSymbols[c.Suit])
}

// EncodeCard exposes the wire card codec to external driver clients
// (cmd/heartscore-tui, integration tests) so they don't reinvent it.
func EncodeCard(c card.Card) string { return encodeCard(c) }

// DecodeCard exposes the wire card codec to external driver clients.
func DecodeCard(s string) (card.Card, error) { return decodeCard(s) }

// EncodeSeat renders seat in the wire form parseSeat expects back.
func EncodeSeat(s rules.Seat) string { return s.String() }

// ParseSeat exposes seat-name parsing to external driver clients.
func ParseSeat(name string) (rules.Seat, error) { return parseSeat(name) }

// decodeCard parses the two-character ASCII form produced by
// encodeCard.
func decodeCard(s string) (card.Card, error) {
	if len(s) != 2 {
		return card.Card{}, fmt.Errorf("driverconn: malformed card %q", s)
	}
	rank, ok := rankBySymbol[s[0]]
	if !ok {
		return card.Card{}, fmt.Errorf("driverconn: unknown rank symbol %q", s[0])
	}
	suit, ok := suitBySymbol[s[1]]
	if !ok {
		return card.Card{}, fmt.Errorf("driverconn: unknown suit symbol %q", s[1])
	}
	return card.New(suit, rank), nil
}

func encodeSet(s card.Set) []string {
	cards := s.Cards()
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = encodeCard(c)
	}
	return out
}

func decodeSet(wire []string) (card.Set, error) {
	var s card.Set
	for _, w := range wire {
		c, err := decodeCard(w)
		if err != nil {
			return 0, err
		}
		s = s.Add(c)
	}
	return s, nil
}

func encodeTrick(t rules.Trick) []PlayWire {
	out := make([]PlayWire, len(t))
	for i, p := range t {
		out[i] = PlayWire{Seat: p.Seat.String(), Card: encodeCard(p.Card)}
	}
	return out
}

func decodeTrick(wire []PlayWire) (rules.Trick, error) {
	t := make(rules.Trick, len(wire))
	for i, w := range wire {
		seat, err := parseSeat(w.Seat)
		if err != nil {
			return nil, err
		}
		c, err := decodeCard(w.Card)
		if err != nil {
			return nil, err
		}
		t[i] = rules.Play{Seat: seat, Card: c}
	}
	return t, nil
}

var seatsByName = map[string]rules.Seat{
	"self": rules.Self, "opponent1": rules.Opponent1,
	"opponent2": rules.Opponent2, "opponent3": rules.Opponent3,
}

func parseSeat(name string) (rules.Seat, error) {
	seat, ok := seatsByName[name]
	if !ok {
		return 0, fmt.Errorf("driverconn: unknown seat %q", name)
	}
	return seat, nil
}
