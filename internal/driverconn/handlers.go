package driverconn

import (
	"context"
	"encoding/json"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/rules"
)

func (c *Conn) handleInitBeliefs(msg *Message) {
	var data InitBeliefsData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "failed to parse init_beliefs data")
		return
	}

	ownHand, err := decodeSet(data.OwnHand)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}

	var passedTo map[rules.Seat]card.Set
	if len(data.PassedTo) > 0 {
		passedTo = make(map[rules.Seat]card.Set, len(data.PassedTo))
		for name, wire := range data.PassedTo {
			seat, err := parseSeat(name)
			if err != nil {
				c.sendError("invalid_message", err.Error())
				return
			}
			set, err := decodeSet(wire)
			if err != nil {
				c.sendError("invalid_message", err.Error())
				return
			}
			passedTo[seat] = set
		}
	}

	c.bot.InitBeliefs(ownHand, passedTo)
}

func (c *Conn) handlePlayCard(msg *Message) {
	var data PlayCardRequestData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "failed to parse play_card data")
		return
	}

	ownHand, err := decodeSet(data.OwnHand)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}
	trick, err := decodeTrick(data.Trick)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}
	leader, err := parseSeat(data.Leader)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}
	points := make(map[rules.Seat]int, len(data.PointsSoFar))
	for name, p := range data.PointsSoFar {
		seat, err := parseSeat(name)
		if err != nil {
			c.sendError("invalid_message", err.Error())
			return
		}
		points[seat] = p
	}

	move, err := c.bot.PlayCard(context.Background(), decision.Situation{
		OwnHand:      ownHand,
		Trick:        trick,
		Leader:       leader,
		HeartsBroken: data.HeartsBroken,
		IsFirstTrick: data.IsFirstTrick,
		PointsSoFar:  points,
	})
	if err != nil {
		c.sendError("decision_failed", err.Error())
		return
	}

	resp, err := NewMessage(MessageTypePlayCardResponse, PlayCardResponseData{Card: encodeCard(move)})
	if err != nil {
		c.logger.Error("failed to build play_card_response", "error", err)
		return
	}
	_ = c.SendMessage(resp)
}

func (c *Conn) handleObservePlay(msg *Message) {
	var data ObservePlayData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "failed to parse observe_play data")
		return
	}

	seat, err := parseSeat(data.Seat)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}
	played, err := decodeCard(data.Card)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}

	if err := c.bot.ObservePlay(seat, played); err != nil {
		c.sendError("observe_failed", err.Error())
	}
}

func (c *Conn) handleObserveTrickComplete(msg *Message) {
	var data ObserveTrickCompleteData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "failed to parse observe_trick_complete data")
		return
	}
	trick, err := decodeTrick(data.Trick)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}
	c.bot.ObserveTrickComplete(trick)
}
