// Command heartscore-tui dials a running heartscore-server, drives one
// full Hearts round as the external game driver for self's seat (the
// three opponents are played locally by the fixed heuristic policy),
// and renders each decision in a terminal viewer — mirroring the way
// the teacher's sdk.WSClient dials a server URL and exchanges typed
// JSON frames with it, but talking driverconn's protocol instead of
// the poker table protocol.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/url"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/driverconn"
	"github.com/lox/heartscore/internal/heuristics"
	"github.com/lox/heartscore/internal/randutil"
	"github.com/lox/heartscore/internal/round"
	"github.com/lox/heartscore/internal/rules"
	"github.com/lox/heartscore/internal/tui"
)

type CLI struct {
	Server string `default:"ws://localhost:8080/ws" help:"heartscore-server WebSocket URL"`
	Seed   int64  `default:"0" help:"Deal RNG seed"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("heartscore-tui"),
		kong.Description("Renders one Hearts round's decisions against a live heartscore-server"),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})

	u, err := url.Parse(cli.Server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-tui: invalid server url: %v\n", err)
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-tui: dial: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	updates := make(chan tui.Snapshot, 4)
	model := tui.New(quartz.NewReal(), updates)
	program := tea.NewProgram(model)

	go func() {
		if err := driveRound(cli, conn, logger, updates); err != nil {
			logger.Error("round driver stopped", "error", err)
		}
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-tui: %v\n", err)
		os.Exit(1)
	}
}

// driveRound plays one full round against the remote bot: it deals
// cards, resolves the three opponents' moves locally via the fixed
// policy, and for self's turn sends a play_card request over conn,
// pushing a Snapshot before and after every decision so the viewer can
// show its "deciding" spinner and then the chosen card.
func driveRound(cli CLI, conn *websocket.Conn, logger *log.Logger, updates chan<- tui.Snapshot) error {
	defer close(updates)

	dealer := randutil.New(cli.Seed)
	rng := rand.New(rand.NewPCG(dealer.Uint64(), dealer.Uint64()))
	hands := round.Deal(rng)
	r := rules.Default()

	st, err := round.New(hands, r)
	if err != nil {
		return fmt.Errorf("starting round: %w", err)
	}

	initMsg, err := driverconn.NewMessage(driverconn.MessageTypeInitBeliefs, driverconn.InitBeliefsData{
		OwnHand: encodeHand(hands[rules.Self]),
	})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(initMsg); err != nil {
		return fmt.Errorf("sending init_beliefs: %w", err)
	}

	points := map[rules.Seat]int{}
	beliefSummaries := map[rules.Seat]tui.BeliefSummary{}

	for !st.Done() {
		seat := st.ActionOn()
		trick := append(rules.Trick(nil), st.Trick...)

		var move card.Card
		if seat == rules.Self {
			updates <- tui.Snapshot{
				OwnHand:      st.Hands[rules.Self],
				Trick:        trick,
				Leader:       st.Leader,
				HeartsBroken: st.HeartsBroken,
				Points:       copyPoints(points),
				Beliefs:      beliefSummaries,
				Deciding:     true,
			}

			move, err = requestPlay(conn, st, trick)
			if err != nil {
				return fmt.Errorf("requesting self play: %w", err)
			}
		} else {
			move = heuristics.FixedPolicy(st.Hands[seat], trick, st.HeartsBroken, st.IsFirstTrick())
		}

		// The remote bot derives trick-lead context from the order
		// plays arrive in, so every seat's play is reported here,
		// including self's.
		obsMsg, err := driverconn.NewMessage(driverconn.MessageTypeObservePlay, driverconn.ObservePlayData{
			Seat: driverconn.EncodeSeat(seat),
			Card: driverconn.EncodeCard(move),
		})
		if err != nil {
			return err
		}
		if err := conn.WriteJSON(obsMsg); err != nil {
			return fmt.Errorf("sending observe_play: %w", err)
		}

		if err := st.Play(seat, move); err != nil {
			return fmt.Errorf("seat %v playing %v: %w", seat, move, err)
		}

		if st.Trick == nil && len(trick)+1 == 4 {
			completed := st.History[len(st.History)-1]
			wire := make([]driverconn.PlayWire, len(completed))
			for i, p := range completed {
				wire[i] = driverconn.PlayWire{Seat: driverconn.EncodeSeat(p.Seat), Card: driverconn.EncodeCard(p.Card)}
			}
			tcMsg, err := driverconn.NewMessage(driverconn.MessageTypeObserveTrickComplete, driverconn.ObserveTrickCompleteData{Trick: wire})
			if err != nil {
				return err
			}
			if err := conn.WriteJSON(tcMsg); err != nil {
				return fmt.Errorf("sending observe_trick_complete: %w", err)
			}
			for s, p := range st.Points {
				points[s] = p
			}
		}

		updates <- tui.Snapshot{
			OwnHand:      st.Hands[rules.Self],
			Trick:        append(rules.Trick(nil), st.Trick...),
			Leader:       st.Leader,
			HeartsBroken: st.HeartsBroken,
			Points:       copyPoints(points),
			Beliefs:      beliefSummaries,
			ChosenMove:   &move,
		}
	}

	for s, p := range st.Points {
		points[s] = p
	}
	time.Sleep(250 * time.Millisecond)
	updates <- tui.Snapshot{Points: copyPoints(points)}
	return nil
}

func requestPlay(conn *websocket.Conn, st *round.State, trick rules.Trick) (card.Card, error) {
	reqMsg, err := driverconn.NewMessage(driverconn.MessageTypePlayCard, driverconn.PlayCardRequestData{
		OwnHand:      encodeHand(st.Hands[rules.Self]),
		Trick:        encodeTrick(trick),
		Leader:       driverconn.EncodeSeat(st.Leader),
		HeartsBroken: st.HeartsBroken,
		IsFirstTrick: st.IsFirstTrick(),
		PointsSoFar:  encodePoints(st.Points),
	})
	if err != nil {
		return card.Card{}, err
	}
	if err := conn.WriteJSON(reqMsg); err != nil {
		return card.Card{}, fmt.Errorf("sending play_card: %w", err)
	}

	var resp driverconn.Message
	if err := conn.ReadJSON(&resp); err != nil {
		return card.Card{}, fmt.Errorf("reading play_card_response: %w", err)
	}
	if resp.Type == driverconn.MessageTypeError {
		return card.Card{}, fmt.Errorf("server error response")
	}

	var data driverconn.PlayCardResponseData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return card.Card{}, err
	}
	return driverconn.DecodeCard(data.Card)
}

func encodeHand(hand card.Set) []string {
	cards := hand.Cards()
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = driverconn.EncodeCard(c)
	}
	return out
}

func encodeTrick(t rules.Trick) []driverconn.PlayWire {
	out := make([]driverconn.PlayWire, len(t))
	for i, p := range t {
		out[i] = driverconn.PlayWire{Seat: driverconn.EncodeSeat(p.Seat), Card: driverconn.EncodeCard(p.Card)}
	}
	return out
}

func encodePoints(points map[rules.Seat]int) map[string]int {
	out := make(map[string]int, len(points))
	for s, p := range points {
		out[driverconn.EncodeSeat(s)] = p
	}
	return out
}

func copyPoints(points map[rules.Seat]int) map[rules.Seat]int {
	out := make(map[rules.Seat]int, len(points))
	for s, p := range points {
		out[s] = p
	}
	return out
}
