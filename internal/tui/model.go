// Package tui renders a read-only view of one seat's round state and
// belief tracking as the decision core plays, the way the teacher's
// tui.TUIModel renders a poker table — but here the only input the
// model reads is a quit key (ctrl+c, q or esc); it redraws on a clock
// tick and on new snapshots pushed by the caller, since the viewer
// observes a bot it does not control.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"

	"github.com/lox/heartscore/internal/card"
	"github.com/lox/heartscore/internal/rules"
)

const redrawInterval = 250 * time.Millisecond

// BeliefSummary is a coarse, terminal-friendly view of one opponent's
// believed hand: how many unseen cards they are thought to still hold,
// and which suits they have been observed void in.
type BeliefSummary struct {
	Remaining int
	VoidSuits []card.Suit
}

// Snapshot is one redraw's worth of round state, pushed in by the
// caller driving the viewer (a live connection or a replayed log).
type Snapshot struct {
	OwnHand      card.Set
	Trick        rules.Trick
	Leader       rules.Seat
	HeartsBroken bool
	Points       map[rules.Seat]int
	Beliefs      map[rules.Seat]BeliefSummary
	ChosenMove   *card.Card
	Deciding     bool
}

// snapshotMsg carries a pushed Snapshot into the bubbletea event loop.
type snapshotMsg Snapshot

// tickMsg marks a clock-driven redraw, used only to animate the
// "deciding" indicator while a decision is in flight.
type tickMsg time.Time

// Model is the bubbletea model for the viewer.
type Model struct {
	clock    quartz.Clock
	updates  <-chan Snapshot
	snapshot Snapshot
	width    int
	height   int
	ticks    int
	quitting bool
}

// New creates a viewer Model that redraws on clock ticks and whenever a
// Snapshot arrives on updates. clock may be quartz.NewReal() in
// production or quartz.NewMock(t) in tests.
func New(clock quartz.Clock, updates <-chan Snapshot) *Model {
	return &Model{clock: clock, updates: updates}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), waitForTick(m.clock))
}

func waitForSnapshot(updates <-chan Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func waitForTick(clock quartz.Clock) tea.Cmd {
	return func() tea.Msg {
		<-clock.After(redrawInterval)
		return tickMsg(clock.Now())
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case snapshotMsg:
		m.snapshot = Snapshot(msg)
		return m, waitForSnapshot(m.updates)

	case tickMsg:
		m.ticks++
		return m, waitForTick(m.clock)
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" hearts decision viewer ") + "\n\n")
	b.WriteString(renderHand(m.snapshot.OwnHand) + "\n")
	b.WriteString(renderTrick(m.snapshot.Trick) + "\n")
	b.WriteString(renderPoints(m.snapshot.Points) + "\n")
	b.WriteString(renderBeliefs(m.snapshot.Beliefs) + "\n")

	if m.snapshot.Deciding {
		dots := strings.Repeat(".", m.ticks%4)
		b.WriteString(InfoStyle.Render("deciding"+dots) + "\n")
	} else if m.snapshot.ChosenMove != nil {
		b.WriteString(ChosenMoveStyle.Render("played: "+renderCard(*m.snapshot.ChosenMove)) + "\n")
	}
	return b.String()
}

func renderCard(c card.Card) string {
	s := c.String()
	if c.Suit == card.Hearts || c.Suit == card.Diamonds {
		return RedSuitStyle.Render(s)
	}
	return BlackSuitStyle.Render(s)
}

func renderHand(hand card.Set) string {
	cards := hand.Cards()
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = renderCard(c)
	}
	return SelfStyle.Render("hand: ") + strings.Join(rendered, " ")
}

func renderTrick(t rules.Trick) string {
	if len(t) == 0 {
		return InfoStyle.Render("trick: (empty)")
	}
	plays := make([]string, len(t))
	for i, p := range t {
		plays[i] = fmt.Sprintf("%s=%s", p.Seat, renderCard(p.Card))
	}
	return "trick: " + strings.Join(plays, " ")
}

func renderPoints(points map[rules.Seat]int) string {
	seats := []rules.Seat{rules.Self, rules.Opponent1, rules.Opponent2, rules.Opponent3}
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		parts = append(parts, fmt.Sprintf("%s:%d", s, points[s]))
	}
	return OpponentStyle.Render("points: " + strings.Join(parts, "  "))
}

func renderBeliefs(beliefs map[rules.Seat]BeliefSummary) string {
	var b strings.Builder
	b.WriteString("beliefs:\n")
	for _, s := range rules.Opponents() {
		summary := beliefs[s]
		bar := BeliefBarStyle.Render(strings.Repeat("#", summary.Remaining))
		voidStr := ""
		if len(summary.VoidSuits) > 0 {
			names := make([]string, len(summary.VoidSuits))
			for i, suit := range summary.VoidSuits {
				names[i] = suit.String()
			}
			voidStr = " void:" + strings.Join(names, ",")
		}
		b.WriteString(fmt.Sprintf("  %s %2d %s%s\n", s, summary.Remaining, bar, voidStr))
	}
	return b.String()
}

// BuildBeliefSummaries reads a Tracker-like source for every opponent
// seat. Callers pass in closures over belief.Tracker so this package
// never imports belief directly, keeping the viewer decoupled from the
// decision core's internal packages — it only consumes the plain
// Snapshot/BeliefSummary values above.
func BuildBeliefSummaries(remaining func(rules.Seat) int, isVoid func(rules.Seat, card.Suit) bool) map[rules.Seat]BeliefSummary {
	out := make(map[rules.Seat]BeliefSummary, 3)
	for _, s := range rules.Opponents() {
		var voids []card.Suit
		for _, suit := range []card.Suit{card.Clubs, card.Diamonds, card.Spades, card.Hearts} {
			if isVoid(s, suit) {
				voids = append(voids, suit)
			}
		}
		out[s] = BeliefSummary{Remaining: remaining(s), VoidSuits: voids}
	}
	return out
}
