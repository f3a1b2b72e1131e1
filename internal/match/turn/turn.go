// Package turn drives the start-of-turn sequence and turn handoff.
package turn

import (
	"github.com/cosmoarena/arena-server-go/internal/match"
)

// BeginResult reports what the start-of-turn sequence did.
type BeginResult struct {
	Player        int
	EnergyGranted bool
	DrewCardID    string // empty when the deck was exhausted
}

// Begin runs the start-of-turn sequence for a seat: grant one energy capped
// at the turn cap, refresh every instance the seat controls, then draw the
// next card of the persisted shuffle order. Drawing from an exhausted deck
// is a no-op, never a loss.
func Begin(m *match.Match, cards []*match.CardInstance, player int) BeginResult {
	res := BeginResult{Player: player}

	before := m.Player(player).Energy
	m.GrantEnergy(player, 1, match.TurnEnergyCap)
	res.EnergyGranted = m.Player(player).Energy > before

	for _, c := range cards {
		if c.Owner == player {
			c.CanAttackThisTurn = true
			c.HasAttackedThisTurn = false
		}
	}

	if id, ok := draw(m, cards, player); ok {
		res.DrewCardID = id
	}
	return res
}

// draw moves the next card of the seat's shuffle order from deck to hand and
// advances the draw index. Returns false when the deck is exhausted.
func draw(m *match.Match, cards []*match.CardInstance, player int) (string, bool) {
	ps := m.Player(player)
	for ps.DrawIndex < len(ps.DrawOrder) {
		id := ps.DrawOrder[ps.DrawIndex]
		ps.DrawIndex++
		card, ok := match.FindCard(cards, id)
		if !ok || card.Zone != match.ZoneDeck {
			// Order entries can go stale if an effect pulled the card out
			// of the deck early; skip to the next one.
			continue
		}
		match.MoveCard(card, match.ZoneHand, 0)
		return id, true
	}
	return "", false
}

// Pass hands the turn to the other seat. The round counter advances only
// when play returns to player 1, so one "turn" is a full round.
func Pass(m *match.Match) {
	next := match.Opponent(m.CurrentPlayer)
	m.CurrentPlayer = next
	m.Phase = match.TurnPhase(next)
	if next == 1 {
		m.CurrentTurn++
	}
}
