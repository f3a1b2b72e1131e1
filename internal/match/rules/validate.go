// Package rules holds the stateless validation layer: pure predicates over
// the loaded match aggregate. Nothing here mutates state; each check fails
// with a specific named Violation.
package rules

import (
	"github.com/cosmoarena/arena-server-go/internal/match"
)

// Participant checks membership and returns which seat the caller holds.
func Participant(m *match.Match, playerID string) (int, error) {
	player, ok := m.PlayerNumber(playerID)
	if !ok {
		return 0, violate(CodeNotAParticipant, "player %s is not part of match %s", playerID, m.ID)
	}
	return player, nil
}

// MatchActive checks the match is in one of the in-progress phases.
func MatchActive(m *match.Match) error {
	if !m.InProgress() {
		return violate(CodeMatchNotActive, "match %s is %s", m.ID, m.Phase)
	}
	return nil
}

// TurnInProgress checks the match has entered its per-player turn phases.
// Gameplay actions are illegal while the match is still waiting or dealing.
func TurnInProgress(m *match.Match) error {
	if m.Phase != match.PhasePlayer1Turn && m.Phase != match.PhasePlayer2Turn {
		return violate(CodeMatchNotActive, "match %s is %s, no turn in progress", m.ID, m.Phase)
	}
	return nil
}

// TurnOwner checks the acting seat holds the turn. Practice matches (both
// seats the same identity) bypass this check.
func TurnOwner(m *match.Match, player int) error {
	if m.IsPractice() {
		return nil
	}
	if m.CurrentPlayer != player {
		return violate(CodeNotYourTurn, "it is player %d's turn", m.CurrentPlayer)
	}
	return nil
}

// Energy checks the acting seat can pay the given cost.
func Energy(m *match.Match, player, cost int) error {
	if have := m.Player(player).Energy; cost > have {
		return violate(CodeInsufficientEnergy, "cost %d exceeds energy %d", cost, have)
	}
	return nil
}

// ZoneCapacity checks the destination zone has room for one more of the
// player's instances.
func ZoneCapacity(cards []*match.CardInstance, player int, zone match.Zone) error {
	capacity, limited := match.ZoneCapacity(zone)
	if !limited {
		return nil
	}
	if match.ZoneCount(cards, player, zone) >= capacity {
		return violate(CodeZoneFull, "zone %s already holds %d cards", zone, capacity)
	}
	return nil
}

// InHand checks the instance sits in the acting seat's hand.
func InHand(c *match.CardInstance, player int) error {
	if c.Owner != player || c.Zone != match.ZoneHand {
		return violate(CodeCardNotInHand, "card %s is not in player %d's hand", c.ID, player)
	}
	return nil
}

// OnField checks the instance sits on the acting seat's battlefield.
func OnField(c *match.CardInstance, player int) error {
	if c.Owner != player || !c.Zone.IsBattlefield() {
		return violate(CodeCardNotOnField, "card %s is not on player %d's battlefield", c.ID, player)
	}
	return nil
}

// Attacker checks an instance may declare an attack for the acting seat:
// owned by the seat, in the knight or support row (techniques strike from
// the support row), able and not yet spent this turn, and carrying positive
// attack power.
func Attacker(c *match.CardInstance, player int) error {
	if c.Owner != player || (c.Zone != match.ZoneKnight && c.Zone != match.ZoneSupport) {
		return violate(CodeInvalidAttacker, "card %s cannot attack from zone %s", c.ID, c.Zone)
	}
	if !c.CanAttackThisTurn || c.HasAttackedThisTurn {
		return violate(CodeAttackerExhausted, "card %s has already acted this turn", c.ID)
	}
	if c.Attack <= 0 {
		return violate(CodeNoAttackPower, "card %s has no attack power", c.ID)
	}
	return nil
}

// Defender checks an instance is a legal attack target for the defending
// seat: owned by the defender, on the battlefield, with a positive defense
// value.
func Defender(c *match.CardInstance, defender int) error {
	if c.Owner != defender || !c.Zone.IsBattlefield() {
		return violate(CodeInvalidDefender, "card %s is not a battlefield card of player %d", c.ID, defender)
	}
	if c.Defense <= 0 {
		return violate(CodeNoDefenseValue, "card %s has no defense value", c.ID)
	}
	return nil
}

// DirectAttackable checks the defending seat has no knight-zone cards left
// to intercept; only then may an attack target the player's life directly.
func DirectAttackable(cards []*match.CardInstance, defender int) error {
	if match.ZoneCount(cards, defender, match.ZoneKnight) > 0 {
		return violate(CodeInvalidDefender, "player %d still controls knights; direct attacks are blocked", defender)
	}
	return nil
}

// Stance checks the requested stance is one of the three legal values.
func Stance(s match.Stance) error {
	if !match.ValidStance(s) {
		return violate(CodeInvalidStance, "stance %q is not one of normal/guard/evade", s)
	}
	return nil
}
