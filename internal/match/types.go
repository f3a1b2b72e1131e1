package match

import (
	"fmt"
	"time"
)

// Game constants. StartingLife and the energy caps are rule values, not
// tuning knobs, so they live here rather than in configuration.
const (
	StartingLife  = 12
	TurnEnergyCap = 10 // cap applied by the start-of-turn grant
	EnergyCeiling = 12 // hard ceiling effects may push energy up to
	MaxPosition   = 4  // battlefield slot indexes run 0..4
)

// Phase represents the match-level state machine.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseStarting
	PhasePlayer1Turn
	PhasePlayer2Turn
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseWaiting:     "waiting",
	PhaseStarting:    "starting",
	PhasePlayer1Turn: "player1_turn",
	PhasePlayer2Turn: "player2_turn",
	PhaseFinished:    "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

// ParsePhase maps a stored phase name back to its Phase value.
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// TurnPhase returns the in-progress phase for the given player number.
func TurnPhase(player int) Phase {
	if player == 2 {
		return PhasePlayer2Turn
	}
	return PhasePlayer1Turn
}

// Zone is a named container a card instance occupies.
type Zone string

const (
	ZoneDeck    Zone = "deck"
	ZoneHand    Zone = "hand"
	ZoneKnight  Zone = "battlefield-knight"
	ZoneSupport Zone = "battlefield-support"
	ZoneHelper  Zone = "battlefield-helper"
	ZoneGrave   Zone = "graveyard"
)

// zoneCapacities holds the occupancy limits for the battlefield zones.
// Non-battlefield zones are unbounded. The knight and support rows hold one
// card per slot index.
var zoneCapacities = map[Zone]int{
	ZoneKnight:  MaxPosition + 1,
	ZoneSupport: MaxPosition + 1,
	ZoneHelper:  1,
}

// ZoneCapacity returns the occupancy limit for a zone and whether the zone
// is capacity-limited at all.
func ZoneCapacity(z Zone) (int, bool) {
	cap, ok := zoneCapacities[z]
	return cap, ok
}

// IsBattlefield reports whether the zone is one of the battlefield sub-zones.
func (z Zone) IsBattlefield() bool {
	return z == ZoneKnight || z == ZoneSupport || z == ZoneHelper
}

// Stance is the defender-side combat modifier on a battlefield card.
type Stance string

const (
	StanceNormal Stance = "normal"
	StanceGuard  Stance = "guard"
	StanceEvade  Stance = "evade"
)

// ValidStance reports whether s is one of the three legal stances.
func ValidStance(s Stance) bool {
	return s == StanceNormal || s == StanceGuard || s == StanceEvade
}

// ActionKind identifies an entry in the append-only audit log.
type ActionKind string

const (
	ActionPlayCard   ActionKind = "play_card"
	ActionAttack     ActionKind = "attack"
	ActionDefend     ActionKind = "defend"
	ActionChangeMode ActionKind = "change_mode"
	ActionPassTurn   ActionKind = "pass_turn"
	ActionStartTurn  ActionKind = "start_turn"
	ActionSurrender  ActionKind = "surrender"
)

// PlayerState is the per-side resource ledger persisted on the match.
type PlayerState struct {
	Life      int
	Energy    int
	DrawOrder []string // card instance IDs in shuffled draw order
	DrawIndex int      // next index into DrawOrder
}

// Match is one active or historical game between two players.
type Match struct {
	ID            string
	Player1ID     string
	Player2ID     string // empty while waiting for an opponent
	Deck1ID       string
	Deck2ID       string
	Phase         Phase
	CurrentTurn   int
	CurrentPlayer int // 1 or 2
	Players       [2]PlayerState
	Winner        int // 0 until finished
	CreatedAt     time.Time
	StartedAt     time.Time
	FinishedAt    time.Time
}

// PlayerNumber returns which seat (1 or 2) the given identity holds.
// In a practice match both seats hold the same identity; seat 1 is reported.
func (m *Match) PlayerNumber(playerID string) (int, bool) {
	switch playerID {
	case "":
		return 0, false
	case m.Player1ID:
		return 1, true
	case m.Player2ID:
		return 2, true
	}
	return 0, false
}

// Opponent returns the other seat number.
func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

// IsPractice reports whether both seats reference the same identity.
// Practice matches bypass only the turn-ownership check.
func (m *Match) IsPractice() bool {
	return m.Player1ID != "" && m.Player1ID == m.Player2ID
}

// InProgress reports whether the match is in one of the playable phases.
func (m *Match) InProgress() bool {
	return m.Phase == PhaseStarting || m.Phase == PhasePlayer1Turn || m.Phase == PhasePlayer2Turn
}

// Player returns the mutable resource ledger for a seat number.
func (m *Match) Player(player int) *PlayerState {
	return &m.Players[player-1]
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	out := *m
	for i := range out.Players {
		order := make([]string, len(m.Players[i].DrawOrder))
		copy(order, m.Players[i].DrawOrder)
		out.Players[i].DrawOrder = order
	}
	return &out
}

// CardInstance is a physical copy of a catalog card inside one match.
// Stats are snapshotted from the catalog at match start and mutable from
// then on.
type CardInstance struct {
	ID      string
	MatchID string
	CardID  string // catalog card reference
	Owner   int    // seat number, 1 or 2

	Zone     Zone
	Position int // slot index, meaningful only in battlefield zones
	Stance   Stance

	Attack      int
	Defense     int
	Health      int
	EnergyValue int

	CanAttackThisTurn   bool
	HasAttackedThisTurn bool

	Modifiers     []Effect
	StatusEffects []Effect
}

// Clone returns a deep copy of the card instance.
func (c *CardInstance) Clone() *CardInstance {
	out := *c
	out.Modifiers = cloneEffects(c.Modifiers)
	out.StatusEffects = cloneEffects(c.StatusEffects)
	return &out
}
