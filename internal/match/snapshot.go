package match

import "time"

// Snapshot is the full board view pushed to clients after every action and
// returned by the state-fetch operation. It carries everything a client
// needs to redraw the board without further queries.
type Snapshot struct {
	MatchID       string           `json:"match_id"`
	Phase         string           `json:"phase"`
	CurrentTurn   int              `json:"current_turn"`
	CurrentPlayer int              `json:"current_player"`
	Winner        int              `json:"winner,omitempty"`
	Players       []PlayerSnapshot `json:"players"`
	Cards         []CardView       `json:"cards"`
	FinishedAt    *time.Time       `json:"finished_at,omitempty"`
}

// PlayerSnapshot is one side's public state.
type PlayerSnapshot struct {
	Number    int    `json:"number"`
	PlayerID  string `json:"player_id"`
	Life      int    `json:"life"`
	Energy    int    `json:"energy"`
	DeckCount int    `json:"deck_count"`
	HandCount int    `json:"hand_count"`
}

// CardView is a card instance as seen by clients.
type CardView struct {
	ID                  string   `json:"id"`
	CardID              string   `json:"card_id"`
	Owner               int      `json:"owner"`
	Zone                string   `json:"zone"`
	Position            int      `json:"position"`
	Stance              string   `json:"stance"`
	Attack              int      `json:"attack"`
	Defense             int      `json:"defense"`
	Health              int      `json:"health"`
	EnergyValue         int      `json:"energy_value"`
	CanAttackThisTurn   bool     `json:"can_attack_this_turn"`
	HasAttackedThisTurn bool     `json:"has_attacked_this_turn"`
	Modifiers           []Effect `json:"modifiers,omitempty"`
	StatusEffects       []Effect `json:"status_effects,omitempty"`
}

// NewSnapshot builds the broadcast view of a match and its instances.
func NewSnapshot(m *Match, cards []*CardInstance) *Snapshot {
	snap := &Snapshot{
		MatchID:       m.ID,
		Phase:         m.Phase.String(),
		CurrentTurn:   m.CurrentTurn,
		CurrentPlayer: m.CurrentPlayer,
		Winner:        m.Winner,
		Players:       make([]PlayerSnapshot, 0, 2),
		Cards:         make([]CardView, 0, len(cards)),
	}
	if !m.FinishedAt.IsZero() {
		t := m.FinishedAt
		snap.FinishedAt = &t
	}
	ids := []string{m.Player1ID, m.Player2ID}
	for i := range m.Players {
		seat := i + 1
		snap.Players = append(snap.Players, PlayerSnapshot{
			Number:    seat,
			PlayerID:  ids[i],
			Life:      m.Players[i].Life,
			Energy:    m.Players[i].Energy,
			DeckCount: ZoneCount(cards, seat, ZoneDeck),
			HandCount: ZoneCount(cards, seat, ZoneHand),
		})
	}
	for _, c := range cards {
		snap.Cards = append(snap.Cards, CardView{
			ID:                  c.ID,
			CardID:              c.CardID,
			Owner:               c.Owner,
			Zone:                string(c.Zone),
			Position:            c.Position,
			Stance:              string(c.Stance),
			Attack:              c.Attack,
			Defense:             c.Defense,
			Health:              c.Health,
			EnergyValue:         c.EnergyValue,
			CanAttackThisTurn:   c.CanAttackThisTurn,
			HasAttackedThisTurn: c.HasAttackedThisTurn,
			Modifiers:           c.Modifiers,
			StatusEffects:       c.StatusEffects,
		})
	}
	return snap
}
