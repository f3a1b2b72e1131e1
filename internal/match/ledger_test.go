package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ledgerMatch() *Match {
	m := &Match{
		ID: "m-1", Player1ID: "alice", Player2ID: "bob",
		Phase: PhasePlayer1Turn, CurrentTurn: 1, CurrentPlayer: 1,
	}
	m.Players[0] = PlayerState{Life: StartingLife, Energy: 5}
	m.Players[1] = PlayerState{Life: StartingLife, Energy: 5}
	return m
}

func TestZoneCountAndCardsInZone(t *testing.T) {
	cards := []*CardInstance{
		{ID: "a", Owner: 1, Zone: ZoneKnight},
		{ID: "b", Owner: 1, Zone: ZoneKnight},
		{ID: "c", Owner: 2, Zone: ZoneKnight},
		{ID: "d", Owner: 1, Zone: ZoneHand},
	}
	assert.Equal(t, 2, ZoneCount(cards, 1, ZoneKnight))
	assert.Equal(t, 1, ZoneCount(cards, 2, ZoneKnight))
	assert.Equal(t, 0, ZoneCount(cards, 2, ZoneHand))

	mine := CardsInZone(cards, 1, ZoneKnight)
	assert.Len(t, mine, 2)
	assert.Equal(t, "a", mine[0].ID)
}

func TestZoneCapacityTable(t *testing.T) {
	for _, z := range []Zone{ZoneKnight, ZoneSupport} {
		limit, limited := ZoneCapacity(z)
		assert.True(t, limited, "zone %s", z)
		assert.Equal(t, MaxPosition+1, limit, "row size follows the slot range")
	}
	limit, limited := ZoneCapacity(ZoneHelper)
	assert.True(t, limited)
	assert.Equal(t, 1, limit)

	for _, z := range []Zone{ZoneDeck, ZoneHand, ZoneGrave} {
		_, limited := ZoneCapacity(z)
		assert.False(t, limited, "zone %s", z)
	}
}

func TestNextFreePosition(t *testing.T) {
	cards := []*CardInstance{
		{ID: "a", Owner: 1, Zone: ZoneKnight, Position: 0},
		{ID: "b", Owner: 1, Zone: ZoneKnight, Position: 2},
	}
	assert.Equal(t, 1, NextFreePosition(cards, 1, ZoneKnight), "the lowest gap wins")
	assert.Equal(t, 0, NextFreePosition(cards, 2, ZoneKnight), "the enemy row is independent")

	full := make([]*CardInstance, 0, 5)
	for i := 0; i < 5; i++ {
		full = append(full, &CardInstance{Owner: 1, Zone: ZoneKnight, Position: i})
	}
	assert.Equal(t, -1, NextFreePosition(full, 1, ZoneKnight))
	assert.Equal(t, 0, NextFreePosition(full, 1, ZoneGrave), "unbounded zones always report slot 0")
}

func TestMoveCardResetsPositionOffBattlefield(t *testing.T) {
	c := &CardInstance{ID: "a", Owner: 1, Zone: ZoneKnight, Position: 3}
	MoveCard(c, ZoneGrave, 3)
	assert.Equal(t, ZoneGrave, c.Zone)
	assert.Equal(t, 0, c.Position)

	MoveCard(c, ZoneSupport, 2)
	assert.Equal(t, 2, c.Position)
}

func TestGrantEnergy(t *testing.T) {
	m := ledgerMatch()

	m.GrantEnergy(1, 1, TurnEnergyCap)
	assert.Equal(t, 6, m.Player(1).Energy)

	m.Player(1).Energy = 9
	m.GrantEnergy(1, 3, TurnEnergyCap)
	assert.Equal(t, TurnEnergyCap, m.Player(1).Energy, "grants clamp at the cap")

	m.Player(1).Energy = EnergyCeiling
	m.GrantEnergy(1, 1, TurnEnergyCap)
	assert.Equal(t, EnergyCeiling, m.Player(1).Energy, "over-cap energy is left alone")
}

func TestSpendEnergyClampsAtZero(t *testing.T) {
	m := ledgerMatch()
	m.SpendEnergy(1, 3)
	assert.Equal(t, 2, m.Player(1).Energy)
	m.SpendEnergy(1, 99)
	assert.Equal(t, 0, m.Player(1).Energy)
}

func TestAdjustLifeClampsAtZero(t *testing.T) {
	m := ledgerMatch()
	m.AdjustLife(2, -4)
	assert.Equal(t, 8, m.Player(2).Life)
	m.AdjustLife(2, -100)
	assert.Equal(t, 0, m.Player(2).Life)
}
