package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

func testMatch() *match.Match {
	m := &match.Match{
		ID:            "m-1",
		Player1ID:     "alice",
		Player2ID:     "bob",
		Phase:         match.PhasePlayer1Turn,
		CurrentTurn:   1,
		CurrentPlayer: 1,
	}
	m.Players[0] = match.PlayerState{Life: match.StartingLife, Energy: 4}
	m.Players[1] = match.PlayerState{Life: match.StartingLife, Energy: 4}
	return m
}

func deckCard(id string, owner int) *match.CardInstance {
	return &match.CardInstance{ID: id, Owner: owner, Zone: match.ZoneDeck}
}

func TestBeginGrantsEnergyUpToCap(t *testing.T) {
	m := testMatch()
	res := Begin(m, nil, 1)
	assert.True(t, res.EnergyGranted)
	assert.Equal(t, 5, m.Player(1).Energy)

	m.Player(1).Energy = match.TurnEnergyCap
	res = Begin(m, nil, 1)
	assert.False(t, res.EnergyGranted)
	assert.Equal(t, match.TurnEnergyCap, m.Player(1).Energy)
}

func TestBeginLeavesOverCapEnergyAlone(t *testing.T) {
	// Effects can push energy past the turn cap; the grant never clamps it.
	m := testMatch()
	m.Player(1).Energy = match.EnergyCeiling
	res := Begin(m, nil, 1)
	assert.False(t, res.EnergyGranted)
	assert.Equal(t, match.EnergyCeiling, m.Player(1).Energy)
}

func TestBeginRefreshesOnlyOwnCards(t *testing.T) {
	m := testMatch()
	mine := &match.CardInstance{ID: "c-1", Owner: 1, Zone: match.ZoneKnight, HasAttackedThisTurn: true}
	theirs := &match.CardInstance{ID: "c-2", Owner: 2, Zone: match.ZoneKnight, HasAttackedThisTurn: true}

	Begin(m, []*match.CardInstance{mine, theirs}, 1)

	assert.True(t, mine.CanAttackThisTurn)
	assert.False(t, mine.HasAttackedThisTurn)
	assert.True(t, theirs.HasAttackedThisTurn, "the opponent's flags keep their state")
	assert.False(t, theirs.CanAttackThisTurn)
}

func TestBeginDrawsNextFromOrder(t *testing.T) {
	m := testMatch()
	m.Player(1).DrawOrder = []string{"c-1", "c-2"}
	cards := []*match.CardInstance{deckCard("c-1", 1), deckCard("c-2", 1)}

	res := Begin(m, cards, 1)
	require.Equal(t, "c-1", res.DrewCardID)
	assert.Equal(t, match.ZoneHand, cards[0].Zone)
	assert.Equal(t, match.ZoneDeck, cards[1].Zone)
	assert.Equal(t, 1, m.Player(1).DrawIndex)
}

func TestBeginSkipsStaleOrderEntries(t *testing.T) {
	m := testMatch()
	m.Player(1).DrawOrder = []string{"c-1", "c-2"}
	// c-1 was pulled out of the deck by an effect; the order entry is stale.
	cards := []*match.CardInstance{
		{ID: "c-1", Owner: 1, Zone: match.ZoneHand},
		deckCard("c-2", 1),
	}

	res := Begin(m, cards, 1)
	assert.Equal(t, "c-2", res.DrewCardID)
	assert.Equal(t, 2, m.Player(1).DrawIndex)
}

func TestBeginEmptyDeckIsNoOp(t *testing.T) {
	m := testMatch()
	m.Player(1).DrawOrder = []string{"c-1"}
	m.Player(1).DrawIndex = 1

	res := Begin(m, nil, 1)
	assert.Empty(t, res.DrewCardID)
	assert.Equal(t, match.PhasePlayer1Turn, m.Phase, "an exhausted deck never ends the match")
}

func TestPassAlternatesSeats(t *testing.T) {
	m := testMatch()

	Pass(m)
	assert.Equal(t, 2, m.CurrentPlayer)
	assert.Equal(t, match.PhasePlayer2Turn, m.Phase)
	assert.Equal(t, 1, m.CurrentTurn, "the round counter holds until play returns to seat 1")

	Pass(m)
	assert.Equal(t, 1, m.CurrentPlayer)
	assert.Equal(t, match.PhasePlayer1Turn, m.Phase)
	assert.Equal(t, 2, m.CurrentTurn)
}
