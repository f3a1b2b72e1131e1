package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

// fixedFlipper forces the evade coin for deterministic tests.
type fixedFlipper bool

func (f fixedFlipper) Flip() bool { return bool(f) }

func attacker(power int) *match.CardInstance {
	return &match.CardInstance{
		ID: "atk", Owner: 1, Zone: match.ZoneKnight,
		Attack: power, Stance: match.StanceNormal,
		CanAttackThisTurn: true,
	}
}

func defender(defense, health int, stance match.Stance) *match.CardInstance {
	return &match.CardInstance{
		ID: "def", Owner: 2, Zone: match.ZoneKnight, Position: 2,
		Defense: defense, Health: health, Stance: stance,
	}
}

func TestResolveStrikeNormal(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(90, 200, match.StanceNormal)
	res := r.ResolveStrike(attacker(120), def, false)

	assert.True(t, res.Connected)
	assert.Equal(t, 30, res.Damage)
	assert.Equal(t, 170, res.DefenderHealth)
	assert.Equal(t, 170, def.Health)
	assert.False(t, res.DefenderDestroyed)
}

func TestResolveStrikeMinimumDamage(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(90, 200, match.StanceNormal)
	res := r.ResolveStrike(attacker(50), def, false)

	assert.True(t, res.Connected)
	assert.Equal(t, 1, res.Damage, "a connected hit deals at least 1")
	assert.Equal(t, 199, def.Health)
}

func TestResolveStrikeGuardHalvesPower(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(20, 100, match.StanceGuard)
	res := r.ResolveStrike(attacker(120), def, false)

	// 120/2 - 20 = 40
	assert.Equal(t, 40, res.Damage)
	assert.Equal(t, 60, def.Health)
}

func TestResolveStrikeGuardFloorsToOne(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(30, 100, match.StanceGuard)
	res := r.ResolveStrike(attacker(45), def, false)

	// 45/2 floors to 22, below the 30 defense, so the minimum applies.
	assert.Equal(t, 1, res.Damage)
	assert.Equal(t, 99, def.Health)
}

func TestResolveStrikeEvadeSuccess(t *testing.T) {
	r := NewResolver(fixedFlipper(true))
	atk := attacker(120)
	def := defender(10, 100, match.StanceEvade)
	res := r.ResolveStrike(atk, def, false)

	assert.True(t, res.Evaded)
	assert.False(t, res.Connected)
	assert.Zero(t, res.Damage)
	assert.Equal(t, 100, def.Health, "an evaded strike deals nothing")
	assert.True(t, atk.HasAttackedThisTurn, "a failed strike still spends the attack")
}

func TestResolveStrikeEvadeFailure(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(10, 100, match.StanceEvade)
	res := r.ResolveStrike(attacker(120), def, false)

	assert.False(t, res.Evaded)
	assert.True(t, res.Connected)
	assert.Equal(t, 110, res.Damage)
}

func TestResolveStrikeTechniqueIgnoresEvade(t *testing.T) {
	// The coin is forced to the evade-success side; a technique never flips it.
	r := NewResolver(fixedFlipper(true))
	def := defender(10, 100, match.StanceEvade)
	res := r.ResolveStrike(attacker(120), def, true)

	assert.False(t, res.Evaded)
	assert.True(t, res.Connected)
	assert.Equal(t, 110, res.Damage)
}

func TestResolveStrikeKnockout(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	def := defender(10, 50, match.StanceNormal)
	res := r.ResolveStrike(attacker(120), def, false)

	require.True(t, res.DefenderDestroyed)
	assert.Equal(t, 0, res.DefenderHealth, "health never goes negative")
	assert.Equal(t, match.ZoneGrave, def.Zone)
	assert.Equal(t, 0, def.Position, "graveyard cards drop their slot")
}

func TestResolveStrikeMarksAttacker(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	atk := attacker(120)
	r.ResolveStrike(atk, defender(90, 200, match.StanceNormal), false)
	assert.True(t, atk.HasAttackedThisTurn)
}

func TestResolveDirect(t *testing.T) {
	r := NewResolver(fixedFlipper(false))
	atk := attacker(7)
	assert.Equal(t, 7, r.ResolveDirect(atk))
	assert.True(t, atk.HasAttackedThisTurn)

	weak := attacker(0)
	assert.Equal(t, 1, r.ResolveDirect(weak), "direct hits deal at least 1")
}

func TestRandFlipperBothOutcomes(t *testing.T) {
	f := NewRandFlipper(1)
	seen := map[bool]bool{}
	for i := 0; i < 64; i++ {
		seen[f.Flip()] = true
	}
	assert.Len(t, seen, 2, "a fair coin lands on both sides across 64 flips")
}
