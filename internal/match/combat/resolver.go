// Package combat resolves attack declarations into damage, stance effects
// and knockouts.
package combat

import (
	"math/rand"
	"sync"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

// CoinFlipper decides evade attempts. Production uses a seeded math/rand
// source; tests inject a fixed-outcome flipper to reach both branches.
type CoinFlipper interface {
	Flip() bool
}

// RandFlipper is a fair coin backed by a math/rand source.
type RandFlipper struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandFlipper seeds a fair coin.
func NewRandFlipper(seed int64) *RandFlipper {
	return &RandFlipper{rnd: rand.New(rand.NewSource(seed))}
}

func (f *RandFlipper) Flip() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rnd.Intn(2) == 0
}

// Result is the structured outcome of a resolved attack.
type Result struct {
	Damage            int  `json:"damage"`
	Connected         bool `json:"connected"`
	Evaded            bool `json:"evaded"`
	DefenderHealth    int  `json:"defender_health"`
	DefenderDestroyed bool `json:"defender_destroyed"`
}

// Resolver computes attack outcomes.
type Resolver struct {
	flip CoinFlipper
}

// NewResolver builds a resolver around the given coin.
func NewResolver(flip CoinFlipper) *Resolver {
	return &Resolver{flip: flip}
}

// ResolveStrike resolves attacker striking defender and applies the outcome
// to both instances. technique marks technique-type attacks, which ignore
// the evade stance. Attack legality must already have been validated.
//
// The defender's stance modifies the attacker's effective power, not the
// defense value: guard halves it (floored), evade gambles on a coin flip.
// A connected hit always deals at least 1 damage.
func (r *Resolver) ResolveStrike(attacker, defender *match.CardInstance, technique bool) Result {
	attacker.HasAttackedThisTurn = true

	if defender.Stance == match.StanceEvade && !technique && r.flip.Flip() {
		return Result{
			Damage:         0,
			Connected:      false,
			Evaded:         true,
			DefenderHealth: defender.Health,
		}
	}

	power := attacker.Attack
	if defender.Stance == match.StanceGuard {
		power /= 2
	}
	damage := power - defender.Defense
	if damage < 1 {
		damage = 1
	}

	defender.Health -= damage
	if defender.Health < 0 {
		defender.Health = 0
	}

	res := Result{
		Damage:         damage,
		Connected:      true,
		DefenderHealth: defender.Health,
	}
	if defender.Health == 0 {
		match.MoveCard(defender, match.ZoneGrave, 0)
		res.DefenderDestroyed = true
	}
	return res
}

// ResolveDirect resolves an unopposed attack on the defending player's life
// total and returns the damage to apply. Legality (no knights left to
// intercept) must already have been validated.
func (r *Resolver) ResolveDirect(attacker *match.CardInstance) int {
	attacker.HasAttackedThisTurn = true
	if attacker.Attack < 1 {
		return 1
	}
	return attacker.Attack
}
