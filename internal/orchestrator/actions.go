package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/catalog"
	"github.com/cosmoarena/arena-server-go/internal/match"
	"github.com/cosmoarena/arena-server-go/internal/match/rules"
	"github.com/cosmoarena/arena-server-go/internal/match/turn"
)

// actingSeat resolves which seat the caller is acting for. In a practice
// match the single identity drives whichever seat holds the turn.
func actingSeat(m *match.Match, seat int) int {
	if m.IsPractice() {
		return m.CurrentPlayer
	}
	return seat
}

// StartFirstTurn runs the start-of-turn sequence for the match's first
// player. It is client-triggered and idempotent: once the match is in a
// turn phase it returns the current snapshot unchanged. Only the rightful
// first player may trigger the transition out of `starting`.
func (o *Orchestrator) StartFirstTurn(ctx context.Context, matchID, playerID string) (*match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, err
	}
	if m.Phase == match.PhasePlayer1Turn || m.Phase == match.PhasePlayer2Turn {
		return match.NewSnapshot(m, cards), nil
	}
	if m.Phase != match.PhaseStarting {
		return nil, rules.MatchActive(m)
	}
	if err := rules.TurnOwner(m, seat); err != nil {
		return nil, err
	}

	first := m.CurrentPlayer
	m.Phase = match.TurnPhase(first)
	res := turn.Begin(m, cards, first)

	act, err := match.NewAction(m, first, match.ActionStartTurn, res)
	if err != nil {
		return nil, err
	}
	changed := match.CardsInZone(cards, first, match.ZoneHand)
	changed = append(changed, match.CardsInZone(cards, first, match.ZoneKnight)...)
	changed = append(changed, match.CardsInZone(cards, first, match.ZoneSupport)...)
	changed = append(changed, match.CardsInZone(cards, first, match.ZoneHelper)...)
	if err := o.store.CommitAction(ctx, m, changed, act); err != nil {
		return nil, fmt.Errorf("persist first turn: %w", err)
	}

	o.logger.Info("first turn started",
		zap.String("match_id", m.ID),
		zap.Int("player", first),
	)
	o.publish(m, cards, act)
	return match.NewSnapshot(m, cards), nil
}

type playCardPayload struct {
	InstanceID string `json:"instance_id"`
	CardID     string `json:"card_id"`
	Zone       string `json:"zone"`
	Position   int    `json:"position"`
	Cost       int    `json:"cost"`
}

// PlayCard moves a card from the caller's hand onto the battlefield zone
// its catalog type allows, deducting its energy cost.
func (o *Orchestrator) PlayCard(ctx context.Context, matchID, playerID, instanceID string) (*match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, err
	}
	if err := rules.TurnInProgress(m); err != nil {
		return nil, err
	}
	if err := rules.TurnOwner(m, seat); err != nil {
		return nil, err
	}
	seat = actingSeat(m, seat)

	card, ok := match.FindCard(cards, instanceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, instanceID)
	}
	if err := rules.InHand(card, seat); err != nil {
		return nil, err
	}
	template, err := o.catalog.Card(ctx, card.CardID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup %s: %w", card.CardID, err)
	}
	zone := template.PlayableZone()
	if err := rules.Energy(m, seat, card.EnergyValue); err != nil {
		return nil, err
	}
	if err := rules.ZoneCapacity(cards, seat, zone); err != nil {
		return nil, err
	}

	pos := match.NextFreePosition(cards, seat, zone)
	match.MoveCard(card, zone, pos)
	m.SpendEnergy(seat, card.EnergyValue)

	act, err := match.NewAction(m, seat, match.ActionPlayCard, playCardPayload{
		InstanceID: card.ID,
		CardID:     card.CardID,
		Zone:       string(zone),
		Position:   pos,
		Cost:       card.EnergyValue,
	})
	if err != nil {
		return nil, err
	}
	if err := o.store.CommitAction(ctx, m, []*match.CardInstance{card}, act); err != nil {
		return nil, fmt.Errorf("persist play_card: %w", err)
	}

	o.publish(m, cards, act)
	return match.NewSnapshot(m, cards), nil
}

// AttackOutcome is the structured result returned to the attacker.
type AttackOutcome struct {
	Damage            int  `json:"damage"`
	Connected         bool `json:"connected"`
	Evaded            bool `json:"evaded"`
	DefenderHealth    int  `json:"defender_health,omitempty"`
	DefenderDestroyed bool `json:"defender_destroyed,omitempty"`
	Direct            bool `json:"direct"`
	TargetPlayerLife  int  `json:"target_player_life,omitempty"`
	MatchFinished     bool `json:"match_finished,omitempty"`
	Winner            int  `json:"winner,omitempty"`
}

type attackPayload struct {
	AttackerID string        `json:"attacker_id"`
	DefenderID string        `json:"defender_id,omitempty"`
	Outcome    AttackOutcome `json:"outcome"`
}

// Attack resolves an attack declaration. With a defender instance the
// combat resolver applies stance rules and knockout; with an empty defender
// ID the strike targets the opposing player's life directly, which is only
// legal while that player controls no knight-zone cards.
func (o *Orchestrator) Attack(ctx context.Context, matchID, playerID, attackerID, defenderID string) (*AttackOutcome, *match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, nil, err
	}
	if err := rules.TurnInProgress(m); err != nil {
		return nil, nil, err
	}
	if err := rules.TurnOwner(m, seat); err != nil {
		return nil, nil, err
	}
	seat = actingSeat(m, seat)
	defSeat := match.Opponent(seat)

	attacker, ok := match.FindCard(cards, attackerID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrCardNotFound, attackerID)
	}
	if err := rules.Attacker(attacker, seat); err != nil {
		return nil, nil, err
	}
	template, err := o.catalog.Card(ctx, attacker.CardID)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog lookup %s: %w", attacker.CardID, err)
	}
	technique := template.Type == catalog.TypeTechnique

	var (
		outcome AttackOutcome
		changed []*match.CardInstance
	)
	if defenderID == "" {
		outcome, changed, err = o.resolveDirectAttack(m, cards, attacker, seat, defSeat)
	} else {
		outcome, changed, err = o.resolveCardAttack(cards, attacker, defenderID, defSeat, technique)
	}
	if err != nil {
		return nil, nil, err
	}

	act, actErr := match.NewAction(m, seat, match.ActionAttack, attackPayload{
		AttackerID: attackerID,
		DefenderID: defenderID,
		Outcome:    outcome,
	})
	if actErr != nil {
		return nil, nil, actErr
	}
	if err := o.store.CommitAction(ctx, m, changed, act); err != nil {
		return nil, nil, fmt.Errorf("persist attack: %w", err)
	}
	if m.Phase == match.PhaseFinished {
		// Terminal matches reject every action before mutating, so the
		// lock entry can go; a racing waiter only reads and bounces.
		o.releaseLockEntry(m.ID)
	}

	o.publish(m, cards, act)
	return &outcome, match.NewSnapshot(m, cards), nil
}

func (o *Orchestrator) resolveCardAttack(cards []*match.CardInstance, attacker *match.CardInstance, defenderID string, defSeat int, technique bool) (AttackOutcome, []*match.CardInstance, error) {
	defender, ok := match.FindCard(cards, defenderID)
	if !ok {
		return AttackOutcome{}, nil, fmt.Errorf("%w: %s", ErrCardNotFound, defenderID)
	}
	if err := rules.Defender(defender, defSeat); err != nil {
		return AttackOutcome{}, nil, err
	}
	res := o.resolver.ResolveStrike(attacker, defender, technique)
	outcome := AttackOutcome{
		Damage:            res.Damage,
		Connected:         res.Connected,
		Evaded:            res.Evaded,
		DefenderHealth:    res.DefenderHealth,
		DefenderDestroyed: res.DefenderDestroyed,
	}
	return outcome, []*match.CardInstance{attacker, defender}, nil
}

func (o *Orchestrator) resolveDirectAttack(m *match.Match, cards []*match.CardInstance, attacker *match.CardInstance, seat, defSeat int) (AttackOutcome, []*match.CardInstance, error) {
	if err := rules.DirectAttackable(cards, defSeat); err != nil {
		return AttackOutcome{}, nil, err
	}
	damage := o.resolver.ResolveDirect(attacker)
	m.AdjustLife(defSeat, -damage)

	outcome := AttackOutcome{
		Damage:           damage,
		Connected:        true,
		Direct:           true,
		TargetPlayerLife: m.Player(defSeat).Life,
	}
	if m.Player(defSeat).Life == 0 {
		finish(m, seat)
		outcome.MatchFinished = true
		outcome.Winner = seat
		o.logger.Info("match finished by knockout",
			zap.String("match_id", m.ID),
			zap.Int("winner", seat),
		)
	}
	return outcome, []*match.CardInstance{attacker}, nil
}

type stancePayload struct {
	InstanceID string `json:"instance_id"`
	Stance     string `json:"stance"`
}

// ChangeStance sets the stance of one of the caller's battlefield cards.
// Guard is logged as a defend action, the other stances as change_mode.
func (o *Orchestrator) ChangeStance(ctx context.Context, matchID, playerID, instanceID string, stance match.Stance) (*match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, err
	}
	if err := rules.TurnInProgress(m); err != nil {
		return nil, err
	}
	if err := rules.TurnOwner(m, seat); err != nil {
		return nil, err
	}
	seat = actingSeat(m, seat)

	if err := rules.Stance(stance); err != nil {
		return nil, err
	}
	card, ok := match.FindCard(cards, instanceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, instanceID)
	}
	if err := rules.OnField(card, seat); err != nil {
		return nil, err
	}

	card.Stance = stance

	kind := match.ActionChangeMode
	if stance == match.StanceGuard {
		kind = match.ActionDefend
	}
	act, err := match.NewAction(m, seat, kind, stancePayload{InstanceID: card.ID, Stance: string(stance)})
	if err != nil {
		return nil, err
	}
	if err := o.store.CommitAction(ctx, m, []*match.CardInstance{card}, act); err != nil {
		return nil, fmt.Errorf("persist stance change: %w", err)
	}

	o.publish(m, cards, act)
	return match.NewSnapshot(m, cards), nil
}

type passTurnPayload struct {
	FromPlayer int    `json:"from_player"`
	ToPlayer   int    `json:"to_player"`
	Turn       int    `json:"turn"`
	DrewCardID string `json:"drew_card_id,omitempty"`
}

// PassTurn hands the turn to the opponent and runs their start-of-turn
// sequence (energy grant, flag refresh, draw).
func (o *Orchestrator) PassTurn(ctx context.Context, matchID, playerID string) (*match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, err
	}
	if err := rules.TurnInProgress(m); err != nil {
		return nil, err
	}
	if err := rules.TurnOwner(m, seat); err != nil {
		return nil, err
	}
	seat = actingSeat(m, seat)

	turn.Pass(m)
	next := m.CurrentPlayer
	res := turn.Begin(m, cards, next)

	act, err := match.NewAction(m, seat, match.ActionPassTurn, passTurnPayload{
		FromPlayer: seat,
		ToPlayer:   next,
		Turn:       m.CurrentTurn,
		DrewCardID: res.DrewCardID,
	})
	if err != nil {
		return nil, err
	}
	// Begin touches every instance the next player controls.
	var changed []*match.CardInstance
	for _, c := range cards {
		if c.Owner == next {
			changed = append(changed, c)
		}
	}
	if err := o.store.CommitAction(ctx, m, changed, act); err != nil {
		return nil, fmt.Errorf("persist pass_turn: %w", err)
	}

	o.publish(m, cards, act)
	return match.NewSnapshot(m, cards), nil
}

// Surrender forfeits the match; the opponent wins immediately.
func (o *Orchestrator) Surrender(ctx context.Context, matchID, playerID string) (*match.Snapshot, error) {
	lock := o.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	seat, err := rules.Participant(m, playerID)
	if err != nil {
		return nil, err
	}
	if err := rules.MatchActive(m); err != nil {
		return nil, err
	}
	seat = actingSeat(m, seat)

	finish(m, match.Opponent(seat))

	act, err := match.NewAction(m, seat, match.ActionSurrender, nil)
	if err != nil {
		return nil, err
	}
	if err := o.store.CommitAction(ctx, m, nil, act); err != nil {
		return nil, fmt.Errorf("persist surrender: %w", err)
	}
	o.releaseLockEntry(m.ID)

	o.logger.Info("match surrendered",
		zap.String("match_id", m.ID),
		zap.Int("player", seat),
		zap.Int("winner", m.Winner),
	)
	o.publish(m, cards, act)
	return match.NewSnapshot(m, cards), nil
}
