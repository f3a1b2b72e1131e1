package rules

import (
	"testing"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

func activeMatch() *match.Match {
	m := &match.Match{
		ID:            "m-1",
		Player1ID:     "alice",
		Player2ID:     "bob",
		Phase:         match.PhasePlayer1Turn,
		CurrentTurn:   1,
		CurrentPlayer: 1,
	}
	m.Players[0] = match.PlayerState{Life: match.StartingLife, Energy: 3}
	m.Players[1] = match.PlayerState{Life: match.StartingLife, Energy: 0}
	return m
}

func TestParticipant(t *testing.T) {
	m := activeMatch()

	seat, err := Participant(m, "alice")
	if err != nil || seat != 1 {
		t.Fatalf("expected seat 1, got %d, %v", seat, err)
	}
	seat, err = Participant(m, "bob")
	if err != nil || seat != 2 {
		t.Fatalf("expected seat 2, got %d, %v", seat, err)
	}
	if _, err = Participant(m, "mallory"); !IsCode(err, CodeNotAParticipant) {
		t.Fatalf("expected NotAParticipant, got %v", err)
	}
}

func TestMatchActive(t *testing.T) {
	m := activeMatch()
	if err := MatchActive(m); err != nil {
		t.Fatalf("expected active, got %v", err)
	}
	m.Phase = match.PhaseWaiting
	if err := MatchActive(m); !IsCode(err, CodeMatchNotActive) {
		t.Fatalf("expected MatchNotActive, got %v", err)
	}
	m.Phase = match.PhaseFinished
	if err := MatchActive(m); !IsCode(err, CodeMatchNotActive) {
		t.Fatalf("expected MatchNotActive, got %v", err)
	}
}

func TestTurnInProgress(t *testing.T) {
	m := activeMatch()
	if err := TurnInProgress(m); err != nil {
		t.Fatalf("expected turn in progress, got %v", err)
	}
	m.Phase = match.PhaseStarting
	if err := TurnInProgress(m); !IsCode(err, CodeMatchNotActive) {
		t.Fatalf("expected MatchNotActive while dealing, got %v", err)
	}
}

func TestTurnOwner(t *testing.T) {
	m := activeMatch()
	if err := TurnOwner(m, 1); err != nil {
		t.Fatalf("expected player 1 to hold the turn, got %v", err)
	}
	if err := TurnOwner(m, 2); !IsCode(err, CodeNotYourTurn) {
		t.Fatalf("expected NotYourTurn, got %v", err)
	}
}

func TestTurnOwnerPracticeBypass(t *testing.T) {
	m := activeMatch()
	m.Player2ID = m.Player1ID
	if err := TurnOwner(m, 2); err != nil {
		t.Fatalf("practice match should bypass turn ownership, got %v", err)
	}
}

func TestEnergy(t *testing.T) {
	m := activeMatch()
	if err := Energy(m, 1, 3); err != nil {
		t.Fatalf("cost equal to balance should pass, got %v", err)
	}
	if err := Energy(m, 1, 4); !IsCode(err, CodeInsufficientEnergy) {
		t.Fatalf("expected InsufficientEnergy, got %v", err)
	}
	if err := Energy(m, 2, 1); !IsCode(err, CodeInsufficientEnergy) {
		t.Fatalf("expected InsufficientEnergy for empty pool, got %v", err)
	}
}

func battlefieldCards(owner, count int, zone match.Zone) []*match.CardInstance {
	out := make([]*match.CardInstance, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &match.CardInstance{
			ID:       string(rune('a' + i)),
			Owner:    owner,
			Zone:     zone,
			Position: i,
		})
	}
	return out
}

func TestZoneCapacity(t *testing.T) {
	cards := battlefieldCards(1, 4, match.ZoneKnight)
	if err := ZoneCapacity(cards, 1, match.ZoneKnight); err != nil {
		t.Fatalf("4/5 knights should leave room, got %v", err)
	}
	cards = battlefieldCards(1, 5, match.ZoneKnight)
	if err := ZoneCapacity(cards, 1, match.ZoneKnight); !IsCode(err, CodeZoneFull) {
		t.Fatalf("expected ZoneFull at 5 knights, got %v", err)
	}
	// A full enemy row does not limit the acting player.
	if err := ZoneCapacity(cards, 2, match.ZoneKnight); err != nil {
		t.Fatalf("opponent row should not count, got %v", err)
	}
	if err := ZoneCapacity(battlefieldCards(1, 1, match.ZoneHelper), 1, match.ZoneHelper); !IsCode(err, CodeZoneFull) {
		t.Fatalf("expected ZoneFull for the single helper slot, got %v", err)
	}
	if err := ZoneCapacity(battlefieldCards(1, 30, match.ZoneGrave), 1, match.ZoneGrave); err != nil {
		t.Fatalf("graveyard is unbounded, got %v", err)
	}
}

func TestInHandAndOnField(t *testing.T) {
	card := &match.CardInstance{ID: "c-1", Owner: 1, Zone: match.ZoneHand}
	if err := InHand(card, 1); err != nil {
		t.Fatalf("expected card in hand, got %v", err)
	}
	if err := InHand(card, 2); !IsCode(err, CodeCardNotInHand) {
		t.Fatalf("expected CardNotInHand for wrong owner, got %v", err)
	}
	if err := OnField(card, 1); !IsCode(err, CodeCardNotOnField) {
		t.Fatalf("expected CardNotOnField for hand card, got %v", err)
	}
	card.Zone = match.ZoneSupport
	if err := OnField(card, 1); err != nil {
		t.Fatalf("expected card on field, got %v", err)
	}
}

func TestAttacker(t *testing.T) {
	card := &match.CardInstance{
		ID: "c-1", Owner: 1, Zone: match.ZoneKnight,
		Attack: 50, CanAttackThisTurn: true,
	}
	if err := Attacker(card, 1); err != nil {
		t.Fatalf("expected legal attacker, got %v", err)
	}
	if err := Attacker(card, 2); !IsCode(err, CodeInvalidAttacker) {
		t.Fatalf("expected InvalidAttacker for wrong owner, got %v", err)
	}

	card.Zone = match.ZoneHand
	if err := Attacker(card, 1); !IsCode(err, CodeInvalidAttacker) {
		t.Fatalf("expected InvalidAttacker from hand, got %v", err)
	}
	card.Zone = match.ZoneSupport
	if err := Attacker(card, 1); err != nil {
		t.Fatalf("support row attacks (techniques) are legal, got %v", err)
	}

	card.Zone = match.ZoneKnight
	card.HasAttackedThisTurn = true
	if err := Attacker(card, 1); !IsCode(err, CodeAttackerExhausted) {
		t.Fatalf("expected AttackerExhausted, got %v", err)
	}
	card.HasAttackedThisTurn = false
	card.CanAttackThisTurn = false
	if err := Attacker(card, 1); !IsCode(err, CodeAttackerExhausted) {
		t.Fatalf("expected AttackerExhausted when flagged unable, got %v", err)
	}

	card.CanAttackThisTurn = true
	card.Attack = 0
	if err := Attacker(card, 1); !IsCode(err, CodeNoAttackPower) {
		t.Fatalf("expected NoAttackPower, got %v", err)
	}
}

func TestDefender(t *testing.T) {
	card := &match.CardInstance{ID: "c-2", Owner: 2, Zone: match.ZoneKnight, Defense: 30}
	if err := Defender(card, 2); err != nil {
		t.Fatalf("expected legal defender, got %v", err)
	}
	if err := Defender(card, 1); !IsCode(err, CodeInvalidDefender) {
		t.Fatalf("expected InvalidDefender for wrong seat, got %v", err)
	}
	card.Zone = match.ZoneHand
	if err := Defender(card, 2); !IsCode(err, CodeInvalidDefender) {
		t.Fatalf("expected InvalidDefender for hand card, got %v", err)
	}
	card.Zone = match.ZoneKnight
	card.Defense = 0
	if err := Defender(card, 2); !IsCode(err, CodeNoDefenseValue) {
		t.Fatalf("expected NoDefenseValue, got %v", err)
	}
}

func TestDirectAttackable(t *testing.T) {
	cards := battlefieldCards(2, 1, match.ZoneKnight)
	if err := DirectAttackable(cards, 2); !IsCode(err, CodeInvalidDefender) {
		t.Fatalf("expected direct attack blocked by knights, got %v", err)
	}
	if err := DirectAttackable(battlefieldCards(2, 2, match.ZoneSupport), 2); err != nil {
		t.Fatalf("support cards do not intercept direct attacks, got %v", err)
	}
}

func TestStance(t *testing.T) {
	for _, s := range []match.Stance{match.StanceNormal, match.StanceGuard, match.StanceEvade} {
		if err := Stance(s); err != nil {
			t.Fatalf("stance %s should be legal, got %v", s, err)
		}
	}
	if err := Stance(match.Stance("berserk")); !IsCode(err, CodeInvalidStance) {
		t.Fatalf("expected InvalidStance, got %v", err)
	}
}
