package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/catalog"
	"github.com/cosmoarena/arena-server-go/internal/match"
	"github.com/cosmoarena/arena-server-go/internal/repository"
)

// SearchResult reports the outcome of a matchmaking request.
type SearchResult struct {
	Snapshot *match.Snapshot
	// Paired is true when an opponent was found and the match was dealt;
	// false when a new waiting match was created.
	Paired bool
}

// FindOrCreateMatch pairs the seeking player with the oldest compatible
// waiting match, or creates a new waiting one. practice creates a self-play
// match where both seats hold the caller's identity, dealt immediately.
func (o *Orchestrator) FindOrCreateMatch(ctx context.Context, playerID string, practice bool) (*SearchResult, error) {
	o.searchMu.Lock()
	defer o.searchMu.Unlock()

	if _, err := o.store.ActiveMatchForPlayer(ctx, playerID); err == nil {
		return nil, ErrAlreadyInMatch
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check active match: %w", err)
	}

	deck, err := o.catalog.ActiveDeck(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeckUnavailable, err)
	}

	if practice {
		return o.startPracticeMatch(ctx, playerID, deck)
	}

	waiting, err := o.store.OldestWaiting(ctx, playerID)
	switch {
	case err == nil:
		return o.joinWaitingMatch(ctx, waiting, playerID, deck)
	case errors.Is(err, repository.ErrNotFound):
		return o.createWaitingMatch(ctx, playerID, deck)
	default:
		return nil, fmt.Errorf("find waiting match: %w", err)
	}
}

func newMatch(playerID, deckID string) *match.Match {
	m := &match.Match{
		ID:            uuid.NewString(),
		Player1ID:     playerID,
		Deck1ID:       deckID,
		Phase:         match.PhaseWaiting,
		CurrentTurn:   1,
		CurrentPlayer: 1,
		CreatedAt:     time.Now().UTC(),
	}
	m.Players[0] = match.PlayerState{Life: match.StartingLife}
	m.Players[1] = match.PlayerState{Life: match.StartingLife}
	return m
}

func (o *Orchestrator) createWaitingMatch(ctx context.Context, playerID string, deck *catalog.Deck) (*SearchResult, error) {
	m := newMatch(playerID, deck.ID)
	if err := o.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	o.logger.Info("waiting match created",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
	)
	return &SearchResult{Snapshot: match.NewSnapshot(m, nil)}, nil
}

func (o *Orchestrator) joinWaitingMatch(ctx context.Context, m *match.Match, playerID string, deck *catalog.Deck) (*SearchResult, error) {
	lock := o.matchLock(m.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-load under the lock; the stale sweep may have purged the row
	// since the lookup.
	m, err := o.store.MatchByID(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("reload waiting match: %w", err)
	}
	if m.Phase != match.PhaseWaiting {
		return o.createWaitingMatch(ctx, playerID, deck)
	}

	m.Player2ID = playerID
	m.Deck2ID = deck.ID
	m.Phase = match.PhaseStarting
	m.StartedAt = time.Now().UTC()

	deck1, err := o.catalog.ActiveDeck(ctx, m.Player1ID)
	if err != nil {
		return nil, fmt.Errorf("%w: opponent deck: %v", ErrDeckUnavailable, err)
	}

	cards, err := o.initialize(ctx, m, deck1, deck)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveMatchState(ctx, m, cards); err != nil {
		return nil, fmt.Errorf("persist dealt match: %w", err)
	}

	o.logger.Info("match paired",
		zap.String("match_id", m.ID),
		zap.String("player1_id", m.Player1ID),
		zap.String("player2_id", m.Player2ID),
	)
	o.publish(m, cards, nil)
	return &SearchResult{Snapshot: match.NewSnapshot(m, cards), Paired: true}, nil
}

func (o *Orchestrator) startPracticeMatch(ctx context.Context, playerID string, deck *catalog.Deck) (*SearchResult, error) {
	m := newMatch(playerID, deck.ID)
	m.Player2ID = playerID
	m.Deck2ID = deck.ID
	m.Phase = match.PhaseStarting
	m.StartedAt = time.Now().UTC()

	if err := o.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("create practice match: %w", err)
	}
	cards, err := o.initialize(ctx, m, deck, deck)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveMatchState(ctx, m, cards); err != nil {
		return nil, fmt.Errorf("persist practice match: %w", err)
	}
	o.logger.Info("practice match created",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
	)
	o.publish(m, cards, nil)
	return &SearchResult{Snapshot: match.NewSnapshot(m, cards), Paired: true}, nil
}

// initialize expands both deck lists into card instances, shuffles each
// side's draw order, and deals the initial hands. The remaining cards stay
// in the deck zone in the persisted shuffle order.
func (o *Orchestrator) initialize(ctx context.Context, m *match.Match, deck1, deck2 *catalog.Deck) ([]*match.CardInstance, error) {
	var all []*match.CardInstance
	decks := []*catalog.Deck{deck1, deck2}
	for i, deck := range decks {
		seat := i + 1
		instances, err := o.expandDeck(ctx, m, seat, deck)
		if err != nil {
			return nil, err
		}
		order := make([]string, len(instances))
		for j, c := range instances {
			order[j] = c.ID
		}
		rand.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

		dealt := o.cfg.HandSize
		if dealt > len(order) {
			dealt = len(order)
		}
		for _, id := range order[:dealt] {
			c, _ := match.FindCard(instances, id)
			match.MoveCard(c, match.ZoneHand, 0)
		}
		ps := m.Player(seat)
		ps.DrawOrder = order
		ps.DrawIndex = dealt

		all = append(all, instances...)
	}
	return all, nil
}

// expandDeck turns a deck list into physical card instances, honoring
// per-card copy counts and snapshotting catalog stats.
func (o *Orchestrator) expandDeck(ctx context.Context, m *match.Match, seat int, deck *catalog.Deck) ([]*match.CardInstance, error) {
	var out []*match.CardInstance
	for _, entry := range deck.Entries {
		card, err := o.catalog.Card(ctx, entry.CardID)
		if err != nil {
			return nil, fmt.Errorf("%w: card %s: %v", ErrDeckUnavailable, entry.CardID, err)
		}
		for n := 0; n < entry.Count; n++ {
			out = append(out, &match.CardInstance{
				ID:          uuid.NewString(),
				MatchID:     m.ID,
				CardID:      card.ID,
				Owner:       seat,
				Zone:        match.ZoneDeck,
				Stance:      match.StanceNormal,
				Attack:      card.Attack,
				Defense:     card.Defense,
				Health:      card.Health,
				EnergyValue: card.Cost,
			})
		}
	}
	return out, nil
}

// CancelSearch deletes the caller's pending waiting match.
func (o *Orchestrator) CancelSearch(ctx context.Context, playerID string) error {
	o.searchMu.Lock()
	defer o.searchMu.Unlock()

	m, err := o.store.ActiveMatchForPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPendingSearch
		}
		return err
	}
	if m.Phase != match.PhaseWaiting {
		return ErrNoPendingSearch
	}
	if err := o.store.DeleteMatch(ctx, m.ID); err != nil {
		return err
	}
	o.releaseLockEntry(m.ID)
	o.logger.Info("matchmaking search cancelled",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
	)
	return nil
}

// SweepStale purges waiting matches older than the staleness window. Wired
// to a periodic job; pure housekeeping outside the gameplay state machine.
func (o *Orchestrator) SweepStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-o.cfg.StaleWaitingAfter)
	stale, err := o.store.StaleWaiting(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, m := range stale {
		if err := o.store.DeleteMatch(ctx, m.ID); err != nil {
			o.logger.Warn("failed to purge stale match", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		o.releaseLockEntry(m.ID)
		purged++
	}
	if purged > 0 {
		o.logger.Info("purged stale waiting matches", zap.Int("count", purged))
	}
	return purged, nil
}
