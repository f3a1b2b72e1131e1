// Package orchestrator sequences every player action through the same
// pipeline: load the match aggregate, validate, mutate in memory, persist
// atomically, append the audit record, then broadcast the refreshed
// snapshot. The match is the serialization point: a per-match mutex keeps
// two actions against the same match from interleaving their mutation
// phases, with no cross-match coordination.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/catalog"
	"github.com/cosmoarena/arena-server-go/internal/match"
	"github.com/cosmoarena/arena-server-go/internal/match/combat"
	"github.com/cosmoarena/arena-server-go/internal/match/rules"
)

var (
	// ErrAlreadyInMatch rejects matchmaking for a player with a live match.
	ErrAlreadyInMatch = errors.New("player already has an active match")
	// ErrCardNotFound means the referenced card instance is absent.
	ErrCardNotFound = errors.New("card instance not found")
	// ErrDeckUnavailable means the player's active deck could not be loaded.
	ErrDeckUnavailable = errors.New("active deck unavailable")
	// ErrNoPendingSearch means there is no waiting match to cancel.
	ErrNoPendingSearch = errors.New("no pending matchmaking search")
)

// Store is the durable storage the orchestrator commits to. Both the
// Postgres and the in-memory repositories satisfy it.
type Store interface {
	CreateMatch(ctx context.Context, m *match.Match) error
	MatchByID(ctx context.Context, id string) (*match.Match, error)
	ActiveMatchForPlayer(ctx context.Context, playerID string) (*match.Match, error)
	OldestWaiting(ctx context.Context, excludePlayerID string) (*match.Match, error)
	StaleWaiting(ctx context.Context, cutoff time.Time) ([]*match.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	CardsForMatch(ctx context.Context, matchID string) ([]*match.CardInstance, error)
	SaveMatchState(ctx context.Context, m *match.Match, cards []*match.CardInstance) error
	CommitAction(ctx context.Context, m *match.Match, changed []*match.CardInstance, act *match.Action) error
	ActionsForMatch(ctx context.Context, matchID string) ([]*match.Action, error)
}

// Broadcaster pushes post-action snapshots to every connection subscribed
// to a match. Delivery is best-effort and out-of-band.
type Broadcaster interface {
	BroadcastSnapshot(matchID string, snap *match.Snapshot)
}

// Notifier is the out-of-band notification sink fed with committed audit
// records. Failures are logged and swallowed.
type Notifier interface {
	PublishAction(act *match.Action)
}

// Config carries the tunable gameplay constants.
type Config struct {
	// HandSize is the number of cards dealt at match start.
	HandSize int
	// StaleWaitingAfter is how old a waiting match may grow before the
	// periodic sweep purges it.
	StaleWaitingAfter time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		HandSize:          5,
		StaleWaitingAfter: 10 * time.Minute,
	}
}

// Orchestrator is the single entry point request handlers call into.
type Orchestrator struct {
	store    Store
	catalog  catalog.Provider
	resolver *combat.Resolver
	bcast    Broadcaster
	notifier Notifier
	cfg      Config
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// searchMu serializes matchmaking. The already-in-a-match reject is a
	// check-then-act against the store; without serialization two
	// concurrent searches by one player could both pass it.
	searchMu sync.Mutex
}

// New builds an orchestrator. bcast and notifier may be nil (disabled).
func New(store Store, cat catalog.Provider, resolver *combat.Resolver, bcast Broadcaster, notifier Notifier, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.HandSize <= 0 {
		cfg.HandSize = DefaultConfig().HandSize
	}
	if cfg.StaleWaitingAfter <= 0 {
		cfg.StaleWaitingAfter = DefaultConfig().StaleWaitingAfter
	}
	return &Orchestrator{
		store:    store,
		catalog:  cat,
		resolver: resolver,
		bcast:    bcast,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// matchLock returns the single-writer mutex for a match ID.
func (o *Orchestrator) matchLock(matchID string) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	l, ok := o.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[matchID] = l
	}
	return l
}

// releaseLockEntry drops the mutex entry for a match that no longer needs
// serialization (deleted, swept, or finished).
func (o *Orchestrator) releaseLockEntry(matchID string) {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	delete(o.locks, matchID)
}

// loadAggregate fetches the match and its card instances.
func (o *Orchestrator) loadAggregate(ctx context.Context, matchID string) (*match.Match, []*match.CardInstance, error) {
	m, err := o.store.MatchByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := o.store.CardsForMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return m, cards, nil
}

// publish fans the committed state out to subscribers, asynchronously and
// best-effort. The action is already durable; a failed delivery is
// recoverable by the client re-fetching match state.
func (o *Orchestrator) publish(m *match.Match, cards []*match.CardInstance, act *match.Action) {
	snap := match.NewSnapshot(m, cards)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("broadcast panicked", zap.String("match_id", m.ID), zap.Any("panic", r))
			}
		}()
		if o.bcast != nil {
			o.bcast.BroadcastSnapshot(m.ID, snap)
		}
		if o.notifier != nil && act != nil {
			o.notifier.PublishAction(act)
		}
	}()
}

// finish moves a match to its terminal phase.
func finish(m *match.Match, winner int) {
	m.Phase = match.PhaseFinished
	m.Winner = winner
	m.FinishedAt = time.Now().UTC()
}

// Snapshot returns the current board view for a participant; used by
// clients to resynchronize after a websocket reconnect.
func (o *Orchestrator) Snapshot(ctx context.Context, matchID, playerID string) (*match.Snapshot, error) {
	m, cards, err := o.loadAggregate(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, err := rules.Participant(m, playerID); err != nil {
		return nil, err
	}
	return match.NewSnapshot(m, cards), nil
}

// Actions returns a match's append-only audit log, oldest first.
func (o *Orchestrator) Actions(ctx context.Context, matchID, playerID string) ([]*match.Action, error) {
	m, err := o.store.MatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, err := rules.Participant(m, playerID); err != nil {
		return nil, err
	}
	return o.store.ActionsForMatch(ctx, matchID)
}
