package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

// MemoryStore keeps all rows in process memory. It deep-copies on every
// read and write so callers see load-then-commit semantics identical to the
// Postgres store: aborted actions never leak partial mutations.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*match.Match
	cards   map[string]map[string]*match.CardInstance // match ID -> instance ID
	actions map[string][]*match.Action
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]*match.Match),
		cards:   make(map[string]map[string]*match.CardInstance),
		actions: make(map[string][]*match.Action),
	}
}

func (s *MemoryStore) CreateMatch(_ context.Context, m *match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m.Clone()
	s.cards[m.ID] = make(map[string]*match.CardInstance)
	return nil
}

func (s *MemoryStore) MatchByID(_ context.Context, id string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryStore) ActiveMatchForPlayer(_ context.Context, playerID string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *match.Match
	for _, m := range s.matches {
		if m.Phase == match.PhaseFinished {
			continue
		}
		if m.Player1ID == playerID || m.Player2ID == playerID {
			if found == nil || m.CreatedAt.After(found.CreatedAt) {
				found = m
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.Clone(), nil
}

func (s *MemoryStore) OldestWaiting(_ context.Context, playerID string) (*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var oldest *match.Match
	for _, m := range s.matches {
		if m.Phase != match.PhaseWaiting || m.Player1ID == playerID {
			continue
		}
		if oldest == nil || m.CreatedAt.Before(oldest.CreatedAt) {
			oldest = m
		}
	}
	if oldest == nil {
		return nil, ErrNotFound
	}
	return oldest.Clone(), nil
}

func (s *MemoryStore) StaleWaiting(_ context.Context, cutoff time.Time) ([]*match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*match.Match
	for _, m := range s.matches {
		if m.Phase == match.PhaseWaiting && m.CreatedAt.Before(cutoff) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return ErrNotFound
	}
	delete(s.matches, id)
	delete(s.cards, id)
	delete(s.actions, id)
	return nil
}

func (s *MemoryStore) CardsForMatch(_ context.Context, matchID string) ([]*match.CardInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID, ok := s.cards[matchID]
	if !ok {
		return nil, nil
	}
	out := make([]*match.CardInstance, 0, len(byID))
	for _, c := range byID {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveMatchState(_ context.Context, m *match.Match, cards []*match.CardInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return ErrNotFound
	}
	s.matches[m.ID] = m.Clone()
	byID := s.cards[m.ID]
	if byID == nil {
		byID = make(map[string]*match.CardInstance)
		s.cards[m.ID] = byID
	}
	for _, c := range cards {
		byID[c.ID] = c.Clone()
	}
	return nil
}

func (s *MemoryStore) CommitAction(_ context.Context, m *match.Match, changed []*match.CardInstance, act *match.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return ErrNotFound
	}
	s.matches[m.ID] = m.Clone()
	byID := s.cards[m.ID]
	for _, c := range changed {
		byID[c.ID] = c.Clone()
	}
	if act != nil {
		copied := *act
		s.actions[m.ID] = append(s.actions[m.ID], &copied)
	}
	return nil
}

func (s *MemoryStore) ActionsForMatch(_ context.Context, matchID string) ([]*match.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acts := s.actions[matchID]
	out := make([]*match.Action, 0, len(acts))
	for _, a := range acts {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}
