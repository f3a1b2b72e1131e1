package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

// MatchStore is the Postgres-backed store. Every player action is committed
// as a single transaction covering the match row, the changed instance rows
// and the audit record, so no partial state is ever visible.
type MatchStore struct {
	db     *DB
	logger *zap.Logger
}

// NewMatchStore builds a store over an open pool.
func NewMatchStore(db *DB, logger *zap.Logger) *MatchStore {
	return &MatchStore{db: db, logger: logger}
}

const matchColumns = `id, player1_id, player2_id, deck1_id, deck2_id, phase,
	current_turn, current_player,
	p1_life, p1_energy, p1_draw_order, p1_draw_index,
	p2_life, p2_energy, p2_draw_order, p2_draw_index,
	winner, created_at, started_at, finished_at`

func scanMatch(row pgx.Row) (*match.Match, error) {
	var (
		m         match.Match
		phase     string
		startedAt *time.Time
		finished  *time.Time
	)
	err := row.Scan(
		&m.ID, &m.Player1ID, &m.Player2ID, &m.Deck1ID, &m.Deck2ID, &phase,
		&m.CurrentTurn, &m.CurrentPlayer,
		&m.Players[0].Life, &m.Players[0].Energy, &m.Players[0].DrawOrder, &m.Players[0].DrawIndex,
		&m.Players[1].Life, &m.Players[1].Energy, &m.Players[1].DrawOrder, &m.Players[1].DrawIndex,
		&m.Winner, &m.CreatedAt, &startedAt, &finished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.Phase, err = match.ParsePhase(phase); err != nil {
		return nil, err
	}
	if startedAt != nil {
		m.StartedAt = *startedAt
	}
	if finished != nil {
		m.FinishedAt = *finished
	}
	return &m, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// CreateMatch inserts a new match row.
func (s *MatchStore) CreateMatch(ctx context.Context, m *match.Match) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		m.ID, m.Player1ID, m.Player2ID, m.Deck1ID, m.Deck2ID, m.Phase.String(),
		m.CurrentTurn, m.CurrentPlayer,
		m.Players[0].Life, m.Players[0].Energy, m.Players[0].DrawOrder, m.Players[0].DrawIndex,
		m.Players[1].Life, m.Players[1].Energy, m.Players[1].DrawOrder, m.Players[1].DrawIndex,
		m.Winner, m.CreatedAt, nullableTime(m.StartedAt), nullableTime(m.FinishedAt),
	)
	return err
}

// MatchByID loads one match.
func (s *MatchStore) MatchByID(ctx context.Context, id string) (*match.Match, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

// ActiveMatchForPlayer returns the player's current non-finished match, if
// any. Waiting matches count as active so a player cannot queue twice.
func (s *MatchStore) ActiveMatchForPlayer(ctx context.Context, playerID string) (*match.Match, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE (player1_id = $1 OR player2_id = $1) AND phase <> 'finished'
		ORDER BY created_at DESC LIMIT 1`, playerID)
	return scanMatch(row)
}

// OldestWaiting returns the first-in waiting match not owned by playerID.
func (s *MatchStore) OldestWaiting(ctx context.Context, playerID string) (*match.Match, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE phase = 'waiting' AND player1_id <> $1
		ORDER BY created_at ASC LIMIT 1`, playerID)
	return scanMatch(row)
}

// StaleWaiting lists waiting matches created before the cutoff.
func (s *MatchStore) StaleWaiting(ctx context.Context, cutoff time.Time) ([]*match.Match, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE phase = 'waiting' AND created_at < $1
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMatch removes a match; instance and action rows cascade.
func (s *MatchStore) DeleteMatch(ctx context.Context, id string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CardsForMatch loads every instance of a match.
func (s *MatchStore) CardsForMatch(ctx context.Context, matchID string) ([]*match.CardInstance, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, match_id, card_id, owner, zone, position, stance,
		       attack, defense, health, energy_value, can_attack, has_attacked,
		       modifiers, status_effects
		FROM card_instances WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*match.CardInstance
	for rows.Next() {
		var (
			c            match.CardInstance
			zone, stance string
			mods, status []byte
		)
		if err := rows.Scan(
			&c.ID, &c.MatchID, &c.CardID, &c.Owner, &zone, &c.Position, &stance,
			&c.Attack, &c.Defense, &c.Health, &c.EnergyValue,
			&c.CanAttackThisTurn, &c.HasAttackedThisTurn, &mods, &status,
		); err != nil {
			return nil, err
		}
		c.Zone = match.Zone(zone)
		c.Stance = match.Stance(stance)
		if err := unmarshalEffects(mods, &c.Modifiers); err != nil {
			return nil, fmt.Errorf("card %s modifiers: %w", c.ID, err)
		}
		if err := unmarshalEffects(status, &c.StatusEffects); err != nil {
			return nil, fmt.Errorf("card %s status effects: %w", c.ID, err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SaveMatchState upserts the match row and the given instances in one
// transaction. Used for match setup, where no audit record applies yet.
func (s *MatchStore) SaveMatchState(ctx context.Context, m *match.Match, cards []*match.CardInstance) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		if err := updateMatchTx(ctx, tx, m); err != nil {
			return err
		}
		return upsertCardsTx(ctx, tx, cards)
	})
}

// CommitAction persists a completed player action atomically: the match
// row, every changed instance, and the append-only audit record.
func (s *MatchStore) CommitAction(ctx context.Context, m *match.Match, changed []*match.CardInstance, act *match.Action) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		if err := updateMatchTx(ctx, tx, m); err != nil {
			return err
		}
		if err := upsertCardsTx(ctx, tx, changed); err != nil {
			return err
		}
		if act == nil {
			return nil
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO match_actions (id, match_id, player, turn, kind, payload, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			act.ID, act.MatchID, act.Player, act.Turn, string(act.Kind), act.Payload, act.CreatedAt)
		return err
	})
}

// ActionsForMatch returns a match's audit log oldest-first.
func (s *MatchStore) ActionsForMatch(ctx context.Context, matchID string) ([]*match.Action, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, match_id, player, turn, kind, payload, created_at
		FROM match_actions WHERE match_id = $1 ORDER BY created_at ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*match.Action
	for rows.Next() {
		var (
			a    match.Action
			kind string
		)
		if err := rows.Scan(&a.ID, &a.MatchID, &a.Player, &a.Turn, &kind, &a.Payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = match.ActionKind(kind)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func updateMatchTx(ctx context.Context, tx pgx.Tx, m *match.Match) error {
	tag, err := tx.Exec(ctx, `
		UPDATE matches SET
			player1_id = $2, player2_id = $3, deck1_id = $4, deck2_id = $5,
			phase = $6, current_turn = $7, current_player = $8,
			p1_life = $9, p1_energy = $10, p1_draw_order = $11, p1_draw_index = $12,
			p2_life = $13, p2_energy = $14, p2_draw_order = $15, p2_draw_index = $16,
			winner = $17, started_at = $18, finished_at = $19
		WHERE id = $1`,
		m.ID, m.Player1ID, m.Player2ID, m.Deck1ID, m.Deck2ID,
		m.Phase.String(), m.CurrentTurn, m.CurrentPlayer,
		m.Players[0].Life, m.Players[0].Energy, m.Players[0].DrawOrder, m.Players[0].DrawIndex,
		m.Players[1].Life, m.Players[1].Energy, m.Players[1].DrawOrder, m.Players[1].DrawIndex,
		m.Winner, nullableTime(m.StartedAt), nullableTime(m.FinishedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func upsertCardsTx(ctx context.Context, tx pgx.Tx, cards []*match.CardInstance) error {
	for _, c := range cards {
		mods, err := marshalEffects(c.Modifiers)
		if err != nil {
			return err
		}
		status, err := marshalEffects(c.StatusEffects)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO card_instances
				(id, match_id, card_id, owner, zone, position, stance,
				 attack, defense, health, energy_value, can_attack, has_attacked,
				 modifiers, status_effects)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			ON CONFLICT (id) DO UPDATE SET
				zone = EXCLUDED.zone, position = EXCLUDED.position,
				stance = EXCLUDED.stance, attack = EXCLUDED.attack,
				defense = EXCLUDED.defense, health = EXCLUDED.health,
				energy_value = EXCLUDED.energy_value,
				can_attack = EXCLUDED.can_attack,
				has_attacked = EXCLUDED.has_attacked,
				modifiers = EXCLUDED.modifiers,
				status_effects = EXCLUDED.status_effects`,
			c.ID, c.MatchID, c.CardID, c.Owner, string(c.Zone), c.Position, string(c.Stance),
			c.Attack, c.Defense, c.Health, c.EnergyValue,
			c.CanAttackThisTurn, c.HasAttackedThisTurn, mods, status,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func marshalEffects(effects []match.Effect) ([]byte, error) {
	if effects == nil {
		return []byte("null"), nil
	}
	return json.Marshal(effects)
}

func unmarshalEffects(data []byte, dst *[]match.Effect) error {
	if len(data) == 0 || string(data) == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal(data, dst)
}
