// Package notify publishes committed match actions to NATS for external
// consumers (history, moderation, analytics). Publishing is best-effort and
// strictly out-of-band: the action is already durable when it reaches here,
// so failures are logged and swallowed.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

// Publisher fans audit records out to NATS subjects. A nil Publisher is a
// valid disabled sink.
type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// Connect dials the broker. url may be empty to use the NATS default.
func Connect(url string, logger *zap.Logger) (*Publisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("arena-server"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("notification sink connected", zap.String("url", url))
	return &Publisher{nc: nc, logger: logger}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	_ = p.nc.Drain()
}

type actionEvent struct {
	ID      string          `json:"id"`
	MatchID string          `json:"match_id"`
	Player  int             `json:"player"`
	Turn    int             `json:"turn"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// PublishAction emits one committed audit record on
// arena.match.<match_id>.actions.
func (p *Publisher) PublishAction(act *match.Action) {
	if p == nil || p.nc == nil || act == nil {
		return
	}
	data, err := json.Marshal(actionEvent{
		ID:      act.ID,
		MatchID: act.MatchID,
		Player:  act.Player,
		Turn:    act.Turn,
		Kind:    string(act.Kind),
		Payload: act.Payload,
	})
	if err != nil {
		p.logger.Error("failed to encode action event", zap.String("action_id", act.ID), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("arena.match.%s.actions", act.MatchID)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish action event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
