package match

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action is one entry in a match's append-only audit log. Rows are
// write-once and never consulted for gameplay decisions.
type Action struct {
	ID        string
	MatchID   string
	Player    int
	Turn      int
	Kind      ActionKind
	Payload   json.RawMessage
	CreatedAt time.Time
}

// NewAction builds an audit record for the current turn of m. The payload
// must already be serialized; a nil payload is stored as JSON null.
func NewAction(m *Match, player int, kind ActionKind, payload any) (*Action, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Action{
		ID:        uuid.NewString(),
		MatchID:   m.ID,
		Player:    player,
		Turn:      m.CurrentTurn,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}
