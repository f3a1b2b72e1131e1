package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin checks belong to the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub owns the connection registry and fans committed snapshots out to
// every subscriber of a match. It satisfies the orchestrator's Broadcaster.
type Hub struct {
	registry *Registry
	logger   *zap.Logger
}

// NewHub builds a hub around an injected registry.
func NewHub(registry *Registry, logger *zap.Logger) *Hub {
	return &Hub{registry: registry, logger: logger}
}

// Registry exposes the connection registry for handlers and tests.
func (h *Hub) Registry() *Registry { return h.registry }

// Attach upgrades an HTTP request into a match subscription and starts the
// client's pumps.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, matchID, playerID string) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c := newClient(h, conn, matchID, playerID)
	h.registry.Add(c)
	h.logger.Debug("websocket attached",
		zap.String("match_id", matchID),
		zap.String("player_id", playerID),
		zap.Int("subscribers", h.registry.MatchCount(matchID)),
	)
	go c.writePump()
	go c.readPump()
	return c, nil
}

func (h *Hub) detach(c *Client) {
	h.registry.Remove(c)
	c.closeSend()
	if c.conn != nil {
		c.conn.Close()
	}
	h.logger.Debug("websocket detached",
		zap.String("match_id", c.matchID),
		zap.String("player_id", c.playerID),
	)
}

// snapshotEnvelope frames broadcast payloads.
type snapshotEnvelope struct {
	Type  string          `json:"type"`
	Match *match.Snapshot `json:"match"`
}

// BroadcastSnapshot pushes the post-action snapshot to every connection
// subscribed to the match. Best-effort: a client whose send buffer is full
// is dropped and can resynchronize on reconnect.
func (h *Hub) BroadcastSnapshot(matchID string, snap *match.Snapshot) {
	payload, err := json.Marshal(snapshotEnvelope{Type: "match_state", Match: snap})
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	for _, c := range h.registry.ByMatch(matchID) {
		if c.trySend(payload) {
			continue
		}
		// Closed by its pumps, or too slow to drain its buffer.
		h.logger.Warn("dropping undeliverable websocket client",
			zap.String("match_id", matchID),
			zap.String("player_id", c.playerID),
		)
		h.detach(c)
	}
}
