package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16
)

// Client is one websocket subscription to a match.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	matchID  string
	playerID string
	hub      *Hub

	// sendMu serializes queueing against closing: the broadcaster and the
	// pumps race on c.send, and sending on a closed channel panics.
	sendMu sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, matchID, playerID string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		matchID:  matchID,
		playerID: playerID,
		hub:      hub,
	}
}

// MatchID returns the match this client watches.
func (c *Client) MatchID() string { return c.matchID }

// PlayerID returns the identity behind this connection.
func (c *Client) PlayerID() string { return c.playerID }

// trySend queues a payload for the write pump. Returns false when the
// client is already closed or its buffer is full.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend marks the client closed and closes the send channel exactly
// once. Safe to call from both pumps and the broadcaster.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump drains inbound frames. Clients send nothing meaningful on this
// channel; the read loop exists to detect disconnects and answer pings.
func (c *Client) readPump() {
	defer c.hub.detach(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error",
					zap.String("match_id", c.matchID),
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump serializes outbound snapshots and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
