// Package ws pushes post-action match snapshots to connected clients over
// gorilla websockets. Connection tracking lives in an explicit Registry
// (lookup by match ID and by player ID) injected into the broadcaster
// instead of ambient global maps.
package ws

import (
	"sync"
)

// Registry tracks live connections by match and by player.
type Registry struct {
	mu       sync.RWMutex
	byMatch  map[string]map[*Client]struct{}
	byPlayer map[string]map[*Client]struct{}
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMatch:  make(map[string]map[*Client]struct{}),
		byPlayer: make(map[string]map[*Client]struct{}),
	}
}

// Add registers a client under its match and player keys.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byMatch[c.matchID] == nil {
		r.byMatch[c.matchID] = make(map[*Client]struct{})
	}
	r.byMatch[c.matchID][c] = struct{}{}
	if r.byPlayer[c.playerID] == nil {
		r.byPlayer[c.playerID] = make(map[*Client]struct{})
	}
	r.byPlayer[c.playerID][c] = struct{}{}
}

// Remove unregisters a client. Returns false when the client was not
// present (already removed by the other pump).
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, ok := r.byMatch[c.matchID]
	if !ok {
		return false
	}
	if _, present := clients[c]; !present {
		return false
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(r.byMatch, c.matchID)
	}
	if peers := r.byPlayer[c.playerID]; peers != nil {
		delete(peers, c)
		if len(peers) == 0 {
			delete(r.byPlayer, c.playerID)
		}
	}
	return true
}

// ByMatch returns the clients subscribed to a match.
func (r *Registry) ByMatch(matchID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byMatch[matchID]))
	for c := range r.byMatch[matchID] {
		out = append(out, c)
	}
	return out
}

// ByPlayer returns a player's connections across matches.
func (r *Registry) ByPlayer(playerID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byPlayer[playerID]))
	for c := range r.byPlayer[playerID] {
		out = append(out, c)
	}
	return out
}

// MatchCount returns how many clients watch a match.
func (r *Registry) MatchCount(matchID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMatch[matchID])
}
